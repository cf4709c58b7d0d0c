package coordination

import (
	"sync"

	"github.com/Conceptual-Machines/storybook-api/internal/models"
)

const (
	percentStart     = 5.0
	percentSubject   = 15.0
	percentNarrative = 25.0
	percentRendering = 70.0 // span shared by all illustrations, from 25 to 95
	percentDone      = 100.0
)

// ProgressListener receives every event in emission order
type ProgressListener func(event models.ProgressEvent)

// ProgressReporter owns the progress state of one orchestrator.
// Listeners are called synchronously, in order, by the goroutine driving the run.
type ProgressReporter struct {
	mu        sync.Mutex
	state     models.ProgressState
	sequence  int
	listeners map[int]ProgressListener
	nextID    int
}

// NewProgressReporter returns a reporter in the Idle stage
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{
		state:     models.ProgressState{Stage: models.StageIdle, Log: []string{}},
		listeners: make(map[int]ProgressListener),
	}
}

// Subscribe registers a listener; the returned func removes it
func (p *ProgressReporter) Subscribe(listener ProgressListener) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = listener
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

// Snapshot returns a copy of the current state
func (p *ProgressReporter) Snapshot() models.ProgressState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Clone()
}

// begin starts a run: stage AnalyzingSubject, percent 5, log seeded with message
func (p *ProgressReporter) begin(message string) {
	p.update(func(s *models.ProgressState) {
		*s = models.ProgressState{
			Stage:           models.StageAnalyzingSubject,
			PercentComplete: percentStart,
			Log:             []string{message},
		}
	}, message)
}

// log appends a message without changing stage or percent
func (p *ProgressReporter) log(message string) {
	p.update(func(s *models.ProgressState) {
		s.Log = append(s.Log, message)
	}, message)
}

// advance moves to stage and raises the percent; percent never decreases
func (p *ProgressReporter) advance(stage models.Stage, percent float64) {
	p.update(func(s *models.ProgressState) {
		s.Stage = stage
		if percent > s.PercentComplete {
			s.PercentComplete = percent
		}
	}, "")
}

// startRendering records the illustration total
func (p *ProgressReporter) startRendering(total int) {
	p.update(func(s *models.ProgressState) {
		s.Stage = models.StageRendering
		s.TotalIllustrations = total
		s.CompletedIllustrations = 0
		if percentNarrative > s.PercentComplete {
			s.PercentComplete = percentNarrative
		}
	}, "")
}

// illustrationDone counts one finished illustration
func (p *ProgressReporter) illustrationDone(message string) {
	p.update(func(s *models.ProgressState) {
		s.CompletedIllustrations++
		if pct := illustrationPercent(s.CompletedIllustrations, s.TotalIllustrations); pct > s.PercentComplete {
			s.PercentComplete = pct
		}
		if message != "" {
			s.Log = append(s.Log, message)
		}
	}, message)
}

// fail moves to Failed, keeping the log for diagnostics
func (p *ProgressReporter) fail(message string) {
	p.update(func(s *models.ProgressState) {
		s.Stage = models.StageFailed
		s.Error = message
		s.Log = append(s.Log, message)
	}, message)
}

// reset returns to Idle and drops everything
func (p *ProgressReporter) reset() {
	p.update(func(s *models.ProgressState) {
		*s = models.ProgressState{Stage: models.StageIdle, Log: []string{}}
	}, "")
}

func (p *ProgressReporter) update(mutate func(s *models.ProgressState), message string) {
	p.mu.Lock()
	mutate(&p.state)
	p.sequence++
	event := models.ProgressEvent{
		Sequence:  p.sequence,
		Stage:     p.state.Stage,
		Message:   message,
		Percent:   p.state.PercentComplete,
		Completed: p.state.CompletedIllustrations,
		Total:     p.state.TotalIllustrations,
	}
	listeners := make([]ProgressListener, 0, len(p.listeners))
	for id := 0; id < p.nextID; id++ {
		if l, ok := p.listeners[id]; ok {
			listeners = append(listeners, l)
		}
	}
	p.mu.Unlock()

	for _, l := range listeners {
		l(event)
	}
}

// illustrationPercent maps completed illustrations onto the 25..95 range
func illustrationPercent(completed, total int) float64 {
	if total <= 0 {
		return percentNarrative
	}
	return percentNarrative + float64(completed)/float64(total)*percentRendering
}
