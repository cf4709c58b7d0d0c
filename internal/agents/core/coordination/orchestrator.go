package coordination

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Conceptual-Machines/storybook-api/internal/agents/core/config"
	"github.com/Conceptual-Machines/storybook-api/internal/agents/illustration"
	"github.com/Conceptual-Machines/storybook-api/internal/agents/narrative"
	"github.com/Conceptual-Machines/storybook-api/internal/agents/subject"
	"github.com/Conceptual-Machines/storybook-api/internal/llm"
	"github.com/Conceptual-Machines/storybook-api/internal/logger"
	"github.com/Conceptual-Machines/storybook-api/internal/models"
	"github.com/Conceptual-Machines/storybook-api/internal/observability"
	"github.com/Conceptual-Machines/storybook-api/internal/prompt"
	"github.com/Conceptual-Machines/storybook-api/internal/retry"
	"github.com/google/uuid"
)

// FailurePrefix starts every run failure message shown to the caller
const FailurePrefix = "The animation studio had a hiccup. "

const dnaPreviewLen = 40

// ErrRunInProgress is returned when Run is called while another run is active
var ErrRunInProgress = errors.New("a book is already being generated by this orchestrator")

// SubjectDescriber derives the reusable appearance description from the photo
type SubjectDescriber interface {
	Describe(ctx context.Context, image models.SubjectImage) (*subject.Result, error)
}

// NarrativeWriter writes the story document
type NarrativeWriter interface {
	Generate(ctx context.Context, name, theme, audience string) (*narrative.Result, error)
}

// IllustrationRenderer produces one illustration per scene
type IllustrationRenderer interface {
	Render(ctx context.Context, subject models.SubjectDescription, scene string) (models.Illustration, error)
}

// Recorder receives stage and run measurements
type Recorder interface {
	RecordStage(ctx context.Context, stage string, duration time.Duration, err error)
	RecordRun(ctx context.Context, duration time.Duration, err error, illustrations int)
	RecordTokenUsage(ctx context.Context, model string, inputTokens, outputTokens, totalTokens int)
}

// Agents bundles the three stage agents; they are stateless and shared across orchestrators
type Agents struct {
	Describer      SubjectDescriber
	Writer         NarrativeWriter
	Renderer       IllustrationRenderer
	VisionModel    string
	NarrativeModel string
}

// NewAgents builds the production agents from configuration
func NewAgents(ctx context.Context, cfg *config.Config) (*Agents, error) {
	factory := llm.NewProviderFactory(cfg.OpenAIAPIKey, cfg.GeminiAPIKey)
	loader := prompt.NewPromptLoader()

	visionProvider, err := factory.GetProvider(ctx, cfg.VisionModel, "")
	if err != nil {
		return nil, fmt.Errorf("vision provider: %w", err)
	}
	narrativeProvider, err := factory.GetProvider(ctx, cfg.NarrativeModel, "")
	if err != nil {
		return nil, fmt.Errorf("narrative provider: %w", err)
	}

	describer, err := subject.NewDescriberWithProvider(cfg, visionProvider, loader)
	if err != nil {
		return nil, err
	}
	writer, err := narrative.NewGeneratorWithProvider(cfg, narrativeProvider, loader)
	if err != nil {
		return nil, err
	}
	renderer, err := illustration.NewRenderer(cfg, loader)
	if err != nil {
		return nil, err
	}

	return &Agents{
		Describer:      describer,
		Writer:         writer,
		Renderer:       renderer,
		VisionModel:    cfg.VisionModel,
		NarrativeModel: cfg.NarrativeModel,
	}, nil
}

// RunError is the fatal failure of a run after retries were exhausted
type RunError struct {
	Stage models.Stage
	Err   error
}

func (e *RunError) Error() string {
	return FailurePrefix + e.Err.Error()
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// Orchestrator drives one book through subject analysis, narrative and rendering.
// An orchestrator runs at most one request at a time.
type Orchestrator struct {
	agents   *Agents
	policy   retry.Policy
	reporter *ProgressReporter
	recorder Recorder
	tracer   *observability.LangfuseClient
	newRunID func() string
	running  atomic.Bool
}

// Option configures an Orchestrator
type Option func(o *Orchestrator)

// WithRecorder sends stage and run measurements to r
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) {
		o.recorder = r
	}
}

// WithTracer traces runs in Langfuse
func WithTracer(t *observability.LangfuseClient) Option {
	return func(o *Orchestrator) {
		o.tracer = t
	}
}

// WithRunIDs replaces the uuid run id generator
func WithRunIDs(fn func() string) Option {
	return func(o *Orchestrator) {
		o.newRunID = fn
	}
}

// NewOrchestrator creates an orchestrator in the Idle stage
func NewOrchestrator(agents *Agents, policy retry.Policy, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		agents:   agents,
		policy:   policy,
		reporter: NewProgressReporter(),
		recorder: noopRecorder{},
		tracer:   observability.GetClient(),
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Progress exposes the reporter for subscriptions and snapshots
func (o *Orchestrator) Progress() *ProgressReporter {
	return o.reporter
}

// Reset returns the progress state to Idle
func (o *Orchestrator) Reset() error {
	if o.running.Load() {
		return ErrRunInProgress
	}
	o.reporter.reset()
	return nil
}

// Run validates the request and generates the complete book.
// On failure no artifact is returned; the error is a *RunError unless validation failed.
func (o *Orchestrator) Run(ctx context.Context, req *models.GenerationRequest) (*models.BookArtifact, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !o.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer o.running.Store(false)

	runID := o.newRunID()
	startTime := time.Now()
	fields := logger.Fields{"run_id": runID, "theme": req.Theme, "audience": req.AudienceAge}
	logger.Info("Book run started", fields)

	trace := o.tracer.StartTrace(ctx, "storybook.run", runID, map[string]interface{}{
		"theme":    req.Theme,
		"audience": req.AudienceAge,
	})

	book, err := o.run(ctx, req, trace, fields)
	duration := time.Since(startTime)
	completed := o.reporter.Snapshot().CompletedIllustrations
	o.recorder.RecordRun(ctx, duration, err, completed)

	if err != nil {
		o.reporter.fail(err.Error())
		trace.Finish(map[string]interface{}{"error": err.Error()})
		logger.Error("Book run failed", err, logger.Fields{
			"run_id":   runID,
			"stage":    stageOf(err),
			"duration": duration.String(),
		})
		return nil, err
	}

	o.reporter.advance(models.StageDone, percentDone)
	trace.Finish(map[string]interface{}{"title": book.Title, "pages": len(book.Pages)})
	logger.Info("Book run completed", logger.Fields{
		"run_id":   runID,
		"title":    book.Title,
		"pages":    len(book.Pages),
		"duration": duration.String(),
	})
	return book.Clone(), nil
}

func (o *Orchestrator) run(
	ctx context.Context,
	req *models.GenerationRequest,
	trace *observability.Trace,
	fields logger.Fields,
) (*models.BookArtifact, error) {
	o.reporter.begin("Initializing creative engine...")

	// Stage 1: subject
	o.reporter.log("Extracting character DNA from photo...")
	subj, err := runStage(ctx, o, models.StageAnalyzingSubject, func(ctx context.Context) (*subject.Result, error) {
		gen := trace.Generation("subject.describe", o.agents.VisionModel, "subject photo")
		result, err := o.agents.Describer.Describe(ctx, req.SubjectImage)
		if err != nil {
			gen.Fail(err)
			return nil, err
		}
		gen.End(string(result.Description), result.Usage)
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	o.recorder.RecordTokenUsage(ctx, o.agents.VisionModel, subj.Usage.InputTokens, subj.Usage.OutputTokens, subj.Usage.TotalTokens)
	o.reporter.log(fmt.Sprintf("DNA Locked: %s...", preview(string(subj.Description), dnaPreviewLen)))
	o.reporter.advance(models.StageWritingNarrative, percentSubject)

	// Stage 2: narrative
	o.reporter.log(fmt.Sprintf("Writing story about %q...", req.Theme))
	story, err := runStage(ctx, o, models.StageWritingNarrative, func(ctx context.Context) (*narrative.Result, error) {
		gen := trace.Generation("narrative.generate", o.agents.NarrativeModel, map[string]string{
			"theme":    req.Theme,
			"audience": req.AudienceAge,
		})
		result, err := o.agents.Writer.Generate(ctx, req.SubjectName, req.Theme, req.AudienceAge)
		if err != nil {
			gen.Fail(err)
			return nil, err
		}
		gen.End(result.Document, result.Usage)
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	doc := story.Document
	o.recorder.RecordTokenUsage(ctx, o.agents.NarrativeModel, story.Usage.InputTokens, story.Usage.OutputTokens, story.Usage.TotalTokens)
	o.reporter.log(fmt.Sprintf("Script written: %q", doc.Title))

	// Stage 3: illustrations, strictly in plan order
	tasks := planIllustrations(doc)
	o.reporter.startRendering(len(tasks))
	logger.Info("Rendering illustrations", logger.Fields{"run_id": fields["run_id"], "total": len(tasks)})

	book := &models.BookArtifact{
		Title: doc.Title,
		Pages: make([]models.BookPage, len(doc.Pages)),
	}

	renderStart := time.Now()
	for _, task := range tasks {
		o.reporter.log(task.startMsg)
		ill, err := retry.Do(ctx, o.policy, func(ctx context.Context) (models.Illustration, error) {
			return o.agents.Renderer.Render(ctx, subj.Description, task.scene)
		})
		if err != nil {
			o.recorder.RecordStage(ctx, models.StageRendering.String(), time.Since(renderStart), err)
			return nil, &RunError{Stage: models.StageRendering, Err: fmt.Errorf("%s illustration: %w", task.label(), err)}
		}

		switch task.kind {
		case taskCover:
			book.CoverIllustration = ill
		case taskPage:
			book.Pages[task.pageIndex] = models.BookPage{
				Text:         doc.Pages[task.pageIndex].Text,
				Illustration: ill,
			}
		case taskEnd:
			book.EndIllustration = ill
		}
		o.reporter.illustrationDone(task.doneMsg)
	}
	o.recorder.RecordStage(ctx, models.StageRendering.String(), time.Since(renderStart), nil)

	return book, nil
}

// runStage applies the retry policy to one stage and converts exhaustion into a RunError
func runStage[T any](ctx context.Context, o *Orchestrator, stage models.Stage, op func(ctx context.Context) (T, error)) (T, error) {
	start := time.Now()
	result, err := retry.Do(ctx, o.policy, op)
	o.recorder.RecordStage(ctx, stage.String(), time.Since(start), err)
	if err != nil {
		var zero T
		return zero, &RunError{Stage: stage, Err: err}
	}
	return result, nil
}

func stageOf(err error) string {
	var runErr *RunError
	if errors.As(err, &runErr) {
		return runErr.Stage.String()
	}
	return "unknown"
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

type noopRecorder struct{}

func (noopRecorder) RecordStage(context.Context, string, time.Duration, error) {}
func (noopRecorder) RecordRun(context.Context, time.Duration, error, int) {}
func (noopRecorder) RecordTokenUsage(context.Context, string, int, int, int) {}
