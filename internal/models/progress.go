package models

import (
	"encoding/json"
	"fmt"
)

// Stage is the pipeline state a run is in
type Stage int

const (
	StageIdle Stage = iota
	StageAnalyzingSubject
	StageWritingNarrative
	StageRendering
	StageDone
	StageFailed
)

var stageNames = map[Stage]string{
	StageIdle:             "idle",
	StageAnalyzingSubject: "analyzing_subject",
	StageWritingNarrative: "writing_narrative",
	StageRendering:        "rendering",
	StageDone:             "done",
	StageFailed:           "failed",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON encodes the stage by name
func (s Stage) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a stage name; unknown names are an error
func (s *Stage) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for stage, n := range stageNames {
		if n == name {
			*s = stage
			return nil
		}
	}
	return fmt.Errorf("unknown stage %q", name)
}

// IsTerminal reports whether a run in this stage has finished
func (s Stage) IsTerminal() bool {
	return s == StageDone || s == StageFailed
}

// ProgressState is the observable state of one run.
// Only the orchestrator mutates it; observers receive copies.
type ProgressState struct {
	Stage                  Stage    `json:"stage"`
	PercentComplete        float64  `json:"percent_complete"`
	Log                    []string `json:"log"`
	CompletedIllustrations int      `json:"completed_illustrations"`
	TotalIllustrations     int      `json:"total_illustrations"`
	Error                  string   `json:"error,omitempty"`
}

// Clone copies the state including its log
func (p ProgressState) Clone() ProgressState {
	p.Log = append([]string(nil), p.Log...)
	return p
}

// ProgressEvent is one ordered update emitted during a run
type ProgressEvent struct {
	Sequence  int     `json:"sequence"`
	Stage     Stage   `json:"stage"`
	Message   string  `json:"message,omitempty"`
	Percent   float64 `json:"percent"`
	Completed int     `json:"completed_illustrations"`
	Total     int     `json:"total_illustrations"`
}
