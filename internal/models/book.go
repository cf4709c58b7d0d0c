package models

import (
	"strings"
)

// ExpectedPageCount is the number of pages the narrative model is asked to write.
// Documents with a different count are accepted and logged.
const ExpectedPageCount = 10

// GenerationRequest is the validated input of one pipeline run
type GenerationRequest struct {
	SubjectName  string       `json:"name"`
	Theme        string       `json:"theme"`
	AudienceAge  string       `json:"age"`
	SubjectImage SubjectImage `json:"-"`
}

// Validate rejects requests with a missing field before any stage starts
func (r *GenerationRequest) Validate() error {
	if strings.TrimSpace(r.SubjectName) == "" {
		return &ValidationError{Field: "name"}
	}
	if strings.TrimSpace(r.Theme) == "" {
		return &ValidationError{Field: "theme"}
	}
	if strings.TrimSpace(r.AudienceAge) == "" {
		return &ValidationError{Field: "age"}
	}
	if r.SubjectImage.IsEmpty() {
		return &ValidationError{Field: "image"}
	}
	return nil
}

// SubjectDescription describes the subject's fixed appearance only.
// It is produced once per run and reused by every illustration.
type SubjectDescription string

// NarrativeDocument is the structured story returned by the narrative model
type NarrativeDocument struct {
	Title      string     `json:"title"`
	CoverScene string     `json:"cover_scene"`
	EndScene   string     `json:"end_scene"`
	Pages      []PageUnit `json:"pages"`
}

// PageUnit is one page of story text plus the scene to illustrate
type PageUnit struct {
	Text             string `json:"text"`
	SceneDescription string `json:"scene_description"`
}

// Illustration references a rendered image; the pipeline never fetches it
type Illustration struct {
	Reference string `json:"reference"`
	Seed      int    `json:"seed"`
}

// BookPage pairs one page of text with its illustration
type BookPage struct {
	Text         string       `json:"text"`
	Illustration Illustration `json:"illustration"`
}

// BookArtifact is the fully illustrated book produced by a successful run
type BookArtifact struct {
	Title             string       `json:"title"`
	CoverIllustration Illustration `json:"cover_illustration"`
	EndIllustration   Illustration `json:"end_illustration"`
	Pages             []BookPage   `json:"pages"`
}

// Clone returns a deep copy so callers cannot mutate a finished artifact
func (b *BookArtifact) Clone() *BookArtifact {
	if b == nil {
		return nil
	}
	clone := *b
	clone.Pages = append([]BookPage(nil), b.Pages...)
	return &clone
}
