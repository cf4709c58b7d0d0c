package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/storybook-api/internal/models"
	"github.com/Conceptual-Machines/storybook-api/pkg/embedded"
)

type Loader struct{}

func NewPromptLoader() *Loader {
	return &Loader{}
}

// GetSubjectAnalysisPrompt loads the instruction sent with the uploaded photo
func (l *Loader) GetSubjectAnalysisPrompt() (string, error) {
	return strings.TrimSpace(string(embedded.SubjectAnalysisPromptTxt)), nil
}

// GetNarrativeSystemPrompt loads the story style guide
func (l *Loader) GetNarrativeSystemPrompt() (string, error) {
	return strings.TrimSpace(string(embedded.NarrativeSystemPromptTxt)), nil
}

// GetNarrativeUserTemplate loads the raw per-request story template
func (l *Loader) GetNarrativeUserTemplate() (string, error) {
	return strings.TrimSpace(string(embedded.NarrativeUserPromptTmpl)), nil
}

// GetIllustrationStyle loads the rendering style suffix appended to every image prompt
func (l *Loader) GetIllustrationStyle() (string, error) {
	return strings.TrimSpace(string(embedded.IllustrationStyleTxt)), nil
}

// GetThemeCatalog parses the embedded theme catalog
func (l *Loader) GetThemeCatalog() (*models.ThemeCatalog, error) {
	var catalog models.ThemeCatalog
	if err := json.Unmarshal(embedded.ThemesJSON, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse theme catalog: %w", err)
	}
	return &catalog, nil
}
