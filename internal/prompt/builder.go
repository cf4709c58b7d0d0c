package prompt

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/Conceptual-Machines/storybook-api/internal/models"
)

// Builder builds per-request prompts for the narrative generator
type Builder struct {
	userTemplate *template.Template
}

// NarrativeInput holds the values substituted into the story request
type NarrativeInput struct {
	Name     string
	Theme    string
	Audience string
	Pages    int
}

// NewPromptBuilder creates a new prompt builder from the embedded template
func NewPromptBuilder(loader *Loader) (*Builder, error) {
	raw, err := loader.GetNarrativeUserTemplate()
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New("narrative_user").Option("missingkey=error").Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse narrative template: %w", err)
	}

	return &Builder{userTemplate: tmpl}, nil
}

// BuildNarrativeUserPrompt renders the user instruction for one story
func (b *Builder) BuildNarrativeUserPrompt(input NarrativeInput) (string, error) {
	if input.Pages <= 0 {
		input.Pages = models.ExpectedPageCount
	}

	var sb strings.Builder
	if err := b.userTemplate.Execute(&sb, input); err != nil {
		return "", fmt.Errorf("failed to render narrative prompt: %w", err)
	}
	return sb.String(), nil
}

// BuildIllustrationPrompt joins the subject, the scene and the style suffix
func BuildIllustrationPrompt(subject, scene, style string) string {
	return fmt.Sprintf("Make %s, %s, %s", strings.TrimSpace(subject), strings.TrimSpace(scene), style)
}
