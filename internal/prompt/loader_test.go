package prompt

import (
	"strings"
	"testing"
)

func TestNewPromptLoader(t *testing.T) {
	loader := NewPromptLoader()
	if loader == nil {
		t.Fatal("NewPromptLoader() returned nil")
	}
}

func TestGetSubjectAnalysisPrompt(t *testing.T) {
	loader := NewPromptLoader()
	content, err := loader.GetSubjectAnalysisPrompt()

	if err != nil {
		t.Fatalf("GetSubjectAnalysisPrompt() returned error: %v", err)
	}

	if !strings.Contains(content, "No background, no actions") {
		t.Error("GetSubjectAnalysisPrompt() does not exclude background and actions")
	}

	if strings.HasPrefix(content, "\n") || strings.HasSuffix(content, "\n") {
		t.Error("GetSubjectAnalysisPrompt() is not trimmed")
	}
}

func TestGetNarrativeSystemPrompt(t *testing.T) {
	loader := NewPromptLoader()
	content, err := loader.GetNarrativeSystemPrompt()

	if err != nil {
		t.Fatalf("GetNarrativeSystemPrompt() returned error: %v", err)
	}

	// Style guide rules are a contract with the model and must be present verbatim
	for _, rule := range []string{
		"Use ACTIVE voice",
		`Engage the reader with "you"`,
		"Hanukkah, Rosh Hashana, Shabbat",
		`Use "Torah observant" instead of "Orthodox"`,
		"DO NOT describe the main character's appearance",
		`"scene_description"`,
	} {
		if !strings.Contains(content, rule) {
			t.Errorf("GetNarrativeSystemPrompt() missing rule %q", rule)
		}
	}
}

func TestGetIllustrationStyle(t *testing.T) {
	loader := NewPromptLoader()
	content, err := loader.GetIllustrationStyle()

	if err != nil {
		t.Fatalf("GetIllustrationStyle() returned error: %v", err)
	}

	if !strings.HasPrefix(content, "depicted in a stylized-realist") || !strings.HasSuffix(content, "full body.") {
		t.Error("GetIllustrationStyle() does not contain the full style suffix")
	}
}

func TestGetThemeCatalog(t *testing.T) {
	loader := NewPromptLoader()
	catalog, err := loader.GetThemeCatalog()

	if err != nil {
		t.Fatalf("GetThemeCatalog() returned error: %v", err)
	}

	if len(catalog.Categories) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(catalog.Categories))
	}

	if catalog.DefaultTheme() != "Shabbat Shalom" {
		t.Errorf("unexpected default theme %q", catalog.DefaultTheme())
	}

	if len(catalog.Audiences) != 4 {
		t.Errorf("expected 4 audiences, got %d", len(catalog.Audiences))
	}
}
