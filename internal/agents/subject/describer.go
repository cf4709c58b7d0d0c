package subject

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/Conceptual-Machines/storybook-api/internal/agents/core/config"
	"github.com/Conceptual-Machines/storybook-api/internal/llm"
	"github.com/Conceptual-Machines/storybook-api/internal/models"
	"github.com/Conceptual-Machines/storybook-api/internal/prompt"
	"github.com/getsentry/sentry-go"
)

// FallbackDescription is used when the vision model returns no text
const FallbackDescription models.SubjectDescription = "A stylized 3D animated character"

// preamblePattern strips chatty openers such as "Here is a description of the boy:"
var preamblePattern = regexp.MustCompile(`(?i)Here is a description.*:`)

// Describer turns a photo into a reusable appearance description
type Describer struct {
	provider    llm.Provider
	model       string
	instruction string
}

// Result carries the description and the usage of the call that produced it
type Result struct {
	Description models.SubjectDescription
	Usage       llm.Usage
	Fallback    bool
}

// NewDescriberWithProvider creates a describer backed by the given provider
func NewDescriberWithProvider(cfg *config.Config, provider llm.Provider, loader *prompt.Loader) (*Describer, error) {
	instruction, err := loader.GetSubjectAnalysisPrompt()
	if err != nil {
		return nil, fmt.Errorf("failed to load subject analysis prompt: %w", err)
	}

	log.Printf("📷 SUBJECT DESCRIBER INITIALIZED:")
	log.Printf("   Provider: %s", provider.Name())
	log.Printf("   Model: %s", cfg.VisionModel)

	return &Describer{
		provider:    provider,
		model:       cfg.VisionModel,
		instruction: instruction,
	}, nil
}

// Describe derives the subject's fixed appearance from the photo.
// Transport failures are returned; an empty answer yields FallbackDescription.
func (d *Describer) Describe(ctx context.Context, image models.SubjectImage) (*Result, error) {
	startTime := time.Now()

	transaction := sentry.StartTransaction(ctx, "subject.describe")
	defer transaction.Finish()
	transaction.SetTag("model", d.model)

	resp, err := d.provider.Generate(transaction.Context(), &llm.GenerationRequest{
		Model:      d.model,
		UserPrompt: d.instruction,
		Images: []llm.InlineImage{
			{MIMEType: image.MIMEType, Data: image.Data},
		},
	})
	if err != nil {
		if errors.Is(err, llm.ErrEmptyResult) {
			log.Printf("⚠️  Vision model returned no text, using fallback description")
			transaction.SetTag("fallback", "true")
			return &Result{Description: FallbackDescription, Fallback: true}, nil
		}
		transaction.SetTag("success", "false")
		return nil, err
	}

	description := cleanDescription(resp.Text)
	if description == "" {
		log.Printf("⚠️  Vision model text was empty after cleanup, using fallback description")
		return &Result{Description: FallbackDescription, Usage: resp.Usage, Fallback: true}, nil
	}

	transaction.SetTag("success", "true")
	log.Printf("✅ SUBJECT DESCRIBED in %v (%d chars)", time.Since(startTime), len(description))

	return &Result{Description: models.SubjectDescription(description), Usage: resp.Usage}, nil
}

func cleanDescription(text string) string {
	text = preamblePattern.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)
	return strings.Trim(text, `"`)
}
