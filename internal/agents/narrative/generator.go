package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Conceptual-Machines/storybook-api/internal/agents/core/config"
	"github.com/Conceptual-Machines/storybook-api/internal/llm"
	"github.com/Conceptual-Machines/storybook-api/internal/models"
	"github.com/Conceptual-Machines/storybook-api/internal/prompt"
	"github.com/getsentry/sentry-go"
)

// ErrNoPages is returned when the document parses but carries no pages
var ErrNoPages = errors.New("narrative document has no pages")

// Generator writes the ten-page story document
type Generator struct {
	provider     llm.Provider
	model        string
	systemPrompt string
	builder      *prompt.Builder
}

// Result carries the parsed document and the usage of the call that produced it
type Result struct {
	Document *models.NarrativeDocument
	Usage    llm.Usage
}

// NewGeneratorWithProvider creates a generator backed by the given provider
func NewGeneratorWithProvider(cfg *config.Config, provider llm.Provider, loader *prompt.Loader) (*Generator, error) {
	systemPrompt, err := loader.GetNarrativeSystemPrompt()
	if err != nil {
		return nil, fmt.Errorf("failed to load narrative system prompt: %w", err)
	}

	builder, err := prompt.NewPromptBuilder(loader)
	if err != nil {
		return nil, err
	}

	log.Printf("📖 NARRATIVE GENERATOR INITIALIZED:")
	log.Printf("   Provider: %s", provider.Name())
	log.Printf("   Model: %s", cfg.NarrativeModel)
	log.Printf("   System prompt length: %d chars", len(systemPrompt))

	return &Generator{
		provider:     provider,
		model:        cfg.NarrativeModel,
		systemPrompt: systemPrompt,
		builder:      builder,
	}, nil
}

// Generate asks the model for a strict-JSON story about name, written for the audience.
// A body that does not parse into the document shape yields *llm.MalformedResponseError.
func (g *Generator) Generate(ctx context.Context, name, theme, audience string) (*Result, error) {
	startTime := time.Now()

	transaction := sentry.StartTransaction(ctx, "narrative.generate")
	defer transaction.Finish()
	transaction.SetTag("model", g.model)
	transaction.SetTag("theme", theme)

	userPrompt, err := g.builder.BuildNarrativeUserPrompt(prompt.NarrativeInput{
		Name:     name,
		Theme:    theme,
		Audience: audience,
		Pages:    models.ExpectedPageCount,
	})
	if err != nil {
		return nil, err
	}

	resp, err := g.provider.Generate(transaction.Context(), &llm.GenerationRequest{
		Model:        g.model,
		SystemPrompt: g.systemPrompt,
		UserPrompt:   userPrompt,
		OutputSchema: &llm.OutputSchema{
			Name:        llm.NarrativeSchemaName,
			Description: "A children's picture book with a cover, ten pages and a closing scene",
			Schema:      llm.GetNarrativeDocumentSchema(),
		},
	})
	if err != nil {
		transaction.SetTag("success", "false")
		if errors.Is(err, llm.ErrEmptyResult) {
			return nil, &llm.MalformedResponseError{Provider: g.provider.Name(), Err: err}
		}
		return nil, err
	}

	doc, err := ParseDocument(g.provider.Name(), resp.Text)
	if err != nil {
		transaction.SetTag("success", "false")
		log.Printf("❌ NARRATIVE PARSE FAILED: %v", err)
		return nil, err
	}

	if len(doc.Pages) != models.ExpectedPageCount {
		log.Printf("⚠️  Narrative has %d pages, expected %d", len(doc.Pages), models.ExpectedPageCount)
	}

	transaction.SetTag("success", "true")
	log.Printf("✅ NARRATIVE GENERATED in %v: %q (%d pages)", time.Since(startTime), doc.Title, len(doc.Pages))

	return &Result{Document: doc, Usage: resp.Usage}, nil
}

// ParseDocument decodes the model output. Markdown code fences around the JSON are tolerated.
func ParseDocument(provider, text string) (*models.NarrativeDocument, error) {
	body := stripCodeFence(text)

	var doc models.NarrativeDocument
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, &llm.MalformedResponseError{Provider: provider, Raw: text, Err: err}
	}
	if len(doc.Pages) == 0 {
		return nil, &llm.MalformedResponseError{Provider: provider, Raw: text, Err: ErrNoPages}
	}
	return &doc, nil
}

func stripCodeFence(text string) string {
	body := strings.TrimSpace(text)
	if !strings.HasPrefix(body, "```") {
		return body
	}
	body = strings.TrimPrefix(body, "```json")
	body = strings.TrimPrefix(body, "```")
	body = strings.TrimSuffix(body, "```")
	return strings.TrimSpace(body)
}
