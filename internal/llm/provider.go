package llm

import (
	"context"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Generate runs one model call. When OutputSchema is set the provider
	// MUST request strict JSON output.
	Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error)

	// Name returns the provider name (e.g., "openai", "gemini")
	Name() string
}

// GenerationRequest contains all parameters needed for generation
type GenerationRequest struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	// Images are sent inline alongside the user prompt
	Images []InlineImage
	// Structured output schema; nil means plain text
	OutputSchema *OutputSchema
}

// InlineImage is a raw image sent with the prompt
type InlineImage struct {
	MIMEType string
	Data     []byte
}

// OutputSchema defines the expected JSON output structure
type OutputSchema struct {
	Name        string
	Description string
	Schema      map[string]any // JSON Schema object
}

// GenerationResponse contains the result from the LLM
type GenerationResponse struct {
	Text  string `json:"text"`
	Model string `json:"model"`
	Usage Usage  `json:"usage"`
}

// Usage is the provider-neutral token count of one call
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// AsMap returns the usage in the shape the logger and Langfuse expect
func (u Usage) AsMap() map[string]interface{} {
	return map[string]interface{}{
		"input_tokens":  u.InputTokens,
		"output_tokens": u.OutputTokens,
		"total_tokens":  u.TotalTokens,
	}
}
