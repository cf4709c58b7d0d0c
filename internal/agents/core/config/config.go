package config

import (
	appconfig "github.com/Conceptual-Machines/storybook-api/internal/config"
)

// Config contains configuration for the storybook agents
type Config struct {
	GeminiAPIKey   string // Gemini API key for the vision and narrative stages
	OpenAIAPIKey   string // OpenAI API key, used only for gpt-* narrative models
	VisionModel    string
	NarrativeModel string

	ImageBaseURL string
	ImageModel   string
	ImageWidth   int
	ImageHeight  int
}

// FromAppConfig converts the service configuration into agent configuration
func FromAppConfig(cfg *appconfig.Config) *Config {
	return &Config{
		GeminiAPIKey:   cfg.GeminiAPIKey,
		OpenAIAPIKey:   cfg.OpenAIAPIKey,
		VisionModel:    cfg.VisionModel,
		NarrativeModel: cfg.NarrativeModel,
		ImageBaseURL:   cfg.ImageBaseURL,
		ImageModel:     cfg.ImageModel,
		ImageWidth:     cfg.ImageWidth,
		ImageHeight:    cfg.ImageHeight,
	}
}
