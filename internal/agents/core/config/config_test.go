package config

import (
	"testing"

	appconfig "github.com/Conceptual-Machines/storybook-api/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestFromAppConfig(t *testing.T) {
	cfg := FromAppConfig(&appconfig.Config{
		GeminiAPIKey:   "g-key",
		OpenAIAPIKey:   "o-key",
		VisionModel:    "gemini-2.5-flash",
		NarrativeModel: "gemini-2.5-flash",
		ImageBaseURL:   "https://pollinations.ai/p/",
		ImageModel:     "flux",
		ImageWidth:     1024,
		ImageHeight:    768,
	})

	assert.Equal(t, &Config{
		GeminiAPIKey:   "g-key",
		OpenAIAPIKey:   "o-key",
		VisionModel:    "gemini-2.5-flash",
		NarrativeModel: "gemini-2.5-flash",
		ImageBaseURL:   "https://pollinations.ai/p/",
		ImageModel:     "flux",
		ImageWidth:     1024,
		ImageHeight:    768,
	}, cfg)
}
