package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration
// Note: This is a stateless service - books are never persisted between runs
type Config struct {
	// Environment
	Environment string
	Port        string

	// LLM API Keys
	GeminiAPIKey string // Google Gemini API key (required, never logged)
	OpenAIAPIKey string // OpenAI API key, only needed when NarrativeModel is a gpt-* model

	// Models
	VisionModel    string // Model used to describe the uploaded photo
	NarrativeModel string // Model used to write the story document

	// Illustration endpoint
	ImageBaseURL string
	ImageModel   string
	ImageWidth   int
	ImageHeight  int

	// Retry discipline applied to every pipeline stage
	RetryMaxAttempts int
	RetryBaseDelay   time.Duration

	// Upload limits
	MaxUploadMB int

	// Observability
	SentryDSN         string // Sentry DSN for error tracking
	LangfusePublicKey string // Langfuse public key
	LangfuseSecretKey string // Langfuse secret key
	LangfuseHost      string // Langfuse host URL (cloud or self-hosted)
	LangfuseEnabled   bool   // Feature flag for Langfuse

	// Comma-separated browser origins allowed by CORS; empty allows http://localhost:3000
	CORSAllowedOrigins []string

	// Auth mode
	// - "none": No auth (self-hosted, local dev)
	// - "gateway": Trust X-User-* headers from an upstream gateway
	AuthMode string
}

// ErrMissingGeminiKey is returned by Validate when GEMINI_API_KEY is unset
var ErrMissingGeminiKey = errors.New("GEMINI_API_KEY is not configured")

const (
	defaultRetryAttempts    = 3
	defaultRetryBaseDelayMS = 1000
	defaultImageSize        = 1024
	defaultMaxUploadMB      = 10
)

func Load() *Config {
	return &Config{
		Environment:        getEnv("ENVIRONMENT", "development"),
		Port:               getEnv("PORT", "8080"),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		VisionModel:        getEnv("VISION_MODEL", "gemini-2.5-flash"),
		NarrativeModel:     getEnv("NARRATIVE_MODEL", "gemini-2.5-flash"),
		ImageBaseURL:       getEnv("IMAGE_BASE_URL", "https://pollinations.ai/p/"),
		ImageModel:         getEnv("IMAGE_MODEL", "flux"),
		ImageWidth:         getEnvInt("IMAGE_WIDTH", defaultImageSize),
		ImageHeight:        getEnvInt("IMAGE_HEIGHT", defaultImageSize),
		RetryMaxAttempts:   getEnvInt("RETRY_MAX_ATTEMPTS", defaultRetryAttempts),
		RetryBaseDelay:     time.Duration(getEnvInt("RETRY_BASE_DELAY_MS", defaultRetryBaseDelayMS)) * time.Millisecond,
		MaxUploadMB:        getEnvInt("MAX_UPLOAD_MB", defaultMaxUploadMB),
		SentryDSN:          getEnv("SENTRY_DSN", ""),
		LangfusePublicKey:  getEnv("LANGFUSE_PUBLIC_KEY", ""),
		LangfuseSecretKey:  getEnv("LANGFUSE_SECRET_KEY", ""),
		LangfuseHost:       getEnv("LANGFUSE_HOST", "https://cloud.langfuse.com"),
		LangfuseEnabled:    getEnv("LANGFUSE_ENABLED", "false") == "true",
		AuthMode:           getEnv("AUTH_MODE", "none"), // Default to no auth for self-hosted
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

// Validate checks the settings the pipeline cannot run without
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return ErrMissingGeminiKey
	}
	return nil
}

// IsGatewayMode returns true if running behind an auth gateway
func (c *Config) IsGatewayMode() bool {
	return c.AuthMode == "gateway"
}

// IsProduction reports whether ENVIRONMENT=production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Redacted returns loggable settings with secrets reduced to set/unset flags
func (c *Config) Redacted() map[string]interface{} {
	return map[string]interface{}{
		"environment":        c.Environment,
		"port":               c.Port,
		"vision_model":       c.VisionModel,
		"narrative_model":    c.NarrativeModel,
		"image_base_url":     c.ImageBaseURL,
		"image_model":        c.ImageModel,
		"retry_max_attempts": c.RetryMaxAttempts,
		"retry_base_delay":   c.RetryBaseDelay.String(),
		"gemini_key_set":     c.GeminiAPIKey != "",
		"openai_key_set":     c.OpenAIAPIKey != "",
		"sentry_enabled":     c.SentryDSN != "",
		"langfuse_enabled":   c.LangfuseEnabled,
		"auth_mode":          c.AuthMode,
	}
}
