package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/Conceptual-Machines/storybook-api/internal/agents/core/config"
	"github.com/Conceptual-Machines/storybook-api/internal/agents/core/coordination"
	"github.com/Conceptual-Machines/storybook-api/internal/api"
	appconfig "github.com/Conceptual-Machines/storybook-api/internal/config"
	"github.com/Conceptual-Machines/storybook-api/internal/logger"
	"github.com/Conceptual-Machines/storybook-api/internal/metrics"
	"github.com/Conceptual-Machines/storybook-api/internal/observability"
	"github.com/Conceptual-Machines/storybook-api/internal/prompt"
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const (
	sentryFlushTimeout    = 2 * time.Second
	environmentProduction = "production"
)

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

// GetVersion returns the current release version
func GetVersion() string {
	return releaseVersion
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := appconfig.Load()

	// Initialize Sentry
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          "storybook-api@" + releaseVersion,
			EnableTracing:    true,
			TracesSampleRate: 1.0,
			EnableLogs:       true,
			Debug:            cfg.Environment != environmentProduction, // Enable debug in non-prod
			BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
				// Filter out sensitive data
				if event.Request != nil {
					event.Request.Headers = filterSensitiveHeaders(event.Request.Headers)
				}
				return event
			},
		}); err != nil {
			log.Printf("Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s, release: %s)", cfg.Environment, releaseVersion)
			// Flush on shutdown
			defer sentry.Flush(sentryFlushTimeout)
		}
	} else {
		log.Println("⚠️  Sentry not configured (SENTRY_DSN not set)")
	}

	if err := cfg.Validate(); err != nil {
		sentry.CaptureException(err)
		log.Fatal("Invalid configuration: ", err)
	}
	logger.Info("Configuration loaded", logger.Fields(cfg.Redacted()))

	ctx := context.Background()

	tracer := observability.InitializeLangfuse(ctx, cfg)

	cloudwatch, err := metrics.NewClient(ctx, cfg.Environment)
	if err != nil {
		log.Printf("⚠️  CloudWatch metrics unavailable: %v", err)
	}

	agents, err := coordination.NewAgents(ctx, config.FromAppConfig(cfg))
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to initialize agents: ", err)
	}

	catalog, err := prompt.NewPromptLoader().GetThemeCatalog()
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to load theme catalog: ", err)
	}

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	router := api.SetupRouter(cfg, &api.Dependencies{
		Agents:   agents,
		Catalog:  catalog,
		Recorder: metrics.NewRecorder(cloudwatch),
		Options:  []coordination.Option{coordination.WithTracer(tracer)},
	}, GetVersion())

	log.Printf("🚀 Starting server on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to start server:", err)
	}
}

func filterSensitiveHeaders(headers map[string]string) map[string]string {
	filtered := make(map[string]string)
	sensitiveKeys := map[string]bool{
		"authorization":  true,
		"cookie":         true,
		"x-api-key":      true,
		"x-goog-api-key": true,
	}

	for k, v := range headers {
		if sensitiveKeys[strings.ToLower(k)] {
			filtered[k] = "[REDACTED]"
		} else {
			filtered[k] = v
		}
	}
	return filtered
}
