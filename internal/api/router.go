package api

import (
	"github.com/Conceptual-Machines/storybook-api/internal/agents/core/coordination"
	"github.com/Conceptual-Machines/storybook-api/internal/api/handlers"
	apimiddleware "github.com/Conceptual-Machines/storybook-api/internal/api/middleware"
	"github.com/Conceptual-Machines/storybook-api/internal/config"
	"github.com/Conceptual-Machines/storybook-api/internal/metrics"
	"github.com/Conceptual-Machines/storybook-api/internal/models"
	"github.com/Conceptual-Machines/storybook-api/internal/retry"
	"github.com/gin-gonic/gin"
)

// Dependencies are the long-lived services the routes are wired to
type Dependencies struct {
	Agents   *coordination.Agents
	Catalog  *models.ThemeCatalog
	Recorder *metrics.Recorder
	Options  []coordination.Option
}

func SetupRouter(cfg *config.Config, deps *Dependencies, version string) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = int64(cfg.MaxUploadMB) << 20

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking(deps.Recorder))

	// CORS middleware
	router.Use(apimiddleware.CORS(cfg.CORSAllowedOrigins))

	// Health check
	healthHandler := handlers.NewHealthHandler(cfg.GeminiAPIKey != "")
	router.GET("/health", healthHandler.HealthCheck)

	// Metrics endpoint
	stats := &handlers.RunStats{}
	metricsHandler := handlers.NewMetricsHandler(version, stats)
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	v1 := router.Group("/api/v1")
	{
		themesHandler := handlers.NewThemesHandler(deps.Catalog)
		v1.GET("/themes", apimiddleware.OptionalGatewayAuth(), themesHandler.List)

		policy := retry.Policy{
			MaxAttempts: cfg.RetryMaxAttempts,
			BaseDelay:   cfg.RetryBaseDelay,
		}
		options := append([]coordination.Option{coordination.WithRecorder(deps.Recorder)}, deps.Options...)
		booksHandler := handlers.NewBooksHandler(deps.Agents, policy, cfg.MaxUploadMB, stats, options...)

		books := v1.Group("/books")
		books.Use(apimiddleware.Auth(cfg.IsGatewayMode()))
		books.POST("", booksHandler.Create)
		books.POST("/stream", booksHandler.Stream)
	}

	return router
}
