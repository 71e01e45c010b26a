package http

import (
	"log/slog"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/idusortus/quotes-service/internal/adapters/http/handlers"
	"github.com/idusortus/quotes-service/internal/adapters/http/middleware"
	"github.com/idusortus/quotes-service/internal/adapters/http/pipeline"
	"github.com/idusortus/quotes-service/internal/platform/telemetry"
)

// DefaultRequestTimeout bounds API requests when no timeout is configured.
const DefaultRequestTimeout = 15 * time.Second

const corsMaxAge = 12 * time.Hour

// RouterConfig contains everything the router wires together.
type RouterConfig struct {
	Logger      *slog.Logger
	ServiceName string

	// RequestTimeout is the deadline of every /api/v1 request.
	RequestTimeout time.Duration

	// AllowedOrigins enables CORS for the listed origins; "*" allows any.
	AllowedOrigins []string

	Boundary *pipeline.Boundary
	Health   *handlers.HealthHandler
	Quotes   *handlers.QuoteHandler
	Auth     *handlers.AuthHandler

	// Verifier protects the quote write routes. Nil leaves them open.
	Verifier middleware.TokenVerifier
}

// SetupRouter configures middleware and routes on engine.
// Global middleware, first to last:
//  1. Recovery
//  2. Request and correlation IDs
//  3. OpenTelemetry tracing and request metrics
//  4. Access logging (skips /-/)
//  5. CORS, when origins are configured
//
// Route groups:
//   - /-/ probes and metrics, no timeout
//   - /api/v1 quotes and auth, under the request timeout
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	if cfg.Boundary == nil {
		cfg.Boundary = pipeline.NewBoundary(pipeline.BoundaryConfig{Logger: cfg.Logger})
	}

	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.RequestID(cfg.Logger),
		middleware.CorrelationID(),
	)
	engine.Use(telemetry.Middleware(cfg.ServiceName)...)
	engine.Use(middleware.Logging(cfg.Logger))

	if len(cfg.AllowedOrigins) > 0 {
		engine.Use(corsMiddleware(cfg.AllowedOrigins))
	}

	if cfg.Health != nil {
		cfg.Health.RegisterHealthRoutes(engine.Group("/-"))
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	api := engine.Group("/api/v1", middleware.Timeout(timeout))

	var write []gin.HandlerFunc
	if cfg.Verifier != nil {
		write = append(write, middleware.RequireAuth(cfg.Verifier))
	}

	if cfg.Quotes != nil {
		cfg.Quotes.RegisterRoutes(api, cfg.Boundary, write...)
	}

	if cfg.Auth != nil {
		cfg.Auth.RegisterRoutes(api, cfg.Boundary)
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Authorization",
			middleware.HeaderRequestID, middleware.HeaderCorrelationID,
		},
		ExposeHeaders: []string{
			"Location", middleware.HeaderRequestID, middleware.HeaderCorrelationID,
		},
		MaxAge: corsMaxAge,
	}

	if slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
		c.AllowCredentials = true
	}

	return cors.New(c)
}
