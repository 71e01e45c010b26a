// Package main is the entry point for the quotes service.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/idusortus/quotes-service/internal/adapters/auth"
	"github.com/idusortus/quotes-service/internal/adapters/cache"
	"github.com/idusortus/quotes-service/internal/adapters/http"
	"github.com/idusortus/quotes-service/internal/adapters/http/handlers"
	"github.com/idusortus/quotes-service/internal/adapters/http/pipeline"
	"github.com/idusortus/quotes-service/internal/adapters/storage/memory"
	"github.com/idusortus/quotes-service/internal/adapters/storage/postgres"
	"github.com/idusortus/quotes-service/internal/app"
	"github.com/idusortus/quotes-service/internal/platform/config"
	"github.com/idusortus/quotes-service/internal/platform/logging"
	"github.com/idusortus/quotes-service/internal/platform/telemetry"
	"github.com/idusortus/quotes-service/internal/ports"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the service.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// storage bundles the repositories of the selected driver.
type storage struct {
	quotes ports.QuoteRepository
	users  ports.UserRepository
	tx     ports.Transactor
	health ports.HealthChecker
	close  func() error
}

func run() error {
	ctx := context.Background()

	// 1. Pick up a local .env file, if any. Real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	// 2. Load and validate configuration (fail fast)
	profile := os.Getenv("APP_PROFILE")
	if profile == "" {
		profile = "local"
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 3. Initialize logging
	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("driver", cfg.Database.Driver),
	)

	// 4. Initialize telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(ctx); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	// 5. Open storage
	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := store.close(); closeErr != nil {
			logger.Error("storage close error", slog.Any("error", closeErr))
		}
	}()

	healthRegistry := ports.NewHealthRegistry()
	if err := healthRegistry.Register(store.health); err != nil {
		return fmt.Errorf("registering storage health check: %w", err)
	}

	// 6. Put the read-through cache in front of quote lookups
	quotes := store.quotes

	if cfg.Cache.Enabled {
		redisCache := cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})

		defer func() {
			if closeErr := redisCache.Close(); closeErr != nil {
				logger.Error("cache close error", slog.Any("error", closeErr))
			}
		}()

		if err := healthRegistry.Register(redisCache); err != nil {
			return fmt.Errorf("registering cache health check: %w", err)
		}

		breaker := cache.NewBreaker(redisCache, cache.BreakerConfig{
			MaxFailures: cfg.Cache.BreakerFailures,
			Cooldown:    cfg.Cache.BreakerCooldown,
			Logger:      logger,
		})

		quotes = cache.NewQuoteRepository(quotes, breaker, cfg.Cache.TTL, logger)
	}

	// 7. Create services (application layer)
	quoteService := app.NewQuoteService(app.QuoteServiceConfig{
		Quotes: quotes,
		Tx:     store.tx,
		Logger: logger,
	})

	signingKey, err := resolveSigningKey(cfg.Auth, logger)
	if err != nil {
		return err
	}

	tokens, err := auth.NewJWTIssuer(auth.JWTConfig{
		Key:      signingKey,
		Issuer:   cfg.Auth.Issuer,
		Audience: cfg.Auth.Audience,
		Lifetime: cfg.Auth.TokenLifetime(),
	})
	if err != nil {
		return fmt.Errorf("creating token issuer: %w", err)
	}

	authService := app.NewAuthService(app.AuthServiceConfig{
		Users:  store.users,
		Hasher: auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		Tokens: tokens,
		Logger: logger,
	})

	// 8. Create the request pipeline boundary
	faults, err := telemetry.NewFaultCounter()
	if err != nil {
		return fmt.Errorf("creating fault counter: %w", err)
	}

	boundary := pipeline.NewBoundary(pipeline.BoundaryConfig{
		Logger:   logger,
		Debug:    cfg.App.Debug(),
		Matchers: []pipeline.Matcher{postgres.IsConnectivityError},
		Faults:   faults,
	})

	// 9. Create handlers
	buildInfo := handlers.NewBuildInfo(Version, Commit, BuildTime)

	routerCfg := http.RouterConfig{
		Logger:         logger,
		ServiceName:    cfg.App.Name,
		RequestTimeout: cfg.Server.RequestTimeout,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Boundary:       boundary,
		Health:         handlers.NewHealthHandler(healthRegistry, buildInfo),
		Quotes:         handlers.NewQuoteHandler(quoteService),
		Auth:           handlers.NewAuthHandler(authService),
	}

	if cfg.Auth.Enabled {
		routerCfg.Verifier = tokens
	}

	// 10. Create HTTP server and mount routes
	server := http.New(&cfg.Server, logger)
	http.SetupRouter(server.Engine(), routerCfg)

	// 11. Start server (non-blocking)
	serverErr := server.Start()

	// 12. Wait for shutdown signal
	return waitForShutdown(ctx, logger, server, serverErr, cfg.Server.ShutdownTimeout)
}

// openStorage connects the configured driver.
func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*storage, error) {
	if cfg.Database.Driver == config.DriverMemory {
		logger.Warn("using in-memory storage, data is lost on restart")

		s := memory.NewStore()

		return &storage{
			quotes: s.Quotes(),
			users:  s.Users(),
			tx:     s,
			health: s,
			close:  func() error { return nil },
		}, nil
	}

	s, err := postgres.Open(ctx, postgres.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		AutoMigrate:     cfg.Database.AutoMigrate,
		Retry: postgres.RetryPolicy{
			MaxAttempts:     cfg.Database.Retry.MaxAttempts,
			InitialInterval: cfg.Database.Retry.InitialInterval,
			MaxDelay:        cfg.Database.Retry.MaxDelay,
		},
		Debug:  cfg.Log.Level == "trace",
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}

	return &storage{
		quotes: s.Quotes(),
		users:  s.Users(),
		tx:     s,
		health: s,
		close:  s.Close,
	}, nil
}

// resolveSigningKey returns the configured key. Without one, and only while
// auth is disabled, an ephemeral key keeps login usable until restart.
func resolveSigningKey(cfg config.AuthConfig, logger *slog.Logger) (string, error) {
	if cfg.Key != "" {
		return cfg.Key, nil
	}

	if cfg.Enabled {
		return "", errors.New("auth.key is required when auth is enabled")
	}

	buf := make([]byte, auth.MinKeyLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating signing key: %w", err)
	}

	logger.Warn("no auth.key configured, issuing tokens with an ephemeral key")

	return hex.EncodeToString(buf), nil
}

// waitForShutdown blocks until a shutdown signal is received or server error occurs.
// It then performs graceful shutdown of the HTTP server.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	serverErr <-chan error,
	shutdownTimeout time.Duration,
) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)

	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	logger.Info("initiating graceful shutdown",
		slog.Duration("timeout", shutdownTimeout),
	)

	// Stop accepting new requests, drain in-flight
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}
