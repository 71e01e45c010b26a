//go:build integration

package integration

import (
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/idusortus/quotes-service/internal/adapters/auth"
	httpadapter "github.com/idusortus/quotes-service/internal/adapters/http"
	"github.com/idusortus/quotes-service/internal/adapters/http/handlers"
	"github.com/idusortus/quotes-service/internal/adapters/http/pipeline"
	"github.com/idusortus/quotes-service/internal/adapters/storage/memory"
	"github.com/idusortus/quotes-service/internal/app"
	"github.com/idusortus/quotes-service/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// serviceOptions tunes the in-process service.
type serviceOptions struct {
	// requireAuth protects the quote write routes with bearer tokens.
	requireAuth bool
	timeout     time.Duration
	quotes      ports.QuoteRepository
	users       ports.UserRepository
	tx          ports.Transactor
	health      []ports.HealthChecker
}

// startService wires the full router the way main does and serves it from an
// httptest server. Repositories default to a fresh in-memory store.
func startService(opts serviceOptions) (*httptest.Server, error) {
	store := memory.NewStore()

	if opts.quotes == nil {
		opts.quotes = store.Quotes()
		opts.tx = store
	}

	if opts.users == nil {
		opts.users = store.Users()
	}

	if len(opts.health) == 0 {
		opts.health = []ports.HealthChecker{store}
	}

	if opts.timeout == 0 {
		opts.timeout = 5 * time.Second
	}

	registry := ports.NewHealthRegistry()
	for _, checker := range opts.health {
		if err := registry.Register(checker); err != nil {
			return nil, fmt.Errorf("registering %s: %w", checker.Name(), err)
		}
	}

	issuer, err := auth.NewJWTIssuer(auth.JWTConfig{
		Key:      strings.Repeat("i", auth.MinKeyLength),
		Issuer:   "quotes-service",
		Audience: "quotes-clients",
		Lifetime: time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("creating issuer: %w", err)
	}

	cfg := httpadapter.RouterConfig{
		Logger:         discard,
		ServiceName:    "quotes-service",
		RequestTimeout: opts.timeout,
		Boundary:       pipeline.NewBoundary(pipeline.BoundaryConfig{Logger: discard, Debug: true}),
		Health:         handlers.NewHealthHandler(registry, handlers.NewBuildInfo("integration", "local", "now")),
		Quotes: handlers.NewQuoteHandler(app.NewQuoteService(app.QuoteServiceConfig{
			Quotes: opts.quotes,
			Tx:     opts.tx,
			Logger: discard,
		})),
		Auth: handlers.NewAuthHandler(app.NewAuthService(app.AuthServiceConfig{
			Users:  opts.users,
			Hasher: auth.NewBcryptHasher(bcrypt.MinCost),
			Tokens: issuer,
			Logger: discard,
		})),
	}

	if opts.requireAuth {
		cfg.Verifier = issuer
	}

	engine := gin.New()
	httpadapter.SetupRouter(engine, cfg)

	return httptest.NewServer(engine), nil
}
