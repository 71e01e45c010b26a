package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/idusortus/quotes-service/internal/domain"
	"github.com/idusortus/quotes-service/internal/ports"
)

// ErrCircuitOpen is returned while the breaker keeps calls away from the cache.
var ErrCircuitOpen = errors.New("cache circuit open")

// circuitState is the position of a Breaker.
type circuitState int

const (
	circuitClosed circuitState = iota
	circuitOpen
	circuitProbing
)

func (s circuitState) String() string {
	switch s {
	case circuitClosed:
		return "closed"
	case circuitOpen:
		return "open"
	case circuitProbing:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig configures a Breaker.
type BreakerConfig struct {
	// MaxFailures consecutive failures open the circuit.
	MaxFailures int

	// Cooldown is how long the circuit stays open before one probe is let through.
	Cooldown time.Duration

	Logger *slog.Logger
}

// Breaker is a ports.Cache decorator that stops calling an unreachable cache.
// After MaxFailures consecutive failures every call fails fast with
// ErrCircuitOpen until Cooldown passes; then a single probe decides whether
// the circuit closes again or stays open for another cooldown.
//
// Cache misses are answers, not failures.
type Breaker struct {
	next ports.Cache
	cfg  BreakerConfig

	mu       sync.Mutex
	state    circuitState
	failures int
	openedAt time.Time
	probing  bool

	now func() time.Time
}

// NewBreaker wraps next.
func NewBreaker(next ports.Cache, cfg BreakerConfig) *Breaker {
	if cfg.MaxFailures < 1 {
		cfg.MaxFailures = 1
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Breaker{
		next: next,
		cfg:  cfg,
		now:  time.Now,
	}
}

// Get implements ports.Cache.
func (b *Breaker) Get(ctx context.Context, key string) ([]byte, error) {
	if !b.allow() {
		return nil, ErrCircuitOpen
	}

	v, err := b.next.Get(ctx, key)
	b.record(ctx, err)

	return v, err
}

// Set implements ports.Cache.
func (b *Breaker) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if !b.allow() {
		return ErrCircuitOpen
	}

	err := b.next.Set(ctx, key, value, ttl)
	b.record(ctx, err)

	return err
}

// Delete implements ports.Cache.
func (b *Breaker) Delete(ctx context.Context, key string) error {
	if !b.allow() {
		return ErrCircuitOpen
	}

	err := b.next.Delete(ctx, key)
	b.record(ctx, err)

	return err
}

// allow reports whether a call may reach the cache. Once the cooldown has
// passed exactly one caller gets through as the probe.
func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case circuitClosed:
		return true
	case circuitOpen:
		if b.now().Sub(b.openedAt) < b.cfg.Cooldown {
			return false
		}

		b.state = circuitProbing
		b.probing = true

		return true
	default:
		if b.probing {
			return false
		}

		b.probing = true

		return true
	}
}

// record updates the circuit with the outcome of a call that was let through.
func (b *Breaker) record(ctx context.Context, err error) {
	failed := err != nil && !domain.IsNotFound(err) && !errors.Is(err, context.Canceled)

	b.mu.Lock()
	defer b.mu.Unlock()

	from := b.state

	switch {
	case !failed:
		b.failures = 0
		b.probing = false
		b.state = circuitClosed
	case b.state == circuitProbing:
		b.probing = false
		b.trip()
	default:
		b.failures++
		if b.failures >= b.cfg.MaxFailures {
			b.trip()
		}
	}

	if from != b.state {
		b.cfg.Logger.WarnContext(ctx, "cache circuit changed state",
			slog.String("from", from.String()),
			slog.String("to", b.state.String()),
		)
	}
}

// trip opens the circuit. Callers hold mu.
func (b *Breaker) trip() {
	b.state = circuitOpen
	b.openedAt = b.now()
	b.failures = 0
}

// State returns the circuit position: closed, open or half-open.
func (b *Breaker) State() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.state.String()
}
