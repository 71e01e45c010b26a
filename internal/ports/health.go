package ports

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrDuplicateChecker is returned when attempting to register a health checker
// with a name that is already registered.
var ErrDuplicateChecker = errors.New("duplicate health checker")

// HealthChecker is implemented by components that can report their health.
// Adapters register themselves with the HealthRegistry at startup.
type HealthChecker interface {
	// Name returns a unique identifier for this health check.
	Name() string

	// Check returns an error if the component is unhealthy.
	// Implementations should respect context cancellation and deadlines.
	Check(ctx context.Context) error
}

// OptionalChecker is implemented by checkers whose failure degrades the
// service without making it unready, such as the quote cache.
type OptionalChecker interface {
	HealthChecker

	// Optional reports whether a failure should only degrade the service.
	Optional() bool
}

// HealthRegistry aggregates health checks from multiple components.
type HealthRegistry interface {
	// Register adds a health checker to the registry.
	// Returns an error if a checker with the same name is already registered.
	Register(checker HealthChecker) error

	// CheckAll runs all registered health checks concurrently.
	CheckAll(ctx context.Context) *HealthResult
}

// HealthStatus represents the overall health state.
type HealthStatus string

const (
	// HealthStatusHealthy indicates all checks passed.
	HealthStatusHealthy HealthStatus = "healthy"

	// HealthStatusDegraded indicates only optional checks failed.
	HealthStatusDegraded HealthStatus = "degraded"

	// HealthStatusUnhealthy indicates a required check failed.
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthResult contains the aggregated health check results.
type HealthResult struct {
	Status    HealthStatus            `json:"status"`
	Checks    map[string]*CheckResult `json:"checks"`
	Timestamp time.Time               `json:"timestamp"`
}

// Ready reports whether the service can take traffic.
func (r *HealthResult) Ready() bool {
	return r.Status != HealthStatusUnhealthy
}

// CheckResult contains the result of a single health check.
type CheckResult struct {
	Status   HealthStatus  `json:"status"`
	Message  string        `json:"message,omitempty"`
	Optional bool          `json:"optional,omitempty"`
	Duration time.Duration `json:"duration"`
}

// DefaultHealthRegistry is a thread-safe implementation of HealthRegistry.
type DefaultHealthRegistry struct {
	mu       sync.RWMutex
	checkers []HealthChecker
}

// NewHealthRegistry creates a new health registry.
func NewHealthRegistry() *DefaultHealthRegistry {
	return &DefaultHealthRegistry{
		checkers: make([]HealthChecker, 0),
	}
}

// Register adds a health checker to the registry.
func (r *DefaultHealthRegistry) Register(checker HealthChecker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := checker.Name()
	for _, c := range r.checkers {
		if c.Name() == name {
			return fmt.Errorf("%w: %s", ErrDuplicateChecker, name)
		}
	}

	r.checkers = append(r.checkers, checker)

	return nil
}

// CheckAll runs all registered health checks concurrently.
// A failed optional check degrades the result; a failed required check makes it unhealthy.
func (r *DefaultHealthRegistry) CheckAll(ctx context.Context) *HealthResult {
	r.mu.RLock()
	checkers := make([]HealthChecker, len(r.checkers))
	copy(checkers, r.checkers)
	r.mu.RUnlock()

	res := &HealthResult{
		Status:    HealthStatusHealthy,
		Checks:    make(map[string]*CheckResult, len(checkers)),
		Timestamp: time.Now(),
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for _, checker := range checkers {
		wg.Add(1)

		go func(c HealthChecker) {
			defer wg.Done()

			check := runCheck(ctx, c)

			mu.Lock()
			defer mu.Unlock()

			res.Checks[c.Name()] = check
			res.Status = worse(res.Status, check)
		}(checker)
	}

	wg.Wait()

	return res
}

func runCheck(ctx context.Context, c HealthChecker) *CheckResult {
	optional := false
	if oc, ok := c.(OptionalChecker); ok {
		optional = oc.Optional()
	}

	start := time.Now()
	err := c.Check(ctx)

	check := &CheckResult{
		Status:   HealthStatusHealthy,
		Optional: optional,
		Duration: time.Since(start),
	}

	if err != nil {
		check.Message = err.Error()
		check.Status = HealthStatusUnhealthy

		if optional {
			check.Status = HealthStatusDegraded
		}
	}

	return check
}

// worse folds a single check into the overall status.
func worse(current HealthStatus, check *CheckResult) HealthStatus {
	switch {
	case current == HealthStatusUnhealthy || check.Status == HealthStatusUnhealthy:
		return HealthStatusUnhealthy
	case current == HealthStatusDegraded || check.Status == HealthStatusDegraded:
		return HealthStatusDegraded
	default:
		return HealthStatusHealthy
	}
}
