// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never driver or ORM types
//   - Expected outcomes use domain errors (ErrNotFound, ErrConflict)
//   - Anything else is a fault and is returned wrapped, untranslated
package ports

import (
	"context"

	"github.com/idusortus/quotes-service/internal/domain"
)

// QuoteRepository is the storage collaborator for quotes.
//
// Writes take effect when they return; the returned count is the number of
// rows the write changed. Run several calls inside Transactor.WithinTx to make
// them atomic.
type QuoteRepository interface {
	// GetByID returns the quote with id.
	// Returns domain.ErrNotFound if it does not exist.
	GetByID(ctx context.Context, id int) (*domain.Quote, error)

	// List returns one page of quotes.
	List(ctx context.Context, query domain.QuoteQuery) ([]domain.Quote, error)

	// Count returns how many quotes match filter.
	Count(ctx context.Context, filter domain.QuoteFilter) (int64, error)

	// Add stores a new quote and assigns its ID and timestamps.
	// Returns a duplicate domain.ConflictError if the same author and content exist.
	Add(ctx context.Context, quote *domain.Quote) (int64, error)

	// Update persists changes to an existing quote.
	// Returns domain.ErrNotFound or a duplicate domain.ConflictError.
	Update(ctx context.Context, quote *domain.Quote) (int64, error)

	// Delete removes a quote.
	// Returns domain.ErrNotFound, or a reference domain.ConflictError when
	// another record still depends on the quote.
	Delete(ctx context.Context, quote *domain.Quote) (int64, error)
}

// Transactor runs a function inside a storage transaction.
// Repositories called with the context passed to fn take part in the transaction.
type Transactor interface {
	// WithinTx commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository stores registered accounts.
type UserRepository interface {
	// GetByEmail returns the user with the given lowercased email.
	// Returns domain.ErrNotFound if no such user exists.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Add stores a new user.
	// Returns a duplicate domain.ConflictError if the email is taken.
	Add(ctx context.Context, user *domain.User) error
}
