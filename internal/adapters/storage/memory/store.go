// Package memory provides in-process quote and user repositories for local runs and tests.
package memory

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/idusortus/quotes-service/internal/domain"
)

const (
	quoteEntity = "quote"
	userEntity  = "user"
)

// Store keeps quotes and users in maps guarded by a mutex.
type Store struct {
	mu     sync.RWMutex
	quotes map[int]domain.Quote
	nextID int
	users  map[string]domain.User

	// txMu serializes transactions.
	txMu sync.Mutex
	now  func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		quotes: make(map[int]domain.Quote),
		nextID: 1,
		users:  make(map[string]domain.User),
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string {
	return "memory"
}

// Check implements ports.HealthChecker. The store is always reachable.
func (s *Store) Check(context.Context) error {
	return nil
}

type txKey struct{}

// WithinTx implements ports.Transactor. Transactions run one at a time and
// nested calls join the outer one. Writes are not rolled back on error.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	return fn(context.WithValue(ctx, txKey{}, struct{}{}))
}

// Quotes returns the quote repository.
func (s *Store) Quotes() *QuoteRepository {
	return &QuoteRepository{store: s}
}

// Users returns the user repository.
func (s *Store) Users() *UserRepository {
	return &UserRepository{store: s}
}

// QuoteRepository implements ports.QuoteRepository.
type QuoteRepository struct {
	store *Store
}

// GetByID returns a copy of the quote with id.
func (r *QuoteRepository) GetByID(ctx context.Context, id int) (*domain.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	q, ok := r.store.quotes[id]
	if !ok {
		return nil, domain.NewNotFoundError(quoteEntity, strconv.Itoa(id))
	}

	return &q, nil
}

// List returns one page of quotes.
func (r *QuoteRepository) List(ctx context.Context, query domain.QuoteQuery) ([]domain.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	matched := r.store.filter(query.Filter)
	r.store.mu.RUnlock()

	slices.SortFunc(matched, compareQuotes(query.SortBy, query.Descending))

	start := min(max(query.Offset, 0), len(matched))
	end := len(matched)

	if query.Limit > 0 {
		end = min(start+query.Limit, len(matched))
	}

	return matched[start:end], nil
}

// Count returns how many quotes match filter.
func (r *QuoteRepository) Count(ctx context.Context, filter domain.QuoteFilter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return int64(len(r.store.filter(filter))), nil
}

// Add stores quote, assigning the next ID.
func (r *QuoteRepository) Add(ctx context.Context, quote *domain.Quote) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.duplicate(quote) {
		return 0, domain.NewDuplicateError(quoteEntity, "author and content already exist")
	}

	now := r.store.now()
	quote.ID = r.store.nextID
	quote.CreatedAt = now
	quote.UpdatedAt = now

	r.store.quotes[quote.ID] = *quote
	r.store.nextID++

	return 1, nil
}

// Update replaces the stored quote with the same ID.
func (r *QuoteRepository) Update(ctx context.Context, quote *domain.Quote) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.quotes[quote.ID]
	if !ok {
		return 0, nil
	}

	if r.store.duplicate(quote) {
		return 0, domain.NewDuplicateError(quoteEntity, "author and content already exist")
	}

	quote.CreatedAt = current.CreatedAt
	quote.UpdatedAt = r.store.now()
	r.store.quotes[quote.ID] = *quote

	return 1, nil
}

// Delete removes the quote with the same ID.
func (r *QuoteRepository) Delete(ctx context.Context, quote *domain.Quote) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.quotes[quote.ID]; !ok {
		return 0, nil
	}

	delete(r.store.quotes, quote.ID)

	return 1, nil
}

// filter copies the quotes matching f. Callers hold mu.
func (s *Store) filter(f domain.QuoteFilter) []domain.Quote {
	out := make([]domain.Quote, 0, len(s.quotes))

	for _, q := range s.quotes {
		if f.Category != "" && !strings.EqualFold(q.Category, f.Category) {
			continue
		}

		out = append(out, q)
	}

	return out
}

// duplicate reports whether another quote has the same text. Callers hold mu.
func (s *Store) duplicate(quote *domain.Quote) bool {
	for id, q := range s.quotes {
		if id != quote.ID && q.SameText(quote) {
			return true
		}
	}

	return false
}

// compareQuotes orders by field, breaking ties by ascending ID.
func compareQuotes(field domain.SortField, desc bool) func(a, b domain.Quote) int {
	return func(a, b domain.Quote) int {
		var c int

		switch field {
		case domain.SortByAuthor:
			c = cmp.Compare(strings.ToLower(a.Author), strings.ToLower(b.Author))
		case domain.SortByCategory:
			c = cmp.Compare(strings.ToLower(a.Category), strings.ToLower(b.Category))
		case domain.SortByLikes:
			c = cmp.Compare(a.Likes, b.Likes)
		default:
			c = cmp.Compare(a.ID, b.ID)
		}

		if desc {
			c = -c
		}

		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}

		return c
	}
}

// UserRepository implements ports.UserRepository.
type UserRepository struct {
	store *Store
}

// GetByEmail returns the user registered under email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	u, ok := r.store.users[email]
	if !ok {
		return nil, domain.NewNotFoundError(userEntity, "")
	}

	u.Roles = slices.Clone(u.Roles)

	return &u, nil
}

// Add stores user keyed by email.
func (r *UserRepository) Add(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, taken := r.store.users[user.Email]; taken {
		return domain.NewDuplicateError(userEntity, "email already registered")
	}

	stored := *user
	stored.Roles = slices.Clone(user.Roles)
	r.store.users[user.Email] = stored

	return nil
}
