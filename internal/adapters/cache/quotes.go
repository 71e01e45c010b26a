package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/idusortus/quotes-service/internal/domain"
	"github.com/idusortus/quotes-service/internal/platform/logging"
	"github.com/idusortus/quotes-service/internal/ports"
)

const quoteKeyPrefix = "quote:"

// QuoteRepository caches GetByID results in front of another repository.
// Writes go straight through; Update and Delete evict the cached entry.
// Cache failures are logged and never fail the call.
type QuoteRepository struct {
	ports.QuoteRepository

	cache  ports.Cache
	ttl    time.Duration
	logger *slog.Logger
}

// NewQuoteRepository wraps next with a read-through cache.
func NewQuoteRepository(next ports.QuoteRepository, c ports.Cache, ttl time.Duration, logger *slog.Logger) *QuoteRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &QuoteRepository{
		QuoteRepository: next,
		cache:           c,
		ttl:             ttl,
		logger:          logger,
	}
}

type cachedQuote struct {
	ID        int       `json:"id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	Likes     int       `json:"likes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func quoteKey(id int) string {
	return quoteKeyPrefix + strconv.Itoa(id)
}

// GetByID serves from the cache when possible.
func (r *QuoteRepository) GetByID(ctx context.Context, id int) (*domain.Quote, error) {
	key := quoteKey(id)
	log := logging.FromContextOr(ctx, r.logger)

	if q, ok := r.lookup(ctx, log, key); ok {
		return q, nil
	}

	q, err := r.QuoteRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	b, err := json.Marshal(cachedQuote(*q))
	if err == nil {
		err = r.cache.Set(ctx, key, b, r.ttl)
	}

	if err != nil && !errors.Is(err, ErrCircuitOpen) {
		log.WarnContext(ctx, "caching quote failed", slog.String("key", key), slog.Any("error", err))
	}

	return q, nil
}

func (r *QuoteRepository) lookup(ctx context.Context, log *slog.Logger, key string) (*domain.Quote, bool) {
	b, err := r.cache.Get(ctx, key)
	if err != nil {
		if !domain.IsNotFound(err) && !errors.Is(err, ErrCircuitOpen) {
			log.WarnContext(ctx, "quote cache read failed", slog.String("key", key), slog.Any("error", err))
		}

		return nil, false
	}

	var entry cachedQuote
	if err := json.Unmarshal(b, &entry); err != nil {
		log.WarnContext(ctx, "discarding corrupt quote cache entry", slog.String("key", key), slog.Any("error", err))
		r.evict(ctx, log, key)

		return nil, false
	}

	log.Log(ctx, logging.LevelTrace, "quote cache hit", slog.String("key", key))

	q := domain.Quote(entry)

	return &q, true
}

// Update writes through and evicts the cached quote.
func (r *QuoteRepository) Update(ctx context.Context, quote *domain.Quote) (int64, error) {
	n, err := r.QuoteRepository.Update(ctx, quote)
	if err == nil {
		r.evict(ctx, logging.FromContextOr(ctx, r.logger), quoteKey(quote.ID))
	}

	return n, err
}

// Delete writes through and evicts the cached quote.
func (r *QuoteRepository) Delete(ctx context.Context, quote *domain.Quote) (int64, error) {
	n, err := r.QuoteRepository.Delete(ctx, quote)
	if err == nil {
		r.evict(ctx, logging.FromContextOr(ctx, r.logger), quoteKey(quote.ID))
	}

	return n, err
}

func (r *QuoteRepository) evict(ctx context.Context, log *slog.Logger, key string) {
	if err := r.cache.Delete(ctx, key); err != nil && !errors.Is(err, ErrCircuitOpen) {
		log.WarnContext(ctx, "evicting quote from cache failed", slog.String("key", key), slog.Any("error", err))
	}
}
