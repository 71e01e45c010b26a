// Package app contains application services that orchestrate use cases.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/idusortus/quotes-service/internal/app/result"
	"github.com/idusortus/quotes-service/internal/domain"
	"github.com/idusortus/quotes-service/internal/ports"
)

const (
	invalidIDMessage       = "ID must be greater than 0."
	duplicateQuoteMessage  = "A quote with the same author and content already exists."
	quoteDependencyMessage = "Quote with ID '%d' cannot be deleted because other records depend on it."
	quoteNotFoundMessage   = "Quote with ID '%d' does not exist."
)

// QuoteService orchestrates quote use cases on top of the storage collaborator.
// Business failures come back as Result values; storage faults come back as errors.
type QuoteService struct {
	quotes ports.QuoteRepository
	tx     ports.Transactor
	exec   *Executor
	logger *slog.Logger
}

// QuoteServiceConfig contains the dependencies of the quote service.
type QuoteServiceConfig struct {
	Quotes ports.QuoteRepository
	// Tx makes Update and Delete atomic. Without it each repository call stands alone.
	Tx     ports.Transactor
	Logger *slog.Logger
}

// NewQuoteService creates a quote service. It panics if no repository is given.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	if cfg.Quotes == nil {
		panic("app: quote repository is required")
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	if cfg.Tx == nil {
		cfg.Tx = inlineTx{}
	}

	return &QuoteService{
		quotes: cfg.Quotes,
		tx:     cfg.Tx,
		exec:   NewExecutor(cfg.Logger),
		logger: cfg.Logger,
	}
}

// GetByID returns one quote.
func (s *QuoteService) GetByID(ctx context.Context, id int) (result.Result[QuoteResponse], error) {
	return Execute(ctx, s.exec, Operation[int, *domain.Quote, QuoteResponse]{
		Name:     "GetQuoteByID",
		Validate: validateID,
		Delegate: s.quotes.GetByID,
		Reject:   rejectQuoteID,
		Map:      toQuoteResponse,
	}, id)
}

type quoteListing struct {
	query ListQuotesQuery
	items []domain.Quote
	total int64
}

// GetAll returns one page of quotes. Empty sort parameters fall back to ascending ID.
func (s *QuoteService) GetAll(ctx context.Context, query ListQuotesQuery) (result.Result[QuotePage], error) {
	return Execute(ctx, s.exec, Operation[ListQuotesQuery, quoteListing, QuotePage]{
		Name:     "GetAllQuotes",
		Validate: listQuotesRules.Validate,
		Delegate: func(ctx context.Context, q ListQuotesQuery) (quoteListing, error) {
			dq := q.toDomain()

			total, items, err := Parallel2(ctx,
				func(ctx context.Context) (int64, error) { return s.quotes.Count(ctx, dq.Filter) },
				func(ctx context.Context) ([]domain.Quote, error) { return s.quotes.List(ctx, dq) },
			)
			if err != nil {
				return quoteListing{}, err
			}

			return quoteListing{query: q, items: items, total: total}, nil
		},
		Map: func(l quoteListing) QuotePage {
			return newQuotePage(l.items, l.total, l.query.PageNumber, l.query.PageSize)
		},
	}, query.withDefaults())
}

// Create stores a new quote with zero likes.
func (s *QuoteService) Create(ctx context.Context, req QuoteCreateRequest) (result.Result[QuoteResponse], error) {
	return Execute(ctx, s.exec, Operation[QuoteCreateRequest, *domain.Quote, QuoteResponse]{
		Name:     "CreateQuote",
		Validate: QuoteCreateRules.Validate,
		Delegate: func(ctx context.Context, req QuoteCreateRequest) (*domain.Quote, error) {
			quote := &domain.Quote{
				Author:   strings.TrimSpace(req.Author),
				Content:  strings.TrimSpace(req.Content),
				Category: strings.TrimSpace(req.Category),
			}

			if _, err := s.quotes.Add(ctx, quote); err != nil {
				return nil, err
			}

			s.logger.InfoContext(ctx, "quote created", slog.Int("quote_id", quote.ID))

			return quote, nil
		},
		Reject: func(_ QuoteCreateRequest, err error) (result.APIError, bool) {
			return rejectQuoteID(0, err)
		},
		Map: toQuoteResponse,
	}, req)
}

type quoteUpdate struct {
	id  int
	req QuoteUpdateRequest
}

// Update replaces the editable fields of an existing quote.
func (s *QuoteService) Update(ctx context.Context, id int, req QuoteUpdateRequest) (result.Result[QuoteResponse], error) {
	return Execute(ctx, s.exec, Operation[quoteUpdate, *domain.Quote, QuoteResponse]{
		Name: "UpdateQuote",
		Validate: func(in quoteUpdate) []result.APIError {
			if errs := validateID(in.id); errs != nil {
				return errs
			}

			return QuoteUpdateRules.Validate(in.req)
		},
		Delegate: func(ctx context.Context, in quoteUpdate) (*domain.Quote, error) {
			var updated *domain.Quote

			err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
				quote, err := s.quotes.GetByID(ctx, in.id)
				if err != nil {
					return err
				}

				quote.Author = strings.TrimSpace(in.req.Author)
				quote.Content = strings.TrimSpace(in.req.Content)
				quote.Category = strings.TrimSpace(in.req.Category)
				quote.Likes = in.req.Likes

				rows, err := s.quotes.Update(ctx, quote)
				if err != nil {
					return err
				}

				if rows == 0 {
					return domain.NewNotFoundError("quote", fmt.Sprint(in.id))
				}

				updated = quote

				return nil
			})
			if err != nil {
				return nil, err
			}

			return updated, nil
		},
		Reject: func(in quoteUpdate, err error) (result.APIError, bool) {
			return rejectQuoteID(in.id, err)
		},
		Map: toQuoteResponse,
	}, quoteUpdate{id: id, req: req})
}

// Delete removes a quote.
func (s *QuoteService) Delete(ctx context.Context, id int) (result.Result[result.Unit], error) {
	return Execute(ctx, s.exec, Operation[int, int64, result.Unit]{
		Name:     "DeleteQuote",
		Validate: validateID,
		Delegate: func(ctx context.Context, id int) (int64, error) {
			var rows int64

			err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
				quote, err := s.quotes.GetByID(ctx, id)
				if err != nil {
					return err
				}

				rows, err = s.quotes.Delete(ctx, quote)
				if err != nil {
					return err
				}

				if rows == 0 {
					return domain.NewNotFoundError("quote", fmt.Sprint(id))
				}

				return nil
			})

			return rows, err
		},
		Reject: rejectQuoteID,
		Map:    func(int64) result.Unit { return result.Unit{} },
	}, id)
}

func validateID(id int) []result.APIError {
	if id <= 0 {
		return []result.APIError{result.NewFieldError("id", result.CodeInvalidID, invalidIDMessage)}
	}

	return nil
}

// rejectQuoteID maps the expected storage outcomes for the quote with id.
func rejectQuoteID(id int, err error) (result.APIError, bool) {
	switch {
	case domain.IsNotFound(err):
		return result.NewError(result.CodeQuoteNotFound, fmt.Sprintf(quoteNotFoundMessage, id)), true
	case domain.IsReferenceConflict(err):
		return result.NewError(result.CodeDependencyExists, fmt.Sprintf(quoteDependencyMessage, id)), true
	case domain.IsConflict(err):
		return result.NewError(result.CodeConflict, duplicateQuoteMessage), true
	default:
		return result.APIError{}, false
	}
}

// inlineTx runs the function directly when no transactional store is wired.
type inlineTx struct{}

func (inlineTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
