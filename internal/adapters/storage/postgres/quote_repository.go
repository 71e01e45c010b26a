package postgres

import (
	"context"
	"errors"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/idusortus/quotes-service/internal/domain"
)

const quoteEntity = "quote"

// quoteColumns maps sort fields onto columns. Unknown fields sort by id.
var quoteColumns = map[domain.SortField]string{
	domain.SortByID:       "id",
	domain.SortByAuthor:   "author",
	domain.SortByLikes:    "likes",
	domain.SortByCategory: "category",
}

// QuoteRepository implements ports.QuoteRepository.
type QuoteRepository struct {
	store *Store
}

// GetByID returns the quote with id.
func (r *QuoteRepository) GetByID(ctx context.Context, id int) (*domain.Quote, error) {
	var rec quoteRecord

	err := r.store.exec(ctx, quoteEntity, "get", func(db *gorm.DB) error {
		return db.First(&rec, id).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NewNotFoundError(quoteEntity, strconv.Itoa(id))
	}

	if err != nil {
		return nil, err
	}

	q := rec.toDomain()

	return &q, nil
}

// List returns one page of quotes ordered by the requested column, then id.
func (r *QuoteRepository) List(ctx context.Context, query domain.QuoteQuery) ([]domain.Quote, error) {
	var recs []quoteRecord

	err := r.store.exec(ctx, quoteEntity, "list", func(db *gorm.DB) error {
		return filterQuotes(db.Model(&quoteRecord{}), query.Filter).
			Order(orderBy(query)).
			Offset(query.Offset).
			Limit(query.Limit).
			Find(&recs).Error
	})
	if err != nil {
		return nil, err
	}

	quotes := make([]domain.Quote, len(recs))
	for i := range recs {
		quotes[i] = recs[i].toDomain()
	}

	return quotes, nil
}

// Count returns how many quotes match filter.
func (r *QuoteRepository) Count(ctx context.Context, filter domain.QuoteFilter) (int64, error) {
	var total int64

	err := r.store.exec(ctx, quoteEntity, "count", func(db *gorm.DB) error {
		return filterQuotes(db.Model(&quoteRecord{}), filter).Count(&total).Error
	})

	return total, err
}

// Add inserts quote and copies the generated ID and timestamps back.
func (r *QuoteRepository) Add(ctx context.Context, quote *domain.Quote) (int64, error) {
	rec := newQuoteRecord(quote)

	var affected int64

	err := r.store.exec(ctx, quoteEntity, "add", func(db *gorm.DB) error {
		res := db.Create(rec)
		affected = res.RowsAffected

		return res.Error
	})
	if err != nil {
		return 0, err
	}

	quote.ID = rec.ID
	quote.CreatedAt = rec.CreatedAt
	quote.UpdatedAt = rec.UpdatedAt

	return affected, nil
}

// Update writes every mutable column of quote.
func (r *QuoteRepository) Update(ctx context.Context, quote *domain.Quote) (int64, error) {
	rec := newQuoteRecord(quote)
	rec.UpdatedAt = time.Now().UTC()

	var affected int64

	err := r.store.exec(ctx, quoteEntity, "update", func(db *gorm.DB) error {
		res := db.Model(&quoteRecord{ID: quote.ID}).
			Select("author", "content", "category", "likes", "updated_at").
			Updates(rec)
		affected = res.RowsAffected

		return res.Error
	})
	if err != nil {
		return 0, err
	}

	quote.UpdatedAt = rec.UpdatedAt

	return affected, nil
}

// Delete removes quote by ID.
func (r *QuoteRepository) Delete(ctx context.Context, quote *domain.Quote) (int64, error) {
	var affected int64

	err := r.store.exec(ctx, quoteEntity, "delete", func(db *gorm.DB) error {
		res := db.Delete(&quoteRecord{}, quote.ID)
		affected = res.RowsAffected

		return res.Error
	})

	return affected, err
}

func filterQuotes(db *gorm.DB, filter domain.QuoteFilter) *gorm.DB {
	if filter.Category != "" {
		db = db.Where("LOWER(category) = LOWER(?)", filter.Category)
	}

	return db
}

func orderBy(query domain.QuoteQuery) clause.OrderBy {
	column, ok := quoteColumns[query.SortBy]
	if !ok {
		column = "id"
	}

	columns := []clause.OrderByColumn{
		{Column: clause.Column{Name: column}, Desc: query.Descending},
	}

	if column != "id" {
		columns = append(columns, clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	}

	return clause.OrderBy{Columns: columns}
}
