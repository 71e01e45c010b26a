package app

import (
	"math"

	"github.com/idusortus/quotes-service/internal/domain"
)

// Pagination bounds and defaults for quote listings.
const (
	DefaultPageNumber = 1
	DefaultPageSize   = 10
	MaxPageSize       = 100

	// MaxPageNumber keeps the row offset of the last page within int32.
	MaxPageNumber = math.MaxInt32 / MaxPageSize
)

// Sort directions.
const (
	SortAscending  = "asc"
	SortDescending = "desc"
)

// QuoteCreateRequest is the payload for creating a quote.
type QuoteCreateRequest struct {
	Author   string `json:"author"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

// QuoteUpdateRequest is the payload for replacing a quote's fields.
type QuoteUpdateRequest struct {
	Author   string `json:"author"`
	Content  string `json:"content"`
	Category string `json:"category"`
	Likes    int    `json:"likes"`
}

// ListQuotesQuery selects a page of quotes.
// Start from DefaultListQuotesQuery; an explicit zero page or size is rejected.
type ListQuotesQuery struct {
	PageNumber int
	PageSize   int
	Category   string
	SortBy     string
	SortOrder  string
}

// DefaultListQuotesQuery returns the first page sorted by ascending ID.
func DefaultListQuotesQuery() ListQuotesQuery {
	return ListQuotesQuery{
		PageNumber: DefaultPageNumber,
		PageSize:   DefaultPageSize,
		SortBy:     string(domain.SortByID),
		SortOrder:  SortAscending,
	}
}

// withDefaults fills unset sort parameters.
func (q ListQuotesQuery) withDefaults() ListQuotesQuery {
	if q.SortBy == "" {
		q.SortBy = string(domain.SortByID)
	}

	if q.SortOrder == "" {
		q.SortOrder = SortAscending
	}

	return q
}

// toDomain converts a validated query into a storage query.
func (q ListQuotesQuery) toDomain() domain.QuoteQuery {
	return domain.QuoteQuery{
		Filter:     domain.QuoteFilter{Category: q.Category},
		SortBy:     domain.SortField(q.SortBy),
		Descending: q.SortOrder == SortDescending,
		Offset:     (q.PageNumber - 1) * q.PageSize,
		Limit:      q.PageSize,
	}
}

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// LoginRequest is the payload for exchanging credentials for a token.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
