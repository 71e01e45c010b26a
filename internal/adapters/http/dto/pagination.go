package dto

import (
	"github.com/idusortus/quotes-service/internal/app"
)

// ListQuotesParams binds the query string of GET /quotes.
// Absent parameters keep their defaults; present ones are validated by the service.
type ListQuotesParams struct {
	PageNumber *int    `form:"pageNumber"`
	PageSize   *int    `form:"pageSize"`
	Category   string  `form:"category"`
	SortBy     *string `form:"sortBy"`
	SortOrder  *string `form:"sortOrder"`
}

// ToQuery overlays the supplied parameters on app.DefaultListQuotesQuery.
func (p *ListQuotesParams) ToQuery() app.ListQuotesQuery {
	q := app.DefaultListQuotesQuery()
	q.Category = p.Category

	if p.PageNumber != nil {
		q.PageNumber = *p.PageNumber
	}

	if p.PageSize != nil {
		q.PageSize = *p.PageSize
	}

	if p.SortBy != nil {
		q.SortBy = *p.SortBy
	}

	if p.SortOrder != nil {
		q.SortOrder = *p.SortOrder
	}

	return q
}
