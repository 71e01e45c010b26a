package domain

import (
	"strings"
	"time"
)

// Quote represents a stored quotation.
type Quote struct {
	ID        int
	Author    string
	Content   string
	Category  string
	Likes     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SortField names a column quotes may be ordered by.
type SortField string

// Sortable fields.
const (
	SortByID       SortField = "id"
	SortByAuthor   SortField = "author"
	SortByLikes    SortField = "likes"
	SortByCategory SortField = "category"
)

// SortFields lists every accepted sort field.
var SortFields = []SortField{SortByID, SortByAuthor, SortByLikes, SortByCategory}

// QuoteFilter narrows a quote listing.
type QuoteFilter struct {
	// Category matches case-insensitively. Empty means all categories.
	Category string
}

// QuoteQuery selects one page of quotes.
type QuoteQuery struct {
	Filter     QuoteFilter
	SortBy     SortField
	Descending bool
	Offset     int
	Limit      int
}

// SameText reports whether two quotes carry the same author and content,
// ignoring case and surrounding whitespace. Storage treats such quotes as duplicates.
func (q *Quote) SameText(other *Quote) bool {
	return strings.EqualFold(strings.TrimSpace(q.Author), strings.TrimSpace(other.Author)) &&
		strings.EqualFold(strings.TrimSpace(q.Content), strings.TrimSpace(other.Content))
}
