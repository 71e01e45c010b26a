package app

import (
	"time"

	"github.com/idusortus/quotes-service/internal/domain"
)

// QuoteResponse is the public projection of a quote.
type QuoteResponse struct {
	QuoteID  int    `json:"quoteId"`
	Author   string `json:"author"`
	Content  string `json:"content"`
	Category string `json:"category"`
	Likes    int    `json:"likes"`
}

// toQuoteResponse maps a stored quote field by field.
func toQuoteResponse(q *domain.Quote) QuoteResponse {
	return QuoteResponse{
		QuoteID:  q.ID,
		Author:   q.Author,
		Content:  q.Content,
		Category: q.Category,
		Likes:    q.Likes,
	}
}

// QuotePage is one page of a quote listing.
type QuotePage struct {
	Items      []QuoteResponse `json:"items"`
	PageNumber int             `json:"pageNumber"`
	PageSize   int             `json:"pageSize"`
	TotalCount int64           `json:"totalCount"`
	TotalPages int             `json:"totalPages"`
}

// newQuotePage builds a page and derives the page count.
func newQuotePage(quotes []domain.Quote, total int64, pageNumber, pageSize int) QuotePage {
	items := make([]QuoteResponse, 0, len(quotes))
	for i := range quotes {
		items = append(items, toQuoteResponse(&quotes[i]))
	}

	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}

	return QuotePage{
		Items:      items,
		PageNumber: pageNumber,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: totalPages,
	}
}

// RegisteredUser is returned after a successful registration.
type RegisteredUser struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// AuthToken is returned after a successful login.
type AuthToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
