package app

import (
	"fmt"
	"strings"

	"github.com/idusortus/quotes-service/internal/app/validation"
	"github.com/idusortus/quotes-service/internal/domain"
)

// Field limits shared by the quote tables.
const (
	maxAuthorLength   = 100
	maxContentLength  = 500
	maxCategoryLength = 50
	minPasswordLength = 6
	maxPasswordLength = 100
)

// QuoteCreateRules validates QuoteCreateRequest.
var QuoteCreateRules = validation.Rules[QuoteCreateRequest]{
	{
		Name:  "author",
		Value: func(r QuoteCreateRequest) any { return r.Author },
		Checks: []validation.Check{
			validation.NotBlank("Author is required."),
			validation.MaxLength(maxAuthorLength, "Author cannot exceed 100 characters."),
		},
	},
	{
		Name:  "content",
		Value: func(r QuoteCreateRequest) any { return r.Content },
		Checks: []validation.Check{
			validation.NotBlank("Content is required."),
			validation.MaxLength(maxContentLength, "Content cannot exceed 500 characters."),
		},
	},
	{
		Name:  "category",
		Value: func(r QuoteCreateRequest) any { return r.Category },
		Checks: []validation.Check{
			validation.MaxLength(maxCategoryLength, "Category cannot exceed 50 characters."),
		},
	},
}

// QuoteUpdateRules validates QuoteUpdateRequest.
var QuoteUpdateRules = validation.Rules[QuoteUpdateRequest]{
	{
		Name:  "author",
		Value: func(r QuoteUpdateRequest) any { return r.Author },
		Checks: []validation.Check{
			validation.NotBlank("Author is required."),
			validation.MaxLength(maxAuthorLength, "Author cannot exceed 100 characters."),
		},
	},
	{
		Name:  "content",
		Value: func(r QuoteUpdateRequest) any { return r.Content },
		Checks: []validation.Check{
			validation.NotBlank("Content is required."),
			validation.MaxLength(maxContentLength, "Content cannot exceed 500 characters."),
		},
	},
	{
		Name:  "category",
		Value: func(r QuoteUpdateRequest) any { return r.Category },
		Checks: []validation.Check{
			validation.MaxLength(maxCategoryLength, "Category cannot exceed 50 characters."),
		},
	},
	{
		Name:  "likes",
		Value: func(r QuoteUpdateRequest) any { return r.Likes },
		Checks: []validation.Check{
			validation.Min(0, "Likes cannot be negative."),
		},
	},
}

// LoginRules validates LoginRequest.
var LoginRules = validation.Rules[LoginRequest]{
	{
		Name:  "email",
		Value: func(r LoginRequest) any { return r.Email },
		Checks: []validation.Check{
			validation.NotBlank("Email is required."),
			validation.Email("A valid email address is required."),
		},
	},
	{
		Name:  "password",
		Value: func(r LoginRequest) any { return r.Password },
		Checks: []validation.Check{
			validation.NotBlank("Password is required"),
			validation.MinLength(minPasswordLength, "Password must contain at least six characters."),
		},
	},
}

// RegisterRules validates RegisterRequest.
var RegisterRules = validation.Rules[RegisterRequest]{
	{
		Name:  "email",
		Value: func(r RegisterRequest) any { return r.Email },
		Checks: []validation.Check{
			validation.NotBlank("Email address is required"),
			validation.Email("A valid email address is required."),
		},
	},
	{
		Name:  "password",
		Value: func(r RegisterRequest) any { return r.Password },
		Checks: []validation.Check{
			validation.NotBlank("Password is required."),
			validation.MinLength(minPasswordLength, "Password must contain at least six characters"),
			validation.MaxLength(maxPasswordLength, "Password cannot exceed 100 characters."),
		},
	},
	{
		Name:  "confirmPassword",
		Value: func(r RegisterRequest) any { return r.ConfirmPassword },
		Checks: []validation.Check{
			validation.NotBlank("Confirm password is required."),
			validation.EqualsField("password", "Passwords do not match."),
		},
	},
}

// listQuotesRules validates a ListQuotesQuery after defaults are applied.
var listQuotesRules = validation.Rules[ListQuotesQuery]{
	{
		Name:  "pageNumber",
		Value: func(q ListQuotesQuery) any { return q.PageNumber },
		Checks: []validation.Check{
			validation.Range(1, MaxPageNumber, fmt.Sprintf("Page number must be between 1 and %d.", MaxPageNumber)),
		},
	},
	{
		Name:  "pageSize",
		Value: func(q ListQuotesQuery) any { return q.PageSize },
		Checks: []validation.Check{
			validation.Range(1, MaxPageSize, "Page size must be between 1 and 100."),
		},
	},
	{
		Name:  "category",
		Value: func(q ListQuotesQuery) any { return q.Category },
		Checks: []validation.Check{
			validation.MaxLength(maxCategoryLength, "Category cannot exceed 50 characters."),
		},
	},
	{
		Name:  "sortBy",
		Value: func(q ListQuotesQuery) any { return q.SortBy },
		Checks: []validation.Check{
			validation.OneOf(sortFieldNames(), "Sort field must be one of: "+strings.Join(sortFieldNames(), ", ")+"."),
		},
	},
	{
		Name:  "sortOrder",
		Value: func(q ListQuotesQuery) any { return q.SortOrder },
		Checks: []validation.Check{
			validation.OneOf([]string{SortAscending, SortDescending}, "Sort order must be 'asc' or 'desc'."),
		},
	},
}

func sortFieldNames() []string {
	names := make([]string, 0, len(domain.SortFields))
	for _, f := range domain.SortFields {
		names = append(names, string(f))
	}

	return names
}
