package ports

import (
	"context"
	"slices"
	"time"

	"github.com/idusortus/quotes-service/internal/domain"
)

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	// Hash returns an encoded hash of password.
	Hash(password string) (string, error)

	// Compare returns nil when password matches hash.
	// Returns domain.ErrUnauthorized on a mismatch.
	Compare(hash, password string) error
}

// Token is a signed bearer token.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Claims are the verified contents of a bearer token.
type Claims struct {
	Subject string
	Email   string
	Roles   []string
	TokenID string
}

// HasRole reports whether the claims grant role.
func (c *Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// TokenIssuer signs and verifies bearer tokens for authenticated users.
type TokenIssuer interface {
	// Issue signs a token for user.
	Issue(ctx context.Context, user *domain.User) (Token, error)

	// Verify parses and validates a token.
	// Returns domain.ErrUnauthorized for malformed, expired, or foreign tokens.
	Verify(ctx context.Context, token string) (*Claims, error)
}
