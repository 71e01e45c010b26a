package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/idusortus/quotes-service/internal/domain"
	"github.com/idusortus/quotes-service/internal/ports"
)

// ErrWeakKey is returned for signing keys shorter than MinKeyLength bytes.
var ErrWeakKey = errors.New("jwt signing key too short")

// MinKeyLength is the shortest accepted HMAC key.
const MinKeyLength = 32

// JWTConfig configures token signing.
type JWTConfig struct {
	Key      string
	Issuer   string
	Audience string
	Lifetime time.Duration
}

// JWTIssuer implements ports.TokenIssuer with HS256 tokens.
type JWTIssuer struct {
	key      []byte
	issuer   string
	audience string
	lifetime time.Duration
	now      func() time.Time
}

type tokenClaims struct {
	Email string   `json:"email"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// NewJWTIssuer validates cfg and returns an issuer.
func NewJWTIssuer(cfg JWTConfig) (*JWTIssuer, error) {
	if len(cfg.Key) < MinKeyLength {
		return nil, fmt.Errorf("%w: need %d bytes, got %d", ErrWeakKey, MinKeyLength, len(cfg.Key))
	}

	if cfg.Lifetime <= 0 {
		return nil, errors.New("jwt lifetime must be positive")
	}

	return &JWTIssuer{
		key:      []byte(cfg.Key),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		lifetime: cfg.Lifetime,
		now:      time.Now,
	}, nil
}

// Issue signs a token for user.
func (j *JWTIssuer) Issue(_ context.Context, user *domain.User) (ports.Token, error) {
	now := j.now().UTC()
	expires := now.Add(j.lifetime)

	claims := tokenClaims{
		Email: user.Email,
		Roles: user.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			Issuer:    j.issuer,
			Audience:  jwt.ClaimStrings{j.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.key)
	if err != nil {
		return ports.Token{}, fmt.Errorf("signing token: %w", err)
	}

	return ports.Token{Value: signed, ExpiresAt: expires}, nil
}

// Verify checks signature, expiry, issuer and audience.
// The parser rejects expired and not-yet-valid tokens.
func (j *JWTIssuer) Verify(_ context.Context, token string) (*ports.Claims, error) {
	var claims tokenClaims

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	parsed, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return j.key, nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("invalid token: %w", errors.Join(domain.ErrUnauthorized, err))
	}

	switch {
	case !claims.VerifyIssuer(j.issuer, true):
		return nil, fmt.Errorf("unexpected issuer %q: %w", claims.Issuer, domain.ErrUnauthorized)
	case !claims.VerifyAudience(j.audience, true):
		return nil, fmt.Errorf("unexpected audience: %w", domain.ErrUnauthorized)
	case claims.Subject == "":
		return nil, fmt.Errorf("token has no subject: %w", domain.ErrUnauthorized)
	}

	return &ports.Claims{
		Subject: claims.Subject,
		Email:   claims.Email,
		Roles:   claims.Roles,
		TokenID: claims.ID,
	}, nil
}
