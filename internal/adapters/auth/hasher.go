// Package auth implements password hashing and bearer token issuance.
package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/idusortus/quotes-service/internal/domain"
)

// BcryptHasher implements ports.PasswordHasher.
//
// Passwords are digested with SHA-256 before bcrypt so that input longer than
// bcrypt's 72-byte limit still counts in full.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher using cost, or bcrypt.DefaultCost when cost is out of range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return &BcryptHasher{cost: cost}
}

// Hash returns the encoded bcrypt hash of password.
func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(digest(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	return string(hash), nil
}

// Compare returns domain.ErrUnauthorized when password does not match hash.
func (h *BcryptHasher) Compare(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), digest(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return fmt.Errorf("password mismatch: %w", domain.ErrUnauthorized)
	}

	if err != nil {
		return fmt.Errorf("comparing password: %w", err)
	}

	return nil
}

func digest(password string) []byte {
	sum := sha256.Sum256([]byte(password))

	out := make([]byte, base64.RawStdEncoding.EncodedLen(len(sum)))
	base64.RawStdEncoding.Encode(out, sum[:])

	return out
}
