package domain

import (
	"slices"
	"time"
)

// RoleUser is granted to every registered account.
const RoleUser = "user"

// User is a registered account.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Roles        []string
	CreatedAt    time.Time
}

// HasRole reports whether the user holds role.
func (u *User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}
