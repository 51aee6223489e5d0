// Package domain contains the core business entities for BookHive.
// These are pure Go structs with no external dependencies beyond ID
// generation, representing the fundamental concepts of the library.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the privilege level of a user account.
type Role string

const (
	// RoleAdmin grants administrative privileges.
	RoleAdmin Role = "admin"

	// RoleUser is the default role for registered accounts.
	RoleUser Role = "user"
)

// NormalizeRole coerces arbitrary input to a valid role.
// Anything that is not "admin" becomes "user".
func NormalizeRole(s string) Role {
	if Role(s) == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// User represents a registered account.
// Users own reading profiles; favorites are scoped to profiles, not users.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"id"`

	// Email is the unique email address used for login.
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash of the user's password.
	// This should never be exposed in API responses.
	PasswordHash string `json:"-"`

	// Name is the display name.
	Name string `json:"name"`

	// Role is either "admin" or "user".
	Role Role `json:"role"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates a new User with a generated ID and default role handling.
func NewUser(email, passwordHash, name, role string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         NormalizeRole(role),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsAdmin returns true for administrative accounts.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
