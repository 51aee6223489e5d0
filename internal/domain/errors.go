// Package domain contains the core business entities for BookHive.
package domain

import (
	"errors"
	"fmt"
)

// Domain errors - these represent business rule violations.
// They are distinct from infrastructure errors (database, network, etc.).

var (
	// ===========================================
	// User Errors
	// ===========================================

	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken indicates a user with the same email already exists.
	ErrEmailTaken = errors.New("email is already registered")

	// ErrInvalidCredentials indicates authentication failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ===========================================
	// Profile Errors
	// ===========================================

	// ErrProfileNotFound indicates the requested profile does not exist
	// or is not owned by the caller.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrProfileAgeTooLow indicates the age is below the minimum of 4.
	ErrProfileAgeTooLow = errors.New("profile age must be at least 4")

	// ===========================================
	// Catalog Errors
	// ===========================================

	// ErrBookNotFound indicates the requested curated book does not exist.
	ErrBookNotFound = errors.New("book not found")

	// ErrExternalBookNotFound indicates the cached external book does not exist.
	ErrExternalBookNotFound = errors.New("external book not found")

	// ErrInvalidAgeGroup indicates the age group label is not one of
	// "child", "teen" or "adult".
	ErrInvalidAgeGroup = errors.New("age group must be child, teen or adult")

	// ===========================================
	// Favorite Errors
	// ===========================================

	// ErrFavoriteNotFound indicates the requested favorite does not exist.
	ErrFavoriteNotFound = errors.New("favorite not found")

	// ErrDuplicateFavorite indicates the profile already favorited the
	// referenced book.
	ErrDuplicateFavorite = errors.New("book is already in favorites")

	// ErrInvalidFavoriteRef indicates the favorite does not reference
	// exactly one catalog entry.
	ErrInvalidFavoriteRef = errors.New("favorite must reference exactly one book")

	// ===========================================
	// Identifier / Authorization Errors
	// ===========================================

	// ErrInvalidID indicates an identifier is not syntactically valid.
	ErrInvalidID = errors.New("invalid id")

	// ErrTokenMissing indicates no bearer credential was presented.
	ErrTokenMissing = errors.New("token missing")

	// ErrTokenMalformed indicates the Authorization header is not a
	// two-segment Bearer value.
	ErrTokenMalformed = errors.New("token malformed")

	// ErrTokenInvalid indicates signature or expiry verification failed.
	ErrTokenInvalid = errors.New("token invalid")
)

// DomainError wraps a domain error with additional context.
type DomainError struct {
	// Err is the underlying domain error.
	Err error

	// Message provides additional context.
	Message string

	// Resource identifies the affected resource (e.g., profile id, book id).
	Resource string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Err.Error(), e.Message, e.Resource)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/errors.As.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError with context.
func NewDomainError(err error, message, resource string) *DomainError {
	return &DomainError{Err: err, Message: message, Resource: resource}
}
