// Package service provides business logic services for BookHive.
package service

import "errors"

// Common service errors. Domain rule violations live in internal/domain;
// these cover input validation and infrastructure failures.
var (
	// Validation errors
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrInvalidPassword  = errors.New("invalid password: must be at least 6 characters")
	ErrMissingName      = errors.New("name is required")
	ErrMissingTitle     = errors.New("title is required")
	ErrMissingAuthor    = errors.New("author is required")
	ErrMissingProfileID = errors.New("profileId is required")
	ErrMissingBookID    = errors.New("bookId is required")
	ErrMissingGoogleID  = errors.New("googleBookId is required")
	ErrMissingQuery     = errors.New("search query is required")
	ErrInvalidSource    = errors.New("source must be manual or external")

	// Upstream errors
	ErrCatalogUnavailable = errors.New("external catalog unavailable")

	// General errors
	ErrInternalError = errors.New("internal server error")
)
