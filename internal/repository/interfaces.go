// Package repository defines data access interfaces for BookHive.
// These interfaces abstract database operations, allowing for different
// implementations (SQLite, PostgreSQL, in-memory for testing) while keeping
// the service layer clean.
package repository

import (
	"context"

	"github.com/prn-tf/bookhive/internal/domain"
)

// =============================================================================
// User Repository
// =============================================================================

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// Create creates a new user.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// ExistsByEmail checks if a user with the given email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// UpdateRole changes a user's role.
	UpdateRole(ctx context.Context, id string, role domain.Role) error

	// List returns all users.
	List(ctx context.Context) ([]*domain.User, error)
}

// =============================================================================
// Profile Repository
// =============================================================================

// ProfileRepository defines the interface for profile data access.
// Implementations must re-derive the age group from the age immediately
// before every write; a caller-supplied age group never persists.
type ProfileRepository interface {
	// Create persists a new profile.
	Create(ctx context.Context, profile *domain.Profile) error

	// GetByID retrieves a profile by ID.
	GetByID(ctx context.Context, id string) (*domain.Profile, error)

	// ListByUser returns all profiles owned by the given user.
	ListByUser(ctx context.Context, userID string) ([]*domain.Profile, error)

	// Update updates an existing profile.
	Update(ctx context.Context, profile *domain.Profile) error

	// Delete deletes a profile by ID.
	Delete(ctx context.Context, id string) error
}

// =============================================================================
// Catalog Repositories
// =============================================================================

// CuratedBookRepository defines the interface for curated book data access.
type CuratedBookRepository interface {
	// Create persists a new curated book.
	Create(ctx context.Context, book *domain.CuratedBook) error

	// GetByID retrieves a curated book by ID.
	GetByID(ctx context.Context, id string) (*domain.CuratedBook, error)

	// Exists checks whether a curated book with the given ID exists.
	Exists(ctx context.Context, id string) (bool, error)

	// List returns curated books, optionally filtered by age group.
	// An empty ageGroup returns everything.
	List(ctx context.Context, ageGroup domain.AgeGroup) ([]*domain.CuratedBook, error)

	// Delete deletes a curated book by ID.
	Delete(ctx context.Context, id string) error
}

// ExternalBookRepository defines the interface for cached external book
// data access. GoogleBookID is the natural dedup key.
type ExternalBookRepository interface {
	// Create persists a new cached external book.
	Create(ctx context.Context, book *domain.ExternalBook) error

	// GetByID retrieves a cached external book by ID.
	GetByID(ctx context.Context, id string) (*domain.ExternalBook, error)

	// GetByGoogleID retrieves a cached external book by its external
	// catalog identifier. Returns ErrNotFound if it has never been cached.
	GetByGoogleID(ctx context.Context, googleBookID string) (*domain.ExternalBook, error)

	// Count returns the number of cached external books.
	Count(ctx context.Context) (int64, error)
}

// =============================================================================
// Favorite Repository
// =============================================================================

// FavoriteRepository defines the interface for favorite data access.
// The storage layer carries partial unique indexes on the (profile,
// reference) pairs, so a concurrent duplicate insert surfaces as
// domain.ErrDuplicateFavorite even when the pre-check passed.
type FavoriteRepository interface {
	// Create persists a new favorite. Fails with domain.ErrInvalidFavoriteRef
	// when the exclusive-or invariant does not hold and with
	// domain.ErrDuplicateFavorite on a unique violation.
	Create(ctx context.Context, favorite *domain.Favorite) error

	// GetByID retrieves a favorite by ID.
	GetByID(ctx context.Context, id string) (*domain.Favorite, error)

	// ListByProfile returns all favorites scoped to the given profile,
	// in storage order.
	ListByProfile(ctx context.Context, profileID string) ([]*domain.Favorite, error)

	// FindByRef returns the favorite linking profileID to ref, or
	// ErrNotFound when no such link exists.
	FindByRef(ctx context.Context, profileID string, ref domain.BookRef) (*domain.Favorite, error)

	// Delete deletes a favorite by ID.
	Delete(ctx context.Context, id string) error

	// CountByProfile returns the number of favorites for a profile.
	CountByProfile(ctx context.Context, profileID string) (int64, error)
}

// =============================================================================
// Aggregation
// =============================================================================

// Repositories holds all repository instances.
type Repositories struct {
	Users         UserRepository
	Profiles      ProfileRepository
	CuratedBooks  CuratedBookRepository
	ExternalBooks ExternalBookRepository
	Favorites     FavoriteRepository
}

// DatabaseHealth is an interface for database health checks.
type DatabaseHealth interface {
	Ping(ctx context.Context) error
	Close() error
}
