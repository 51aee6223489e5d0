package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// CuratedBook is a book record authored directly in this system's store.
// Curated books have no owner and are globally visible.
type CuratedBook struct {
	// ID is the unique identifier for the book.
	ID string `json:"id"`

	// Title is required.
	Title string `json:"title"`

	// Author is required.
	Author string `json:"author"`

	// Description is optional.
	Description string `json:"description,omitempty"`

	// CoverURL is an optional cover image reference.
	CoverURL string `json:"coverUrl,omitempty"`

	// AgeGroup is the reading tier this book is curated for.
	// Normalized to lowercase on write.
	AgeGroup AgeGroup `json:"ageGroup"`

	// CreatedAt is the timestamp when the book was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the book was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCuratedBook creates a curated book, lowercasing the age group label.
// Returns ErrInvalidAgeGroup if the normalized label is not one of the
// three tiers.
func NewCuratedBook(title, author, description, coverURL, ageGroup string) (*CuratedBook, error) {
	normalized := strings.ToLower(strings.TrimSpace(ageGroup))
	if !ValidAgeGroup(normalized) {
		return nil, ErrInvalidAgeGroup
	}
	now := time.Now().UTC()
	return &CuratedBook{
		ID:          uuid.NewString(),
		Title:       title,
		Author:      author,
		Description: description,
		CoverURL:    coverURL,
		AgeGroup:    AgeGroup(normalized),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ExternalBook is a cached pointer to a book sourced from the external
// catalog, keyed by the catalog's volume identifier. It is created lazily
// the first time a profile favorites an unseen GoogleBookID and reused on
// every subsequent favorite of the same identifier.
type ExternalBook struct {
	// ID is the unique identifier for the cached record.
	ID string `json:"id"`

	// ProfileID is a legacy association with the profile that first cached
	// the book. It is informational only and never enforced.
	ProfileID string `json:"profile_id,omitempty"`

	// GoogleBookID is the external catalog identifier and natural dedup key.
	GoogleBookID string `json:"googleBookId"`

	// Title, Author, Description and CoverURL mirror the external source
	// as supplied on first cache. Repeat caches never merge fields.
	Title       string `json:"title,omitempty"`
	Author      string `json:"author,omitempty"`
	Description string `json:"description,omitempty"`
	CoverURL    string `json:"coverUrl,omitempty"`

	// CreatedAt is the timestamp when the record was first cached.
	CreatedAt time.Time `json:"created_at"`
}

// NewExternalBook creates a cached external book record.
func NewExternalBook(googleBookID, profileID, title, author, description, coverURL string) *ExternalBook {
	return &ExternalBook{
		ID:           uuid.NewString(),
		ProfileID:    profileID,
		GoogleBookID: googleBookID,
		Title:        title,
		Author:       author,
		Description:  description,
		CoverURL:     coverURL,
		CreatedAt:    time.Now().UTC(),
	}
}
