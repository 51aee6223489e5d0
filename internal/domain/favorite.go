package domain

import (
	"time"

	"github.com/google/uuid"
)

// BookSource discriminates which kind of catalog entry a favorite links to.
type BookSource string

const (
	// SourceManual marks a reference to a curated book.
	SourceManual BookSource = "manual"

	// SourceExternal marks a reference to a cached external book.
	SourceExternal BookSource = "external"
)

// ValidBookSource reports whether s is a recognized source discriminator.
func ValidBookSource(s string) bool {
	switch BookSource(s) {
	case SourceManual, SourceExternal:
		return true
	}
	return false
}

// BookRef is a tagged reference to exactly one catalog entry. The Source
// tag decides which table BookID points into; the two nullable columns of
// the storage schema exist only inside the repositories.
type BookRef struct {
	// Source is "manual" or "external".
	Source BookSource `json:"source"`

	// BookID is the ID of the referenced CuratedBook or ExternalBook.
	BookID string `json:"book_id"`
}

// Favorite links a profile to exactly one catalog entry.
// The exclusive-or invariant is structural here (a single tagged ref) and
// re-checked by Validate before every persistence.
type Favorite struct {
	// ID is the unique identifier for the favorite. This, not the ID of
	// the referenced book, is the caller-facing identifier.
	ID string `json:"id"`

	// ProfileID is the profile this favorite is scoped to.
	ProfileID string `json:"profile_id"`

	// Ref is the tagged reference to the underlying catalog entry.
	Ref BookRef `json:"ref"`

	// CreatedAt is when the favorite was added.
	CreatedAt time.Time `json:"created_at"`
}

// NewCuratedFavorite links a profile to a curated book.
func NewCuratedFavorite(profileID, bookID string) *Favorite {
	return &Favorite{
		ID:        uuid.NewString(),
		ProfileID: profileID,
		Ref:       BookRef{Source: SourceManual, BookID: bookID},
		CreatedAt: time.Now().UTC(),
	}
}

// NewExternalFavorite links a profile to a cached external book.
func NewExternalFavorite(profileID, bookID string) *Favorite {
	return &Favorite{
		ID:        uuid.NewString(),
		ProfileID: profileID,
		Ref:       BookRef{Source: SourceExternal, BookID: bookID},
		CreatedAt: time.Now().UTC(),
	}
}

// Validate checks the exclusive-or reference invariant. It must hold
// before every create; repositories reject favorites that fail it.
func (f *Favorite) Validate() error {
	if f.ProfileID == "" {
		return ErrInvalidFavoriteRef
	}
	if !ValidBookSource(string(f.Ref.Source)) || f.Ref.BookID == "" {
		return ErrInvalidFavoriteRef
	}
	return nil
}

// ResolvedFavorite is a favorite flattened together with the catalog
// fields of its referenced book, as returned by the list and create
// operations.
type ResolvedFavorite struct {
	// ID is the favorite's own identifier.
	ID string `json:"_id"`

	// ProfileID is the owning profile.
	ProfileID string `json:"profileId"`

	// Source is "manual" or "external".
	Source BookSource `json:"source"`

	// BookID is the identifier of the underlying catalog entry.
	BookID string `json:"bookId"`

	// Flattened catalog fields.
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description,omitempty"`
	CoverURL    string `json:"coverUrl,omitempty"`

	// GoogleBookID is set for external references only.
	GoogleBookID string `json:"googleBookId,omitempty"`

	// AddedAt is the favorite's creation timestamp.
	AddedAt time.Time `json:"addedAt"`
}
