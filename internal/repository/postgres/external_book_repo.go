package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/prn-tf/bookhive/internal/domain"
	"github.com/prn-tf/bookhive/internal/repository"
)

// externalBookRepository implements repository.ExternalBookRepository for PostgreSQL.
type externalBookRepository struct {
	db *DB
}

// NewExternalBookRepository creates a new PostgreSQL external book repository.
func NewExternalBookRepository(db *DB) repository.ExternalBookRepository {
	return &externalBookRepository{db: db}
}

// Create persists a new cached external book.
func (r *externalBookRepository) Create(ctx context.Context, book *domain.ExternalBook) error {
	query := `
		INSERT INTO external_books (id, profile_id, google_book_id, title, author, description, cover_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	var profileID interface{}
	if book.ProfileID != "" {
		profileID = book.ProfileID
	}

	_, err := r.db.Pool.Exec(ctx, query,
		book.ID,
		profileID,
		book.GoogleBookID,
		nullString(book.Title),
		nullString(book.Author),
		nullString(book.Description),
		nullString(book.CoverURL),
		book.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("external book already cached: %w", err)
		}
		return fmt.Errorf("failed to create external book: %w", err)
	}

	return nil
}

// GetByID retrieves a cached external book by ID.
func (r *externalBookRepository) GetByID(ctx context.Context, id string) (*domain.ExternalBook, error) {
	return r.getWhere(ctx, "id = $1", id)
}

// GetByGoogleID retrieves a cached external book by its external catalog
// identifier.
func (r *externalBookRepository) GetByGoogleID(ctx context.Context, googleBookID string) (*domain.ExternalBook, error) {
	return r.getWhere(ctx, "google_book_id = $1", googleBookID)
}

// Count returns the number of cached external books.
func (r *externalBookRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM external_books`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count external books: %w", err)
	}
	return count, nil
}

func (r *externalBookRepository) getWhere(ctx context.Context, where string, arg interface{}) (*domain.ExternalBook, error) {
	query := `
		SELECT id, profile_id, google_book_id, title, author, description, cover_url, created_at
		FROM external_books
		WHERE ` + where

	book := &domain.ExternalBook{}
	var profileID, title, author, description, coverURL sql.NullString

	err := r.db.Pool.QueryRow(ctx, query, arg).Scan(
		&book.ID,
		&profileID,
		&book.GoogleBookID,
		&title,
		&author,
		&description,
		&coverURL,
		&book.CreatedAt,
	)

	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrExternalBookNotFound
		}
		return nil, fmt.Errorf("failed to get external book: %w", err)
	}

	book.ProfileID = profileID.String
	book.Title = title.String
	book.Author = author.String
	book.Description = description.String
	book.CoverURL = coverURL.String

	return book, nil
}

// Ensure externalBookRepository implements repository.ExternalBookRepository.
var _ repository.ExternalBookRepository = (*externalBookRepository)(nil)
