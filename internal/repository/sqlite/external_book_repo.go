package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/prn-tf/bookhive/internal/domain"
	"github.com/prn-tf/bookhive/internal/repository"
)

// externalBookRepository implements repository.ExternalBookRepository for SQLite.
type externalBookRepository struct {
	db *DB
}

// NewExternalBookRepository creates a new SQLite external book repository.
func NewExternalBookRepository(db *DB) repository.ExternalBookRepository {
	return &externalBookRepository{db: db}
}

// Create persists a new cached external book.
func (r *externalBookRepository) Create(ctx context.Context, book *domain.ExternalBook) error {
	query := `
		INSERT INTO external_books (id, profile_id, google_book_id, title, author, description, cover_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		book.ID,
		nullString(book.ProfileID),
		book.GoogleBookID,
		nullString(book.Title),
		nullString(book.Author),
		nullString(book.Description),
		nullString(book.CoverURL),
		book.CreatedAt.Format(time.RFC3339),
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
	return r.getWhere(ctx, "id = ?", id)
}

// GetByGoogleID retrieves a cached external book by its external catalog
// identifier.
func (r *externalBookRepository) GetByGoogleID(ctx context.Context, googleBookID string) (*domain.ExternalBook, error) {
	return r.getWhere(ctx, "google_book_id = ?", googleBookID)
}

// Count returns the number of cached external books.
func (r *externalBookRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM external_books`).Scan(&count)
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
	var createdAt string

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&book.ID,
		&profileID,
		&book.GoogleBookID,
		&title,
		&author,
		&description,
		&coverURL,
		&createdAt,
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
	book.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return book, nil
}

// Ensure externalBookRepository implements repository.ExternalBookRepository.
var _ repository.ExternalBookRepository = (*externalBookRepository)(nil)
