package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/prn-tf/bookhive/internal/domain"
	"github.com/prn-tf/bookhive/internal/repository"
)

// curatedBookRepository implements repository.CuratedBookRepository for SQLite.
type curatedBookRepository struct {
	db *DB
}

// NewCuratedBookRepository creates a new SQLite curated book repository.
func NewCuratedBookRepository(db *DB) repository.CuratedBookRepository {
	return &curatedBookRepository{db: db}
}

// Create persists a new curated book.
func (r *curatedBookRepository) Create(ctx context.Context, book *domain.CuratedBook) error {
	query := `
		INSERT INTO curated_books (id, title, author, description, cover_url, age_group, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		book.ID,
		book.Title,
		book.Author,
		nullString(book.Description),
		nullString(book.CoverURL),
		string(book.AgeGroup),
		book.CreatedAt.Format(time.RFC3339),
		book.UpdatedAt.Format(time.RFC3339),
	)

	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInvalidAgeGroup
		}
		return fmt.Errorf("failed to create curated book: %w", err)
	}

	return nil
}

// GetByID retrieves a curated book by ID.
func (r *curatedBookRepository) GetByID(ctx context.Context, id string) (*domain.CuratedBook, error) {
	query := `
		SELECT id, title, author, description, cover_url, age_group, created_at, updated_at
		FROM curated_books
		WHERE id = ?
	`

	book := &domain.CuratedBook{}
	var description, coverURL sql.NullString
	var ageGroup, createdAt, updatedAt string

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&description,
		&coverURL,
		&ageGroup,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get curated book: %w", err)
	}

	book.Description = description.String
	book.CoverURL = coverURL.String
	book.AgeGroup = domain.AgeGroup(ageGroup)
	book.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	book.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return book, nil
}

// Exists checks whether a curated book with the given ID exists.
func (r *curatedBookRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM curated_books WHERE id = ?`, id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check curated book existence: %w", err)
	}
	return count > 0, nil
}

// List returns curated books, optionally filtered by age group.
func (r *curatedBookRepository) List(ctx context.Context, ageGroup domain.AgeGroup) ([]*domain.CuratedBook, error) {
	query := `
		SELECT id, title, author, description, cover_url, age_group, created_at, updated_at
		FROM curated_books
	`
	var args []interface{}
	if ageGroup != "" {
		query += ` WHERE age_group = ?`
		args = append(args, string(ageGroup))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list curated books: %w", err)
	}
	defer rows.Close()

	var books []*domain.CuratedBook
	for rows.Next() {
		book := &domain.CuratedBook{}
		var description, coverURL sql.NullString
		var group, createdAt, updatedAt string

		err := rows.Scan(
			&book.ID,
			&book.Title,
			&book.Author,
			&description,
			&coverURL,
			&group,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan curated book: %w", err)
		}

		book.Description = description.String
		book.CoverURL = coverURL.String
		book.AgeGroup = domain.AgeGroup(group)
		book.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		book.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		books = append(books, book)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating curated books: %w", err)
	}

	return books, nil
}

// Delete deletes a curated book by ID. Favorites referencing it become
// orphans and are cleaned up lazily by the favorites list operation.
func (r *curatedBookRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM curated_books WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete curated book: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return domain.ErrBookNotFound
	}

	return nil
}

// nullString converts an empty string to a NULL column value.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Ensure curatedBookRepository implements repository.CuratedBookRepository.
var _ repository.CuratedBookRepository = (*curatedBookRepository)(nil)
