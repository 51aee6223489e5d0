package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/prn-tf/bookhive/internal/domain"
	"github.com/prn-tf/bookhive/internal/repository"
)

// curatedBookRepository implements repository.CuratedBookRepository for PostgreSQL.
type curatedBookRepository struct {
	db *DB
}

// NewCuratedBookRepository creates a new PostgreSQL curated book repository.
func NewCuratedBookRepository(db *DB) repository.CuratedBookRepository {
	return &curatedBookRepository{db: db}
}

// Create persists a new curated book.
func (r *curatedBookRepository) Create(ctx context.Context, book *domain.CuratedBook) error {
	query := `
		INSERT INTO curated_books (id, title, author, description, cover_url, age_group, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		book.ID,
		book.Title,
		book.Author,
		nullString(book.Description),
		nullString(book.CoverURL),
		string(book.AgeGroup),
		book.CreatedAt,
		book.UpdatedAt,
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
		WHERE id = $1
	`

	book := &domain.CuratedBook{}
	var description, coverURL sql.NullString
	var ageGroup string

	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&description,
		&coverURL,
		&ageGroup,
		&book.CreatedAt,
		&book.UpdatedAt,
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

	return book, nil
}

// Exists checks whether a curated book with the given ID exists.
func (r *curatedBookRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM curated_books WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check curated book existence: %w", err)
	}
	return exists, nil
}

// List returns curated books, optionally filtered by age group.
func (r *curatedBookRepository) List(ctx context.Context, ageGroup domain.AgeGroup) ([]*domain.CuratedBook, error) {
	query := `
		SELECT id, title, author, description, cover_url, age_group, created_at, updated_at
		FROM curated_books
	`
	var args []interface{}
	if ageGroup != "" {
		query += ` WHERE age_group = $1`
		args = append(args, string(ageGroup))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list curated books: %w", err)
	}
	defer rows.Close()

	var books []*domain.CuratedBook
	for rows.Next() {
		book := &domain.CuratedBook{}
		var description, coverURL sql.NullString
		var group string

		err := rows.Scan(
			&book.ID,
			&book.Title,
			&book.Author,
			&description,
			&coverURL,
			&group,
			&book.CreatedAt,
			&book.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan curated book: %w", err)
		}

		book.Description = description.String
		book.CoverURL = coverURL.String
		book.AgeGroup = domain.AgeGroup(group)
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
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM curated_books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete curated book: %w", err)
	}

	if tag.RowsAffected() == 0 {
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
