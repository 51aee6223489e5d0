package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/prn-tf/bookhive/internal/domain"
	"github.com/prn-tf/bookhive/internal/repository"
)

// favoriteRepository implements repository.FavoriteRepository for SQLite.
// The tagged BookRef of the domain model maps onto two nullable columns
// guarded by a CHECK constraint and partial unique indexes.
type favoriteRepository struct {
	db *DB
}

// NewFavoriteRepository creates a new SQLite favorite repository.
func NewFavoriteRepository(db *DB) repository.FavoriteRepository {
	return &favoriteRepository{db: db}
}

// refColumns splits a tagged reference into the two nullable columns.
func refColumns(ref domain.BookRef) (curated, external sql.NullString) {
	switch ref.Source {
	case domain.SourceManual:
		curated = sql.NullString{String: ref.BookID, Valid: true}
	case domain.SourceExternal:
		external = sql.NullString{String: ref.BookID, Valid: true}
	}
	return curated, external
}

// columnsToRef rebuilds the tagged reference from the two nullable columns.
func columnsToRef(curated, external sql.NullString) domain.BookRef {
	if curated.Valid {
		return domain.BookRef{Source: domain.SourceManual, BookID: curated.String}
	}
	return domain.BookRef{Source: domain.SourceExternal, BookID: external.String}
}

// Create persists a new favorite.
func (r *favoriteRepository) Create(ctx context.Context, favorite *domain.Favorite) error {
	if err := favorite.Validate(); err != nil {
		return err
	}

	curated, external := refColumns(favorite.Ref)

	query := `
		INSERT INTO favorites (id, profile_id, curated_book_id, external_book_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		favorite.ID,
		favorite.ProfileID,
		curated,
		external,
		favorite.CreatedAt.Format(time.RFC3339),
	)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateFavorite
		}
		if isCheckViolation(err) {
			return domain.ErrInvalidFavoriteRef
		}
		return fmt.Errorf("failed to create favorite: %w", err)
	}

	return nil
}

// GetByID retrieves a favorite by ID.
func (r *favoriteRepository) GetByID(ctx context.Context, id string) (*domain.Favorite, error) {
	query := `
		SELECT id, profile_id, curated_book_id, external_book_id, created_at
		FROM favorites
		WHERE id = ?
	`

	favorite := &domain.Favorite{}
	var curated, external sql.NullString
	var createdAt string

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&favorite.ID,
		&favorite.ProfileID,
		&curated,
		&external,
		&createdAt,
	)

	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrFavoriteNotFound
		}
		return nil, fmt.Errorf("failed to get favorite: %w", err)
	}

	favorite.Ref = columnsToRef(curated, external)
	favorite.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return favorite, nil
}

// ListByProfile returns all favorites scoped to the given profile.
func (r *favoriteRepository) ListByProfile(ctx context.Context, profileID string) ([]*domain.Favorite, error) {
	query := `
		SELECT id, profile_id, curated_book_id, external_book_id, created_at
		FROM favorites
		WHERE profile_id = ?
	`

	rows, err := r.db.QueryContext(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	var favorites []*domain.Favorite
	for rows.Next() {
		favorite := &domain.Favorite{}
		var curated, external sql.NullString
		var createdAt string

		err := rows.Scan(
			&favorite.ID,
			&favorite.ProfileID,
			&curated,
			&external,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}

		favorite.Ref = columnsToRef(curated, external)
		favorite.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		favorites = append(favorites, favorite)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating favorites: %w", err)
	}

	return favorites, nil
}

// FindByRef returns the favorite linking profileID to ref.
func (r *favoriteRepository) FindByRef(ctx context.Context, profileID string, ref domain.BookRef) (*domain.Favorite, error) {
	var column string
	switch ref.Source {
	case domain.SourceManual:
		column = "curated_book_id"
	case domain.SourceExternal:
		column = "external_book_id"
	default:
		return nil, domain.ErrInvalidFavoriteRef
	}

	query := `
		SELECT id, profile_id, curated_book_id, external_book_id, created_at
		FROM favorites
		WHERE profile_id = ? AND ` + column + ` = ?
	`

	favorite := &domain.Favorite{}
	var curated, external sql.NullString
	var createdAt string

	err := r.db.QueryRowContext(ctx, query, profileID, ref.BookID).Scan(
		&favorite.ID,
		&favorite.ProfileID,
		&curated,
		&external,
		&createdAt,
	)

	if err != nil {
		if isNoRows(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find favorite by ref: %w", err)
	}

	favorite.Ref = columnsToRef(curated, external)
	favorite.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return favorite, nil
}

// Delete deletes a favorite by ID.
func (r *favoriteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return domain.ErrFavoriteNotFound
	}

	return nil
}

// CountByProfile returns the number of favorites for a profile.
func (r *favoriteRepository) CountByProfile(ctx context.Context, profileID string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM favorites WHERE profile_id = ?`, profileID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count favorites: %w", err)
	}
	return count, nil
}

// NewRepositories builds the full SQLite repository set.
func NewRepositories(db *DB) *repository.Repositories {
	return &repository.Repositories{
		Users:         NewUserRepository(db),
		Profiles:      NewProfileRepository(db),
		CuratedBooks:  NewCuratedBookRepository(db),
		ExternalBooks: NewExternalBookRepository(db),
		Favorites:     NewFavoriteRepository(db),
	}
}

// Ensure favoriteRepository implements repository.FavoriteRepository.
var _ repository.FavoriteRepository = (*favoriteRepository)(nil)
