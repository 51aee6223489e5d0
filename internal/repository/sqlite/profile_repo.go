package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/prn-tf/bookhive/internal/domain"
	"github.com/prn-tf/bookhive/internal/repository"
)

// profileRepository implements repository.ProfileRepository for SQLite.
type profileRepository struct {
	db *DB
}

// NewProfileRepository creates a new SQLite profile repository.
func NewProfileRepository(db *DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

// Create persists a new profile. The age group is re-derived from the age
// immediately before the write so a caller-supplied value never persists.
func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	if err := profile.DeriveAgeGroup(); err != nil {
		return err
	}

	query := `
		INSERT INTO profiles (id, user_id, name, avatar, age, age_group, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		profile.ID,
		profile.UserID,
		profile.Name,
		profile.Avatar,
		profile.Age,
		string(profile.AgeGroup),
		profile.CreatedAt.Format(time.RFC3339),
		profile.UpdatedAt.Format(time.RFC3339),
	)

	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrProfileAgeTooLow
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

// GetByID retrieves a profile by ID.
func (r *profileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	query := `
		SELECT id, user_id, name, avatar, age, age_group, created_at, updated_at
		FROM profiles
		WHERE id = ?
	`

	profile := &domain.Profile{}
	var ageGroup, createdAt, updatedAt string

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.Name,
		&profile.Avatar,
		&profile.Age,
		&ageGroup,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	profile.AgeGroup = domain.AgeGroup(ageGroup)
	profile.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	profile.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return profile, nil
}

// ListByUser returns all profiles owned by the given user.
func (r *profileRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Profile, error) {
	query := `
		SELECT id, user_id, name, avatar, age, age_group, created_at, updated_at
		FROM profiles
		WHERE user_id = ?
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*domain.Profile
	for rows.Next() {
		profile := &domain.Profile{}
		var ageGroup, createdAt, updatedAt string

		err := rows.Scan(
			&profile.ID,
			&profile.UserID,
			&profile.Name,
			&profile.Avatar,
			&profile.Age,
			&ageGroup,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}

		profile.AgeGroup = domain.AgeGroup(ageGroup)
		profile.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		profile.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		profiles = append(profiles, profile)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profiles: %w", err)
	}

	return profiles, nil
}

// Update updates an existing profile, re-deriving the age group.
func (r *profileRepository) Update(ctx context.Context, profile *domain.Profile) error {
	if err := profile.DeriveAgeGroup(); err != nil {
		return err
	}
	profile.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE profiles
		SET name = ?, avatar = ?, age = ?, age_group = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		profile.Name,
		profile.Avatar,
		profile.Age,
		string(profile.AgeGroup),
		profile.UpdatedAt.Format(time.RFC3339),
		profile.ID,
	)

	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrProfileAgeTooLow
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return domain.ErrProfileNotFound
	}

	return nil
}

// Delete deletes a profile by ID.
func (r *profileRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return domain.ErrProfileNotFound
	}

	return nil
}

// Ensure profileRepository implements repository.ProfileRepository.
var _ repository.ProfileRepository = (*profileRepository)(nil)
