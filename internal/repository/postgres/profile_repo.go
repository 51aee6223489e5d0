package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/prn-tf/bookhive/internal/domain"
	"github.com/prn-tf/bookhive/internal/repository"
)

// profileRepository implements repository.ProfileRepository for PostgreSQL.
type profileRepository struct {
	db *DB
}

// NewProfileRepository creates a new PostgreSQL profile repository.
func NewProfileRepository(db *DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

// Create persists a new profile, re-deriving the age group before the write.
func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	if err := profile.DeriveAgeGroup(); err != nil {
		return err
	}

	query := `
		INSERT INTO profiles (id, user_id, name, avatar, age, age_group, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		profile.ID,
		profile.UserID,
		profile.Name,
		profile.Avatar,
		profile.Age,
		string(profile.AgeGroup),
		profile.CreatedAt,
		profile.UpdatedAt,
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
		WHERE id = $1
	`

	profile := &domain.Profile{}
	var ageGroup string

	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.Name,
		&profile.Avatar,
		&profile.Age,
		&ageGroup,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)

	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	profile.AgeGroup = domain.AgeGroup(ageGroup)
	return profile, nil
}

// ListByUser returns all profiles owned by the given user.
func (r *profileRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Profile, error) {
	query := `
		SELECT id, user_id, name, avatar, age, age_group, created_at, updated_at
		FROM profiles
		WHERE user_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*domain.Profile
	for rows.Next() {
		profile := &domain.Profile{}
		var ageGroup string

		err := rows.Scan(
			&profile.ID,
			&profile.UserID,
			&profile.Name,
			&profile.Avatar,
			&profile.Age,
			&ageGroup,
			&profile.CreatedAt,
			&profile.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}

		profile.AgeGroup = domain.AgeGroup(ageGroup)
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
		SET name = $1, avatar = $2, age = $3, age_group = $4, updated_at = $5
		WHERE id = $6
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		profile.Name,
		profile.Avatar,
		profile.Age,
		string(profile.AgeGroup),
		profile.UpdatedAt,
		profile.ID,
	)

	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrProfileAgeTooLow
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrProfileNotFound
	}

	return nil
}

// Delete deletes a profile by ID.
func (r *profileRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrProfileNotFound
	}

	return nil
}

// Ensure profileRepository implements repository.ProfileRepository.
var _ repository.ProfileRepository = (*profileRepository)(nil)
