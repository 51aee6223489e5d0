package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prn-tf/bookhive/internal/domain"
	"github.com/prn-tf/bookhive/internal/repository"
)

// ProfileService handles reading-profile management. Every operation is
// scoped to the owning user; a profile owned by someone else is
// indistinguishable from one that does not exist.
type ProfileService struct {
	profileRepo repository.ProfileRepository
	logger      zerolog.Logger
}

// NewProfileService creates a new ProfileService.
func NewProfileService(profileRepo repository.ProfileRepository, logger zerolog.Logger) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		logger:      logger.With().Str("service", "profile").Logger(),
	}
}

// CreateProfileInput contains the data needed to create a profile.
type CreateProfileInput struct {
	Name   string
	Avatar string
	Age    int
}

// Create creates a profile owned by userID. The age group is derived
// from the age, never taken from the caller.
func (s *ProfileService) Create(ctx context.Context, userID string, input CreateProfileInput) (*domain.Profile, error) {
	if input.Name == "" {
		return nil, ErrMissingName
	}

	profile, err := domain.NewProfile(userID, input.Name, input.Avatar, input.Age)
	if err != nil {
		return nil, err
	}

	if err := s.profileRepo.Create(ctx, profile); err != nil {
		if errors.Is(err, domain.ErrProfileAgeTooLow) {
			return nil, domain.ErrProfileAgeTooLow
		}
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to create profile")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("profile_id", profile.ID).
		Str("user_id", userID).
		Str("age_group", string(profile.AgeGroup)).
		Msg("profile created")

	return profile, nil
}

// List returns all profiles owned by userID.
func (s *ProfileService) List(ctx context.Context, userID string) ([]*domain.Profile, error) {
	profiles, err := s.profileRepo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to list profiles")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return profiles, nil
}

// Get returns a profile owned by userID.
func (s *ProfileService) Get(ctx context.Context, userID, profileID string) (*domain.Profile, error) {
	if _, err := uuid.Parse(profileID); err != nil {
		return nil, domain.ErrInvalidID
	}

	profile, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		s.logger.Error().Err(err).Str("profile_id", profileID).Msg("failed to get profile")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if profile.UserID != userID {
		return nil, domain.ErrProfileNotFound
	}

	return profile, nil
}

// Delete deletes a profile owned by userID. Ownership is re-checked
// immediately before the delete.
func (s *ProfileService) Delete(ctx context.Context, userID, profileID string) error {
	if _, err := s.Get(ctx, userID, profileID); err != nil {
		return err
	}

	if err := s.profileRepo.Delete(ctx, profileID); err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return domain.ErrProfileNotFound
		}
		s.logger.Error().Err(err).Str("profile_id", profileID).Msg("failed to delete profile")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Str("profile_id", profileID).Str("user_id", userID).Msg("profile deleted")
	return nil
}
