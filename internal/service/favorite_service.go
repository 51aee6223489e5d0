package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prn-tf/bookhive/internal/domain"
	"github.com/prn-tf/bookhive/internal/metrics"
	"github.com/prn-tf/bookhive/internal/repository"
)

// FavoriteService handles the per-profile favorites workflow: listing
// with lazy orphan cleanup, duplicate-safe creation and deletion.
type FavoriteService struct {
	favoriteRepo repository.FavoriteRepository
	profileRepo  repository.ProfileRepository
	curatedRepo  repository.CuratedBookRepository
	externalRepo repository.ExternalBookRepository
	catalog      *CatalogService
	logger       zerolog.Logger
}

// NewFavoriteService creates a new FavoriteService.
func NewFavoriteService(
	repos *repository.Repositories,
	catalog *CatalogService,
	logger zerolog.Logger,
) *FavoriteService {
	return &FavoriteService{
		favoriteRepo: repos.Favorites,
		profileRepo:  repos.Profiles,
		curatedRepo:  repos.CuratedBooks,
		externalRepo: repos.ExternalBooks,
		catalog:      catalog,
		logger:       logger.With().Str("service", "favorite").Logger(),
	}
}

// List returns the resolved favorites of a profile. References that no
// longer resolve are deleted during the read and excluded from the
// result, so the list never contains orphans and repeated reads are
// idempotent.
func (s *FavoriteService) List(ctx context.Context, profileID string) ([]*domain.ResolvedFavorite, error) {
	if _, err := uuid.Parse(profileID); err != nil {
		return nil, domain.ErrInvalidID
	}

	favorites, err := s.favoriteRepo.ListByProfile(ctx, profileID)
	if err != nil {
		s.logger.Error().Err(err).Str("profile_id", profileID).Msg("failed to list favorites")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	resolved := make([]*domain.ResolvedFavorite, 0, len(favorites))
	for _, favorite := range favorites {
		rf, err := s.resolve(ctx, favorite)
		if err != nil {
			if errors.Is(err, domain.ErrBookNotFound) || errors.Is(err, domain.ErrExternalBookNotFound) {
				s.cleanupOrphan(ctx, favorite)
				continue
			}
			return nil, err
		}
		resolved = append(resolved, rf)
	}

	return resolved, nil
}

// AddFavoriteInput contains the data needed to add a favorite.
// For a manual source BookID names an existing curated book. For an
// external source GoogleBookID plus the metadata fields describe the
// external entry, cached on first sight.
type AddFavoriteInput struct {
	ProfileID    string
	Source       string
	BookID       string
	GoogleBookID string
	Title        string
	Author       string
	Description  string
	CoverURL     string
}

// Add links a profile to a catalog entry and returns the resolved
// favorite. A second link from the same profile to the same entry fails
// with ErrDuplicateFavorite; the storage unique index closes the
// check-then-insert race.
func (s *FavoriteService) Add(ctx context.Context, input AddFavoriteInput) (*domain.ResolvedFavorite, error) {
	if input.ProfileID == "" {
		return nil, ErrMissingProfileID
	}
	if _, err := uuid.Parse(input.ProfileID); err != nil {
		return nil, domain.ErrInvalidID
	}
	if !domain.ValidBookSource(input.Source) {
		return nil, ErrInvalidSource
	}

	var favorite *domain.Favorite

	switch domain.BookSource(input.Source) {
	case domain.SourceManual:
		if input.BookID == "" {
			return nil, ErrMissingBookID
		}
		if _, err := uuid.Parse(input.BookID); err != nil {
			return nil, domain.ErrInvalidID
		}

		exists, err := s.curatedRepo.Exists(ctx, input.BookID)
		if err != nil {
			s.logger.Error().Err(err).Str("book_id", input.BookID).Msg("failed to check curated book")
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		if !exists {
			return nil, domain.ErrBookNotFound
		}

		favorite = domain.NewCuratedFavorite(input.ProfileID, input.BookID)

	case domain.SourceExternal:
		if input.GoogleBookID == "" {
			return nil, ErrMissingGoogleID
		}

		book, err := s.catalog.FindOrCreateExternal(ctx, ExternalBookInput{
			GoogleBookID: input.GoogleBookID,
			ProfileID:    input.ProfileID,
			Title:        input.Title,
			Author:       input.Author,
			Description:  input.Description,
			CoverURL:     input.CoverURL,
		})
		if err != nil {
			return nil, err
		}

		favorite = domain.NewExternalFavorite(input.ProfileID, book.ID)
	}

	if _, err := s.favoriteRepo.FindByRef(ctx, input.ProfileID, favorite.Ref); err == nil {
		return nil, domain.ErrDuplicateFavorite
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.logger.Error().Err(err).Str("profile_id", input.ProfileID).Msg("failed to check for duplicate favorite")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if err := s.favoriteRepo.Create(ctx, favorite); err != nil {
		if errors.Is(err, domain.ErrDuplicateFavorite) {
			return nil, domain.ErrDuplicateFavorite
		}
		if errors.Is(err, domain.ErrInvalidFavoriteRef) {
			return nil, domain.ErrInvalidFavoriteRef
		}
		s.logger.Error().Err(err).Str("profile_id", input.ProfileID).Msg("failed to create favorite")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("favorite_id", favorite.ID).
		Str("profile_id", favorite.ProfileID).
		Str("source", string(favorite.Ref.Source)).
		Msg("favorite added")

	return s.resolve(ctx, favorite)
}

// Remove deletes a favorite by its own id.
func (s *FavoriteService) Remove(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrInvalidID
	}

	if err := s.favoriteRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrFavoriteNotFound) {
			return domain.ErrFavoriteNotFound
		}
		s.logger.Error().Err(err).Str("favorite_id", id).Msg("failed to delete favorite")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Str("favorite_id", id).Msg("favorite removed")
	return nil
}

// resolve flattens a favorite together with the catalog fields of the
// entry it references.
func (s *FavoriteService) resolve(ctx context.Context, favorite *domain.Favorite) (*domain.ResolvedFavorite, error) {
	rf := &domain.ResolvedFavorite{
		ID:        favorite.ID,
		ProfileID: favorite.ProfileID,
		Source:    favorite.Ref.Source,
		BookID:    favorite.Ref.BookID,
		AddedAt:   favorite.CreatedAt,
	}

	switch favorite.Ref.Source {
	case domain.SourceManual:
		book, err := s.curatedRepo.GetByID(ctx, favorite.Ref.BookID)
		if err != nil {
			if errors.Is(err, domain.ErrBookNotFound) {
				return nil, domain.ErrBookNotFound
			}
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		rf.Title = book.Title
		rf.Author = book.Author
		rf.Description = book.Description
		rf.CoverURL = book.CoverURL

	case domain.SourceExternal:
		book, err := s.externalRepo.GetByID(ctx, favorite.Ref.BookID)
		if err != nil {
			if errors.Is(err, domain.ErrExternalBookNotFound) || errors.Is(err, repository.ErrNotFound) {
				return nil, domain.ErrExternalBookNotFound
			}
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		rf.Title = book.Title
		rf.Author = book.Author
		rf.Description = book.Description
		rf.CoverURL = book.CoverURL
		rf.GoogleBookID = book.GoogleBookID

	default:
		return nil, domain.ErrInvalidFavoriteRef
	}

	return rf, nil
}

// cleanupOrphan deletes a favorite whose reference no longer resolves.
// Best effort; a failed cleanup is retried naturally on the next read.
func (s *FavoriteService) cleanupOrphan(ctx context.Context, favorite *domain.Favorite) {
	if err := s.favoriteRepo.Delete(ctx, favorite.ID); err != nil && !errors.Is(err, domain.ErrFavoriteNotFound) {
		s.logger.Warn().
			Err(err).
			Str("favorite_id", favorite.ID).
			Msg("failed to clean up orphaned favorite")
		return
	}

	metrics.OrphanCleaned()

	s.logger.Info().
		Str("favorite_id", favorite.ID).
		Str("profile_id", favorite.ProfileID).
		Str("source", string(favorite.Ref.Source)).
		Msg("orphaned favorite cleaned up")
}
