package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prn-tf/bookhive/internal/catalog/googlebooks"
	"github.com/prn-tf/bookhive/internal/domain"
	"github.com/prn-tf/bookhive/internal/repository"
)

// CatalogSearcher is the external catalog dependency of the catalog
// service. Satisfied by googlebooks.Client.
type CatalogSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]googlebooks.Volume, error)
}

// CatalogService handles the curated book catalog, the proxied external
// search, and the lazy external book cache.
type CatalogService struct {
	curatedRepo  repository.CuratedBookRepository
	externalRepo repository.ExternalBookRepository
	searcher     CatalogSearcher
	cache        repository.Cache
	cacheKeys    repository.CacheKey
	searchTTL    time.Duration
	logger       zerolog.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(
	curatedRepo repository.CuratedBookRepository,
	externalRepo repository.ExternalBookRepository,
	searcher CatalogSearcher,
	cache repository.Cache,
	searchTTL time.Duration,
	logger zerolog.Logger,
) *CatalogService {
	return &CatalogService{
		curatedRepo:  curatedRepo,
		externalRepo: externalRepo,
		searcher:     searcher,
		cache:        cache,
		searchTTL:    searchTTL,
		logger:       logger.With().Str("service", "catalog").Logger(),
	}
}

// CreateCuratedInput contains the data needed to create a curated book.
type CreateCuratedInput struct {
	Title       string
	Author      string
	Description string
	CoverURL    string
	AgeGroup    string
}

// CreateCurated adds a book to the curated catalog.
func (s *CatalogService) CreateCurated(ctx context.Context, input CreateCuratedInput) (*domain.CuratedBook, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrMissingTitle
	}
	if strings.TrimSpace(input.Author) == "" {
		return nil, ErrMissingAuthor
	}

	book, err := domain.NewCuratedBook(input.Title, input.Author, input.Description, input.CoverURL, input.AgeGroup)
	if err != nil {
		return nil, err
	}

	if err := s.curatedRepo.Create(ctx, book); err != nil {
		if errors.Is(err, domain.ErrInvalidAgeGroup) {
			return nil, domain.ErrInvalidAgeGroup
		}
		s.logger.Error().Err(err).Str("title", input.Title).Msg("failed to create curated book")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("book_id", book.ID).
		Str("age_group", string(book.AgeGroup)).
		Msg("curated book created")

	return book, nil
}

// GetCurated returns a curated book by id, read through the cache.
func (s *CatalogService) GetCurated(ctx context.Context, id string) (*domain.CuratedBook, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrInvalidID
	}

	key := s.cacheKeys.CuratedBook(id)
	if cached, err := s.cache.Get(ctx, key); err == nil {
		book := &domain.CuratedBook{}
		if err := json.Unmarshal(cached, book); err == nil {
			return book, nil
		}
	}

	book, err := s.curatedRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrBookNotFound) {
			return nil, domain.ErrBookNotFound
		}
		s.logger.Error().Err(err).Str("book_id", id).Msg("failed to get curated book")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if data, err := json.Marshal(book); err == nil {
		// Cache failures are not the caller's problem.
		_ = s.cache.Set(ctx, key, data, s.searchTTL)
	}

	return book, nil
}

// ListCurated returns curated books, optionally filtered by age group.
// An unknown filter label yields an empty list rather than an error,
// matching exact-filter semantics.
func (s *CatalogService) ListCurated(ctx context.Context, ageGroup string) ([]*domain.CuratedBook, error) {
	filter := domain.AgeGroup(strings.ToLower(strings.TrimSpace(ageGroup)))

	books, err := s.curatedRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list curated books")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return books, nil
}

// DeleteCurated removes a curated book and returns the deleted record.
// Favorites referencing it become orphans, cleaned up lazily on the next
// favorites read.
func (s *CatalogService) DeleteCurated(ctx context.Context, id string) (*domain.CuratedBook, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrInvalidID
	}

	book, err := s.curatedRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrBookNotFound) {
			return nil, domain.ErrBookNotFound
		}
		s.logger.Error().Err(err).Str("book_id", id).Msg("failed to load curated book for delete")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if err := s.curatedRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrBookNotFound) {
			return nil, domain.ErrBookNotFound
		}
		s.logger.Error().Err(err).Str("book_id", id).Msg("failed to delete curated book")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	_ = s.cache.Delete(ctx, s.cacheKeys.CuratedBook(id))

	s.logger.Info().Str("book_id", id).Msg("curated book deleted")
	return book, nil
}

// Search proxies a query to the external catalog, caching results.
func (s *CatalogService) Search(ctx context.Context, query string, limit int) ([]googlebooks.Volume, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrMissingQuery
	}
	if limit <= 0 {
		limit = googlebooks.DefaultSearchLimit
	}

	key := s.cacheKeys.ExternalSearch(query, limit)
	if cached, err := s.cache.Get(ctx, key); err == nil {
		var results []googlebooks.Volume
		if err := json.Unmarshal(cached, &results); err == nil {
			return results, nil
		}
	}

	results, err := s.searcher.Search(ctx, query, limit)
	if err != nil {
		s.logger.Error().Err(err).Str("query", query).Msg("external catalog search failed")
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	if data, err := json.Marshal(results); err == nil {
		_ = s.cache.Set(ctx, key, data, s.searchTTL)
	}

	return results, nil
}

// ExternalBookInput carries the caller-supplied fields for an external
// book. They are persisted only on first sight of the googleBookId and
// ignored on reuse.
type ExternalBookInput struct {
	GoogleBookID string
	ProfileID    string
	Title        string
	Author       string
	Description  string
	CoverURL     string
}

// FindOrCreateExternal returns the cached external book for a
// googleBookId, creating it if it has never been seen. The operation is
// idempotent; a concurrent create is absorbed by re-reading after a
// unique violation.
func (s *CatalogService) FindOrCreateExternal(ctx context.Context, input ExternalBookInput) (*domain.ExternalBook, error) {
	if input.GoogleBookID == "" {
		return nil, ErrMissingGoogleID
	}

	book, err := s.externalRepo.GetByGoogleID(ctx, input.GoogleBookID)
	if err == nil {
		return book, nil
	}
	if !errors.Is(err, domain.ErrExternalBookNotFound) && !errors.Is(err, repository.ErrNotFound) {
		s.logger.Error().Err(err).Str("google_book_id", input.GoogleBookID).Msg("failed to look up external book")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	book = domain.NewExternalBook(
		input.GoogleBookID,
		input.ProfileID,
		input.Title,
		input.Author,
		input.Description,
		input.CoverURL,
	)

	if err := s.externalRepo.Create(ctx, book); err != nil {
		// Lost a create race; the winner's record is the canonical one.
		if existing, lookupErr := s.externalRepo.GetByGoogleID(ctx, input.GoogleBookID); lookupErr == nil {
			return existing, nil
		}
		s.logger.Error().Err(err).Str("google_book_id", input.GoogleBookID).Msg("failed to create external book")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("external_book_id", book.ID).
		Str("google_book_id", book.GoogleBookID).
		Msg("external book cached")

	return book, nil
}
