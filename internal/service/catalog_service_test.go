package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/bookhive/internal/catalog/googlebooks"
	"github.com/prn-tf/bookhive/internal/domain"
)

func newTestCatalogService(searcher CatalogSearcher) (*CatalogService, *mockCuratedBookRepository, *mockExternalBookRepository) {
	curated := newMockCuratedBookRepository()
	external := newMockExternalBookRepository()
	svc := NewCatalogService(curated, external, searcher, newMockCache(), time.Minute, zerolog.Nop())
	return svc, curated, external
}

func TestCatalogService_CreateCurated(t *testing.T) {
	tests := []struct {
		name      string
		input     CreateCuratedInput
		wantErr   error
		wantGroup domain.AgeGroup
	}{
		{
			name:      "success",
			input:     CreateCuratedInput{Title: "Matilda", Author: "Roald Dahl", AgeGroup: "child"},
			wantGroup: domain.AgeGroupChild,
		},
		{
			name:      "age group lowercased",
			input:     CreateCuratedInput{Title: "Dune", Author: "Frank Herbert", AgeGroup: "Adult"},
			wantGroup: domain.AgeGroupAdult,
		},
		{
			name:    "missing title",
			input:   CreateCuratedInput{Author: "Roald Dahl", AgeGroup: "child"},
			wantErr: ErrMissingTitle,
		},
		{
			name:    "missing author",
			input:   CreateCuratedInput{Title: "Matilda", AgeGroup: "child"},
			wantErr: ErrMissingAuthor,
		},
		{
			name:    "bad age group",
			input:   CreateCuratedInput{Title: "Matilda", Author: "Roald Dahl", AgeGroup: "toddler"},
			wantErr: domain.ErrInvalidAgeGroup,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestCatalogService(&mockSearcher{})

			book, err := svc.CreateCurated(context.Background(), tt.input)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.input.Title, book.Title)
			assert.Equal(t, tt.wantGroup, book.AgeGroup)
		})
	}
}

func TestCatalogService_GetCurated(t *testing.T) {
	svc, curated, _ := newTestCatalogService(&mockSearcher{})

	book, err := svc.CreateCurated(context.Background(), CreateCuratedInput{
		Title: "Matilda", Author: "Roald Dahl", AgeGroup: "child",
	})
	require.NoError(t, err)

	t.Run("found", func(t *testing.T) {
		got, err := svc.GetCurated(context.Background(), book.ID)
		require.NoError(t, err)
		assert.Equal(t, book.Title, got.Title)
	})

	t.Run("served from cache after backing delete", func(t *testing.T) {
		// Prime the cache.
		_, err := svc.GetCurated(context.Background(), book.ID)
		require.NoError(t, err)

		delete(curated.books, book.ID)

		got, err := svc.GetCurated(context.Background(), book.ID)
		require.NoError(t, err)
		assert.Equal(t, book.ID, got.ID)
	})

	t.Run("invalid id", func(t *testing.T) {
		_, err := svc.GetCurated(context.Background(), "nope")
		require.ErrorIs(t, err, domain.ErrInvalidID)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.GetCurated(context.Background(), "019194a1-0000-7000-8000-000000000000")
		require.ErrorIs(t, err, domain.ErrBookNotFound)
	})
}

func TestCatalogService_ListCurated(t *testing.T) {
	svc, _, _ := newTestCatalogService(&mockSearcher{})

	_, err := svc.CreateCurated(context.Background(), CreateCuratedInput{Title: "Matilda", Author: "Roald Dahl", AgeGroup: "child"})
	require.NoError(t, err)
	_, err = svc.CreateCurated(context.Background(), CreateCuratedInput{Title: "Dune", Author: "Frank Herbert", AgeGroup: "adult"})
	require.NoError(t, err)

	all, err := svc.ListCurated(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	children, err := svc.ListCurated(context.Background(), "child")
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "Matilda", children[0].Title)

	none, err := svc.ListCurated(context.Background(), "toddler")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCatalogService_Search(t *testing.T) {
	results := []googlebooks.Volume{
		{GoogleBookID: "vol-1", Title: "The Hobbit", Author: "J. R. R. Tolkien"},
	}

	t.Run("results cached across calls", func(t *testing.T) {
		searcher := &mockSearcher{results: results}
		svc, _, _ := newTestCatalogService(searcher)

		first, err := svc.Search(context.Background(), "hobbit", 10)
		require.NoError(t, err)
		require.Len(t, first, 1)

		second, err := svc.Search(context.Background(), "hobbit", 10)
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, 1, searcher.calls)
	})

	t.Run("empty query", func(t *testing.T) {
		svc, _, _ := newTestCatalogService(&mockSearcher{})
		_, err := svc.Search(context.Background(), "   ", 10)
		require.ErrorIs(t, err, ErrMissingQuery)
	})

	t.Run("upstream failure", func(t *testing.T) {
		svc, _, _ := newTestCatalogService(&mockSearcher{err: errors.New("boom")})
		_, err := svc.Search(context.Background(), "hobbit", 10)
		require.ErrorIs(t, err, ErrCatalogUnavailable)
	})
}

func TestCatalogService_FindOrCreateExternal(t *testing.T) {
	svc, _, external := newTestCatalogService(&mockSearcher{})

	input := ExternalBookInput{
		GoogleBookID: "vol-42",
		ProfileID:    "profile-1",
		Title:        "The Hobbit",
		Author:       "J. R. R. Tolkien",
	}

	first, err := svc.FindOrCreateExternal(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "vol-42", first.GoogleBookID)

	// Second call with different metadata reuses the record untouched.
	second, err := svc.FindOrCreateExternal(context.Background(), ExternalBookInput{
		GoogleBookID: "vol-42",
		ProfileID:    "profile-2",
		Title:        "Renamed",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "The Hobbit", second.Title)
	assert.Equal(t, "profile-1", second.ProfileID)

	count, err := external.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	t.Run("missing google id", func(t *testing.T) {
		_, err := svc.FindOrCreateExternal(context.Background(), ExternalBookInput{})
		require.ErrorIs(t, err, ErrMissingGoogleID)
	})
}
