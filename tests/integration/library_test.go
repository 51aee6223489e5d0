// Package integration provides end-to-end tests for the BookHive API,
// running the full HTTP stack over an in-memory SQLite database.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/bookhive/internal/auth"
	"github.com/prn-tf/bookhive/internal/cache/memory"
	"github.com/prn-tf/bookhive/internal/catalog/googlebooks"
	"github.com/prn-tf/bookhive/internal/config"
	"github.com/prn-tf/bookhive/internal/handler"
	"github.com/prn-tf/bookhive/internal/repository/sqlite"
	"github.com/prn-tf/bookhive/internal/service"
	"github.com/prn-tf/bookhive/pkg/client"
)

// stubSearcher stands in for the external catalog.
type stubSearcher struct {
	results []googlebooks.Volume
}

func (s *stubSearcher) Search(ctx context.Context, query string, limit int) ([]googlebooks.Volume, error) {
	return s.results, nil
}

type testEnv struct {
	server   *httptest.Server
	client   *client.Client
	searcher *stubSearcher
}

// newTestEnv starts a fully wired server on an in-memory database.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zerolog.Nop()
	ctx := context.Background()

	dbCfg := sqlite.DefaultConfig(":memory:")
	dbCfg.JournalMode = "MEMORY"
	db, err := sqlite.NewDB(ctx, dbCfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(ctx))

	repos := sqlite.NewRepositories(db)

	cache := memory.NewCache()
	t.Cleanup(cache.Stop)

	tokens := auth.NewTokenManager(config.AuthConfig{
		JWTSecret: "integration-test-secret",
		TokenTTL:  time.Hour,
		Issuer:    "bookhive",
	})

	searcher := &stubSearcher{}

	userSvc := service.NewUserService(repos.Users, tokens, logger)
	profileSvc := service.NewProfileService(repos.Profiles, logger)
	catalogSvc := service.NewCatalogService(repos.CuratedBooks, repos.ExternalBooks, searcher, cache, time.Minute, logger)
	favoriteSvc := service.NewFavoriteService(repos, catalogSvc, logger)

	router := handler.NewRouter(handler.RouterConfig{
		AuthHandler:     handler.NewAuthHandler(userSvc, false, logger),
		ProfileHandler:  handler.NewProfileHandler(profileSvc, false, logger),
		BookHandler:     handler.NewBookHandler(catalogSvc, false, logger),
		FavoriteHandler: handler.NewFavoriteHandler(favoriteSvc, false, logger),
		Tokens:          tokens,
		Health:          db,
		MetricsEnabled:  false,
		Logger:          logger,
	})

	srv := httptest.NewServer(router.Handler())
	t.Cleanup(srv.Close)

	return &testEnv{
		server:   srv,
		client:   client.New(srv.URL),
		searcher: searcher,
	}
}

// request issues a JSON request and decodes the response body into a map.
func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var m map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&m))
	return resp.StatusCode, m
}

// signup registers an account, logs in through the API client and
// creates a reading profile, returning the ready session.
func (e *testEnv) signup(t *testing.T, email string, age int) (*client.Session, string) {
	t.Helper()

	status, _ := e.request(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": email, "password": "secret99", "name": "Reader",
	})
	require.Equal(t, http.StatusCreated, status)

	session, err := e.client.Login(context.Background(), email, "secret99")
	require.NoError(t, err)
	require.True(t, session.Valid())

	status, body := e.request(t, http.MethodPost, "/api/profiles", session.Token, map[string]interface{}{
		"name": "Reader Profile", "age": age,
	})
	require.Equal(t, http.StatusCreated, status)

	profileID, _ := body["id"].(string)
	require.NotEmpty(t, profileID)
	session.ProfileID = profileID

	return session, session.Token
}

func TestLibraryFlow_CuratedFavorite(t *testing.T) {
	e := newTestEnv(t)
	session, token := e.signup(t, "flow@example.com", 15)

	// Curate a book.
	status, book := e.request(t, http.MethodPost, "/api/manual-books", token, map[string]string{
		"title": "Matilda", "author": "Roald Dahl", "ageGroup": "Child",
	})
	require.Equal(t, http.StatusCreated, status)
	bookID := book["id"].(string)
	assert.Equal(t, "child", book["ageGroup"], "age group labels are stored lowercase")

	// Favorite it.
	status, created := e.request(t, http.MethodPost, "/api/favorites", "", map[string]string{
		"profileId": session.ProfileID, "source": "manual", "bookId": bookID,
	})
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, true, created["success"])

	data := created["data"].(map[string]interface{})
	favoriteID := data["_id"].(string)
	assert.NotEqual(t, bookID, favoriteID, "the favorite carries its own id")
	assert.Equal(t, bookID, data["bookId"])
	assert.Equal(t, "manual", data["source"])
	assert.Equal(t, "Matilda", data["title"])

	// The same pair again is rejected and the list is unchanged.
	status, dup := e.request(t, http.MethodPost, "/api/favorites", "", map[string]string{
		"profileId": session.ProfileID, "source": "manual", "bookId": bookID,
	})
	require.Equal(t, http.StatusConflict, status)
	assert.Equal(t, false, dup["success"])

	status, list := e.request(t, http.MethodGet, "/api/favorites?profileId="+session.ProfileID, "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, list["count"])

	// Remove through the optimistic client view.
	view := e.client.Favorites(session)
	require.NoError(t, view.Reload(context.Background()))
	require.Len(t, view.Entries(), 1)

	require.NoError(t, view.RemoveOptimistic(context.Background(), favoriteID))
	assert.Empty(t, view.Entries())

	status, list = e.request(t, http.MethodGet, "/api/favorites?profileId="+session.ProfileID, "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, list["count"])
}

func TestLibraryFlow_ExternalFavoriteAndSearch(t *testing.T) {
	e := newTestEnv(t)
	session, _ := e.signup(t, "external@example.com", 30)

	e.searcher.results = []googlebooks.Volume{
		{GoogleBookID: "gb-hobbit", Title: "The Hobbit", Author: "J.R.R. Tolkien"},
	}

	// The proxied search surfaces the upstream volume.
	status, _ := e.request(t, http.MethodGet, "/api/books/search?q=hobbit", "", nil)
	require.Equal(t, http.StatusOK, status)

	addExternal := func() (int, map[string]interface{}) {
		return e.request(t, http.MethodPost, "/api/favorites", "", map[string]string{
			"profileId":    session.ProfileID,
			"source":       "external",
			"googleBookId": "gb-hobbit",
			"title":        "The Hobbit",
			"author":       "J.R.R. Tolkien",
		})
	}

	status, created := addExternal()
	require.Equal(t, http.StatusCreated, status)
	data := created["data"].(map[string]interface{})
	assert.Equal(t, "external", data["source"])
	assert.Equal(t, "gb-hobbit", data["googleBookId"])

	// Re-adding the same external book is a duplicate, not a second
	// cached copy.
	status, _ = addExternal()
	require.Equal(t, http.StatusConflict, status)
}

func TestLibraryFlow_OrphanCleanupOnList(t *testing.T) {
	e := newTestEnv(t)
	session, token := e.signup(t, "orphan@example.com", 10)

	status, book := e.request(t, http.MethodPost, "/api/manual-books", token, map[string]string{
		"title": "Gone Soon", "author": "Nobody", "ageGroup": "child",
	})
	require.Equal(t, http.StatusCreated, status)
	bookID := book["id"].(string)

	status, _ = e.request(t, http.MethodPost, "/api/favorites", "", map[string]string{
		"profileId": session.ProfileID, "source": "manual", "bookId": bookID,
	})
	require.Equal(t, http.StatusCreated, status)

	// Deleting the curated book strands the favorite.
	status, _ = e.request(t, http.MethodDelete, "/api/manual-books/"+bookID, token, nil)
	require.Equal(t, http.StatusOK, status)

	// The next list sweeps it out, and stays empty on repeat reads.
	status, list := e.request(t, http.MethodGet, "/api/favorites?profileId="+session.ProfileID, "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, list["count"])

	status, list = e.request(t, http.MethodGet, "/api/favorites?profileId="+session.ProfileID, "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, list["count"])
}

func TestLibraryFlow_DeleteRequiresBearerPresence(t *testing.T) {
	e := newTestEnv(t)

	req, err := http.NewRequest(http.MethodDelete, e.server.URL+"/api/favorites/some-id", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
