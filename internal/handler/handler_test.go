package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/bookhive/internal/auth"
	"github.com/prn-tf/bookhive/internal/cache/memory"
	"github.com/prn-tf/bookhive/internal/catalog/googlebooks"
	"github.com/prn-tf/bookhive/internal/config"
	"github.com/prn-tf/bookhive/internal/domain"
	"github.com/prn-tf/bookhive/internal/repository/sqlite"
	"github.com/prn-tf/bookhive/internal/service"
)

// stubSearcher avoids upstream calls in handler tests.
type stubSearcher struct {
	results []googlebooks.Volume
	err     error
}

func (s *stubSearcher) Search(ctx context.Context, query string, limit int) ([]googlebooks.Volume, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

type testServer struct {
	handler  http.Handler
	tokens   *auth.TokenManager
	searcher *stubSearcher
}

// newTestServer wires the full API over an in-memory SQLite database.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := zerolog.Nop()
	ctx := context.Background()

	cfg := sqlite.DefaultConfig(":memory:")
	cfg.JournalMode = "MEMORY"
	db, err := sqlite.NewDB(ctx, cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(ctx))

	repos := sqlite.NewRepositories(db)

	cache := memory.NewCache()
	t.Cleanup(cache.Stop)

	tokens := auth.NewTokenManager(config.AuthConfig{
		JWTSecret: "handler-test-secret",
		TokenTTL:  time.Hour,
		Issuer:    "bookhive",
	})

	searcher := &stubSearcher{}

	userSvc := service.NewUserService(repos.Users, tokens, logger)
	profileSvc := service.NewProfileService(repos.Profiles, logger)
	catalogSvc := service.NewCatalogService(repos.CuratedBooks, repos.ExternalBooks, searcher, cache, time.Minute, logger)
	favoriteSvc := service.NewFavoriteService(repos, catalogSvc, logger)

	router := NewRouter(RouterConfig{
		AuthHandler:     NewAuthHandler(userSvc, false, logger),
		ProfileHandler:  NewProfileHandler(profileSvc, false, logger),
		BookHandler:     NewBookHandler(catalogSvc, false, logger),
		FavoriteHandler: NewFavoriteHandler(favoriteSvc, false, logger),
		Tokens:          tokens,
		Health:          db,
		MetricsEnabled:  false,
		Logger:          logger,
	})

	return &testServer{handler: router.Handler(), tokens: tokens, searcher: searcher}
}

// do issues a request against the in-process handler.
func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

// registerAndLogin creates an account and returns its token.
func registerAndLogin(t *testing.T, ts *testServer, email string) string {
	t.Helper()

	rec := ts.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": email, "password": "secret99", "name": "Reader",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": email, "password": "secret99",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	token, _ := decodeMap(t, rec)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestAuthRoutes(t *testing.T) {
	ts := newTestServer(t)

	t.Run("register excludes password", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
			"email": "first@example.com", "password": "secret99", "name": "First",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		body := decodeMap(t, rec)
		assert.Equal(t, "first@example.com", body["email"])
		assert.Equal(t, "user", body["role"])
		assert.NotContains(t, rec.Body.String(), "secret99")
		assert.NotContains(t, rec.Body.String(), "password")
	})

	t.Run("duplicate email is 400", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
			"email": "first@example.com", "password": "secret99", "name": "Again",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("login unknown email is 404", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email": "ghost@example.com", "password": "secret99",
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("login wrong password is 401", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email": "first@example.com", "password": "wrong-pw",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("me round trip", func(t *testing.T) {
		token := registerAndLogin(t, ts, "me@example.com")
		rec := ts.do(t, http.MethodGet, "/api/auth/me", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "me@example.com", decodeMap(t, rec)["email"])
	})
}

func TestBearerGate(t *testing.T) {
	ts := newTestServer(t)

	t.Run("missing header is 401", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/auth/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong segment count is 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.Header.Set("Authorization", "token-without-bearer-prefix")
		rec := httptest.NewRecorder()
		ts.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("structurally broken token is 401", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/auth/me", "not.a", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bad signature is 403", func(t *testing.T) {
		other := auth.NewTokenManager(config.AuthConfig{
			JWTSecret: "a-different-secret",
			TokenTTL:  time.Hour,
			Issuer:    "bookhive",
		})
		forged, err := other.Issue(&domain.User{ID: uuid.NewString(), Role: domain.RoleUser})
		require.NoError(t, err)

		rec := ts.do(t, http.MethodGet, "/api/auth/me", forged, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestProfileRoutes(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "profiles@example.com")

	t.Run("create derives age group", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/profiles", token, map[string]interface{}{
			"name": "Kiddo", "age": 10,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		body := decodeMap(t, rec)
		assert.Equal(t, "child", body["ageGroup"])
		assert.Equal(t, "default-avatar.png", body["avatar"])
	})

	t.Run("age below minimum is 400", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/profiles", token, map[string]interface{}{
			"name": "Tiny", "age": 3,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing age is 400", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/profiles", token, map[string]interface{}{
			"name": "Ageless",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("foreign profile delete is 404", func(t *testing.T) {
		otherToken := registerAndLogin(t, ts, "other@example.com")
		rec := ts.do(t, http.MethodPost, "/api/profiles", otherToken, map[string]interface{}{
			"name": "Theirs", "age": 20,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		theirID := decodeMap(t, rec)["id"].(string)

		rec = ts.do(t, http.MethodDelete, "/api/profiles/"+theirID, token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestBookRoutes(t *testing.T) {
	ts := newTestServer(t)

	t.Run("create validates age group", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/manual-books", "", map[string]string{
			"title": "Matilda", "author": "Roald Dahl", "ageGroup": "toddler",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("create lowercases age group", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/manual-books", "", map[string]string{
			"title": "Matilda", "author": "Roald Dahl", "ageGroup": "Child",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "child", decodeMap(t, rec)["ageGroup"])
	})

	t.Run("get by invalid id is 400", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/manual-books/nope", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("search requires query", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/books/search?q=", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("search proxies results", func(t *testing.T) {
		ts.searcher.results = []googlebooks.Volume{
			{GoogleBookID: "vol-1", Title: "The Hobbit", Author: "J. R. R. Tolkien"},
		}
		rec := ts.do(t, http.MethodGet, "/api/books/search?q=hobbit", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "vol-1")
	})
}

func TestFavoriteRoutes(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "fav@example.com")

	// Profile and curated book to work against.
	rec := ts.do(t, http.MethodPost, "/api/profiles", token, map[string]interface{}{
		"name": "Reader", "age": 15,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	profileID := decodeMap(t, rec)["id"].(string)

	rec = ts.do(t, http.MethodPost, "/api/manual-books", "", map[string]string{
		"title": "Matilda", "author": "Roald Dahl", "ageGroup": "child",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	bookID := decodeMap(t, rec)["id"].(string)

	t.Run("list requires profileId", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/favorites", "", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeMap(t, rec)
		assert.Equal(t, false, body["success"])
	})

	t.Run("list rejects malformed profileId", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/favorites?profileId=nope", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	var favoriteID string

	t.Run("create resolves and flattens", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/favorites", "", map[string]string{
			"profileId": profileID, "source": "manual", "bookId": bookID,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		body := decodeMap(t, rec)
		require.Equal(t, true, body["success"])

		data := body["data"].(map[string]interface{})
		favoriteID = data["_id"].(string)
		assert.NotEqual(t, bookID, favoriteID, "_id is the favorite's own id")
		assert.Equal(t, "manual", data["source"])
		assert.Equal(t, "Matilda", data["title"])
	})

	t.Run("duplicate is 409", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/favorites", "", map[string]string{
			"profileId": profileID, "source": "manual", "bookId": bookID,
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("unknown source is 400", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/favorites", "", map[string]string{
			"profileId": profileID, "source": "magic", "bookId": bookID,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete requires bearer presence", func(t *testing.T) {
		rec := ts.do(t, http.MethodDelete, "/api/favorites/"+favoriteID, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("delete accepts unverified bearer", func(t *testing.T) {
		rec := ts.do(t, http.MethodDelete, "/api/favorites/"+favoriteID, "anything-goes-here", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeMap(t, rec)
		assert.Equal(t, favoriteID, body["deletedId"])
	})

	t.Run("delete unknown id is 404", func(t *testing.T) {
		rec := ts.do(t, http.MethodDelete, "/api/favorites/"+favoriteID, token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("list is empty after delete", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, fmt.Sprintf("/api/favorites?profileId=%s", profileID), "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeMap(t, rec)
		assert.Equal(t, float64(0), body["count"])
	})
}

func TestHealthRoute(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decodeMap(t, rec)["status"])
}
