package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// favoritesServer simulates the favorites endpoints with scriptable
// delete behavior.
type favoritesServer struct {
	entries      []Favorite
	deleteStatus int
	deleteBody   string
	deleteDelay  time.Duration
	deleteCalls  int
}

func (s *favoritesServer) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/favorites", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"count":   len(s.entries),
			"data":    s.entries,
		})
	})

	mux.HandleFunc("/api/favorites/", func(w http.ResponseWriter, r *http.Request) {
		s.deleteCalls++
		if s.deleteDelay > 0 {
			time.Sleep(s.deleteDelay)
		}

		id := strings.TrimPrefix(r.URL.Path, "/api/favorites/")

		w.Header().Set("Content-Type", "application/json")
		if s.deleteBody != "" {
			w.WriteHeader(s.deleteStatus)
			_, _ = w.Write([]byte(s.deleteBody))
			return
		}

		// Default: succeed and drop the entry.
		for i, e := range s.entries {
			if e.ID == id {
				s.entries = append(s.entries[:i], s.entries[i+1:]...)
				break
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success":   true,
			"message":   "favorite removed",
			"deletedId": id,
		})
	})

	return mux
}

func newTestView(t *testing.T, srv *favoritesServer, opts ...Option) (*FavoritesView, *Session) {
	t.Helper()

	ts := httptest.NewServer(srv.handler())
	t.Cleanup(ts.Close)

	session := &Session{Token: "token", ProfileID: "profile-1"}
	view := New(ts.URL, opts...).Favorites(session)
	require.NoError(t, view.Reload(context.Background()))
	return view, session
}

func twoFavorites() []Favorite {
	return []Favorite{
		{ID: "fav-1", ProfileID: "profile-1", Source: "manual", Title: "Matilda"},
		{ID: "fav-2", ProfileID: "profile-1", Source: "external", Title: "The Hobbit"},
	}
}

func TestFavoritesView_RemoveOptimistic(t *testing.T) {
	srv := &favoritesServer{entries: twoFavorites()}
	view, _ := newTestView(t, srv)

	require.NoError(t, view.RemoveOptimistic(context.Background(), "fav-1"))

	entries := view.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "fav-2", entries[0].ID)
	assert.Equal(t, 1, srv.deleteCalls, "no automatic retries")
}

func TestFavoritesView_RollbackOnServerError(t *testing.T) {
	srv := &favoritesServer{
		entries:      twoFavorites(),
		deleteStatus: http.StatusInternalServerError,
		deleteBody:   `{"success":false,"message":"boom"}`,
	}
	view, _ := newTestView(t, srv)
	before := view.Entries()

	err := view.RemoveOptimistic(context.Background(), "fav-1")
	require.Error(t, err)

	assert.Equal(t, before, view.Entries(), "view rolls back to its exact pre-update state")
	assert.Equal(t, 1, srv.deleteCalls)
}

func TestFavoritesView_RollbackOnNonSuccessPayload(t *testing.T) {
	srv := &favoritesServer{
		entries:      twoFavorites(),
		deleteStatus: http.StatusOK,
		deleteBody:   `{"success":false,"message":"storage hiccup"}`,
	}
	view, _ := newTestView(t, srv)
	before := view.Entries()

	err := view.RemoveOptimistic(context.Background(), "fav-1")
	require.Error(t, err)
	assert.Equal(t, before, view.Entries())
}

func TestFavoritesView_RollbackOnTimeout(t *testing.T) {
	srv := &favoritesServer{
		entries:     twoFavorites(),
		deleteDelay: 200 * time.Millisecond,
	}
	view, _ := newTestView(t, srv, WithRemoveTimeout(20*time.Millisecond))
	before := view.Entries()

	err := view.RemoveOptimistic(context.Background(), "fav-1")
	require.Error(t, err)
	assert.Equal(t, before, view.Entries(), "timed-out delete rolls the view back")
}

func TestFavoritesView_NotFoundTriggersReload(t *testing.T) {
	srv := &favoritesServer{
		entries:      twoFavorites(),
		deleteStatus: http.StatusNotFound,
		deleteBody:   `{"success":false,"message":"favorite not found"}`,
	}
	view, _ := newTestView(t, srv)

	// Server-side the list has moved on; the reload must pick that up.
	srv.entries = srv.entries[1:]

	require.NoError(t, view.RemoveOptimistic(context.Background(), "fav-1"))

	entries := view.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "fav-2", entries[0].ID)
}

func TestFavoritesView_UnauthorizedClearsSession(t *testing.T) {
	srv := &favoritesServer{
		entries:      twoFavorites(),
		deleteStatus: http.StatusUnauthorized,
		deleteBody:   `{"success":false,"message":"token missing"}`,
	}
	view, session := newTestView(t, srv)

	err := view.RemoveOptimistic(context.Background(), "fav-1")
	require.ErrorIs(t, err, ErrSessionExpired)

	assert.False(t, session.Valid(), "session is invalidated")
	assert.Empty(t, session.ProfileID)

	// Subsequent calls fail fast without a credential.
	err = view.RemoveOptimistic(context.Background(), "fav-2")
	require.ErrorIs(t, err, ErrSessionExpired)
}

func TestFavoritesView_RemoveUnknownIDLocally(t *testing.T) {
	srv := &favoritesServer{entries: twoFavorites()}
	view, _ := newTestView(t, srv)

	err := view.RemoveOptimistic(context.Background(), "fav-99")
	require.Error(t, err)
	assert.Equal(t, 0, srv.deleteCalls, "no request for an entry not in the view")
	assert.Len(t, view.Entries(), 2)
}
