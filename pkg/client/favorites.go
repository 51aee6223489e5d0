package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"
)

// Favorite is a resolved favorite as served by the list endpoint.
type Favorite struct {
	ID           string    `json:"_id"`
	ProfileID    string    `json:"profileId"`
	Source       string    `json:"source"`
	BookID       string    `json:"bookId"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	Description  string    `json:"description,omitempty"`
	CoverURL     string    `json:"coverUrl,omitempty"`
	GoogleBookID string    `json:"googleBookId,omitempty"`
	AddedAt      time.Time `json:"addedAt"`
}

// FavoritesView is a local view over a profile's favorites supporting
// optimistic removal: the entry disappears from the view immediately and
// comes back only if the server-side delete fails.
type FavoritesView struct {
	client  *Client
	session *Session

	mu      sync.Mutex
	entries []Favorite
}

// favoritesEnvelope is the wire shape of the list endpoint.
type favoritesEnvelope struct {
	Success   bool       `json:"success"`
	Count     int        `json:"count"`
	Message   string     `json:"message"`
	Data      []Favorite `json:"data"`
	DeletedID string     `json:"deletedId"`
}

// Reload fetches the list from the server, replacing the local view.
func (v *FavoritesView) Reload(ctx context.Context) error {
	if !v.session.Valid() {
		return ErrSessionExpired
	}

	path := "/api/favorites?profileId=" + url.QueryEscape(v.session.ProfileID)

	var envelope favoritesEnvelope
	if err := v.client.doJSON(ctx, "GET", path, v.session, nil, &envelope); err != nil {
		return err
	}
	if !envelope.Success {
		return fmt.Errorf("list favorites: %s", envelope.Message)
	}

	v.mu.Lock()
	v.entries = envelope.Data
	v.mu.Unlock()

	return nil
}

// Entries returns a copy of the current local view.
func (v *FavoritesView) Entries() []Favorite {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]Favorite, len(v.entries))
	copy(out, v.entries)
	return out
}

// RemoveOptimistic removes the favorite from the local view immediately
// and issues the delete with a bounded timeout. On failure, timeout or a
// non-success payload the view rolls back to its exact pre-update state.
// A 404 instead triggers a full reload, since the resource is confirmed
// gone. No automatic retries.
func (v *FavoritesView) RemoveOptimistic(ctx context.Context, id string) error {
	if !v.session.Valid() {
		return ErrSessionExpired
	}

	v.mu.Lock()
	snapshot := make([]Favorite, len(v.entries))
	copy(snapshot, v.entries)

	kept := v.entries[:0:0]
	found := false
	for _, e := range v.entries {
		if e.ID == id {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	v.entries = kept
	v.mu.Unlock()

	if !found {
		return fmt.Errorf("favorite %s not in view", id)
	}

	reqCtx, cancel := context.WithTimeout(ctx, v.client.removeTimeout)
	defer cancel()

	var envelope favoritesEnvelope
	err := v.client.doJSON(reqCtx, "DELETE", "/api/favorites/"+url.PathEscape(id), v.session, nil, &envelope)

	switch {
	case err == nil && envelope.Success:
		return nil

	case errors.Is(err, ErrSessionExpired):
		// Forced logout; the view is stale either way.
		return ErrSessionExpired

	case IsNotFound(err):
		// Confirmed gone server-side; resync instead of rolling back.
		if reloadErr := v.Reload(ctx); reloadErr != nil {
			return reloadErr
		}
		return nil

	default:
		v.rollback(snapshot)
		if err != nil {
			return fmt.Errorf("remove favorite: %w", err)
		}
		return fmt.Errorf("remove favorite: %s", envelope.Message)
	}
}

// rollback restores the pre-update view.
func (v *FavoritesView) rollback(snapshot []Favorite) {
	v.mu.Lock()
	v.entries = snapshot
	v.mu.Unlock()
}
