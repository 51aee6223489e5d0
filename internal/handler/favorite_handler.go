package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/bookhive/internal/domain"
	"github.com/prn-tf/bookhive/internal/service"
)

// FavoriteHandler handles per-profile favorites. These routes use the
// {success, ...} envelope.
type FavoriteHandler struct {
	favorites *service.FavoriteService
	devMode   bool
	logger    zerolog.Logger
}

// NewFavoriteHandler creates a new FavoriteHandler.
func NewFavoriteHandler(favorites *service.FavoriteService, devMode bool, logger zerolog.Logger) *FavoriteHandler {
	return &FavoriteHandler{
		favorites: favorites,
		devMode:   devMode,
		logger:    logger.With().Str("handler", "favorite").Logger(),
	}
}

// RegisterRoutes registers the list and create routes.
func (h *FavoriteHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/favorites", h.handleList)
	r.Post("/api/favorites", h.handleCreate)
}

// RegisterDeleteRoute registers the delete route separately so the
// router can keep its weaker bearer-presence gate.
func (h *FavoriteHandler) RegisterDeleteRoute(r chi.Router) {
	r.Delete("/api/favorites/{id}", h.handleDelete)
}

// respondFavoriteError writes an error in the {success, message} envelope.
func (h *FavoriteHandler) respondFavoriteError(w http.ResponseWriter, err error) {
	status := statusFor(err)

	body := map[string]interface{}{
		"success": false,
		"message": publicMessage(err, status, h.devMode),
	}
	if status == http.StatusInternalServerError && h.devMode {
		body["error"] = err.Error()
	}

	writeJSON(w, status, body)
}

func (h *FavoriteHandler) handleList(w http.ResponseWriter, r *http.Request) {
	profileID := r.URL.Query().Get("profileId")
	if profileID == "" {
		h.respondFavoriteError(w, service.ErrMissingProfileID)
		return
	}

	resolved, err := h.favorites.List(r.Context(), profileID)
	if err != nil {
		h.respondFavoriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   len(resolved),
		"data":    resolved,
	})
}

func (h *FavoriteHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProfileID    string `json:"profileId"`
		Source       string `json:"source"`
		BookID       string `json:"bookId"`
		GoogleBookID string `json:"googleBookId"`
		Title        string `json:"title"`
		Author       string `json:"author"`
		Description  string `json:"description"`
		CoverURL     string `json:"coverUrl"`
	}
	if err := decodeBody(r, &body); err != nil {
		h.respondFavoriteError(w, domain.ErrInvalidFavoriteRef)
		return
	}

	resolved, err := h.favorites.Add(r.Context(), service.AddFavoriteInput{
		ProfileID:    body.ProfileID,
		Source:       body.Source,
		BookID:       body.BookID,
		GoogleBookID: body.GoogleBookID,
		Title:        body.Title,
		Author:       body.Author,
		Description:  body.Description,
		CoverURL:     body.CoverURL,
	})
	if err != nil {
		h.respondFavoriteError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "favorite added",
		"data":    resolved,
	})
}

func (h *FavoriteHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.favorites.Remove(r.Context(), id); err != nil {
		h.respondFavoriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"message":   "favorite removed",
		"deletedId": id,
	})
}
