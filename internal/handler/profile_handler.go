package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/bookhive/internal/auth"
	"github.com/prn-tf/bookhive/internal/service"
)

// ProfileHandler handles reading-profile routes. All routes require a
// verified token and operate on the caller's own profiles.
type ProfileHandler struct {
	profiles *service.ProfileService
	devMode  bool
	logger   zerolog.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profiles *service.ProfileService, devMode bool, logger zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		devMode:  devMode,
		logger:   logger.With().Str("handler", "profile").Logger(),
	}
}

// RegisterRoutes registers the profile routes.
func (h *ProfileHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/profiles", h.handleList)
	r.Post("/api/profiles", h.handleCreate)
	r.Delete("/api/profiles/{id}", h.handleDelete)
}

func (h *ProfileHandler) handleList(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.RequireIdentity(r.Context())
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, err.Error())
		return
	}

	profiles, err := h.profiles.List(r.Context(), identity.UserID)
	if err != nil {
		respondError(w, err, h.devMode)
		return
	}

	writeJSON(w, http.StatusOK, profiles)
}

func (h *ProfileHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.RequireIdentity(r.Context())
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, err.Error())
		return
	}

	var body struct {
		Name   string `json:"name"`
		Avatar string `json:"avatar"`
		Age    *int   `json:"age"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Age == nil {
		writeMessage(w, http.StatusBadRequest, "age is required")
		return
	}

	profile, err := h.profiles.Create(r.Context(), identity.UserID, service.CreateProfileInput{
		Name:   body.Name,
		Avatar: body.Avatar,
		Age:    *body.Age,
	})
	if err != nil {
		respondError(w, err, h.devMode)
		return
	}

	writeJSON(w, http.StatusCreated, profile)
}

func (h *ProfileHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.RequireIdentity(r.Context())
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, err.Error())
		return
	}

	if err := h.profiles.Delete(r.Context(), identity.UserID, chi.URLParam(r, "id")); err != nil {
		respondError(w, err, h.devMode)
		return
	}

	writeMessage(w, http.StatusOK, "profile deleted")
}
