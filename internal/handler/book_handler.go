package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/bookhive/internal/service"
)

// BookHandler handles the curated catalog and the proxied external
// search. The curated routes are deliberately unauthenticated and
// unscoped.
type BookHandler struct {
	catalog *service.CatalogService
	devMode bool
	logger  zerolog.Logger
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(catalog *service.CatalogService, devMode bool, logger zerolog.Logger) *BookHandler {
	return &BookHandler{
		catalog: catalog,
		devMode: devMode,
		logger:  logger.With().Str("handler", "book").Logger(),
	}
}

// RegisterRoutes registers the catalog routes.
func (h *BookHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/manual-books", h.handleCreate)
	r.Get("/api/manual-books", h.handleList)
	r.Get("/api/manual-books/{id}", h.handleGet)
	r.Delete("/api/manual-books/{id}", h.handleDelete)

	r.Get("/api/books/search", h.handleSearch)
}

func (h *BookHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title       string `json:"title"`
		Author      string `json:"author"`
		Description string `json:"description"`
		CoverURL    string `json:"coverUrl"`
		AgeGroup    string `json:"ageGroup"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	book, err := h.catalog.CreateCurated(r.Context(), service.CreateCuratedInput{
		Title:       body.Title,
		Author:      body.Author,
		Description: body.Description,
		CoverURL:    body.CoverURL,
		AgeGroup:    body.AgeGroup,
	})
	if err != nil {
		respondError(w, err, h.devMode)
		return
	}

	writeJSON(w, http.StatusCreated, book)
}

func (h *BookHandler) handleList(w http.ResponseWriter, r *http.Request) {
	books, err := h.catalog.ListCurated(r.Context(), r.URL.Query().Get("ageGroup"))
	if err != nil {
		respondError(w, err, h.devMode)
		return
	}

	writeJSON(w, http.StatusOK, books)
}

func (h *BookHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	book, err := h.catalog.GetCurated(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err, h.devMode)
		return
	}

	writeJSON(w, http.StatusOK, book)
}

func (h *BookHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	book, err := h.catalog.DeleteCurated(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err, h.devMode)
		return
	}

	writeJSON(w, http.StatusOK, book)
}

func (h *BookHandler) handleSearch(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results, err := h.catalog.Search(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		respondError(w, err, h.devMode)
		return
	}

	writeJSON(w, http.StatusOK, results)
}
