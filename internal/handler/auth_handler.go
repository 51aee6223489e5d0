package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/bookhive/internal/auth"
	"github.com/prn-tf/bookhive/internal/domain"
	"github.com/prn-tf/bookhive/internal/service"
)

// AuthHandler handles account registration and login.
type AuthHandler struct {
	users   *service.UserService
	devMode bool
	logger  zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users *service.UserService, devMode bool, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		users:   users,
		devMode: devMode,
		logger:  logger.With().Str("handler", "auth").Logger(),
	}
}

// RegisterRoutes registers the public auth routes. The /me route is
// registered separately behind the verified-bearer middleware.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/auth/register", h.handleRegister)
	r.Post("/api/auth/login", h.handleLogin)
}

// RegisterProtectedRoutes registers routes that need a verified token.
func (h *AuthHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/api/auth/me", h.handleMe)
}

// userSummary is the caller-facing account shape. The password hash
// never appears here.
type userSummary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func summarize(user *domain.User) userSummary {
	return userSummary{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  string(user.Role),
	}
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
		Role     string `json:"role"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.Register(r.Context(), service.RegisterInput{
		Email:    body.Email,
		Password: body.Password,
		Name:     body.Name,
		Role:     body.Role,
	})
	if err != nil {
		respondError(w, err, h.devMode)
		return
	}

	writeJSON(w, http.StatusCreated, summarize(user))
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := h.users.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		respondError(w, err, h.devMode)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": out.Token,
		"user":  summarize(out.User),
	})
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.RequireIdentity(r.Context())
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, err.Error())
		return
	}

	user, err := h.users.Me(r.Context(), identity.UserID)
	if err != nil {
		respondError(w, err, h.devMode)
		return
	}

	writeJSON(w, http.StatusOK, summarize(user))
}
