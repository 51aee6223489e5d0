// Package handler provides HTTP handlers for the BookHive API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/prn-tf/bookhive/internal/domain"
	"github.com/prn-tf/bookhive/internal/service"
)

// errorBody is the plain error shape used by most routes.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			log.Error().Err(err).Msg("failed to encode response")
		}
	}
}

// writeMessage writes a plain {message} response.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Message: message})
}

// statusFor maps service and domain sentinels to HTTP status codes.
// Duplicate email keeps its historical 400 while duplicate favorites
// are a 409 conflict.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrProfileNotFound),
		errors.Is(err, domain.ErrBookNotFound),
		errors.Is(err, domain.ErrExternalBookNotFound),
		errors.Is(err, domain.ErrFavoriteNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrDuplicateFavorite):
		return http.StatusConflict

	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidAgeGroup),
		errors.Is(err, domain.ErrProfileAgeTooLow),
		errors.Is(err, domain.ErrInvalidFavoriteRef),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidPassword),
		errors.Is(err, service.ErrMissingName),
		errors.Is(err, service.ErrMissingTitle),
		errors.Is(err, service.ErrMissingAuthor),
		errors.Is(err, service.ErrMissingProfileID),
		errors.Is(err, service.ErrMissingBookID),
		errors.Is(err, service.ErrMissingGoogleID),
		errors.Is(err, service.ErrMissingQuery),
		errors.Is(err, service.ErrInvalidSource):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// respondError maps an error to its status and writes the plain error
// shape. Internal detail leaks only in dev mode.
func respondError(w http.ResponseWriter, err error, devMode bool) {
	status := statusFor(err)

	body := errorBody{Message: publicMessage(err, status, devMode)}
	if status == http.StatusInternalServerError && devMode {
		body.Error = err.Error()
	}

	writeJSON(w, status, body)
}

// publicMessage picks the caller-facing message for an error.
func publicMessage(err error, status int, devMode bool) string {
	if status == http.StatusInternalServerError {
		if devMode {
			return err.Error()
		}
		return "internal server error"
	}
	return err.Error()
}

// decodeBody decodes a JSON request body into dst.
func decodeBody(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
