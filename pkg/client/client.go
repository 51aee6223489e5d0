// Package client provides a Go client for the BookHive API, including
// the optimistic favorites view used by interactive frontends.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultRemoveTimeout bounds an optimistic favorite removal request.
const DefaultRemoveTimeout = 8 * time.Second

// ErrSessionExpired indicates the server rejected the session credential.
// The session is cleared before this is returned.
var ErrSessionExpired = errors.New("session expired")

// APIError carries the status and message of a non-success response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 API error.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Session holds the caller's credential and active profile. It is passed
// explicitly into every call; the client keeps no ambient state.
type Session struct {
	Token     string
	ProfileID string
}

// Valid reports whether the session still carries a credential.
func (s *Session) Valid() bool {
	return s != nil && s.Token != ""
}

// Clear drops the credential and active profile.
func (s *Session) Clear() {
	s.Token = ""
	s.ProfileID = ""
}

// Client is a BookHive API client.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	removeTimeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRemoveTimeout bounds optimistic removal requests.
func WithRemoveTimeout(d time.Duration) Option {
	return func(c *Client) { c.removeTimeout = d }
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		removeTimeout: DefaultRemoveTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login exchanges credentials for a session. The profile is selected
// separately by the caller.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}

	var out struct {
		Token string `json:"token"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", nil, body, &out); err != nil {
		return nil, err
	}

	return &Session{Token: out.Token}, nil
}

// Favorites returns a favorites view bound to the session's profile.
func (c *Client) Favorites(session *Session) *FavoritesView {
	return &FavoritesView{client: c, session: session}
}

// doJSON issues a request and decodes the response. A 401 clears the
// session and returns ErrSessionExpired.
func (c *Client) doJSON(ctx context.Context, method, path string, session *Session, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session.Valid() {
		req.Header.Set("Authorization", "Bearer "+session.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		if session != nil {
			session.Clear()
		}
		return ErrSessionExpired
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: readMessage(resp.Body)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}

// readMessage pulls the message field out of an error payload.
func readMessage(r io.Reader) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return ""
	}
	return body.Message
}
