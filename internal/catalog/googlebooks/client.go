// Package googlebooks provides a read-only client for the Google Books
// volumes API, used to proxy catalog searches.
package googlebooks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/prn-tf/bookhive/internal/config"
)

// DefaultSearchLimit caps a search when the caller does not ask for a
// specific result count.
const DefaultSearchLimit = 20

// Client provides access to the external catalog.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      zerolog.Logger
}

// NewClient creates a catalog client. Upstream requests are rate limited
// to stay well inside the public quota: 1 request per second, burst of 5.
func NewClient(cfg config.CatalogConfig, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		rateLimiter: rate.NewLimiter(rate.Limit(1), 5),
		logger:      logger.With().Str("component", "googlebooks").Logger(),
	}
}

// Search queries the volumes endpoint and returns normalized results.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Volume, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	if limit <= 0 || limit > 40 {
		limit = DefaultSearchLimit
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(limit))

	searchURL := c.baseURL + "/volumes?" + params.Encode()

	c.logger.Debug().Str("query", query).Int("limit", limit).Msg("searching external catalog")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search failed: status %d", resp.StatusCode)
	}

	var wire volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	results := make([]Volume, 0, len(wire.Items))
	for i := range wire.Items {
		results = append(results, normalizeVolume(&wire.Items[i]))
	}

	c.logger.Debug().Str("query", query).Int("count", len(results)).Msg("external catalog results")

	return results, nil
}

// normalizeVolume flattens the wire shape into the fields the API exposes.
func normalizeVolume(v *volume) Volume {
	info := v.VolumeInfo

	result := Volume{
		GoogleBookID: v.ID,
		Title:        info.Title,
		Author:       strings.Join(info.Authors, ", "),
		Description:  info.Description,
	}

	if info.ImageLinks != nil {
		result.CoverURL = info.ImageLinks.Thumbnail
		if result.CoverURL == "" {
			result.CoverURL = info.ImageLinks.SmallThumbnail
		}
	}

	return result
}
