package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/streamvault/streamvault/internal/config"
)

// Category is a catalog listing kind accepted by the movies endpoint.
type Category string

const (
	CategoryTrending Category = "trending"
	CategoryPopular  Category = "popular"
	CategoryTopRated Category = "top_rated"
)

// Categories lists every valid category.
func Categories() []Category {
	return []Category{CategoryTrending, CategoryPopular, CategoryTopRated}
}

// Valid reports whether c is one of the enumerated categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryTrending, CategoryPopular, CategoryTopRated:
		return true
	}
	return false
}

// endpoint returns the upstream path for the category.
func (c Category) endpoint() string {
	switch c {
	case CategoryTrending:
		return "/trending/movie/week"
	case CategoryPopular:
		return "/movie/popular"
	case CategoryTopRated:
		return "/movie/top_rated"
	}
	return ""
}

// Client handles integration with the TMDB catalog API
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     *logrus.Logger
}

// NewClient initializes a new TMDB client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		baseURL: cfg.TMDBBaseURL,
		apiKey:  cfg.TMDBAPIKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// Configured reports whether a server-side API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// FetchCategory requests one category listing from TMDB and returns the raw
// upstream JSON payload. The API key stays server-side; callers relay the
// payload verbatim.
func (c *Client) FetchCategory(ctx context.Context, category Category) (json.RawMessage, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("unknown category %q", category)
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("language", "en-US")
	endpoint := fmt.Sprintf("%s%s?%s", c.baseURL, category.endpoint(), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.log.Debugf("TMDB %s returned %d: %s", category, resp.StatusCode, string(body))
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return json.RawMessage(body), nil
}
