package imdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/amaumene/goflicks/internal/config"
	"github.com/sirupsen/logrus"
)

const (
	apiLang = "en"

	// Responses are small JSON documents; cap reads defensively.
	maxResponseSize = 4 * 1024 * 1024
)

var (
	// ErrNotFound means the upstream answered but flagged the title or
	// trailer as missing via its errorMessage sentinel.
	ErrNotFound = errors.New("not found upstream")

	// ErrNoResults means a search completed with an empty match list.
	ErrNoResults = errors.New("no search results")
)

// Client handles communication with the IMDB API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new IMDB API client
func NewClient(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	if cfg.IMDbAPIKey == "" {
		return nil, fmt.Errorf("IMDB API key is required")
	}

	return &Client{
		baseURL:    cfg.IMDbAPIURL,
		apiKey:     cfg.IMDbAPIKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}, nil
}

// get performs a single GET against the API. No retries: a metadata lookup
// that fails is surfaced to the caller as-is.
func (c *Client) get(ctx context.Context, operation string, pathParams ...string) (json.RawMessage, error) {
	fullURL := fmt.Sprintf("%s/%s/API/%s/%s", c.baseURL, apiLang, operation, c.apiKey)
	for _, param := range pathParams {
		fullURL += "/" + url.PathEscape(param)
	}

	c.logger.WithFields(logrus.Fields{
		"operation": operation,
	}).Debug("Making IMDB API request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("IMDB API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("IMDB API returned invalid JSON")
	}

	return body, nil
}

// Title fetches the full details of a movie by IMDB ID. The payload is passed
// through untouched. Upstream marks a missing title by setting errorMessage to
// any string; only a null (or absent) errorMessage means the title exists.
func (c *Client) Title(ctx context.Context, id string) (json.RawMessage, error) {
	body, err := c.get(ctx, "Title", id)
	if err != nil {
		return nil, err
	}

	var probe struct {
		ErrorMessage *string `json:"errorMessage"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if probe.ErrorMessage != nil {
		return nil, ErrNotFound
	}

	return body, nil
}

// Search looks up movies matching the expression. An empty match list is
// reported as ErrNoResults so the handler can answer with its fixed
// no-results message instead of an empty array.
func (c *Client) Search(ctx context.Context, expression string) (json.RawMessage, error) {
	body, err := c.get(ctx, "SearchMovie", expression)
	if err != nil {
		return nil, err
	}

	var probe struct {
		Results []json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if probe.Results == nil {
		return nil, fmt.Errorf("IMDB API returned no results field")
	}
	if len(probe.Results) == 0 {
		return nil, ErrNoResults
	}

	return body, nil
}

// Top250 fetches the upstream top 250 ranking, passed through without any
// local re-ranking.
func (c *Client) Top250(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "Top250Movies")
}

// Trailer fetches the embeddable trailer link for a movie. The sentinel here
// is the opposite of Title's: the trailer exists only when errorMessage is
// present and exactly the empty string.
func (c *Client) Trailer(ctx context.Context, id string) (json.RawMessage, error) {
	body, err := c.get(ctx, "Trailer", id)
	if err != nil {
		return nil, err
	}

	var probe struct {
		ErrorMessage *string `json:"errorMessage"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if probe.ErrorMessage == nil || *probe.ErrorMessage != "" {
		return nil, ErrNotFound
	}

	return body, nil
}
