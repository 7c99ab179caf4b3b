// Package waqi provides a client for the World Air Quality Index API.
package waqi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/veloair/veloair/internal/provider/resilience"
	"github.com/veloair/veloair/pkg/geo"
)

const (
	// DefaultBaseURL is the base URL for the WAQI API.
	DefaultBaseURL = "https://api.waqi.info"

	// DefaultTimeout bounds a single API request.
	DefaultTimeout = 5 * time.Second

	// ProviderName identifies this provider.
	ProviderName = "waqi"

	statusOK = "ok"
)

// ClientConfig holds configuration for the WAQI client.
type ClientConfig struct {
	// Token is the WAQI API token (required).
	Token string

	// BaseURL is the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// HTTPClient is the HTTP client to use (must implement HTTPDoer).
	// If nil, a default resilient client will be created.
	HTTPClient HTTPDoer

	// Timeout for individual API requests (default: DefaultTimeout).
	Timeout time.Duration

	// Registry tracks provider health (optional).
	Registry *resilience.Registry
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a WAQI API client.
type Client struct {
	token      string
	baseURL    string
	httpClient HTTPDoer
}

// NewClient creates a new WAQI client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		httpClient = resilience.NewClient(resilience.ClientConfig{
			Name:    ProviderName,
			Timeout: timeout,
			// FetchAQI runs its own bounded retry loop.
			DisableRetry: true,
			Registry:     cfg.Registry,
		})
	}

	return &Client{
		token:      cfg.Token,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// FetchAQI returns the AQI reading nearest to the given coordinate.
// It queries the geo feed first and falls back to a nearby-station search
// when the feed has no reading. Transient failures are retried twice with
// a fixed one-second backoff; after that the point degrades to "no data".
func (c *Client) FetchAQI(ctx context.Context, coord geo.Coordinate) (int, bool, error) {
	var (
		aqi int
		ok  bool
	)

	op := func() error {
		var err error
		aqi, ok, err = c.fetchOnce(ctx, coord)
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Second), 2), ctx)

	if err := backoff.Retry(op, policy); err != nil {
		return 0, false, fmt.Errorf("fetch aqi for %s: %w", coord, err)
	}
	return aqi, ok, nil
}

// fetchOnce runs the full lookup cascade a single time.
func (c *Client) fetchOnce(ctx context.Context, coord geo.Coordinate) (int, bool, error) {
	feedURL := fmt.Sprintf("%s/feed/geo:%f;%f/?token=%s", c.baseURL, coord.Lat, coord.Lng, c.token)

	var feed feedResponse
	if err := c.getJSON(ctx, feedURL, &feed); err != nil {
		return 0, false, err
	}
	if aqi, ok := feedAQI(&feed); ok {
		return aqi, true, nil
	}

	// The geo feed had no reading; look for the nearest station instead.
	searchURL := fmt.Sprintf("%s/search/?token=%s&keyword=%f,%f", c.baseURL, c.token, coord.Lat, coord.Lng)

	var search searchResponse
	if err := c.getJSON(ctx, searchURL, &search); err != nil {
		return 0, false, err
	}
	if search.Status != statusOK || len(search.Data) == 0 {
		return 0, false, nil
	}

	stationURL := fmt.Sprintf("%s/feed/@%d/?token=%s", c.baseURL, search.Data[0].UID, c.token)

	var station feedResponse
	if err := c.getJSON(ctx, stationURL, &station); err != nil {
		return 0, false, err
	}
	if aqi, ok := feedAQI(&station); ok {
		return aqi, true, nil
	}

	return 0, false, nil
}

// getJSON performs a GET request and decodes the JSON response body.
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("create request: %w", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("waqi request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// Proceed to decode.
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("waqi status %d", resp.StatusCode)
	default:
		// Client errors (bad token, bad request) will not fix themselves.
		return backoff.Permanent(fmt.Errorf("waqi status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return backoff.Permanent(fmt.Errorf("decode waqi response: %w", err))
	}
	return nil
}

// feedAQI extracts an integer AQI from a feed response. Stations without a
// current reading report the literal "-", which decodes as invalid.
func feedAQI(feed *feedResponse) (int, bool) {
	if feed.Status != statusOK {
		return 0, false
	}
	aqi := feed.Data.AQI
	if !aqi.valid || aqi.value <= 0 {
		return 0, false
	}
	return aqi.value, true
}
