// Package google provides a reverse geocoding client backed by the Google
// Maps Geocoding API.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/veloair/veloair/internal/provider/resilience"
	"github.com/veloair/veloair/pkg/geo"
)

const (
	// DefaultBaseURL is the base URL for the Geocoding API.
	DefaultBaseURL = "https://maps.googleapis.com/maps/api"

	// DefaultTimeout bounds a single lookup. Street names are cosmetic,
	// so the budget is short.
	DefaultTimeout = 5 * time.Second

	// ProviderName identifies this provider.
	ProviderName = "google-geocoding"
)

// ClientConfig holds configuration for the geocoding client.
type ClientConfig struct {
	// APIKey is the Google Maps API key (required).
	APIKey string

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

// Client is a Google Maps Geocoding API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
}

// NewClient creates a new geocoding client.
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
			Name:     ProviderName,
			Timeout:  timeout,
			Registry: cfg.Registry,
		})
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

type geocodeResponse struct {
	Results []geocodeResult `json:"results"`
	Status  string          `json:"status"`
}

type geocodeResult struct {
	AddressComponents []addressComponent `json:"address_components"`
	FormattedAddress  string             `json:"formatted_address"`
}

type addressComponent struct {
	LongName string   `json:"long_name"`
	Types    []string `json:"types"`
}

// ReverseGeocode resolves a coordinate to a street name when one exists in
// the address components, otherwise the formatted address of the first
// result.
func (c *Client) ReverseGeocode(ctx context.Context, coord geo.Coordinate) (string, error) {
	reqURL := fmt.Sprintf("%s/geocode/json?latlng=%s&key=%s",
		c.baseURL, url.QueryEscape(coord.String()), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d from geocoding endpoint", resp.StatusCode)
	}

	var result geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode geocode response: %w", err)
	}

	if len(result.Results) == 0 {
		return "", fmt.Errorf("no geocode results for %s", coord)
	}

	first := result.Results[0]
	for _, component := range first.AddressComponents {
		for _, t := range component.Types {
			if t == "route" {
				return component.LongName, nil
			}
		}
	}
	return first.FormattedAddress, nil
}
