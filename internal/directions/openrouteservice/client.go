// Package openrouteservice provides the OpenRouteService directions client.
package openrouteservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/veloair/veloair/internal/directions"
	"github.com/veloair/veloair/internal/provider/resilience"
	"github.com/veloair/veloair/pkg/geo"
)

const (
	// ProviderName identifies this routing provider.
	ProviderName = "openrouteservice"

	// DefaultBaseURL is the OpenRouteService API base URL.
	DefaultBaseURL = "https://api.openrouteservice.org"

	// DefaultTimeout bounds a single directions call. Strategy attempts
	// are serialized upstream, so a slow call delays the whole request.
	DefaultTimeout = 15 * time.Second
)

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the OpenRouteService client.
type ClientConfig struct {
	// APIKey is the ORS API key (required).
	APIKey string

	// BaseURL is the API base URL (optional, defaults to the ORS API).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional). If nil, a resilient
	// client with retry disabled is created: the strategy runner owns the
	// retry policy for directions.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 15s).
	Timeout time.Duration

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an OpenRouteService directions client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new OpenRouteService client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Timeout = timeout
		clientCfg.DisableRetry = true
		clientCfg.Registry = cfg.Registry
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// GetRoute computes a single route through origin, waypoints, and destination.
func (c *Client) GetRoute(ctx context.Context, req directions.Request) (*directions.Route, error) {
	if err := geo.Validate(req.Origin); err != nil {
		return nil, &directions.Error{
			Provider: ProviderName,
			Code:     "INVALID_ORIGIN",
			Message:  "invalid origin coordinates",
			Err:      err,
		}
	}
	if err := geo.Validate(req.Destination); err != nil {
		return nil, &directions.Error{
			Provider: ProviderName,
			Code:     "INVALID_DESTINATION",
			Message:  "invalid destination coordinates",
			Err:      err,
		}
	}

	// ORS uses [lng, lat] order (GeoJSON).
	coords := make([][]float64, 0, len(req.Waypoints)+2)
	coords = append(coords, []float64{req.Origin.Lng, req.Origin.Lat})
	for _, wp := range req.Waypoints {
		coords = append(coords, []float64{wp.Lng, wp.Lat})
	}
	coords = append(coords, []float64{req.Destination.Lng, req.Destination.Lat})

	orsReq := orsRequest{
		Coordinates:      coords,
		Instructions:     true,
		Geometry:         true,
		Units:            "km",
		ContinueStraight: false,
	}
	if req.SearchRadiusMeters > 0 {
		radiuses := make([]int, len(coords))
		for i := range radiuses {
			radiuses[i] = req.SearchRadiusMeters
		}
		orsReq.Radiuses = radiuses
	}
	if len(req.AvoidFeatures) > 0 {
		features := make([]string, len(req.AvoidFeatures))
		for i, f := range req.AvoidFeatures {
			features[i] = string(f)
		}
		orsReq.Options = &orsOptions{AvoidFeatures: features}
	}

	body, err := json.Marshal(orsReq)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/v2/directions/%s", c.baseURL, req.Profile)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", c.apiKey)
	httpReq.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("profile", string(req.Profile)).
		Int("coordinates", len(coords)).
		Int("radius_m", req.SearchRadiusMeters).
		Msg("requesting directions from ORS")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &directions.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach routing provider",
			Err:      directions.ErrUnavailable,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp.StatusCode, respBody)
	}

	var orsResp orsResponse
	if err := json.Unmarshal(respBody, &orsResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if len(orsResp.Routes) == 0 || len(orsResp.Routes[0].Segments) == 0 {
		return nil, &directions.Error{
			Provider: ProviderName,
			Code:     "EMPTY_RESPONSE",
			Message:  "no route found in response",
			Err:      directions.ErrNoRouteFound,
		}
	}

	route, err := c.toRoute(&orsResp.Routes[0])
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Int("steps", len(route.Steps)).
		Int("polyline_points", len(route.FullPolyline)).
		Msg("received directions from ORS")

	return route, nil
}

// handleErrorResponse maps ORS error responses to domain errors.
func (c *Client) handleErrorResponse(statusCode int, body []byte) error {
	var orsErr orsErrorResponse
	if err := json.Unmarshal(body, &orsErr); err != nil {
		return &directions.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", statusCode),
			Message:  fmt.Sprintf("routing provider returned status %d", statusCode),
			Err:      directions.ErrUnavailable,
		}
	}

	// Body-level codes take precedence over HTTP status: ORS reports
	// unroutable points as 2010 inside 4xx responses.
	switch orsErr.Error.Code {
	case orsErrorCodeNotRoutable:
		return &directions.Error{
			Provider: ProviderName,
			Code:     "NOT_ROUTABLE",
			Message:  orsErr.Error.Message,
			Err:      directions.ErrNotRoutable,
		}
	case orsErrorCodeNoRoute:
		return &directions.Error{
			Provider: ProviderName,
			Code:     "NO_ROUTE",
			Message:  orsErr.Error.Message,
			Err:      directions.ErrNoRouteFound,
		}
	}

	switch {
	case statusCode == http.StatusTooManyRequests:
		return &directions.Error{
			Provider: ProviderName,
			Code:     "RATE_LIMIT",
			Message:  "API rate limit exceeded, please try again later",
			Err:      directions.ErrRateLimited,
		}
	case statusCode == http.StatusForbidden:
		return &directions.Error{
			Provider: ProviderName,
			Code:     "FORBIDDEN",
			Message:  "API access denied - check API key configuration",
			Err:      directions.ErrUnavailable,
		}
	case statusCode == http.StatusNotFound:
		return &directions.Error{
			Provider: ProviderName,
			Code:     "NO_ROUTE",
			Message:  "no route found between the given points",
			Err:      directions.ErrNoRouteFound,
		}
	case statusCode >= 500:
		return &directions.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("SERVER_%d", statusCode),
			Message:  "routing provider is temporarily unavailable",
			Err:      directions.ErrUnavailable,
		}
	default:
		return &directions.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", statusCode),
			Message:  orsErr.Error.Message,
			Err:      directions.ErrUnavailable,
		}
	}
}

// toRoute converts an ORS route to the domain model. Step start/end and
// per-step geometry come from way_points indices into the decoded polyline.
func (c *Client) toRoute(orsRoute *orsRoute) (*directions.Route, error) {
	coords, err := geo.DecodePolyline(orsRoute.Geometry)
	if err != nil {
		return nil, &directions.Error{
			Provider: ProviderName,
			Code:     "BAD_GEOMETRY",
			Message:  "could not decode route geometry",
			Err:      err,
		}
	}

	var steps []directions.Step
	for i := range orsRoute.Segments {
		segment := &orsRoute.Segments[i]
		for j := range segment.Steps {
			step := &segment.Steps[j]

			startIdx, endIdx := 0, len(coords)-1
			if len(step.WayPoints) >= 2 {
				startIdx, endIdx = step.WayPoints[0], step.WayPoints[1]
			}
			if startIdx < 0 || endIdx >= len(coords) || startIdx > endIdx {
				continue
			}

			instruction := step.Instruction
			if instruction == "" {
				instruction = "Continue"
			}

			steps = append(steps, directions.Step{
				Instruction: instruction,
				DistanceKm:  step.Distance,
				DurationSec: step.Duration,
				Start:       coords[startIdx],
				End:         coords[endIdx],
				Geometry:    coords[startIdx : endIdx+1],
			})
		}
	}

	return &directions.Route{
		Steps:        steps,
		FullPolyline: coords,
	}, nil
}
