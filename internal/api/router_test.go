package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veloair/veloair/internal/api"
	"github.com/veloair/veloair/internal/api/models"
	"github.com/veloair/veloair/internal/route"
	"github.com/veloair/veloair/pkg/geo"
)

// fakeRecommender returns a canned response or error.
type fakeRecommender struct {
	resp *route.Response
	err  error

	lastRequest route.Request
}

func (f *fakeRecommender) Recommend(_ context.Context, req route.Request) (*route.Response, error) {
	f.lastRequest = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func newTestRouter(rec *fakeRecommender) http.Handler {
	logger := zerolog.New(io.Discard)
	return api.NewRouter(api.RouterConfig{
		Version:      "test",
		BuildTime:    "2024-01-01T00:00:00Z",
		Logger:       logger,
		RouteService: rec,
	})
}

func singleRouteResponse() *route.Response {
	aqi := 42
	best := &route.Option{
		Type:           "best",
		From:           "Dam Square",
		To:             "Vondelpark",
		Steps:          []route.Step{{Instruction: "Head north", Distance: "1.20 km", Duration: "5 min", AQI: &aqi}},
		PollutionScore: route.ScoreGood,
		AvgAQI:         42,
		Recommended:    true,
		RouteHash:      "abc123",
	}
	return &route.Response{
		Best:         best,
		Alternatives: []*route.Option{best},
		RouteCount:   1,
	}
}

func TestRouter_HealthCheck(t *testing.T) {
	router := newTestRouter(&fakeRecommender{resp: singleRouteResponse()})

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	var health models.Health
	err := json.Unmarshal(w.Body.Bytes(), &health)
	require.NoError(t, err)

	assert.Equal(t, models.HealthStatusOK, health.Status)
	assert.NotEmpty(t, health.Time)
	assert.Equal(t, "test", health.Details["version"])
}

func TestRouter_ReadinessCheck(t *testing.T) {
	router := newTestRouter(&fakeRecommender{resp: singleRouteResponse()})

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/ready", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var health models.Health
	err := json.Unmarshal(w.Body.Bytes(), &health)
	require.NoError(t, err)

	assert.Equal(t, models.HealthStatusOK, health.Status)
}

func TestRouter_SystemStatus(t *testing.T) {
	router := newTestRouter(&fakeRecommender{resp: singleRouteResponse()})

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/status", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var status models.SystemStatus
	err := json.Unmarshal(w.Body.Bytes(), &status)
	require.NoError(t, err)

	assert.Equal(t, models.HealthStatusOK, status.Status)
	assert.NotNil(t, status.Providers)
}

func TestRouter_GetRoute(t *testing.T) {
	rec := &fakeRecommender{resp: singleRouteResponse()}
	router := newTestRouter(rec)

	req := httptest.NewRequest(http.MethodGet, "/v1/route?from=52.3702,4.8952&to=52.3580,4.8686", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "52.3702,4.8952", rec.lastRequest.From)
	assert.Equal(t, "52.3580,4.8686", rec.lastRequest.To)
	assert.False(t, rec.lastRequest.Circular)

	var resp route.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	require.NotNil(t, resp.Best)
	assert.Equal(t, "best", resp.Best.Type)
	assert.Equal(t, 1, resp.RouteCount)
}

func TestRouter_GetRoute_CircularParams(t *testing.T) {
	rec := &fakeRecommender{resp: singleRouteResponse()}
	router := newTestRouter(rec)

	req := httptest.NewRequest(http.MethodGet, "/v1/route?from=52.3702,4.8952&circular=true&duration=45&distance=20", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, rec.lastRequest.Circular)
	assert.Equal(t, 45, rec.lastRequest.DurationMinutes)
	assert.Equal(t, 20, rec.lastRequest.DistanceKm)
}

func TestRouter_GetRoute_MissingFrom(t *testing.T) {
	router := newTestRouter(&fakeRecommender{resp: singleRouteResponse()})

	req := httptest.NewRequest(http.MethodGet, "/v1/route?to=52.3580,4.8686", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var problem models.Problem
	err := json.Unmarshal(w.Body.Bytes(), &problem)
	require.NoError(t, err)

	assert.Equal(t, models.ProblemTypeValidation, problem.Type)
	assert.NotEmpty(t, problem.TraceID)
	require.Len(t, problem.Errors, 1)
	assert.Equal(t, "from", problem.Errors[0].Field)
}

func TestRouter_GetRoute_InvalidDuration(t *testing.T) {
	router := newTestRouter(&fakeRecommender{resp: singleRouteResponse()})

	req := httptest.NewRequest(http.MethodGet, "/v1/route?from=52.3702,4.8952&circular=true&duration=soon", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var problem models.Problem
	err := json.Unmarshal(w.Body.Bytes(), &problem)
	require.NoError(t, err)
	require.Len(t, problem.Errors, 1)
	assert.Equal(t, "duration", problem.Errors[0].Field)
}

func TestRouter_GetRoute_InvalidCoordinate(t *testing.T) {
	rec := &fakeRecommender{err: fmt.Errorf("parse from: %w", geo.ErrInvalidCoordinate)}
	router := newTestRouter(rec)

	req := httptest.NewRequest(http.MethodGet, "/v1/route?from=not,numbers&to=52.3580,4.8686", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var problem models.Problem
	err := json.Unmarshal(w.Body.Bytes(), &problem)
	require.NoError(t, err)
	assert.Contains(t, problem.Detail, "lat,lng")
}

func TestRouter_GetRoute_NoRouteFound(t *testing.T) {
	rec := &fakeRecommender{err: &route.NoRouteError{Suggestions: []string{
		"Try selecting points closer to main roads or intersections",
	}}}
	router := newTestRouter(rec)

	req := httptest.NewRequest(http.MethodGet, "/v1/route?from=52.3702,4.8952&to=52.3580,4.8686", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var problem models.Problem
	err := json.Unmarshal(w.Body.Bytes(), &problem)
	require.NoError(t, err)

	assert.Equal(t, models.ProblemTypeNotFound, problem.Type)
	assert.Contains(t, problem.Detail, "main roads")
}

func TestRouter_GetRoute_InternalError(t *testing.T) {
	rec := &fakeRecommender{err: fmt.Errorf("upstream exploded")}
	router := newTestRouter(rec)

	req := httptest.NewRequest(http.MethodGet, "/v1/route?from=52.3702,4.8952&to=52.3580,4.8686", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var problem models.Problem
	err := json.Unmarshal(w.Body.Bytes(), &problem)
	require.NoError(t, err)
	assert.Equal(t, models.ProblemTypeInternal, problem.Type)
}

func TestRouter_RequestID_Generated(t *testing.T) {
	router := newTestRouter(&fakeRecommender{resp: singleRouteResponse()})

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	requestID := w.Header().Get("X-Request-Id")
	assert.NotEmpty(t, requestID)
	assert.Contains(t, requestID, "req_")
}

func TestRouter_RequestID_Preserved(t *testing.T) {
	router := newTestRouter(&fakeRecommender{resp: singleRouteResponse()})

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	req.Header.Set("X-Request-Id", "custom_request_id")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, "custom_request_id", w.Header().Get("X-Request-Id"))
}

func TestRouter_NotFound(t *testing.T) {
	router := newTestRouter(&fakeRecommender{resp: singleRouteResponse()})

	req := httptest.NewRequest(http.MethodGet, "/v1/nonexistent", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
