package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/veloair/veloair/internal/api/models"
	"github.com/veloair/veloair/internal/api/response"
	"github.com/veloair/veloair/internal/route"
	"github.com/veloair/veloair/pkg/geo"
)

// Recommender produces route recommendations.
type Recommender interface {
	Recommend(ctx context.Context, req route.Request) (*route.Response, error)
}

// RouteHandler handles routing endpoints.
type RouteHandler struct {
	service Recommender
	logger  zerolog.Logger
}

// NewRouteHandler creates a new RouteHandler.
func NewRouteHandler(service Recommender, logger zerolog.Logger) *RouteHandler {
	return &RouteHandler{
		service: service,
		logger:  logger.With().Str("component", "route_handler").Logger(),
	}
}

// GetRoute handles GET /v1/route - compute ranked route options.
//
// Query parameters:
//
//	from     - origin as "lat,lng" (required)
//	to       - destination as "lat,lng" (required unless circular=true)
//	circular - request a loop back to the origin
//	duration - circular ride time in minutes
//	distance - circular total length in km
func (h *RouteHandler) GetRoute(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	req := route.Request{
		From:     q.Get("from"),
		To:       q.Get("to"),
		Circular: q.Get("circular") == "true",
	}

	if req.From == "" {
		response.BadRequest(w, r, "missing required query parameter", []models.FieldError{
			{Field: "from", Message: "required, format \"lat,lng\" e.g. \"52.3702,4.8952\""},
		})
		return
	}

	var fieldErrors []models.FieldError
	if v := q.Get("duration"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			fieldErrors = append(fieldErrors, models.FieldError{Field: "duration", Message: "must be a positive integer (minutes)"})
		} else {
			req.DurationMinutes = n
		}
	}
	if v := q.Get("distance"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			fieldErrors = append(fieldErrors, models.FieldError{Field: "distance", Message: "must be a positive integer (km)"})
		} else {
			req.DistanceKm = n
		}
	}
	if len(fieldErrors) > 0 {
		response.BadRequest(w, r, "invalid query parameters", fieldErrors)
		return
	}

	resp, err := h.service.Recommend(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, resp)
}

func (h *RouteHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, geo.ErrInvalidCoordinate):
		response.BadRequest(w, r, "coordinates must be \"lat,lng\" pairs, e.g. \"52.3702,4.8952\"", nil)

	case route.IsNoRoute(err):
		detail := "No bikeable route found between these locations."
		var noRoute *route.NoRouteError
		if errors.As(err, &noRoute) && len(noRoute.Suggestions) > 0 {
			for _, s := range noRoute.Suggestions {
				detail += " " + s + "."
			}
		}
		response.NotFound(w, r, detail)

	default:
		h.logger.Error().Err(err).Msg("route recommendation failed")
		response.InternalError(w, r, "route computation failed")
	}
}
