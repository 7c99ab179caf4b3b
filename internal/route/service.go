package route

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/veloair/veloair/internal/airquality"
	"github.com/veloair/veloair/internal/directions"
	"github.com/veloair/veloair/internal/geocode"
	"github.com/veloair/veloair/pkg/geo"
)

// maxDiversifyKm is the corridor length beyond which cycling-profile
// diversification is pointless and the fallback cascade takes over.
const maxDiversifyKm = 100

// singleRouteWarning annotates a response where dedup left one route.
const singleRouteWarning = "Only one viable route found between these locations. " +
	"Consider choosing locations with more road network options for route alternatives."

// fallbackSuggestions accompany a NoRouteError.
var fallbackSuggestions = []string{
	"The coordinates may be too far from roads",
	"The distance may be too large for available routing profiles",
	"Try selecting points closer to main roads or intersections",
	"Consider if the locations are reachable by the selected transport mode",
}

// Annotator attaches per-point AQI samples to route geometry.
type Annotator interface {
	Annotate(ctx context.Context, points []geo.Coordinate) []airquality.Sample
}

// ServiceConfig holds configuration for the recommendation service.
type ServiceConfig struct {
	// Gateway is the directions provider.
	Gateway directions.Gateway

	// Annotator scores route geometry with AQI samples.
	Annotator Annotator

	// Geocoder resolves display labels (optional; coordinates are used
	// when nil or failing).
	Geocoder geocode.Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// CallDelay and CallTimeout are passed to the strategy runner.
	CallDelay   time.Duration
	CallTimeout time.Duration
}

// Service turns a pair of coordinates into ranked, AQI-scored route
// recommendations.
type Service struct {
	gateway     directions.Gateway
	runner      *Runner
	annotator   Annotator
	geocoder    geocode.Provider
	logger      zerolog.Logger
	callTimeout time.Duration
}

// NewService creates a recommendation service.
func NewService(cfg ServiceConfig) *Service {
	callTimeout := cfg.CallTimeout
	if callTimeout == 0 {
		callTimeout = DefaultCallTimeout
	}

	return &Service{
		gateway: cfg.Gateway,
		runner: NewRunner(RunnerConfig{
			Gateway:     cfg.Gateway,
			Logger:      cfg.Logger,
			CallDelay:   cfg.CallDelay,
			CallTimeout: cfg.CallTimeout,
		}),
		annotator:   cfg.Annotator,
		geocoder:    cfg.Geocoder,
		logger:      cfg.Logger,
		callTimeout: callTimeout,
	}
}

// Recommend produces the ranked route response for a request. Coordinate
// parse failures surface immediately; upstream failures degrade through
// the fallback cascade and only total exhaustion returns NoRouteError.
func (s *Service) Recommend(ctx context.Context, req Request) (*Response, error) {
	origin, err := geo.ParseCoordinate(req.From)
	if err != nil {
		return nil, fmt.Errorf("parse from: %w", err)
	}
	destination := origin
	if req.To != "" || !req.Circular {
		destination, err = geo.ParseCoordinate(req.To)
		if err != nil {
			return nil, fmt.Errorf("parse to: %w", err)
		}
	}

	if req.Circular || origin == destination {
		return s.circular(ctx, origin, req)
	}

	distanceKm := geo.HaversineKm(origin, destination)
	if distanceKm > maxDiversifyKm {
		s.logger.Info().
			Float64("distance_km", distanceKm).
			Msg("corridor too long for diversification, using fallback profiles")
		return s.fallback(ctx, origin, destination)
	}

	candidates, failures, err := s.runner.Run(ctx, origin, destination)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn().
			Interface("failures", failures).
			Msg("diversification produced nothing, using fallback profiles")
		return s.fallback(ctx, origin, destination)
	}

	options := make([]*Option, 0, len(candidates))
	for i := range candidates {
		options = append(options, s.scoreCandidate(ctx, &candidates[i]))
	}

	sortByAQI(options)
	unique := dedupe(options)

	s.logger.Info().
		Int("candidates", len(options)).
		Int("unique", len(unique)).
		Msg("assembled route recommendations")

	return assemble(unique, false), nil
}

// fallbackProfiles are the fixed-profile attempts when diversification is
// unavailable. Order doubles as the pre-sort ranking.
var fallbackProfiles = []struct {
	profile directions.Profile
	avoid   []directions.AvoidFeature
	prefix  string
}{
	{profile: directions.ProfileCyclingRegular, avoid: []directions.AvoidFeature{directions.AvoidHighways}},
	{profile: directions.ProfileCyclingRoad, avoid: []directions.AvoidFeature{directions.AvoidSteps}, prefix: "[Road] "},
	{profile: directions.ProfileDrivingCar, prefix: "[Driving] "},
}

// fallback requests three fixed-profile routes with no waypoint synthesis.
func (s *Service) fallback(ctx context.Context, origin, destination geo.Coordinate) (*Response, error) {
	candidates := make([]*Candidate, len(fallbackProfiles))

	var wg sync.WaitGroup
	for i, fp := range fallbackProfiles {
		wg.Add(1)
		go func(i int, profile directions.Profile, avoid []directions.AvoidFeature, prefix string) {
			defer wg.Done()

			callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
			defer cancel()

			route, err := s.gateway.GetRoute(callCtx, directions.Request{
				Origin:             origin,
				Destination:        destination,
				Profile:            profile,
				AvoidFeatures:      avoid,
				SearchRadiusMeters: searchRadiusMin,
			})
			if err != nil {
				s.logger.Warn().
					Err(err).
					Str("profile", string(profile)).
					Msg("fallback profile failed")
				return
			}
			candidates[i] = &Candidate{
				Profile:      profile,
				Steps:        toSteps(route, prefix),
				FullPolyline: route.FullPolyline,
			}
		}(i, fp.profile, fp.avoid, fp.prefix)
	}
	wg.Wait()

	options := make([]*Option, 0, len(candidates))
	for _, c := range candidates {
		if c == nil || len(c.Steps) == 0 {
			continue
		}
		opt := s.scoreCandidate(ctx, c)
		opt.Profile = string(c.Profile)
		options = append(options, opt)
	}

	if len(options) == 0 {
		return nil, &NoRouteError{Suggestions: fallbackSuggestions}
	}

	sortByAQI(options)

	resp := assemble(options, true)
	return resp, nil
}

// circularVariants are the loop flavors offered for a circular request.
var circularVariants = []struct {
	label   string
	scenic  bool
	profile directions.Profile
}{
	{label: "Duration-based", profile: directions.ProfileCyclingRegular},
	{label: "Scenic Route", scenic: true, profile: directions.ProfileCyclingRegular},
	{label: "Fitness Route", profile: directions.ProfileCyclingMountain},
}

// circular builds three loop variants around the origin and ranks them by
// air quality.
func (s *Service) circular(ctx context.Context, origin geo.Coordinate, req Request) (*Response, error) {
	radius := circularRadius(req.DistanceKm, req.DurationMinutes)

	options := make([]*Option, len(circularVariants))

	var wg sync.WaitGroup
	for i, variant := range circularVariants {
		wg.Add(1)
		go func(i int, label string, scenic bool, profile directions.Profile) {
			defer wg.Done()

			callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
			defer cancel()

			route, err := s.gateway.GetRoute(callCtx, directions.Request{
				Origin:      origin,
				Destination: origin,
				Waypoints:   circularWaypoints(origin, radius, scenic),
				Profile:     profile,
			})
			if err != nil {
				s.logger.Warn().
					Err(err).
					Str("variant", label).
					Msg("circular variant failed")
				return
			}

			opt := s.scoreCandidate(ctx, &Candidate{
				Profile:      profile,
				Steps:        toSteps(route, ""),
				FullPolyline: route.FullPolyline,
			})
			opt.Type = label
			opt.IsCircular = true
			opt.RequestedDuration = req.DurationMinutes
			opt.RequestedDistance = req.DistanceKm
			options[i] = opt
		}(i, variant.label, variant.scenic, variant.profile)
	}
	wg.Wait()

	valid := make([]*Option, 0, len(options))
	for _, opt := range options {
		if opt != nil {
			valid = append(valid, opt)
		}
	}
	if len(valid) == 0 {
		return nil, &NoRouteError{Suggestions: fallbackSuggestions}
	}

	sortByAQI(valid)

	resp := &Response{
		IsCircular:   true,
		Best:         valid[0],
		Alternatives: valid,
		RouteCount:   len(valid),
	}
	if len(valid) > 1 {
		resp.Alternative = valid[1]
	}
	if len(valid) > 2 {
		resp.Worst = valid[len(valid)-1]
	}
	return resp, nil
}

// scoreCandidate annotates a candidate with AQI and display labels and
// computes its fingerprint and verdict.
func (s *Service) scoreCandidate(ctx context.Context, c *Candidate) *Option {
	points := make([]geo.Coordinate, len(c.Steps))
	for i, step := range c.Steps {
		points[i] = step.Start
	}

	samples := s.annotator.Annotate(ctx, points)

	steps := make([]Step, len(c.Steps))
	copy(steps, c.Steps)
	total := 0
	for i := range steps {
		aqi := samples[i].AQI
		steps[i].AQI = &aqi
		total += aqi
	}

	avg := 0.0
	if len(steps) > 0 {
		avg = math.Round(float64(total)/float64(len(steps))*100) / 100
	}

	from, to := s.endpointLabels(ctx, c)
	score := scoreFor(avg)

	return &Option{
		From:           from,
		To:             to,
		Steps:          steps,
		FullPolyline:   c.FullPolyline,
		PollutionScore: score,
		AvgAQI:         avg,
		Recommended:    score == ScoreGood || score == ScoreModerate,
		RouteHash:      routeHash(steps),
	}
}

// endpointLabels reverse-geocodes the route start and end concurrently,
// degrading to coordinate strings. Labels are display-only.
func (s *Service) endpointLabels(ctx context.Context, c *Candidate) (string, string) {
	if len(c.Steps) == 0 {
		return "", ""
	}

	start := c.Steps[0].Start
	end := c.Steps[len(c.Steps)-1].End

	var from, to string
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		from = geocode.LabelOrCoordinate(ctx, s.geocoder, start)
	}()
	go func() {
		defer wg.Done()
		to = geocode.LabelOrCoordinate(ctx, s.geocoder, end)
	}()
	wg.Wait()

	return from, to
}

// sortByAQI orders options ascending by average AQI, best air first.
func sortByAQI(options []*Option) {
	sort.SliceStable(options, func(i, j int) bool {
		return options[i].AvgAQI < options[j].AvgAQI
	})
}

// assemble labels sorted, deduplicated options and builds the response.
// Worst is the true maximum-AQI survivor and only surfaces when at least
// three distinct routes exist; with one route the response says so plainly
// instead of inventing alternatives.
func assemble(options []*Option, fallbackUsed bool) *Response {
	resp := &Response{
		Alternatives: options,
		RouteCount:   len(options),
		FallbackUsed: fallbackUsed,
	}

	if len(options) == 1 {
		options[0].Type = "best"
		resp.Best = options[0]
		resp.Warning = singleRouteWarning
		return resp
	}

	for _, opt := range options {
		opt.Type = "alternative"
	}
	options[0].Type = "best"
	resp.Best = options[0]
	resp.Alternative = options[1]

	if len(options) > 2 {
		worst := options[len(options)-1]
		worst.Type = "worst"
		resp.Worst = worst
	}
	return resp
}

// IsNoRoute reports whether err is the total-exhaustion failure.
func IsNoRoute(err error) bool {
	return errors.Is(err, ErrNoRouteFound)
}
