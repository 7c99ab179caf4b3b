package route

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/veloair/veloair/internal/directions"
	"github.com/veloair/veloair/pkg/geo"
)

const (
	// DefaultCallDelay spaces out sequential provider calls to stay
	// under upstream rate limits.
	DefaultCallDelay = 200 * time.Millisecond

	// DefaultCallTimeout bounds a single directions call.
	DefaultCallTimeout = 15 * time.Second

	// Distance tiers (km) selecting the strategy set. Waypoint
	// strategies stop paying off as the corridor grows.
	longDistanceKm   = 50
	mediumDistanceKm = 20

	// Search radius (m) grows with corridor length so endpoints snap to
	// a road, within provider-accepted bounds.
	searchRadiusPerKm = 100
	searchRadiusMin   = 1000
	searchRadiusMax   = 5000

	// notRoutableRetryRadius is the enlarged radius for the one-shot
	// driving-profile retry after a "not routable" failure.
	notRoutableRetryRadius = 2000
)

// strategyOptions pairs a strategy with its routing profile, avoid set and
// instruction prefix.
type strategyOptions struct {
	profile directions.Profile
	avoid   []directions.AvoidFeature
	prefix  string
}

var strategyTable = map[Strategy]strategyOptions{
	StrategyDirect: {
		profile: directions.ProfileCyclingRegular,
		avoid:   []directions.AvoidFeature{directions.AvoidHighways},
	},
	StrategyNorthern: {
		profile: directions.ProfileCyclingRegular,
		avoid:   []directions.AvoidFeature{directions.AvoidHighways, directions.AvoidSteps},
		prefix:  "[Northern] ",
	},
	StrategySouthern: {
		profile: directions.ProfileCyclingRoad,
		avoid:   []directions.AvoidFeature{directions.AvoidSteps},
		prefix:  "[Southern] ",
	},
	StrategyEastern: {
		profile: directions.ProfileCyclingRegular,
		avoid:   []directions.AvoidFeature{directions.AvoidHighways, directions.AvoidFerries},
		prefix:  "[Eastern] ",
	},
	StrategyWestern: {
		profile: directions.ProfileCyclingRoad,
		avoid:   []directions.AvoidFeature{directions.AvoidFerries},
		prefix:  "[Western] ",
	},
	StrategyScenic: {
		profile: directions.ProfileCyclingRegular,
		avoid:   []directions.AvoidFeature{directions.AvoidHighways, directions.AvoidTollways},
		prefix:  "[Scenic] ",
	},
	StrategyFast: {
		profile: directions.ProfileDrivingCar,
		prefix:  "[Fast] ",
	},
}

// strategiesForDistance selects the strategy set for a corridor length.
func strategiesForDistance(km float64) []Strategy {
	switch {
	case km > longDistanceKm:
		return []Strategy{StrategyDirect, StrategyFast}
	case km > mediumDistanceKm:
		return []Strategy{StrategyDirect, StrategyNorthern, StrategySouthern, StrategyFast}
	default:
		return []Strategy{
			StrategyDirect, StrategyNorthern, StrategySouthern,
			StrategyEastern, StrategyWestern, StrategyScenic, StrategyFast,
		}
	}
}

// searchRadiusFor scales the snap radius with corridor length.
func searchRadiusFor(km float64) int {
	radius := int(km * searchRadiusPerKm)
	if radius < searchRadiusMin {
		return searchRadiusMin
	}
	if radius > searchRadiusMax {
		return searchRadiusMax
	}
	return radius
}

// RunnerConfig holds configuration for the strategy runner.
type RunnerConfig struct {
	// Gateway is the directions provider.
	Gateway directions.Gateway

	// Logger for runner operations.
	Logger zerolog.Logger

	// CallDelay spaces sequential provider calls (default:
	// DefaultCallDelay). Negative disables the delay; tests use that.
	CallDelay time.Duration

	// CallTimeout bounds each provider call (default: DefaultCallTimeout).
	CallTimeout time.Duration
}

// Runner executes diversification strategies sequentially against the
// directions gateway. Sequential on purpose: the upstream rate limit is
// the binding constraint, not latency.
type Runner struct {
	gateway     directions.Gateway
	logger      zerolog.Logger
	callDelay   time.Duration
	callTimeout time.Duration
}

// NewRunner creates a strategy runner.
func NewRunner(cfg RunnerConfig) *Runner {
	callDelay := cfg.CallDelay
	if callDelay == 0 {
		callDelay = DefaultCallDelay
	}
	if callDelay < 0 {
		callDelay = 0
	}

	callTimeout := cfg.CallTimeout
	if callTimeout == 0 {
		callTimeout = DefaultCallTimeout
	}

	return &Runner{
		gateway:     cfg.Gateway,
		logger:      cfg.Logger,
		callDelay:   callDelay,
		callTimeout: callTimeout,
	}
}

// Run attempts every strategy for the corridor and returns the successful
// candidates plus a record of each failure. It returns
// ErrNoStrategySucceeded when nothing routed; the caller falls back.
func (r *Runner) Run(ctx context.Context, origin, destination geo.Coordinate) ([]Candidate, []Failure, error) {
	distanceKm := geo.HaversineKm(origin, destination)
	strategies := strategiesForDistance(distanceKm)
	radius := searchRadiusFor(distanceKm)

	r.logger.Info().
		Float64("distance_km", distanceKm).
		Int("strategies", len(strategies)).
		Int("search_radius_m", radius).
		Msg("running route diversification")

	var (
		candidates []Candidate
		failures   []Failure
	)

	for i, strategy := range strategies {
		candidate, err := r.attempt(ctx, origin, destination, strategy, radius)
		if err != nil {
			failures = append(failures, toFailure(strategy, err))
			r.logger.Warn().
				Err(err).
				Str("strategy", string(strategy)).
				Msg("strategy attempt failed")
		} else {
			candidates = append(candidates, *candidate)
		}

		if i < len(strategies)-1 && r.callDelay > 0 {
			select {
			case <-time.After(r.callDelay):
			case <-ctx.Done():
				return candidates, failures, ctx.Err()
			}
		}
	}

	r.logger.Info().
		Int("succeeded", len(candidates)).
		Int("failed", len(failures)).
		Msg("route diversification finished")

	if len(candidates) == 0 {
		return nil, failures, ErrNoStrategySucceeded
	}
	return candidates, failures, nil
}

// attempt runs one strategy, retrying once with a driving profile and an
// enlarged radius when the provider reports the points as not routable.
func (r *Runner) attempt(ctx context.Context, origin, destination geo.Coordinate, strategy Strategy, radius int) (*Candidate, error) {
	opts := strategyTable[strategy]

	callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()

	route, err := r.gateway.GetRoute(callCtx, directions.Request{
		Origin:             origin,
		Destination:        destination,
		Waypoints:          strategyWaypoints(origin, destination, strategy),
		Profile:            opts.profile,
		AvoidFeatures:      opts.avoid,
		SearchRadiusMeters: radius,
	})

	if err != nil && errors.Is(err, directions.ErrNotRoutable) && !opts.profile.IsDriving() {
		r.logger.Debug().
			Str("strategy", string(strategy)).
			Msg("not routable, retrying with driving profile")

		retryCtx, retryCancel := context.WithTimeout(ctx, r.callTimeout)
		defer retryCancel()

		route, err = r.gateway.GetRoute(retryCtx, directions.Request{
			Origin:             origin,
			Destination:        destination,
			Profile:            directions.ProfileDrivingCar,
			SearchRadiusMeters: notRoutableRetryRadius,
		})
	}
	if err != nil {
		return nil, err
	}

	return &Candidate{
		Strategy:     strategy,
		Profile:      opts.profile,
		Steps:        toSteps(route, opts.prefix),
		FullPolyline: route.FullPolyline,
	}, nil
}

// toFailure extracts the provider code and message for the failure record.
func toFailure(strategy Strategy, err error) Failure {
	var dirErr *directions.Error
	if errors.As(err, &dirErr) {
		return Failure{Strategy: strategy, Code: dirErr.Code, Message: dirErr.Message}
	}
	return Failure{Strategy: strategy, Code: "UNKNOWN", Message: err.Error()}
}
