// Package directions defines the gateway contract for upstream routing
// providers. The core pipeline consumes this interface; provider specifics
// live in subpackages.
package directions

import (
	"context"
	"errors"

	"github.com/veloair/veloair/pkg/geo"
)

// Sentinel errors for directions operations.
var (
	// ErrNotRoutable indicates a point is too far from any road for the
	// requested profile. The strategy runner retries these once with a
	// driving profile and an enlarged search radius.
	ErrNotRoutable = errors.New("point not routable for profile")

	// ErrNoRouteFound indicates no route exists between the given points.
	ErrNoRouteFound = errors.New("no route found between the given points")

	// ErrRateLimited indicates the provider quota has been exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrUnavailable indicates the provider is down or unreachable.
	ErrUnavailable = errors.New("directions provider unavailable")
)

// Profile represents a routing profile (mode of transport).
type Profile string

const (
	ProfileCyclingRegular  Profile = "cycling-regular"
	ProfileCyclingRoad     Profile = "cycling-road"
	ProfileCyclingMountain Profile = "cycling-mountain"
	ProfileDrivingCar      Profile = "driving-car"
)

// IsDriving reports whether the profile is a driving profile.
func (p Profile) IsDriving() bool {
	return p == ProfileDrivingCar
}

// AvoidFeature is a road feature the provider should route around.
type AvoidFeature string

const (
	AvoidHighways AvoidFeature = "highways"
	AvoidSteps    AvoidFeature = "steps"
	AvoidFerries  AvoidFeature = "ferries"
	AvoidTollways AvoidFeature = "tollways"
)

// Gateway is the directions provider contract.
type Gateway interface {
	// GetRoute computes a single route through origin, waypoints, and
	// destination. Failures carry a *Error when the provider responded.
	GetRoute(ctx context.Context, req Request) (*Route, error)

	// Name returns the provider identifier for logging and health checks.
	Name() string
}

// Request describes one route computation.
type Request struct {
	Origin      geo.Coordinate
	Destination geo.Coordinate

	// Waypoints are intermediate points visited in order between origin
	// and destination. Used by the waypoint synthesizer to force route
	// diversity; empty for fallback and circular legs are appended as-is.
	Waypoints []geo.Coordinate

	Profile       Profile
	AvoidFeatures []AvoidFeature

	// SearchRadiusMeters is the snap radius applied to every coordinate.
	// Zero means provider default.
	SearchRadiusMeters int
}

// Step is one routing instruction with its geometry.
type Step struct {
	Instruction string
	DistanceKm  float64
	DurationSec float64
	Start       geo.Coordinate
	End         geo.Coordinate

	// Geometry is the slice of the route polyline covered by this step.
	Geometry []geo.Coordinate
}

// Route is a fully-computed path.
type Route struct {
	Steps []Step

	// FullPolyline is the decoded geometry of the whole route.
	FullPolyline []geo.Coordinate
}

// Error provides detailed error information from a directions provider.
type Error struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}
