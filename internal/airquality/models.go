// Package airquality samples air quality along a route and fills the gaps
// with a realistic variation model when no measurement is available.
package airquality

import (
	"context"
	"errors"

	"github.com/veloair/veloair/pkg/geo"
)

// Provider errors.
var (
	ErrProviderUnavailable = errors.New("air quality provider unavailable")
)

// Provider defines the interface for point-based AQI providers.
type Provider interface {
	// FetchAQI returns the AQI reading nearest to the given coordinate.
	// A (0, false, nil) return means the provider has no data for the
	// location, which is not an error; the caller falls back to the
	// variation model.
	FetchAQI(ctx context.Context, c geo.Coordinate) (aqi int, ok bool, err error)
}

// Sample is a per-point AQI annotation along a route.
type Sample struct {
	Coordinate geo.Coordinate

	// AQI is the air quality index at this point, either measured or
	// synthesized.
	AQI int

	// Measured reports whether AQI came from a real provider reading.
	// Measured values are authoritative and are never clamped.
	Measured bool
}
