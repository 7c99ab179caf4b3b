// Package geocode resolves coordinates to display names.
package geocode

import (
	"context"

	"github.com/veloair/veloair/pkg/geo"
)

// Provider defines the interface for reverse geocoding providers.
type Provider interface {
	// ReverseGeocode returns a human-readable label for the coordinate,
	// preferring a street name. Errors mean "unresolved"; callers
	// degrade to the coordinate's own string form since labels are
	// display-only.
	ReverseGeocode(ctx context.Context, c geo.Coordinate) (string, error)
}

// LabelOrCoordinate resolves a display label, falling back to "lat,lng"
// when the provider cannot resolve the point.
func LabelOrCoordinate(ctx context.Context, p Provider, c geo.Coordinate) string {
	if p == nil {
		return c.String()
	}
	label, err := p.ReverseGeocode(ctx, c)
	if err != nil || label == "" {
		return c.String()
	}
	return label
}
