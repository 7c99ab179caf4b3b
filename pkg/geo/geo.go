// Package geo provides coordinate parsing, great-circle distance, and
// polyline codec utilities shared by the routing pipeline.
package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidCoordinate indicates a coordinate string or value that cannot
// be used for routing. The wrapping error carries the specific reason.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Coordinate represents a geographic point.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String renders the coordinate in "lat,lng" form, the same format
// ParseCoordinate accepts. Used as the display fallback when reverse
// geocoding is unavailable.
func (c Coordinate) String() string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lng, 'f', -1, 64)
}

// ParseCoordinate parses a "lat,lng" string into a Coordinate.
// Each failure mode reports its own reason wrapped in ErrInvalidCoordinate:
// wrong part count, non-numeric parts, or out-of-range values. Values are
// never clamped.
func ParseCoordinate(text string) (Coordinate, error) {
	parts := strings.Split(text, ",")
	if len(parts) != 2 {
		return Coordinate{}, fmt.Errorf("%w: expected \"lat,lng\", got %d parts", ErrInvalidCoordinate, len(parts))
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: latitude is not a number", ErrInvalidCoordinate)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: longitude is not a number", ErrInvalidCoordinate)
	}

	c := Coordinate{Lat: lat, Lng: lng}
	if err := Validate(c); err != nil {
		return Coordinate{}, err
	}
	return c, nil
}

// Validate checks that the coordinate is within valid lat/lng ranges.
func Validate(c Coordinate) error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude %f out of range [-90, 90]", ErrInvalidCoordinate, c.Lat)
	}
	if c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("%w: longitude %f out of range [-180, 180]", ErrInvalidCoordinate, c.Lng)
	}
	return nil
}

const (
	earthRadiusKm     = 6371
	earthRadiusMeters = 6371e3
)

// HaversineKm returns the great-circle distance between two points in
// kilometers. Used for strategy tier selection and route similarity.
func HaversineKm(a, b Coordinate) float64 {
	return haversine(a, b, earthRadiusKm)
}

// HaversineMeters is the meter-scale variant used for sub-kilometer checks.
func HaversineMeters(a, b Coordinate) float64 {
	return haversine(a, b, earthRadiusMeters)
}

func haversine(a, b Coordinate, radius float64) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	sinDLat := math.Sin(dLat / 2)
	sinDLng := math.Sin(dLng / 2)

	h := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLng*sinDLng
	return 2 * radius * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Midpoint returns the arithmetic midpoint of two coordinates. Good enough
// for waypoint synthesis over short corridors; not a geodesic midpoint.
func Midpoint(a, b Coordinate) Coordinate {
	return Coordinate{
		Lat: (a.Lat + b.Lat) / 2,
		Lng: (a.Lng + b.Lng) / 2,
	}
}

// EuclideanDegrees returns the straight-line distance between two points in
// degree space. The waypoint offset rule is defined on this value.
func EuclideanDegrees(a, b Coordinate) float64 {
	return math.Hypot(b.Lat-a.Lat, b.Lng-a.Lng)
}
