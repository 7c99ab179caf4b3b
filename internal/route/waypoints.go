package route

import (
	"math"

	"github.com/veloair/veloair/pkg/geo"
)

// Waypoint offset bounds in degrees. A single perturbed midpoint is enough
// to push the provider onto a materially different road path without
// leaving the corridor.
const (
	waypointOffsetFraction = 0.2
	waypointOffsetMin      = 0.005
	waypointOffsetMax      = 0.05
)

// strategyWaypoints returns the intermediate coordinates that bias the
// given strategy's path. Direct and fast strategies route straight through.
func strategyWaypoints(origin, destination geo.Coordinate, strategy Strategy) []geo.Coordinate {
	mid := geo.Midpoint(origin, destination)

	offset := waypointOffsetFraction * geo.EuclideanDegrees(origin, destination)
	if offset > waypointOffsetMax {
		offset = waypointOffsetMax
	}
	if offset < waypointOffsetMin {
		offset = waypointOffsetMin
	}

	switch strategy {
	case StrategyNorthern:
		return []geo.Coordinate{{Lat: mid.Lat + offset, Lng: mid.Lng}}
	case StrategySouthern:
		return []geo.Coordinate{{Lat: mid.Lat - offset, Lng: mid.Lng}}
	case StrategyEastern:
		return []geo.Coordinate{{Lat: mid.Lat, Lng: mid.Lng + offset}}
	case StrategyWestern:
		return []geo.Coordinate{{Lat: mid.Lat, Lng: mid.Lng - offset}}
	case StrategyScenic:
		return []geo.Coordinate{{Lat: mid.Lat + offset*0.3, Lng: mid.Lng - offset*0.3}}
	default:
		return nil
	}
}

// Circular route sizing: a rider averaging this speed converts a requested
// duration into an approximate loop length.
const (
	circularDefaultRadius = 0.01 // degrees, roughly a 1 km loop
	circularAvgSpeedKmh   = 15.0
)

// circularRadius derives the loop radius from the requested distance or
// duration, in the perturbation degree units used for waypoints.
func circularRadius(distanceKm, durationMinutes int) float64 {
	if distanceKm > 0 {
		return float64(distanceKm) / (2 * math.Pi)
	}
	if durationMinutes > 0 {
		estimatedKm := float64(durationMinutes) / 60 * circularAvgSpeedKmh
		return estimatedKm / (2 * math.Pi)
	}
	return circularDefaultRadius
}

// circularWaypoints places points evenly on a circle around the center.
// Scenic loops get more waypoints for a rounder, longer path.
func circularWaypoints(center geo.Coordinate, radius float64, scenic bool) []geo.Coordinate {
	count := 6
	if scenic {
		count = 8
	}

	waypoints := make([]geo.Coordinate, 0, count)
	for i := 0; i < count; i++ {
		angle := 2 * math.Pi * float64(i) / float64(count)
		waypoints = append(waypoints, geo.Coordinate{
			Lat: center.Lat + radius*math.Cos(angle),
			Lng: center.Lng + radius*math.Sin(angle),
		})
	}
	return waypoints
}
