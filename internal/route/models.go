// Package route produces air-quality-aware route recommendations: it
// diversifies candidate paths with synthetic waypoints, prunes near
// duplicates, scores each survivor by AQI and assembles a ranked response.
package route

import (
	"errors"
	"fmt"
	"math"

	"github.com/veloair/veloair/internal/directions"
	"github.com/veloair/veloair/pkg/geo"
)

// Package errors.
var (
	// ErrNoRouteFound means every strategy and the fallback cascade
	// were exhausted without producing a usable route.
	ErrNoRouteFound = errors.New("no route found between the given points")

	// ErrNoStrategySucceeded is the runner-level signal that triggers
	// the fallback cascade.
	ErrNoStrategySucceeded = errors.New("no routing strategy succeeded")
)

// NoRouteError carries human-readable suggestions alongside ErrNoRouteFound.
type NoRouteError struct {
	Suggestions []string
}

func (e *NoRouteError) Error() string { return ErrNoRouteFound.Error() }

func (e *NoRouteError) Unwrap() error { return ErrNoRouteFound }

// Strategy names a diversification heuristic.
type Strategy string

const (
	StrategyDirect   Strategy = "direct"
	StrategyNorthern Strategy = "northern"
	StrategySouthern Strategy = "southern"
	StrategyEastern  Strategy = "eastern"
	StrategyWestern  Strategy = "western"
	StrategyScenic   Strategy = "scenic"
	StrategyFast     Strategy = "fast"
)

// Score is the pollution verdict for a route.
type Score string

const (
	ScoreGood               Score = "Good"
	ScoreModerate           Score = "Moderate"
	ScoreUnhealthySensitive Score = "Unhealthy for Sensitive Groups"
	ScoreUnhealthy          Score = "Unhealthy"
)

// AQI thresholds for scoring. Inherited business rules, kept as constants
// rather than re-derived.
const (
	scoreGoodMax      = 50
	scoreModerateMax  = 100
	scoreSensitiveMax = 150
)

// scoreFor maps an average AQI to a pollution verdict.
func scoreFor(avgAQI float64) Score {
	switch {
	case avgAQI <= scoreGoodMax:
		return ScoreGood
	case avgAQI <= scoreModerateMax:
		return ScoreModerate
	case avgAQI <= scoreSensitiveMax:
		return ScoreUnhealthySensitive
	default:
		return ScoreUnhealthy
	}
}

// Step is one displayable instruction of a route. Distances and durations
// are pre-formatted strings; AQI is attached after scoring and stays nil
// when unavailable.
type Step struct {
	Instruction string           `json:"instruction"`
	Distance    string           `json:"distance"`
	Duration    string           `json:"duration"`
	Start       geo.Coordinate   `json:"start_location"`
	End         geo.Coordinate   `json:"end_location"`
	AQI         *int             `json:"aqi"`
	Polyline    []geo.Coordinate `json:"polyline,omitempty"`
}

// Candidate is one fully computed path produced by a strategy attempt.
type Candidate struct {
	Strategy     Strategy
	Profile      directions.Profile
	Steps        []Step
	FullPolyline []geo.Coordinate
}

// Failure records why one strategy attempt produced no candidate.
type Failure struct {
	Strategy Strategy `json:"strategy"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
}

// Option is one ranked route in a response.
type Option struct {
	Type              string           `json:"type"`
	From              string           `json:"from"`
	To                string           `json:"to"`
	Steps             []Step           `json:"steps"`
	FullPolyline      []geo.Coordinate `json:"fullPolyline,omitempty"`
	PollutionScore    Score            `json:"pollutionScore"`
	AvgAQI            float64          `json:"avgAQI"`
	Recommended       bool             `json:"recommended"`
	RouteHash         string           `json:"routeHash,omitempty"`
	Profile           string           `json:"profile,omitempty"`
	IsCircular        bool             `json:"isCircular,omitempty"`
	RequestedDuration int              `json:"requestedDuration,omitempty"`
	RequestedDistance int              `json:"requestedDistance,omitempty"`
}

// Response is the assembled recommendation set.
type Response struct {
	Best         *Option   `json:"best,omitempty"`
	Alternative  *Option   `json:"alternative,omitempty"`
	Worst        *Option   `json:"worst,omitempty"`
	Alternatives []*Option `json:"alternatives"`
	RouteCount   int       `json:"routeCount"`
	FallbackUsed bool      `json:"fallbackUsed,omitempty"`
	Warning      string    `json:"warning,omitempty"`
	IsCircular   bool      `json:"isCircular,omitempty"`
}

// Request is a route recommendation request.
type Request struct {
	// From and To are "lat,lng" strings.
	From string
	To   string

	// Circular requests a loop from From back to itself. Also implied
	// when From equals To.
	Circular bool

	// DurationMinutes sizes a circular route by ride time.
	DurationMinutes int

	// DistanceKm sizes a circular route by total length.
	DistanceKm int
}

// formatDistance renders a step distance reported in kilometers.
func formatDistance(km float64) string {
	if km >= 1 {
		return fmt.Sprintf("%.2f km", km)
	}
	return fmt.Sprintf("%.0f m", km*1000)
}

// formatDuration renders a step duration reported in seconds.
func formatDuration(seconds float64) string {
	return fmt.Sprintf("%d min", int(math.Round(seconds/60)))
}

// toSteps converts provider steps to displayable steps, prefixing each
// instruction with the strategy tag.
func toSteps(r *directions.Route, prefix string) []Step {
	steps := make([]Step, 0, len(r.Steps))
	for _, s := range r.Steps {
		steps = append(steps, Step{
			Instruction: prefix + s.Instruction,
			Distance:    formatDistance(s.DistanceKm),
			Duration:    formatDuration(s.DurationSec),
			Start:       s.Start,
			End:         s.End,
			Polyline:    s.Geometry,
		})
	}
	return steps
}
