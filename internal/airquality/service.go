package airquality

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/veloair/veloair/pkg/geo"
)

const (
	// fallbackBaseline is a moderate AQI assumed when no sampled point
	// returned a real reading.
	fallbackBaseline = 100

	// syntheticMin and syntheticMax bound synthesized values. Measured
	// readings are authoritative and stay unclamped.
	syntheticMin = 15
	syntheticMax = 300

	// maxFullSample is the route length up to which every point is
	// queried instead of a strategic subset.
	maxFullSample = 5
)

// areaProfile is one weighted area-character multiplier for the
// variation model.
type areaProfile struct {
	factor float64
	weight float64
}

// areaProfiles is evaluated in order with a cumulative weighted draw.
var areaProfiles = []areaProfile{
	{factor: 1.2, weight: 0.15}, // morning rush corridors
	{factor: 1.5, weight: 0.05}, // industrial areas
	{factor: 0.7, weight: 0.10}, // parks and green areas
	{factor: 0.9, weight: 0.20}, // residential streets
	{factor: 1.0, weight: 0.50}, // normal road conditions
}

// AggregatorConfig holds configuration for the AQI aggregator.
type AggregatorConfig struct {
	// Provider is the point-based AQI provider.
	Provider Provider

	// Logger for aggregation operations.
	Logger zerolog.Logger

	// Rand drives the variation model. If nil a time-seeded source is
	// used; tests inject a fixed seed.
	Rand *rand.Rand
}

// Aggregator annotates route geometry with per-point AQI values. Sampled
// points carry real provider readings; the rest are synthesized around the
// sampled baseline.
type Aggregator struct {
	provider Provider
	logger   zerolog.Logger
	rng      *rand.Rand
}

// NewAggregator creates a new AQI aggregator.
func NewAggregator(cfg AggregatorConfig) *Aggregator {
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Aggregator{
		provider: cfg.Provider,
		logger:   cfg.Logger,
		rng:      rng,
	}
}

// Annotate returns one Sample per input point, in input order. A subset of
// points is fetched from the provider concurrently; the remaining points
// are filled by the variation model keyed to the measured baseline.
// Provider failures degrade individual points, never the whole route.
func (a *Aggregator) Annotate(ctx context.Context, points []geo.Coordinate) []Sample {
	if len(points) == 0 {
		return nil
	}

	indexes := strategicIndexes(len(points))

	a.logger.Debug().
		Int("points", len(points)).
		Int("sampled", len(indexes)).
		Msg("sampling route for air quality")

	measured := a.fetchSampled(ctx, points, indexes)
	baseline := baselineOf(measured)

	samples := make([]Sample, len(points))
	for i, p := range points {
		if aqi, ok := measured[i]; ok {
			samples[i] = Sample{Coordinate: p, AQI: aqi, Measured: true}
			continue
		}
		samples[i] = Sample{
			Coordinate: p,
			AQI:        a.synthesize(baseline, i, len(points)),
		}
	}
	return samples
}

// fetchSampled queries the provider for the given indexes concurrently and
// returns the successful readings keyed by point index.
func (a *Aggregator) fetchSampled(ctx context.Context, points []geo.Coordinate, indexes []int) map[int]int {
	type result struct {
		index int
		aqi   int
		ok    bool
	}

	results := make([]result, len(indexes))

	var wg sync.WaitGroup
	for slot, idx := range indexes {
		wg.Add(1)
		go func(slot, idx int) {
			defer wg.Done()

			aqi, ok, err := a.provider.FetchAQI(ctx, points[idx])
			if err != nil {
				a.logger.Warn().
					Err(err).
					Str("coordinate", points[idx].String()).
					Msg("aqi fetch failed, point degrades to synthetic")
				return
			}
			results[slot] = result{index: idx, aqi: aqi, ok: ok}
		}(slot, idx)
	}
	wg.Wait()

	measured := make(map[int]int, len(indexes))
	for _, r := range results {
		if r.ok {
			measured[r.index] = r.aqi
		}
	}
	return measured
}

// strategicIndexes picks the point indexes to query: all of them for short
// routes, otherwise first, last and quarter-stride interior points.
func strategicIndexes(n int) []int {
	if n <= maxFullSample {
		indexes := make([]int, n)
		for i := range indexes {
			indexes[i] = i
		}
		return indexes
	}

	indexes := []int{0, n - 1}
	stride := n / 4
	for i := stride; i < n-stride; i += stride {
		indexes = append(indexes, i)
	}
	return indexes
}

// baselineOf averages the measured readings, falling back to a moderate
// default when nothing was measured.
func baselineOf(measured map[int]int) int {
	if len(measured) == 0 {
		return fallbackBaseline
	}
	sum := 0
	for _, aqi := range measured {
		sum += aqi
	}
	return int(math.Round(float64(sum) / float64(len(measured))))
}

// synthesize produces a plausible AQI around the baseline: a weighted
// area-character multiplier, a ±15% jitter and a smooth sinusoidal term
// keyed to position in the route.
func (a *Aggregator) synthesize(baseline, index, total int) int {
	profile := areaProfiles[len(areaProfiles)-1]
	draw := a.rng.Float64()
	cumulative := 0.0
	for _, p := range areaProfiles {
		cumulative += p.weight
		if draw <= cumulative {
			profile = p
			break
		}
	}

	jitter := 0.85 + a.rng.Float64()*0.3

	aqi := int(math.Round(float64(baseline) * profile.factor * jitter))

	progress := float64(index) / float64(total)
	aqi += int(math.Round(math.Sin(progress*2*math.Pi) * 10))

	if aqi < syntheticMin {
		return syntheticMin
	}
	if aqi > syntheticMax {
		return syntheticMax
	}
	return aqi
}
