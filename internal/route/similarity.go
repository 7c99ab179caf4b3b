package route

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/veloair/veloair/pkg/geo"
)

// Similarity thresholds. Inherited business rules, kept as constants
// rather than re-derived.
const (
	// similaritySamples is how many step starts are compared per route.
	similaritySamples = 5

	// similarityPointKm is the distance beyond which two compared
	// points count as differing.
	similarityPointKm = 0.2

	// similarityRatio is the differing fraction above which two routes
	// count as materially different.
	similarityRatio = 0.3

	// hashSampleFraction controls the hash stride: roughly every 10% of
	// steps contributes a coordinate.
	hashSampleFraction = 10
)

// routeHash fingerprints a route from a coarse sample of its step start
// coordinates. Non-cryptographic: collisions are acceptable, the hash only
// prunes near duplicates.
func routeHash(steps []Step) string {
	stride := len(steps) / hashSampleFraction
	if stride < 1 {
		stride = 1
	}

	var sb strings.Builder
	for i, s := range steps {
		if i%stride != 0 {
			continue
		}
		fmt.Fprintf(&sb, "%.4f,%.4f|", s.Start.Lat, s.Start.Lng)
	}

	var hash int32
	for _, ch := range sb.String() {
		hash = (hash << 5) - hash + int32(ch)
	}
	return strconv.FormatInt(int64(hash), 36)
}

// routesDifferent reports whether two routes diverge enough to both be
// worth showing. Empty routes are never "different"; they carry nothing
// worth deduplicating against.
func routesDifferent(a, b []Step) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}

	sampleA := sampleSteps(a)
	sampleB := sampleSteps(b)

	comparisons := len(sampleA)
	if len(sampleB) < comparisons {
		comparisons = len(sampleB)
	}

	differing := 0
	for i := 0; i < comparisons; i++ {
		if geo.HaversineKm(sampleA[i].Start, sampleB[i].Start) > similarityPointKm {
			differing++
		}
	}

	return float64(differing)/float64(comparisons) > similarityRatio
}

// sampleSteps picks evenly spaced steps for comparison.
func sampleSteps(steps []Step) []Step {
	if len(steps) <= similaritySamples {
		return steps
	}

	stride := len(steps) / similaritySamples
	samples := make([]Step, 0, similaritySamples+1)
	for i := 0; i < len(steps); i += stride {
		samples = append(samples, steps[i])
	}
	return samples
}

// dedupe greedily keeps the first of any hash-identical or geometrically
// similar pair. Input is expected sorted ascending by avgAQI so the better
// route of a near-duplicate pair survives. Running dedupe on its own
// output changes nothing.
func dedupe(options []*Option) []*Option {
	kept := make([]*Option, 0, len(options))
	seen := make(map[string]struct{}, len(options))

	for _, opt := range options {
		if _, dup := seen[opt.RouteHash]; dup {
			continue
		}

		similar := false
		for _, existing := range kept {
			if !routesDifferent(existing.Steps, opt.Steps) {
				similar = true
				break
			}
		}
		if similar && len(kept) > 0 {
			continue
		}

		kept = append(kept, opt)
		seen[opt.RouteHash] = struct{}{}
	}
	return kept
}
