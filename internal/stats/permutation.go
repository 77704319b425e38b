// permutation.go — Non-parametric confirmation of an interval-mean shift.
// Used in the transitional data zone to confirm an HMM burst prediction:
// tests whether the recent quarter of intervals has a significantly lower
// mean than the older ones by shuffling the pooled data.
package stats

import (
	"math/rand"
	"time"
)

// Default parameters for the permutation test.
const (
	DefaultPermutationAlpha = 0.05
	DefaultPermutationN     = 1000
	permutationMinSample    = 5
)

// PermutationTest detects a statistically significant drop in the mean of
// recent intervals.
type PermutationTest struct {
	Alpha     float64
	N         int
	MinSample int
	rng       *rand.Rand
}

// NewPermutationTest returns a test with the default parameters and a
// time-seeded RNG.
func NewPermutationTest() *PermutationTest {
	return NewSeededPermutationTest(time.Now().UnixNano())
}

// NewSeededPermutationTest returns a test with a deterministic RNG, for
// reproducible results.
func NewSeededPermutationTest(seed int64) *PermutationTest {
	return &PermutationTest{
		Alpha:     DefaultPermutationAlpha,
		N:         DefaultPermutationN,
		MinSample: permutationMinSample,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// BurstPatternEmerged splits the intervals chronologically into a recent
// window (max(MinSample, 25%)) and the rest, and reports whether the recent
// mean is significantly lower. Returns false when there is too little data
// or the shift goes the wrong direction.
func (p *PermutationTest) BurstPatternEmerged(intervals []float64) bool {
	n := len(intervals)
	recentWindow := n / 4
	if recentWindow < p.MinSample {
		recentWindow = p.MinSample
	}
	if n < recentWindow+p.MinSample {
		return false
	}

	recent := intervals[n-recentWindow:]
	historical := intervals[:n-recentWindow]

	observed := Mean(recent) - Mean(historical)
	if observed >= 0 {
		// Bursts shrink intervals; a higher recent mean is never a burst.
		return false
	}

	pooled := append(append([]float64(nil), historical...), recent...)
	extreme := 0
	for i := 0; i < p.N; i++ {
		p.rng.Shuffle(len(pooled), func(a, b int) {
			pooled[a], pooled[b] = pooled[b], pooled[a]
		})
		pseudo := Mean(pooled[:len(recent)]) - Mean(pooled[len(recent):])
		if pseudo <= observed {
			extreme++
		}
	}
	pValue := float64(extreme) / float64(p.N)
	return pValue < p.Alpha
}
