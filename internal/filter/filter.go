// filter.go — Per-signature alert decision engine.
// Combines historical and current event timestamps into one interval series
// and routes it through a tiered model stack: the MAD check runs first as a
// high-priority tripwire, then data volume decides how far to trust the HMM
// (not at all below 20 intervals, with permutation-test confirmation up to
// 40, unconditionally beyond that).
package filter

import (
	"fmt"
	"sort"
	"time"

	"github.com/logsieve/logsieve/internal/stats"
)

// Zone thresholds: minimum interval counts before the HMM is trusted at all,
// and before it is trusted without confirmation.
const (
	DefaultHMMTrustThreshold      = 20
	DefaultHMMConfidenceThreshold = 40
)

// Decision is the outcome of filtering one signature's event stream.
type Decision struct {
	Alert   bool              `json:"alert"`
	Reason  string            `json:"reason"`
	Details map[string]string `json:"details,omitempty"`
}

// Filter orchestrates the MAD, HMM and permutation models over a history
// window. Safe for concurrent use: each ShouldAlert call builds its own
// model state except the permutation test, which EvaluateAll constructs per
// worker.
type Filter struct {
	mad             stats.MADModel
	hmm             *stats.HMMModel
	permSeed        func() int64
	permN           int
	permAlpha       float64
	trustThreshold  int
	confidenceLimit int
}

// Option adjusts Filter construction.
type Option func(*Filter)

// WithMADZThreshold overrides the MAD modified z-score threshold.
func WithMADZThreshold(z float64) Option {
	return func(f *Filter) { f.mad.ZThreshold = z }
}

// WithZoneThresholds overrides the HMM trust and confidence interval counts.
func WithZoneThresholds(trust, confidence int) Option {
	return func(f *Filter) {
		f.trustThreshold = trust
		f.confidenceLimit = confidence
	}
}

// WithPermutationSeed makes permutation tests deterministic, for tests.
func WithPermutationSeed(seed int64) Option {
	return func(f *Filter) { f.permSeed = func() int64 { return seed } }
}

// WithPermutationParams overrides the permutation test's shuffle count and
// significance level.
func WithPermutationParams(n int, alpha float64) Option {
	return func(f *Filter) {
		f.permN = n
		f.permAlpha = alpha
	}
}

// New returns a Filter with the default model parameters.
func New(opts ...Option) *Filter {
	f := &Filter{
		mad:             stats.NewMADModel(),
		hmm:             stats.NewHMMModel(),
		permSeed:        func() int64 { return time.Now().UnixNano() },
		permN:           stats.DefaultPermutationN,
		permAlpha:       stats.DefaultPermutationAlpha,
		trustThreshold:  DefaultHMMTrustThreshold,
		confidenceLimit: DefaultHMMConfidenceThreshold,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ShouldAlert decides whether the combined event stream for one signature
// constitutes an actionable burst.
func (f *Filter) ShouldAlert(historical, current []time.Time) Decision {
	all := make([]time.Time, 0, len(historical)+len(current))
	all = append(all, historical...)
	all = append(all, current...)
	sort.Slice(all, func(i, j int) bool { return all[i].Before(all[j]) })

	if len(all) < 2 {
		return Decision{
			Alert:  true,
			Reason: "first event sequence",
			Details: map[string]string{
				"events": fmt.Sprintf("%d", len(all)),
			},
		}
	}

	intervals := make([]float64, len(all)-1)
	for i := 1; i < len(all); i++ {
		intervals[i-1] = all[i].Sub(all[i-1]).Hours()
	}
	newInterval := intervals[len(intervals)-1]
	history := intervals[:len(intervals)-1]

	// Stage 1: MAD tripwire.
	if f.mad.IsBurstAnomaly(newInterval, history) {
		return Decision{
			Alert:  true,
			Reason: "MAD burst anomaly",
			Details: map[string]string{
				"new_interval_hr": fmt.Sprintf("%.4f", newInterval),
				"intervals":       fmt.Sprintf("%d", len(intervals)),
			},
		}
	}

	// Stage 2: zone routing.
	if len(intervals) < f.trustThreshold {
		return Decision{Alert: false, Reason: "Low data, MAD negative"}
	}

	finalState := f.hmm.PredictFinalState(history, newInterval)
	stateName := stats.StateName(finalState)
	if finalState != stats.StateBurst {
		return Decision{
			Alert:   false,
			Reason:  fmt.Sprintf("HMM did not predict burst (predicted %s)", stateName),
			Details: map[string]string{"hmm_state": stateName},
		}
	}

	if len(intervals) < f.confidenceLimit {
		perm := stats.NewSeededPermutationTest(f.permSeed())
		perm.N = f.permN
		perm.Alpha = f.permAlpha
		if perm.BurstPatternEmerged(intervals) {
			return Decision{
				Alert:   true,
				Reason:  "HMM burst confirmed by permutation test",
				Details: map[string]string{"hmm_state": stateName},
			}
		}
		return Decision{
			Alert:   false,
			Reason:  "HMM burst not confirmed by permutation test",
			Details: map[string]string{"hmm_state": stateName},
		}
	}

	return Decision{
		Alert:   true,
		Reason:  fmt.Sprintf("High confidence zone (%d intervals), trusting HMM", len(intervals)),
		Details: map[string]string{"hmm_state": stateName},
	}
}
