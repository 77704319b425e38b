// mad.go — Robust burst detection via Median Absolute Deviation.
// The high-priority first-stage check: flags only intervals that are
// dramatically shorter than the historical norm. Long silences (positive
// deviations) are never flagged here.
package stats

import "math"

// Default thresholds for the MAD model.
const (
	DefaultMADZThreshold = 3.5
	// With fewer than two historical intervals there is no scale estimate;
	// only sub-6-minute gaps are treated as bursts.
	sparseBurstCutoffHours = 0.1
)

// MADModel flags burst anomalies using a modified z-score over historical
// inter-event intervals.
type MADModel struct {
	ZThreshold float64
}

// NewMADModel returns a MADModel with the standard robust threshold.
func NewMADModel() MADModel {
	return MADModel{ZThreshold: DefaultMADZThreshold}
}

// IsBurstAnomaly reports whether newInterval (hours) is a burst relative to
// the historical intervals.
func (m MADModel) IsBurstAnomaly(newInterval float64, history []float64) bool {
	if len(history) < 2 {
		return newInterval < sparseBurstCutoffHours
	}

	med := Median(history)
	deviations := make([]float64, len(history))
	for i, x := range history {
		deviations[i] = math.Abs(x - med)
	}
	mad := Median(deviations)

	if mad == 0 {
		// All historical intervals identical: burst only when strictly
		// faster than that cadence. Equal means not a burst.
		return newInterval < med
	}

	z := 0.6745 * (newInterval - med) / mad
	return z < -m.ZThreshold
}
