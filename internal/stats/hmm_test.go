package stats

import "testing"

// trainingIntervals builds a history of steady ~1.0hr gaps ending in a run
// of rapid-fire gaps.
func burstTailIntervals(steady, burst int) []float64 {
	out := make([]float64, 0, steady+burst)
	for i := 0; i < steady; i++ {
		if i%2 == 0 {
			out = append(out, 0.9)
		} else {
			out = append(out, 1.1)
		}
	}
	for i := 0; i < burst; i++ {
		out = append(out, 0.02)
	}
	return out
}

func TestHMMPredictsBurstAfterRapidFireTail(t *testing.T) {
	t.Parallel()
	intervals := burstTailIntervals(50, 10)
	state := NewHMMModel().PredictFinalState(intervals, 0.01)
	if state != StateBurst {
		t.Fatalf("final state = %s, want Burst", StateName(state))
	}
}

func TestHMMPredictsNormalForSteadyCadence(t *testing.T) {
	t.Parallel()
	intervals := burstTailIntervals(60, 0)
	state := NewHMMModel().PredictFinalState(intervals, 1.0)
	if state != StateNormal {
		t.Fatalf("final state = %s, want Normal", StateName(state))
	}
}

func TestHMMPredictsSilentForLongGap(t *testing.T) {
	t.Parallel()
	// Mostly steady cadence with occasional day-long quiet stretches, so the
	// silent state keeps a low learned rate.
	intervals := make([]float64, 0, 66)
	for i := 0; i < 60; i++ {
		intervals = append(intervals, 1.0+float64(i%3)*0.1)
		if i%10 == 9 {
			intervals = append(intervals, 30.0)
		}
	}
	state := NewHMMModel().PredictFinalState(intervals, 200.0)
	if state != StateSilent {
		t.Fatalf("final state = %s, want Silent", StateName(state))
	}
}

func TestHMMShortInputsDoNotPanic(t *testing.T) {
	t.Parallel()
	m := NewHMMModel()
	// The filter gates the HMM behind 20+ intervals, but the model itself
	// must stay total on degenerate input.
	m.PredictFinalState(nil, 0.5)
	m.PredictFinalState([]float64{1.0}, 0.5)
	m.PredictFinalState([]float64{0, 0, 0}, 0)
}

func TestHMMTrainingConverges(t *testing.T) {
	t.Parallel()
	m := NewHMMModel()
	intervals := burstTailIntervals(40, 8)
	params := m.learn(intervals)

	// Rows remain (sub-)stochastic after re-estimation.
	for i := 0; i < numStates; i++ {
		rowSum := 0.0
		for j := 0; j < numStates; j++ {
			if params.transitions[i][j] < 0 {
				t.Fatalf("negative transition [%d][%d] = %v", i, j, params.transitions[i][j])
			}
			rowSum += params.transitions[i][j]
		}
		if rowSum > 1.0+1e-6 {
			t.Fatalf("row %d sums to %v", i, rowSum)
		}
	}
	// The burst state should learn a much higher rate (shorter gaps) than
	// the normal state.
	if params.lambdas[StateBurst] <= params.lambdas[StateNormal] {
		t.Fatalf("burst rate %v should exceed normal rate %v",
			params.lambdas[StateBurst], params.lambdas[StateNormal])
	}
}

func TestStateName(t *testing.T) {
	t.Parallel()
	if StateName(StateBurst) != "Burst" || StateName(StateSilent) != "Silent" || StateName(99) != "Unknown" {
		t.Fatal("unexpected state names")
	}
}
