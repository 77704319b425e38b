package stats

import "testing"

// jittered history around 1.0hr with a non-zero MAD.
var steadyHourly = []float64{0.95, 1.05, 1.0, 0.98, 1.02, 0.97, 1.03, 0.99, 1.01, 1.0}

func TestMADSparseHistoryFallback(t *testing.T) {
	t.Parallel()
	m := NewMADModel()
	if !m.IsBurstAnomaly(0.05, []float64{1.0}) {
		t.Fatal("sub-0.1hr interval with sparse history should flag")
	}
	if m.IsBurstAnomaly(0.5, []float64{1.0}) {
		t.Fatal("0.5hr interval with sparse history should not flag")
	}
	if m.IsBurstAnomaly(0.5, nil) {
		t.Fatal("empty history should use the sparse cutoff")
	}
}

func TestMADZeroMADFlagsOnlyStrictlyFaster(t *testing.T) {
	t.Parallel()
	m := NewMADModel()
	identical := make([]float64, 20)
	for i := range identical {
		identical[i] = 1.0
	}
	if !m.IsBurstAnomaly(0.02, identical) {
		t.Fatal("much faster interval against identical history should flag")
	}
	if m.IsBurstAnomaly(1.0, identical) {
		t.Fatal("interval equal to the median should not flag")
	}
	if m.IsBurstAnomaly(2.0, identical) {
		t.Fatal("slower interval should not flag")
	}
	// The comparison is a strict less-than: anything below the median
	// flags, however marginally.
	if !m.IsBurstAnomaly(1.0-1e-12, identical) {
		t.Fatal("interval marginally below the median should flag")
	}
}

func TestMADMixedHistoryZeroMAD(t *testing.T) {
	t.Parallel()
	// 19x 1.0hr plus one 0.05hr: median 1.0, MAD 0 -> fallback path.
	history := make([]float64, 0, 20)
	for i := 0; i < 19; i++ {
		history = append(history, 1.0)
	}
	history = append(history, 0.05)
	if !NewMADModel().IsBurstAnomaly(0.02, history) {
		t.Fatal("0.02hr against median 1.0hr should flag")
	}
}

func TestMADWithinRobustBounds(t *testing.T) {
	t.Parallel()
	if NewMADModel().IsBurstAnomaly(0.9, steadyHourly) {
		t.Fatal("0.9hr against ~1.0hr cadence is within bounds")
	}
}

func TestMADExtremeBurst(t *testing.T) {
	t.Parallel()
	if !NewMADModel().IsBurstAnomaly(0.001, steadyHourly) {
		t.Fatal("near-zero interval should flag against ~1.0hr cadence")
	}
}

func TestMADIgnoresLongSilence(t *testing.T) {
	t.Parallel()
	if NewMADModel().IsBurstAnomaly(100.0, steadyHourly) {
		t.Fatal("long silences are dips, not bursts")
	}
}

// Property: if the model fires at interval x, it fires at any x' < x with
// the same history.
func TestMADMonotoneInInterval(t *testing.T) {
	t.Parallel()
	m := NewMADModel()
	fired := false
	for x := 1.0; x > 1e-6; x /= 2 {
		now := m.IsBurstAnomaly(x, steadyHourly)
		if fired && !now {
			t.Fatalf("fired at a larger interval but not at %v", x)
		}
		fired = fired || now
	}
	if !fired {
		t.Fatal("expected the model to fire for some small interval")
	}
}
