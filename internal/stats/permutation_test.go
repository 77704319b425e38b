package stats

import "testing"

func TestPermutationDetectsEmergedBurst(t *testing.T) {
	t.Parallel()
	// 30 steady ~1.0hr intervals followed by 10 rapid-fire ones.
	intervals := make([]float64, 0, 40)
	for i := 0; i < 30; i++ {
		intervals = append(intervals, 1.0+float64(i%5)*0.02)
	}
	for i := 0; i < 10; i++ {
		intervals = append(intervals, 0.05)
	}
	if !NewSeededPermutationTest(1).BurstPatternEmerged(intervals) {
		t.Fatal("clear burst tail should be significant")
	}
}

func TestPermutationWrongDirectionNeverFires(t *testing.T) {
	t.Parallel()
	// Recent mean equals historical mean: observed difference is zero.
	intervals := make([]float64, 0, 40)
	for i := 0; i < 40; i++ {
		if i%2 == 0 {
			intervals = append(intervals, 0.9)
		} else {
			intervals = append(intervals, 1.1)
		}
	}
	if NewSeededPermutationTest(1).BurstPatternEmerged(intervals) {
		t.Fatal("no shift should never be significant")
	}
	// Recent mean strictly higher (a slowdown) is the wrong direction.
	slow := append(append([]float64(nil), intervals[:30]...), 5, 5, 5, 5, 5, 5, 5, 5, 5, 5)
	if NewSeededPermutationTest(1).BurstPatternEmerged(slow) {
		t.Fatal("slowdowns must not be reported as bursts")
	}
}

func TestPermutationInsufficientData(t *testing.T) {
	t.Parallel()
	p := NewSeededPermutationTest(1)
	// recent window is max(5, n/4); below recentWindow+5 total the test
	// refuses to run.
	if p.BurstPatternEmerged([]float64{0.01, 0.01, 0.01, 0.01}) {
		t.Fatal("4 intervals cannot be significant")
	}
	if p.BurstPatternEmerged([]float64{1, 1, 1, 1, 0.01, 0.01, 0.01, 0.01, 0.01}) {
		t.Fatal("9 intervals is below the 10-interval floor")
	}
}

func TestPermutationDeterministicWithSeed(t *testing.T) {
	t.Parallel()
	intervals := make([]float64, 0, 28)
	for i := 0; i < 21; i++ {
		intervals = append(intervals, 1.0+float64(i%7)*0.05)
	}
	for i := 0; i < 7; i++ {
		intervals = append(intervals, 0.2)
	}
	a := NewSeededPermutationTest(42).BurstPatternEmerged(intervals)
	b := NewSeededPermutationTest(42).BurstPatternEmerged(intervals)
	if a != b {
		t.Fatal("same seed must give the same verdict")
	}
}

func TestPermutationDoesNotMutateInput(t *testing.T) {
	t.Parallel()
	intervals := make([]float64, 0, 40)
	for i := 0; i < 30; i++ {
		intervals = append(intervals, 1.0)
	}
	for i := 0; i < 10; i++ {
		intervals = append(intervals, 0.05)
	}
	snapshot := append([]float64(nil), intervals...)
	NewSeededPermutationTest(7).BurstPatternEmerged(intervals)
	for i := range intervals {
		if intervals[i] != snapshot[i] {
			t.Fatalf("input mutated at %d", i)
		}
	}
}
