package summarize

import (
	"strings"
	"testing"

	"github.com/logsieve/logsieve/internal/types"
)

func TestFallbackSummaryNamesMostCommon(t *testing.T) {
	t.Parallel()
	clusters := []types.Cluster{
		{Signature: "ERROR: Timeout after <num>ms", Count: 3},
		{Signature: "CRITICAL: Out of memory", Count: 7},
	}
	got := FallbackSummary(clusters, 42)
	want := "Found 42 errors across 2 unique signatures. Most common (7×): 'CRITICAL: Out of memory'."
	if got != want {
		t.Fatalf("summary = %q", got)
	}
}

func TestFallbackSummaryNoClusters(t *testing.T) {
	t.Parallel()
	if got := FallbackSummary(nil, 5); got != "Found 5 errors across 0 unique signatures." {
		t.Fatalf("summary = %q", got)
	}
}

func TestFallbackSynthesisSkipsBlanks(t *testing.T) {
	t.Parallel()
	got := FallbackSynthesis([]string{"first window", "", "  ", "second window"})
	if got != "first window\n\n---\n\nsecond window" {
		t.Fatalf("synthesis = %q", got)
	}
}

func TestClusterDigestFormat(t *testing.T) {
	t.Parallel()
	got := clusterDigest([]types.Cluster{
		{Signature: "ERROR: boom", Count: 2},
		{Signature: "WARNING: slow", Count: 1},
	})
	if !strings.Contains(got, `- Signature: "ERROR: boom", Occurrences: 2`) {
		t.Fatalf("digest = %q", got)
	}
	if !strings.Contains(got, `- Signature: "WARNING: slow", Occurrences: 1`) {
		t.Fatalf("digest = %q", got)
	}
}
