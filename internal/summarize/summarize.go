// summarize.go — Human-readable summaries of clustered anomalies.
// The pipeline always has a summary to publish: if no model-backed
// Summarizer is configured, or one fails, callers fall back to the
// deterministic template here.
package summarize

import (
	"context"
	"fmt"
	"strings"

	"github.com/logsieve/logsieve/internal/types"
)

// Summarizer turns clusters into prose. Summarize covers one analysis run;
// Synthesize merges the summaries of several runs into one digest summary.
type Summarizer interface {
	Summarize(ctx context.Context, clusters []types.Cluster, totalLogs int) (string, error)
	Synthesize(ctx context.Context, summaries []string) (string, error)
}

// FallbackSummary is the template used when no model is available. It names
// the most common signature so the headline is actionable on its own.
func FallbackSummary(clusters []types.Cluster, totalLogs int) string {
	if len(clusters) == 0 {
		return fmt.Sprintf("Found %d errors across 0 unique signatures.", totalLogs)
	}
	top := clusters[0]
	for _, c := range clusters[1:] {
		if c.Count > top.Count {
			top = c
		}
	}
	return fmt.Sprintf("Found %d errors across %d unique signatures. Most common (%d×): '%s'.",
		totalLogs, len(clusters), top.Count, top.Signature)
}

// FallbackSynthesis joins per-run summaries when no model is available.
func FallbackSynthesis(summaries []string) string {
	kept := make([]string, 0, len(summaries))
	for _, s := range summaries {
		if strings.TrimSpace(s) != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, "\n\n---\n\n")
}

// clusterDigest renders clusters as prompt bullet lines.
func clusterDigest(clusters []types.Cluster) string {
	var b strings.Builder
	for _, c := range clusters {
		fmt.Fprintf(&b, "- Signature: %q, Occurrences: %d\n", c.Signature, c.Count)
	}
	return b.String()
}
