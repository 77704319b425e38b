// aggregate.go — Consolidation of several analysis results into one digest.
// Results arriving from separate runs (or separate shippers) often repeat
// signatures; the digest sums their counts so the reader sees one line per
// signature with the true total.
package aggregate

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/logsieve/logsieve/internal/summarize"
	"github.com/logsieve/logsieve/internal/types"
)

// digestIDPrefix heads every consolidated digest id, followed by the ids of
// the merged results.
const digestIDPrefix = "consolidated-digest"

// Aggregator merges analysis results. A nil summarizer selects the
// deterministic fallback synthesis.
type Aggregator struct {
	summarizer summarize.Summarizer
	log        *zap.Logger
	now        func() time.Time
}

// New builds an Aggregator. Nil logger means no-op logging.
func New(summarizer summarize.Summarizer, log *zap.Logger) *Aggregator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Aggregator{summarizer: summarizer, log: log, now: time.Now}
}

// WithClock overrides the digest timestamp clock, for tests.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// DecodeRecord parses one raw record into an AnalysisResult. Records may
// arrive wrapped in a notification envelope whose Message field carries the
// result as a JSON string; those are unwrapped transparently.
func DecodeRecord(data []byte) (types.AnalysisResult, error) {
	var env struct {
		Message string `json:"Message"`
	}
	if err := json.Unmarshal(data, &env); err == nil && env.Message != "" {
		data = []byte(env.Message)
	}

	var res types.AnalysisResult
	if err := json.Unmarshal(data, &res); err != nil {
		return types.AnalysisResult{}, fmt.Errorf("decode analysis record: %w", err)
	}
	if res.AnalysisID == "" {
		return types.AnalysisResult{}, fmt.Errorf("decode analysis record: missing analysis_id")
	}
	return res, nil
}

// Merge consolidates raw records into one digest. Undecodable records are
// logged and skipped; an input with no decodable records yields an empty
// digest with a zero-result summary.
func (a *Aggregator) Merge(ctx context.Context, records [][]byte) types.Digest {
	results := make([]types.AnalysisResult, 0, len(records))
	for i, rec := range records {
		res, err := DecodeRecord(rec)
		if err != nil {
			a.log.Warn("skipping undecodable record", zap.Int("index", i), zap.Error(err))
			continue
		}
		results = append(results, res)
	}
	return a.MergeResults(ctx, results)
}

// MergeResults consolidates already-decoded results into one digest.
func (a *Aggregator) MergeResults(ctx context.Context, results []types.AnalysisResult) types.Digest {
	digest := types.Digest{
		AnalysisID:  digestIDPrefix,
		ProcessedAt: a.now().UTC(),
	}

	merged := make(map[string]*types.Cluster)
	var order []string
	var summaries []string

	for _, res := range results {
		digest.AnalysisID += res.AnalysisID
		digest.TotalLogsProcessed += res.TotalLogsProcessed
		if res.Summary != "" {
			summaries = append(summaries, res.Summary)
		}
		for _, c := range res.Clusters {
			if existing, ok := merged[c.Signature]; ok {
				existing.Count += c.Count
				continue
			}
			clone := c
			merged[c.Signature] = &clone
			order = append(order, c.Signature)
		}
	}

	digest.Clusters = make([]types.Cluster, 0, len(order))
	for _, sig := range order {
		digest.Clusters = append(digest.Clusters, *merged[sig])
	}
	sort.SliceStable(digest.Clusters, func(i, j int) bool {
		return digest.Clusters[i].Count > digest.Clusters[j].Count
	})
	digest.TotalClustersFound = len(digest.Clusters)
	digest.Summary = a.synthesize(ctx, summaries)
	return digest
}

func (a *Aggregator) synthesize(ctx context.Context, summaries []string) string {
	if len(summaries) == 0 {
		return "No anomalies reported in the merged results."
	}
	if a.summarizer != nil {
		merged, err := a.summarizer.Synthesize(ctx, summaries)
		if err == nil && merged != "" {
			return merged
		}
		if err != nil {
			a.log.Warn("summary synthesis failed, using fallback", zap.Error(err))
		}
	}
	return summarize.FallbackSynthesis(summaries)
}
