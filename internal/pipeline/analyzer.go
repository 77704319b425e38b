// analyzer.go — End-to-end batch analysis: parse, cluster, filter, persist,
// summarize. One Analyze call covers one fetched blob of log lines and
// yields one AnalysisResult per processed sub-batch.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/logsieve/logsieve/internal/cluster"
	"github.com/logsieve/logsieve/internal/filter"
	"github.com/logsieve/logsieve/internal/history"
	"github.com/logsieve/logsieve/internal/parse"
	"github.com/logsieve/logsieve/internal/source"
	"github.com/logsieve/logsieve/internal/summarize"
	"github.com/logsieve/logsieve/internal/types"
)

// Defaults for tunables the caller leaves zero.
const (
	DefaultBatchSize    = 10000
	DefaultHistoryLimit = 10000
)

// Config carries the pipeline tunables.
type Config struct {
	MinSeverity  int // minimum level rank an event needs to enter clustering
	BatchSize    int // lines per sub-batch
	HistoryLimit int // max historical timestamps loaded per signature
	Workers      int // filter evaluation concurrency
}

// Dependencies are the pluggable collaborators of an Analyzer. Summarizer
// may be nil; History must not be.
type Dependencies struct {
	History    history.Store
	Summarizer summarize.Summarizer
	Log        *zap.Logger
	Clock      func() time.Time
}

// Analyzer runs the analysis pipeline over raw log lines.
type Analyzer struct {
	cfg        Config
	clusterer  *cluster.Clusterer
	filter     *filter.Filter
	history    history.Store
	summarizer summarize.Summarizer
	log        *zap.Logger
	now        func() time.Time
	newID      func() string
}

// New builds an Analyzer. Zero-valued Config fields pick defaults.
func New(cfg Config, deps Dependencies, opts ...filter.Option) (*Analyzer, error) {
	if deps.History == nil {
		return nil, fmt.Errorf("pipeline: history store is required")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultHistoryLimit
	}
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	extractor := parse.NewExtractor(cfg.MinSeverity).WithClock(now)
	return &Analyzer{
		cfg:        cfg,
		clusterer:  cluster.New(extractor),
		filter:     filter.New(opts...),
		history:    deps.History,
		summarizer: deps.Summarizer,
		log:        log,
		now:        now,
		newID:      func() string { return uuid.NewString() },
	}, nil
}

// Analyze splits lines into sub-batches and analyzes each. Batches that
// fail outright are logged and skipped; the remaining results are returned.
func (a *Analyzer) Analyze(ctx context.Context, lines []string) ([]types.AnalysisResult, error) {
	batches := source.SplitBatches(lines, a.cfg.BatchSize)
	if len(batches) == 0 {
		// An empty batch still yields one empty result, so downstream
		// consumers always see a record per run.
		batches = [][]string{nil}
	}
	results := make([]types.AnalysisResult, 0, len(batches))
	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("analyze: %w", err)
		}
		res, err := a.AnalyzeBatch(ctx, batch)
		if err != nil {
			a.log.Error("batch analysis failed", zap.Int("batch", i), zap.Error(err))
			continue
		}
		results = append(results, res)
	}
	return results, nil
}

// AnalyzeBatch runs one batch through the full pipeline.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, lines []string) (types.AnalysisResult, error) {
	start := a.now()
	clusters := a.clusterer.Cluster(lines)
	totalEvents := cluster.TotalEvents(clusters)
	linesProcessed.Add(float64(len(lines)))
	eventsExtracted.Add(float64(totalEvents))

	signatures := make([]string, len(clusters))
	for i, c := range clusters {
		signatures[i] = c.Signature
	}
	// A failed history read costs context, not the run: signatures proceed
	// with empty history, and the first-event heuristic errs toward alerting.
	histories, err := a.history.GetRecent(ctx, signatures, a.cfg.HistoryLimit)
	if err != nil {
		a.log.Error("history read failed, treating signatures as new", zap.Error(err))
		histories = make(map[string][]time.Time, len(clusters))
	}

	reqs := make([]filter.Request, len(clusters))
	for i, c := range clusters {
		reqs[i] = filter.Request{
			Signature:  c.Signature,
			Historical: histories[c.Signature],
			Current:    c.Timestamps,
		}
	}
	decisions := a.filter.EvaluateAll(ctx, reqs, a.cfg.Workers)

	actionable := make([]types.Cluster, 0, len(clusters))
	for _, c := range clusters {
		d := decisions[c.Signature]
		if d.Alert {
			a.log.Info("cluster flagged",
				zap.String("signature", c.Signature),
				zap.Int("count", c.Count),
				zap.String("reason", d.Reason))
			actionable = append(actionable, c)
		} else {
			a.log.Debug("cluster suppressed",
				zap.String("signature", c.Signature),
				zap.String("reason", d.Reason))
		}
	}
	clustersFlagged.Add(float64(len(actionable)))

	// Emission order weighs severity and volume together: a flood of
	// warnings outranks a trickle of errors.
	sort.SliceStable(actionable, func(i, j int) bool {
		return actionable[i].LevelRank*actionable[i].Count > actionable[j].LevelRank*actionable[j].Count
	})

	a.persistHistory(ctx, clusters)

	result := types.AnalysisResult{
		AnalysisID:         a.newID(),
		Clusters:           stripAll(actionable),
		TotalLogsProcessed: totalEvents,
		TotalClustersFound: len(actionable),
		ProcessedAt:        a.now().UTC(),
	}
	result.Summary = a.summarize(ctx, actionable, totalEvents)
	batchDuration.Observe(a.now().Sub(start).Seconds())
	return result, nil
}

// persistHistory appends every event timestamp, flagged or not, so future
// runs see the full cadence. Failures cost history depth, not the run.
func (a *Analyzer) persistHistory(ctx context.Context, clusters []types.Cluster) {
	var items []history.Item
	for _, c := range clusters {
		for _, ts := range c.Timestamps {
			items = append(items, history.Item{Signature: c.Signature, Timestamp: ts})
		}
	}
	if err := a.history.AppendBatch(ctx, items); err != nil {
		a.log.Error("history append failed", zap.Int("items", len(items)), zap.Error(err))
	}
}

func (a *Analyzer) summarize(ctx context.Context, actionable []types.Cluster, totalEvents int) string {
	if a.summarizer != nil && len(actionable) > 0 {
		s, err := a.summarizer.Summarize(ctx, actionable, totalEvents)
		if err == nil && s != "" {
			return s
		}
		if err != nil {
			a.log.Warn("summarization failed, using fallback", zap.Error(err))
		}
	}
	return summarize.FallbackSummary(actionable, totalEvents)
}

func stripAll(clusters []types.Cluster) []types.Cluster {
	out := make([]types.Cluster, len(clusters))
	for i, c := range clusters {
		out[i] = c.Stripped()
	}
	return out
}
