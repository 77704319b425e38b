// analyze.go — One-shot analysis of a log batch.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/logsieve/logsieve/internal/filter"
	"github.com/logsieve/logsieve/internal/pipeline"
	"github.com/logsieve/logsieve/internal/sink"
	"github.com/logsieve/logsieve/internal/source"
)

func newAnalyzeCmd(verbose *bool) *cobra.Command {
	var (
		input       string
		minSeverity string
		batchSize   int
		workers     int
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a batch of log lines for anomalous error bursts",
		Long: "Reads newline-separated log lines from a file (gzip transparent) or\n" +
			"stdin, clusters them by signature, filters the clusters statistically\n" +
			"and publishes one JSON result per processed batch.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if minSeverity != "" {
				cfg.MinSeverity = minSeverity
			}
			if batchSize > 0 {
				cfg.BatchSize = batchSize
			}
			if workers > 0 {
				cfg.Workers = workers
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log, err := newLogger(*verbose)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			ctx := cmd.Context()
			startMetrics(cfg.MetricsAddr, log)

			analyzer, err := pipeline.New(pipeline.Config{
				MinSeverity: cfg.MinSeverityRank(),
				BatchSize:   cfg.BatchSize,
				Workers:     cfg.Workers,
			}, pipeline.Dependencies{
				History:    newHistoryStore(cfg, log),
				Summarizer: newSummarizer(cfg, log),
				Log:        log,
			},
				filter.WithMADZThreshold(cfg.MADZThreshold),
				filter.WithZoneThresholds(cfg.HMMTrustThreshold, cfg.HMMConfidenceThreshold),
				filter.WithPermutationParams(cfg.PermutationN, cfg.PermutationAlpha),
			)
			if err != nil {
				return err
			}

			var src source.BatchSource = source.ReaderSource{R: os.Stdin}
			if input != "" && input != "-" {
				src = source.FileSource{Path: input}
			}
			data, err := src.FetchBatch(ctx)
			if err != nil {
				return err
			}
			lines := source.SplitLines(data)
			log.Info("batch fetched", zap.Int("lines", len(lines)))

			results, err := analyzer.Analyze(ctx, lines)
			if err != nil {
				return err
			}

			out := sink.NewWriterSink(cmd.OutOrStdout())
			var slackSink sink.Sink
			if cfg.SlackToken != "" {
				slackSink = sink.NewSlackSink(cfg.SlackToken, cfg.SlackChannel)
			}
			for _, res := range results {
				if err := out.Publish(ctx, res); err != nil {
					return err
				}
				// Chat only hears about batches that actually flagged something.
				if slackSink != nil && len(res.Clusters) > 0 {
					if err := slackSink.Publish(ctx, res); err != nil {
						log.Error("slack publish failed", zap.String("analysis_id", res.AnalysisID), zap.Error(err))
					}
				}
			}
			log.Info("analysis complete", zap.Int("results", len(results)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "-", "log file to analyze, '-' for stdin")
	cmd.Flags().StringVar(&minSeverity, "min-severity", "", "minimum level to consider (DEBUG..CRITICAL)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "lines per analysis batch")
	cmd.Flags().IntVar(&workers, "workers", 0, "filter evaluation concurrency")
	return cmd
}
