// root.go — Command tree and shared wiring.
package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/logsieve/logsieve/internal/config"
	"github.com/logsieve/logsieve/internal/history"
	"github.com/logsieve/logsieve/internal/summarize"
	"github.com/logsieve/logsieve/internal/util"
)

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "logsieve",
		Short:         "Statistical log anomaly analysis",
		Long:          "logsieve clusters raw log lines by signature and filters the clusters\nthrough a tiered statistical model stack, so only unusual error bursts\nreach a human.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newAnalyzeCmd(&verbose))
	root.AddCommand(newAggregateCmd(&verbose))
	return root
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// newHistoryStore picks Redis when an address is configured, the in-memory
// store otherwise. In-memory history only spans one invocation, which is
// fine for ad-hoc runs but loses cadence data between them.
func newHistoryStore(cfg config.Config, log *zap.Logger) history.Store {
	if cfg.RedisAddr == "" {
		log.Info("using in-memory history store")
		return history.NewMemoryStore().WithRetention(cfg.HistoryRetention())
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	log.Info("using redis history store",
		zap.String("addr", cfg.RedisAddr),
		zap.Duration("retention", cfg.HistoryRetention()))
	return history.NewRedisStore(client, log).WithRetention(cfg.HistoryRetention())
}

func newSummarizer(cfg config.Config, log *zap.Logger) summarize.Summarizer {
	if cfg.AnthropicAPIKey == "" {
		log.Info("no anthropic key configured, summaries use the fallback template")
		return nil
	}
	return summarize.NewAnthropicSummarizer(cfg.AnthropicAPIKey, cfg.AnthropicModel)
}

// startMetrics serves /metrics in the background when an address is set.
func startMetrics(addr string, log *zap.Logger) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	util.SafeGo(log, func() {
		log.Info("metrics endpoint listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn("metrics endpoint stopped", zap.Error(err))
		}
	})
}

func loadConfig() (config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return config.Config{}, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, nil
}
