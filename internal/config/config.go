// config.go — Environment-driven runtime configuration.
// Flags override environment, environment overrides defaults; the cmd layer
// wires that ordering. All variables share the LOGSIEVE_ prefix.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/logsieve/logsieve/internal/filter"
	"github.com/logsieve/logsieve/internal/history"
	"github.com/logsieve/logsieve/internal/parse"
	"github.com/logsieve/logsieve/internal/pipeline"
	"github.com/logsieve/logsieve/internal/stats"
)

// Config is the full runtime configuration of the analyzer binary.
type Config struct {
	MinSeverity string // level name, e.g. "WARNING"
	BatchSize   int
	Workers     int

	MADZThreshold          float64
	HMMTrustThreshold      int
	HMMConfidenceThreshold int
	PermutationN           int
	PermutationAlpha       float64

	HistoryTTLHours int

	RedisAddr     string // empty selects the in-memory store
	RedisPassword string

	SlackToken   string
	SlackChannel string

	AnthropicAPIKey string
	AnthropicModel  string

	MetricsAddr string // empty disables the metrics endpoint
}

// FromEnv loads configuration from LOGSIEVE_* environment variables,
// falling back to defaults for anything unset.
func FromEnv() (Config, error) {
	cfg := Config{
		MinSeverity:            "WARNING",
		BatchSize:              pipeline.DefaultBatchSize,
		Workers:                filter.DefaultWorkers,
		MADZThreshold:          stats.DefaultMADZThreshold,
		HMMTrustThreshold:      filter.DefaultHMMTrustThreshold,
		HMMConfidenceThreshold: filter.DefaultHMMConfidenceThreshold,
		PermutationN:           stats.DefaultPermutationN,
		PermutationAlpha:       stats.DefaultPermutationAlpha,
		HistoryTTLHours:        int(history.DefaultRetention / time.Hour),
	}

	cfg.MinSeverity = envStr("LOGSIEVE_MIN_SEVERITY", cfg.MinSeverity)
	cfg.RedisAddr = envStr("LOGSIEVE_REDIS_ADDR", "")
	cfg.RedisPassword = envStr("LOGSIEVE_REDIS_PASSWORD", "")
	cfg.SlackToken = envStr("LOGSIEVE_SLACK_TOKEN", "")
	cfg.SlackChannel = envStr("LOGSIEVE_SLACK_CHANNEL", "")
	cfg.AnthropicAPIKey = envStr("LOGSIEVE_ANTHROPIC_API_KEY", "")
	cfg.AnthropicModel = envStr("LOGSIEVE_ANTHROPIC_MODEL", "")
	cfg.MetricsAddr = envStr("LOGSIEVE_METRICS_ADDR", "")

	var err error
	if cfg.BatchSize, err = envInt("LOGSIEVE_BATCH_SIZE", cfg.BatchSize); err != nil {
		return Config{}, err
	}
	if cfg.Workers, err = envInt("LOGSIEVE_WORKERS", cfg.Workers); err != nil {
		return Config{}, err
	}
	if cfg.MADZThreshold, err = envFloat("LOGSIEVE_MAD_Z_THRESHOLD", cfg.MADZThreshold); err != nil {
		return Config{}, err
	}
	if cfg.HMMTrustThreshold, err = envInt("LOGSIEVE_HMM_TRUST_THRESHOLD", cfg.HMMTrustThreshold); err != nil {
		return Config{}, err
	}
	if cfg.HMMConfidenceThreshold, err = envInt("LOGSIEVE_HMM_CONFIDENCE_THRESHOLD", cfg.HMMConfidenceThreshold); err != nil {
		return Config{}, err
	}
	if cfg.PermutationN, err = envInt("LOGSIEVE_PERMUTATION_N", cfg.PermutationN); err != nil {
		return Config{}, err
	}
	if cfg.PermutationAlpha, err = envFloat("LOGSIEVE_PERMUTATION_ALPHA", cfg.PermutationAlpha); err != nil {
		return Config{}, err
	}
	if cfg.HistoryTTLHours, err = envInt("LOGSIEVE_HISTORY_TTL_HOURS", cfg.HistoryTTLHours); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate rejects configurations that cannot run.
func (c Config) Validate() error {
	if _, err := parse.ParseMinSeverity(c.MinSeverity); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("config: batch size must be positive, got %d", c.BatchSize)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("config: workers must be positive, got %d", c.Workers)
	}
	if c.MADZThreshold <= 0 {
		return fmt.Errorf("config: MAD z threshold must be positive, got %v", c.MADZThreshold)
	}
	if c.HMMTrustThreshold <= 1 || c.HMMConfidenceThreshold <= c.HMMTrustThreshold {
		return fmt.Errorf("config: HMM zone thresholds must satisfy 1 < trust < confidence, got %d and %d",
			c.HMMTrustThreshold, c.HMMConfidenceThreshold)
	}
	if c.PermutationN <= 0 {
		return fmt.Errorf("config: permutation count must be positive, got %d", c.PermutationN)
	}
	if c.PermutationAlpha <= 0 || c.PermutationAlpha >= 1 {
		return fmt.Errorf("config: permutation alpha must be in (0, 1), got %v", c.PermutationAlpha)
	}
	if c.HistoryTTLHours <= 0 {
		return fmt.Errorf("config: history TTL must be positive, got %d", c.HistoryTTLHours)
	}
	if (c.SlackToken == "") != (c.SlackChannel == "") {
		return fmt.Errorf("config: slack token and channel must be set together")
	}
	return nil
}

// HistoryRetention returns the configured history TTL as a duration.
func (c Config) HistoryRetention() time.Duration {
	return time.Duration(c.HistoryTTLHours) * time.Hour
}

// MinSeverityRank resolves the configured level name to its rank. Call
// Validate first; an invalid name falls back to WARNING here.
func (c Config) MinSeverityRank() int {
	rank, err := parse.ParseMinSeverity(c.MinSeverity)
	if err != nil {
		return parse.RankWarning
	}
	return rank
}

func envStr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return f, nil
}
