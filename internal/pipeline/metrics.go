// metrics.go — Prometheus instrumentation for the analysis pipeline.
package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	linesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "logsieve",
		Name:      "lines_processed_total",
		Help:      "Raw log lines fed into the parser.",
	})
	eventsExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "logsieve",
		Name:      "events_extracted_total",
		Help:      "Lines that yielded a signature at or above the severity floor.",
	})
	clustersFlagged = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "logsieve",
		Name:      "clusters_flagged_total",
		Help:      "Clusters the alert filter marked actionable.",
	})
	batchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "logsieve",
		Name:      "batch_duration_seconds",
		Help:      "Wall time of one batch through the pipeline.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	})
)
