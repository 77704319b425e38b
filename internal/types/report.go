// report.go — Canonical data model for the analysis pipeline.
// These are the wire shapes published to sinks and consumed by the aggregator.
// Zero dependencies - foundational types used by every pipeline stage.
package types

import "time"

// ============================================
// Clusters
// ============================================

// Cluster groups all events in one batch sharing a signature.
// Invariants: Count == len(Timestamps) while timestamps are attached;
// RepresentativeLog is the first raw line observed for the signature and
// LevelRank is fixed by the first event.
type Cluster struct {
	Signature         string      `json:"signature"`
	Count             int         `json:"count"`
	LevelRank         int         `json:"level_rank,omitempty"`
	RepresentativeLog string      `json:"representative_log"`
	Timestamps        []time.Time `json:"timestamps,omitempty"`
}

// Stripped returns the minimal alert payload for this cluster: signature,
// count and representative log only. Timestamps and rank are dropped to keep
// published messages small.
func (c Cluster) Stripped() Cluster {
	return Cluster{
		Signature:         c.Signature,
		Count:             c.Count,
		RepresentativeLog: c.RepresentativeLog,
	}
}

// ============================================
// Results
// ============================================

// AnalysisResult is the outcome of one batch through clustering + filtering.
type AnalysisResult struct {
	AnalysisID         string    `json:"analysis_id"`
	Summary            string    `json:"summary"`
	Clusters           []Cluster `json:"clusters"`
	TotalLogsProcessed int       `json:"total_logs_processed"`
	TotalClustersFound int       `json:"total_clusters_found"`
	ProcessedAt        time.Time `json:"processed_at"`
}

// Digest is the consolidated output of aggregating multiple AnalysisResults.
// Same shape as AnalysisResult; clusters are unique by signature and sorted
// by count descending.
type Digest = AnalysisResult
