// cluster.go — Groups parsed log events into per-signature clusters.
// Stateless per call: one batch of raw lines in, one sorted cluster list out.
// The first event for a signature fixes the representative log and level
// rank; later events only append timestamps and bump the count.
package cluster

import (
	"sort"

	"github.com/logsieve/logsieve/internal/parse"
	"github.com/logsieve/logsieve/internal/types"
)

// Clusterer folds raw lines into signature clusters using an Extractor.
type Clusterer struct {
	extractor *parse.Extractor
}

// New returns a Clusterer backed by the given extractor.
func New(extractor *parse.Extractor) *Clusterer {
	return &Clusterer{extractor: extractor}
}

// Cluster parses each line in order and groups the surviving events by
// signature. Output is sorted by count descending; ties keep first-seen
// order. Timestamps inside a cluster preserve batch order.
func (c *Clusterer) Cluster(lines []string) []types.Cluster {
	bySignature := make(map[string]*types.Cluster)
	order := make([]string, 0)

	for _, line := range lines {
		ev, ok := c.extractor.Extract(line)
		if !ok {
			continue
		}
		cl, seen := bySignature[ev.Signature]
		if !seen {
			cl = &types.Cluster{
				Signature:         ev.Signature,
				LevelRank:         ev.LevelRank,
				RepresentativeLog: ev.Raw,
			}
			bySignature[ev.Signature] = cl
			order = append(order, ev.Signature)
		}
		cl.Count++
		cl.Timestamps = append(cl.Timestamps, ev.Timestamp)
	}

	clusters := make([]types.Cluster, 0, len(order))
	for _, sig := range order {
		clusters = append(clusters, *bySignature[sig])
	}
	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].Count > clusters[j].Count
	})
	return clusters
}

// TotalEvents sums cluster counts: the number of input lines that yielded a
// signature.
func TotalEvents(clusters []types.Cluster) int {
	total := 0
	for _, cl := range clusters {
		total += cl.Count
	}
	return total
}
