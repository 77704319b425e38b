package aggregate

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/logsieve/logsieve/internal/types"
)

var digestTime = time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func result(id, summary string, total int, clusters ...types.Cluster) types.AnalysisResult {
	return types.AnalysisResult{
		AnalysisID:         id,
		Summary:            summary,
		Clusters:           clusters,
		TotalLogsProcessed: total,
		TotalClustersFound: len(clusters),
	}
}

func TestMergeSumsDuplicateSignatures(t *testing.T) {
	t.Parallel()
	a := New(nil, nil).WithClock(func() time.Time { return digestTime })
	records := [][]byte{
		mustJSON(t, result("run-1", "first summary", 10,
			types.Cluster{Signature: "ERROR: boom", Count: 3, RepresentativeLog: "ERROR: boom 1"},
			types.Cluster{Signature: "WARNING: slow", Count: 1},
		)),
		mustJSON(t, result("run-2", "second summary", 5,
			types.Cluster{Signature: "ERROR: boom", Count: 4, RepresentativeLog: "ERROR: boom 2"},
		)),
	}

	d := a.Merge(context.Background(), records)
	if d.AnalysisID != "consolidated-digestrun-1run-2" {
		t.Fatalf("id = %q", d.AnalysisID)
	}
	if d.TotalLogsProcessed != 15 || d.TotalClustersFound != 2 {
		t.Fatalf("totals = %d logs, %d clusters", d.TotalLogsProcessed, d.TotalClustersFound)
	}
	if d.Clusters[0].Signature != "ERROR: boom" || d.Clusters[0].Count != 7 {
		t.Fatalf("top cluster = %+v", d.Clusters[0])
	}
	// First occurrence wins for everything but the count.
	if d.Clusters[0].RepresentativeLog != "ERROR: boom 1" {
		t.Fatalf("representative = %q", d.Clusters[0].RepresentativeLog)
	}
	if d.Summary != "first summary\n\n---\n\nsecond summary" {
		t.Fatalf("summary = %q", d.Summary)
	}
	if !d.ProcessedAt.Equal(digestTime) {
		t.Fatalf("processed_at = %v", d.ProcessedAt)
	}
}

func TestMergeSkipsUndecodableRecords(t *testing.T) {
	t.Parallel()
	a := New(nil, nil)
	records := [][]byte{
		[]byte("not json"),
		[]byte(`{"summary":"missing id"}`),
		mustJSON(t, result("run-1", "ok", 2, types.Cluster{Signature: "ERROR: boom", Count: 2})),
	}
	d := a.Merge(context.Background(), records)
	if d.TotalLogsProcessed != 2 || d.TotalClustersFound != 1 {
		t.Fatalf("digest = %+v", d)
	}
}

func TestMergeEmptyInput(t *testing.T) {
	t.Parallel()
	d := New(nil, nil).Merge(context.Background(), nil)
	if d.AnalysisID != "consolidated-digest" || d.TotalClustersFound != 0 {
		t.Fatalf("digest = %+v", d)
	}
	if d.Summary != "No anomalies reported in the merged results." {
		t.Fatalf("summary = %q", d.Summary)
	}
}

func TestDecodeRecordUnwrapsEnvelope(t *testing.T) {
	t.Parallel()
	inner := mustJSON(t, result("run-9", "wrapped", 3, types.Cluster{Signature: "ERROR: boom", Count: 3}))
	envelope := mustJSON(t, map[string]string{"Message": string(inner)})

	res, err := DecodeRecord(envelope)
	if err != nil {
		t.Fatalf("DecodeRecord: %v", err)
	}
	if res.AnalysisID != "run-9" || res.TotalLogsProcessed != 3 {
		t.Fatalf("res = %+v", res)
	}
}

func TestDecodeRecordRejectsMissingID(t *testing.T) {
	t.Parallel()
	if _, err := DecodeRecord([]byte(`{"summary":"x"}`)); err == nil {
		t.Fatal("expected an error")
	}
}

// Merging in one step or in two must agree on counts and totals.
func TestMergeIsCompositionalOverCounts(t *testing.T) {
	t.Parallel()
	a := New(nil, nil).WithClock(func() time.Time { return digestTime })
	r1 := result("a", "s1", 4, types.Cluster{Signature: "ERROR: boom", Count: 2})
	r2 := result("b", "s2", 6, types.Cluster{Signature: "ERROR: boom", Count: 3})
	r3 := result("c", "s3", 1, types.Cluster{Signature: "WARNING: slow", Count: 1})

	all := a.MergeResults(context.Background(), []types.AnalysisResult{r1, r2, r3})
	partial := a.MergeResults(context.Background(), []types.AnalysisResult{r1, r2})
	rest := a.MergeResults(context.Background(), []types.AnalysisResult{partial, r3})

	if all.TotalLogsProcessed != rest.TotalLogsProcessed {
		t.Fatalf("totals differ: %d vs %d", all.TotalLogsProcessed, rest.TotalLogsProcessed)
	}
	counts := func(d types.Digest) map[string]int {
		m := make(map[string]int)
		for _, c := range d.Clusters {
			m[c.Signature] = c.Count
		}
		return m
	}
	ca, cr := counts(all), counts(rest)
	if len(ca) != len(cr) {
		t.Fatalf("cluster sets differ: %v vs %v", ca, cr)
	}
	for sig, n := range ca {
		if cr[sig] != n {
			t.Fatalf("count for %q differs: %d vs %d", sig, n, cr[sig])
		}
	}
}

type failingSummarizer struct{}

func (failingSummarizer) Summarize(context.Context, []types.Cluster, int) (string, error) {
	return "", errors.New("unavailable")
}
func (failingSummarizer) Synthesize(context.Context, []string) (string, error) {
	return "", errors.New("unavailable")
}

func TestMergeFallsBackWhenSynthesisFails(t *testing.T) {
	t.Parallel()
	a := New(failingSummarizer{}, nil)
	d := a.MergeResults(context.Background(), []types.AnalysisResult{
		result("a", "window one", 1),
		result("b", "window two", 1),
	})
	if d.Summary != "window one\n\n---\n\nwindow two" {
		t.Fatalf("summary = %q", d.Summary)
	}
}
