// sink.go — Delivery of finished analysis results.
package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/logsieve/logsieve/internal/types"
)

// ErrPublishFailed wraps delivery failures regardless of transport.
var ErrPublishFailed = errors.New("result publish failed")

// Sink delivers one analysis result to its destination.
type Sink interface {
	Publish(ctx context.Context, result types.AnalysisResult) error
}

// WriterSink writes results as newline-delimited JSON. Safe for concurrent
// publishes.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink wraps w, typically stdout or a rotated file.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Publish implements Sink.
func (s *WriterSink) Publish(ctx context.Context, result types.AnalysisResult) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrPublishFailed, err)
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrPublishFailed, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("%w: write: %v", ErrPublishFailed, err)
	}
	return nil
}

// RenderText renders a result as a plain-text report for chat channels and
// terminals.
func RenderText(result types.AnalysisResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Log anomaly report %s\n", result.AnalysisID)
	if !result.ProcessedAt.IsZero() {
		fmt.Fprintf(&b, "Processed at %s\n", result.ProcessedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	}
	fmt.Fprintf(&b, "\n%s\n", result.Summary)
	if len(result.Clusters) == 0 {
		return b.String()
	}
	fmt.Fprintf(&b, "\n%d anomalous clusters from %d log events:\n",
		result.TotalClustersFound, result.TotalLogsProcessed)
	for i, c := range result.Clusters {
		fmt.Fprintf(&b, "%2d. (%d×) %s\n", i+1, c.Count, c.Signature)
		if c.RepresentativeLog != "" {
			fmt.Fprintf(&b, "     e.g. %s\n", firstLine(c.RepresentativeLog))
		}
	}
	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
