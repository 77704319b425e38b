// source.go — Raw log batch acquisition.
// A BatchSource hands back one opaque blob of newline-separated log lines;
// splitting and batching live here so every transport feeds the pipeline
// the same shape.
package source

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrFetchFailed wraps transport-level failures so callers can branch on
// fetch problems without caring which transport produced them.
var ErrFetchFailed = errors.New("log batch fetch failed")

// BatchSource produces one raw batch of log data per call.
type BatchSource interface {
	FetchBatch(ctx context.Context) ([]byte, error)
}

// FileSource reads a batch from a file on disk. Paths ending in .gz are
// decompressed transparently.
type FileSource struct {
	Path string
}

// FetchBatch implements BatchSource.
func (s FileSource) FetchBatch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrFetchFailed, s.Path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(s.Path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%w: gunzip %s: %v", ErrFetchFailed, s.Path, err)
		}
		defer gz.Close()
		r = gz
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrFetchFailed, s.Path, err)
	}
	return data, nil
}

// ReaderSource reads a single batch from an arbitrary reader, typically
// stdin.
type ReaderSource struct {
	R io.Reader
}

// FetchBatch implements BatchSource.
func (s ReaderSource) FetchBatch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	data, err := io.ReadAll(s.R)
	if err != nil {
		return nil, fmt.Errorf("%w: read: %v", ErrFetchFailed, err)
	}
	return data, nil
}

// SplitLines turns a raw batch into individual log lines. Double newlines
// collapse to single ones first, so record separators produced by some
// shippers do not surface as empty lines.
func SplitLines(data []byte) []string {
	text := strings.ReplaceAll(string(data), "\n\n", "\n")
	text = strings.Trim(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// SplitBatches chunks lines into slices of at most batchSize. A batchSize
// of zero or less yields a single batch.
func SplitBatches(lines []string, batchSize int) [][]string {
	if len(lines) == 0 {
		return nil
	}
	if batchSize <= 0 || batchSize >= len(lines) {
		return [][]string{lines}
	}
	var batches [][]string
	for start := 0; start < len(lines); start += batchSize {
		end := start + batchSize
		if end > len(lines) {
			end = len(lines)
		}
		batches = append(batches, lines[start:end])
	}
	return batches
}
