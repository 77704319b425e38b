// store.go — Persistence of per-signature event timestamps between runs.
// The models only ever look back a bounded window, so stores keep a rolling
// 48 hour horizon and cap how many timestamps one signature can return.
package history

import (
	"context"
	"sort"
	"sync"
	"time"
)

// DefaultRetention is how far back stored timestamps remain visible.
const DefaultRetention = 48 * time.Hour

// Item is one observed event for one signature.
type Item struct {
	Signature string
	Timestamp time.Time
}

// Store reads and appends per-signature timestamp history.
//
// GetRecent returns timestamps within the retention window, oldest first,
// keeping at most limitPerSig of the newest per signature. Signatures with
// no history map to an empty slice.
type Store interface {
	GetRecent(ctx context.Context, signatures []string, limitPerSig int) (map[string][]time.Time, error)
	AppendBatch(ctx context.Context, items []Item) error
}

// MemoryStore is an in-process Store for single-shot runs and tests.
type MemoryStore struct {
	mu        sync.Mutex
	retention time.Duration
	now       func() time.Time
	data      map[string][]time.Time
}

// NewMemoryStore returns an empty MemoryStore with the default retention.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		retention: DefaultRetention,
		now:       time.Now,
		data:      make(map[string][]time.Time),
	}
}

// WithClock overrides the retention clock, for tests.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

// WithRetention overrides the retention window. Non-positive durations keep
// the default.
func (s *MemoryStore) WithRetention(d time.Duration) *MemoryStore {
	if d > 0 {
		s.retention = d
	}
	return s
}

// GetRecent implements Store.
func (s *MemoryStore) GetRecent(_ context.Context, signatures []string, limitPerSig int) (map[string][]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.retention)
	out := make(map[string][]time.Time, len(signatures))
	for _, sig := range signatures {
		recent := make([]time.Time, 0)
		for _, ts := range s.data[sig] {
			if !ts.Before(cutoff) {
				recent = append(recent, ts)
			}
		}
		sort.Slice(recent, func(i, j int) bool { return recent[i].Before(recent[j]) })
		if limitPerSig > 0 && len(recent) > limitPerSig {
			recent = recent[len(recent)-limitPerSig:]
		}
		out[sig] = recent
	}
	return out, nil
}

// AppendBatch implements Store. Entries older than the retention window are
// pruned on the way in.
func (s *MemoryStore) AppendBatch(_ context.Context, items []Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.retention)
	touched := make(map[string]struct{})
	for _, it := range items {
		s.data[it.Signature] = append(s.data[it.Signature], it.Timestamp.UTC())
		touched[it.Signature] = struct{}{}
	}
	for sig := range touched {
		kept := s.data[sig][:0]
		for _, ts := range s.data[sig] {
			if !ts.Before(cutoff) {
				kept = append(kept, ts)
			}
		}
		s.data[sig] = kept
	}
	return nil
}
