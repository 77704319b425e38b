// redis.go — Redis-backed Store using one sorted set per signature.
// Members are RFC3339Nano timestamps scored by unix milliseconds, so range
// reads by time and retention trims are both single ZSET operations.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "logsieve:history:"

// RedisStore persists history in Redis. Read failures degrade to empty
// history rather than failing the run; the models treat a signature with no
// history as new, which errs toward alerting.
type RedisStore struct {
	client    redis.UniversalClient
	retention time.Duration
	now       func() time.Time
	log       *zap.Logger
}

// NewRedisStore wraps an existing client. A nil logger is replaced with a
// no-op one.
func NewRedisStore(client redis.UniversalClient, log *zap.Logger) *RedisStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisStore{
		client:    client,
		retention: DefaultRetention,
		now:       time.Now,
		log:       log,
	}
}

// WithClock overrides the retention clock, for tests.
func (s *RedisStore) WithClock(now func() time.Time) *RedisStore {
	s.now = now
	return s
}

// WithRetention overrides the retention window. Non-positive durations keep
// the default.
func (s *RedisStore) WithRetention(d time.Duration) *RedisStore {
	if d > 0 {
		s.retention = d
	}
	return s
}

func key(signature string) string { return redisKeyPrefix + signature }

// GetRecent implements Store. Per-signature read errors are logged and
// yield an empty slice for that signature.
func (s *RedisStore) GetRecent(ctx context.Context, signatures []string, limitPerSig int) (map[string][]time.Time, error) {
	cutoff := s.now().Add(-s.retention)
	minScore := fmt.Sprintf("%d", cutoff.UnixMilli())

	out := make(map[string][]time.Time, len(signatures))
	for _, sig := range signatures {
		members, err := s.client.ZRangeByScore(ctx, key(sig), &redis.ZRangeBy{
			Min: minScore,
			Max: "+inf",
		}).Result()
		if err != nil {
			s.log.Warn("history read failed, treating signature as new",
				zap.String("signature", sig), zap.Error(err))
			out[sig] = []time.Time{}
			continue
		}
		recent := make([]time.Time, 0, len(members))
		for _, m := range members {
			ts, err := time.Parse(time.RFC3339Nano, m)
			if err != nil {
				s.log.Warn("dropping unparseable history member",
					zap.String("signature", sig), zap.String("member", m))
				continue
			}
			recent = append(recent, ts.UTC())
		}
		if limitPerSig > 0 && len(recent) > limitPerSig {
			recent = recent[len(recent)-limitPerSig:]
		}
		out[sig] = recent
	}
	return out, nil
}

// AppendBatch implements Store. Writes, retention trims and key expiry are
// pipelined per batch.
func (s *RedisStore) AppendBatch(ctx context.Context, items []Item) error {
	if len(items) == 0 {
		return nil
	}

	cutoff := s.now().Add(-s.retention)
	maxTrim := fmt.Sprintf("%d", cutoff.UnixMilli())

	bySig := make(map[string][]redis.Z)
	for _, it := range items {
		ts := it.Timestamp.UTC()
		bySig[it.Signature] = append(bySig[it.Signature], redis.Z{
			Score:  float64(ts.UnixMilli()),
			Member: ts.Format(time.RFC3339Nano),
		})
	}

	pipe := s.client.Pipeline()
	for sig, members := range bySig {
		k := key(sig)
		pipe.ZAdd(ctx, k, members...)
		pipe.ZRemRangeByScore(ctx, k, "-inf", "("+maxTrim)
		pipe.Expire(ctx, k, s.retention)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append history batch: %w", err)
	}
	return nil
}
