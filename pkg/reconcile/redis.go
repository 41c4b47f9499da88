package reconcile

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Redis key layout for temporary snapshot sets.
const (
	KeyPrefix = "yudl:reconcile"

	// addChunkSize bounds the members sent in one SADD.
	addChunkSize = 1000
)

// RedisSets computes the reconciliation server-side with Redis set
// commands, for snapshots too large to diff comfortably in memory twice.
// Temporary keys are removed when Reconcile returns.
type RedisSets struct {
	redis  *redis.Client
	logger zerolog.Logger
	ttl    time.Duration
}

// NewRedisSets creates a Redis-backed reconciler.
func NewRedisSets(redisClient *redis.Client, logger zerolog.Logger) *RedisSets {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisSets{
		redis:  redisClient,
		logger: logger,
		ttl:    time.Hour,
	}
}

// Reconcile loads both snapshots into Redis sets, stores their union and
// intersects it with the previous set. The result matches Reconcile.
func (s *RedisSets) Reconcile(ctx context.Context, previous, recent Set) ([]string, error) {
	run := KeyPrefix + ":" + strconv.FormatInt(time.Now().UnixNano(), 36)
	previousKey := run + ":previous"
	recentKey := run + ":recent"
	unionKey := run + ":union"

	defer func() {
		if err := s.redis.Del(context.Background(), previousKey, recentKey, unionKey).Err(); err != nil {
			s.logger.Warn().Err(err).Str("key", run).Msg("Failed to delete temporary snapshot sets")
		}
	}()

	if err := s.load(ctx, previousKey, previous); err != nil {
		return nil, fmt.Errorf("load previous snapshot: %w", err)
	}
	if err := s.load(ctx, recentKey, recent); err != nil {
		return nil, fmt.Errorf("load recent snapshot: %w", err)
	}

	size, err := s.redis.SUnionStore(ctx, unionKey, previousKey, recentKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis sunionstore: %w", err)
	}

	lines, err := s.redis.SInter(ctx, unionKey, previousKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis sinter: %w", err)
	}

	s.logger.Debug().
		Int64("union_size", size).
		Int("result_size", len(lines)).
		Msg("Reconciled snapshots in redis")

	SortDescending(lines)
	return lines, nil
}

// load adds set's members to key in chunks within one pipeline.
func (s *RedisSets) load(ctx context.Context, key string, set Set) error {
	members := set.Members()
	if len(members) == 0 {
		return nil
	}

	pipe := s.redis.Pipeline()
	for start := 0; start < len(members); start += addChunkSize {
		end := min(start+addChunkSize, len(members))
		chunk := make([]interface{}, 0, end-start)
		for _, m := range members[start:end] {
			chunk = append(chunk, m)
		}
		pipe.SAdd(ctx, key, chunk...)
	}
	pipe.Expire(ctx, key, s.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis sadd: %w", err)
	}
	return nil
}
