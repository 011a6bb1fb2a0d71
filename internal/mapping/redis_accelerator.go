package mapping

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/pawapay/pawarisk/pkg/contracts"
	"github.com/pawapay/pawarisk/pkg/models"
)

const unmappedCounterKeyFormat = "pawarisk.unmapped.%s.%s" // platform, raw_key

// RedisAcceleratedStore wraps a contracts.MappingStore with a Redis
// INCR ahead of the Postgres upsert for the unmapped-market occurrence
// counter, grounded on delta.Engine's Redis-first comparison habit:
// the hot path (every raw market a mapper can't resolve, every cycle)
// bumps a Redis counter unconditionally, then still writes through to
// Postgres so the counter survives a Redis restart.
type RedisAcceleratedStore struct {
	inner contracts.MappingStore
	redis *redis.Client
}

var _ contracts.MappingStore = (*RedisAcceleratedStore)(nil)

func NewRedisAcceleratedStore(inner contracts.MappingStore, client *redis.Client) *RedisAcceleratedStore {
	return &RedisAcceleratedStore{inner: inner, redis: client}
}

func (s *RedisAcceleratedStore) LoadActiveMappings(ctx context.Context) ([]models.MarketMapping, error) {
	return s.inner.LoadActiveMappings(ctx)
}

func (s *RedisAcceleratedStore) RecordUnmappedMarket(ctx context.Context, entry models.UnmappedMarketLogEntry) error {
	key := fmt.Sprintf(unmappedCounterKeyFormat, string(entry.Platform), entry.RawKey)
	if err := s.redis.Incr(ctx, key).Err(); err != nil {
		return fmt.Errorf("incr unmapped counter: %w", err)
	}
	return s.inner.RecordUnmappedMarket(ctx, entry)
}
