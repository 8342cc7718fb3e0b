package matching

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// CachedEngagementSource is a read-through Redis cache in front of
// another EngagementSource. Engagement aggregates change slowly, so a
// short TTL removes three store reads per candidate from the hot path.
// Cache failures fall through to the underlying source; the scorer
// already degrades to neutral if that fails too.
type CachedEngagementSource struct {
	client *redis.Client
	source EngagementSource
	ttl    time.Duration
	log    *zap.Logger
}

func NewCachedEngagementSource(client *redis.Client, source EngagementSource, ttl time.Duration, log *zap.Logger) *CachedEngagementSource {
	return &CachedEngagementSource{
		client: client,
		source: source,
		ttl:    ttl,
		log:    log,
	}
}

func engagementKey(userID int64) string {
	return fmt.Sprintf("matching:engagement:%d", userID)
}

func (c *CachedEngagementSource) GetEngagementStats(ctx context.Context, userID int64) (*EngagementStats, error) {
	key := engagementKey(userID)

	cached, err := c.client.Get(ctx, key).Result()
	if err == nil {
		var stats EngagementStats
		if err := json.Unmarshal([]byte(cached), &stats); err == nil {
			return &stats, nil
		}
		// Corrupt entry, fall through and overwrite
	} else if err != redis.Nil {
		c.log.Debug("engagement cache read failed", zap.Int64("user_id", userID), zap.Error(err))
	}

	stats, err := c.source.GetEngagementStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(stats); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.log.Debug("engagement cache write failed", zap.Int64("user_id", userID), zap.Error(err))
		}
	}

	return stats, nil
}
