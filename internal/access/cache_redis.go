package access

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	id "accredis/pkg/domain"
)

const principalKeyPrefix = "accredis:principal:"

// RedisCache keeps resolved principals in Redis with a TTL. The TTL bounds
// staleness when an invalidation is lost.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func principalKey(userID id.UserID) string {
	return principalKeyPrefix + userID.String()
}

func (c *RedisCache) Get(ctx context.Context, userID id.UserID) (*Principal, bool, error) {
	raw, err := c.client.Get(ctx, principalKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get principal: %w", err)
	}
	var p Principal
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, false, fmt.Errorf("decode principal: %w", err)
	}
	return &p, true, nil
}

func (c *RedisCache) Set(ctx context.Context, p *Principal) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode principal: %w", err)
	}
	if err := c.client.Set(ctx, principalKey(p.ID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set principal: %w", err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, userIDs ...id.UserID) error {
	keys := make([]string, 0, len(userIDs))
	for _, userID := range userIDs {
		keys = append(keys, principalKey(userID))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete principals: %w", err)
	}
	return nil
}
