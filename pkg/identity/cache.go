package identity

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type cachedResolver struct {
	next Resolver
	rdb  *redis.Client
	ttl  time.Duration
}

// NewCached prefers a Redis-cached contact value and falls back to the
// wrapped resolver. Cache failures degrade to a direct lookup; they never
// fail the channel attempt on their own.
func NewCached(next Resolver, rdb *redis.Client, ttl time.Duration) Resolver {
	return &cachedResolver{next: next, rdb: rdb, ttl: ttl}
}

func (c *cachedResolver) lookup(ctx context.Context, key, tenantID, userID string,
	fetch func(context.Context, string, string) (string, error)) (string, error) {

	cached, err := c.rdb.Get(ctx, key).Result()
	if err == nil && cached != "" {
		return cached, nil
	}
	if err != nil && !errors.Is(err, redis.Nil) && ctx.Err() != nil {
		return "", ctx.Err()
	}

	value, err := fetch(ctx, tenantID, userID)
	if err != nil {
		return "", err
	}
	if value != "" {
		_ = c.rdb.Set(ctx, key, value, c.ttl).Err()
	}
	return value, nil
}

func (c *cachedResolver) PrimaryEmail(ctx context.Context, tenantID, userID string) (string, error) {
	key := "contact:email:" + tenantID + ":" + userID
	return c.lookup(ctx, key, tenantID, userID, c.next.PrimaryEmail)
}

func (c *cachedResolver) PrimaryPhone(ctx context.Context, tenantID, userID string) (string, error) {
	key := "contact:phone:" + tenantID + ":" + userID
	return c.lookup(ctx, key, tenantID, userID, c.next.PrimaryPhone)
}
