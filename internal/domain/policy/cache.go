package policy

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const cacheKey = "point_policy:v1"

// CachedStore is a read-through Redis cache over a policy store. The policy
// row is read on every automatic debit, so it is worth keeping hot; updates
// drop the cached copy. A nil client makes the cache a pass-through.
type CachedStore struct {
	inner Store
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCachedStore(inner Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CachedStore{inner: inner, rdb: rdb, ttl: ttl}
}

func (c *CachedStore) Get(ctx context.Context) (*PointPolicy, error) {
	if c.rdb != nil {
		raw, err := c.rdb.Get(ctx, cacheKey).Bytes()
		if err == nil {
			var p PointPolicy
			if err := json.Unmarshal(raw, &p); err == nil && p.Validate() == nil {
				return &p, nil
			}
			// Corrupt cache entry, fall through to the database.
		} else if err != redis.Nil {
			log.Warn().Err(err).Msg("policy cache read failed")
		}
	}

	p, err := c.inner.Get(ctx)
	if err != nil {
		return nil, err
	}

	if c.rdb != nil {
		if raw, err := json.Marshal(p); err == nil {
			if err := c.rdb.Set(ctx, cacheKey, raw, c.ttl).Err(); err != nil {
				log.Warn().Err(err).Msg("policy cache write failed")
			}
		}
	}

	return p, nil
}

func (c *CachedStore) Update(ctx context.Context, p *PointPolicy) error {
	if err := c.inner.Update(ctx, p); err != nil {
		return err
	}

	if c.rdb != nil {
		if err := c.rdb.Del(ctx, cacheKey).Err(); err != nil {
			log.Warn().Err(err).Msg("policy cache invalidation failed")
		}
	}

	return nil
}
