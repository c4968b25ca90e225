// Package cache is a read-through cache of public user profiles. Entries are
// invalidated after a write and expire after a TTL, so a reader may briefly
// see a stale profile. Authorization never consults it.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskboard/internal/server/models"
	"github.com/redis/go-redis/v9"
)

// Profiles is the cache contract used by the user service.
type Profiles interface {
	Get(ctx context.Context, userID string) (*models.Profile, bool, error)
	Set(ctx context.Context, p models.Profile) error
	Invalidate(ctx context.Context, userID string) error
}

// RedisProfiles stores profiles as JSON under user:<id>.
type RedisProfiles struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisProfiles(client redis.Cmdable, ttl time.Duration) *RedisProfiles {
	return &RedisProfiles{client: client, ttl: ttl}
}

func Key(userID string) string { return "user:" + userID }

func (c *RedisProfiles) Get(ctx context.Context, userID string) (*models.Profile, bool, error) {
	raw, err := c.client.Get(ctx, Key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis error: %w", err)
	}

	p := &models.Profile{}
	if err := json.Unmarshal(raw, p); err != nil {
		// A corrupt entry is a miss; the next Set overwrites it.
		return nil, false, nil
	}
	return p, true, nil
}

func (c *RedisProfiles) Set(ctx context.Context, p models.Profile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, Key(p.ID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (c *RedisProfiles) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, Key(userID)).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

// Noop never hits; it is used when Redis is not configured.
type Noop struct{}

func (Noop) Get(context.Context, string) (*models.Profile, bool, error) { return nil, false, nil }
func (Noop) Set(context.Context, models.Profile) error                  { return nil }
func (Noop) Invalidate(context.Context, string) error                   { return nil }
