package revocations

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "revoked:"

// RedisRepository keeps one key per revoked session, expiring at the
// session's own expiry (SET revoked:<sid> 1 EXAT <exp>).
type RedisRepository struct {
	client redis.Cmdable
}

func NewRedisRepository(client redis.Cmdable) *RedisRepository {
	return &RedisRepository{client: client}
}

func Key(sessionID string) string { return keyPrefix + sessionID }

func (r *RedisRepository) Revoke(ctx context.Context, sessionID string, expiresAt time.Time) error {
	err := r.client.SetArgs(ctx, Key(sessionID), 1, redis.SetArgs{ExpireAt: expiresAt}).Err()
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (r *RedisRepository) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	n, err := r.client.Exists(ctx, Key(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis error: %w", err)
	}
	return n > 0, nil
}
