// Package revocations stores ended sessions until their tokens would have
// expired anyway. Redis is the primary backend; the PostgreSQL backend is
// used when no Redis URL is configured.
package revocations

import (
	"context"
	"time"
)

// Repository is satisfied by both backends.
type Repository interface {
	Revoke(ctx context.Context, sessionID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}
