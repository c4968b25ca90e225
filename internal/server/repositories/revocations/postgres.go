package revocations

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskboard/internal/dbx"
)

// PostgresRepository keeps revocations in revoked_sessions. PostgreSQL has
// no TTL, so rows past their expiry are ignored on read and swept on write.
type PostgresRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db, now: time.Now}
}

// Revoke inserts the record if absent, after dropping expired ones.
func (r *PostgresRepository) Revoke(ctx context.Context, sessionID string, expiresAt time.Time) error {
	if err := r.Sweep(ctx); err != nil {
		return err
	}

	query := `
		INSERT INTO revoked_sessions (session_id, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (session_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, sessionID, expiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// IsRevoked is a primary-key lookup.
func (r *PostgresRepository) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM revoked_sessions
			WHERE session_id = $1 AND expires_at > $2
		)
	`
	var revoked bool
	if err := r.db.QueryRowContext(ctx, query, sessionID, r.now()).Scan(&revoked); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return revoked, nil
}

// Sweep removes records whose session has expired.
func (r *PostgresRepository) Sweep(ctx context.Context) error {
	query := `
		DELETE FROM revoked_sessions
		WHERE expires_at <= $1
	`
	if _, err := r.db.ExecContext(ctx, query, r.now()); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
