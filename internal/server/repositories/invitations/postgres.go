// Package invitations is the PostgreSQL repository for pending board
// invitations. Expiry is passive: reads filter on created_at and writes
// sweep stale rows.
package invitations

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskboard/internal/common"
	"github.com/dmitrijs2005/taskboard/internal/dbx"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
)

const invitationColumns = `id, user_id, board_id, board_title, role, invited_by, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInvitation(row scanner) (*models.Invitation, error) {
	inv := &models.Invitation{}
	var role string
	err := row.Scan(&inv.ID, &inv.UserID, &inv.Board.ID, &inv.Board.Title, &role, &inv.InvitedBy, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	inv.Role = models.BoardRole(role)
	inv.Board.InvitedBy = inv.InvitedBy
	return inv, nil
}

// Create stores inv. The (user_id, board_id) unique constraint turns a
// concurrent duplicate into ErrDuplicateInvitation.
func (r *PostgresRepository) Create(ctx context.Context, inv *models.Invitation) (*models.Invitation, error) {
	query :=
		`INSERT INTO invitations (user_id, board_id, board_title, role, invited_by)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		inv.UserID, inv.Board.ID, inv.Board.Title, string(inv.Role), inv.InvitedBy).
		Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrDuplicateInvitation
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	inv.Board.InvitedBy = inv.InvitedBy
	return inv, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, userID, boardID string, since time.Time) (bool, error) {
	query :=
		`SELECT EXISTS (
			SELECT 1 FROM invitations
			WHERE user_id = $1 AND board_id = $2 AND created_at > $3
		 )`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, boardID, since).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// ListForUser returns userID's outstanding invitations, newest first.
func (r *PostgresRepository) ListForUser(ctx context.Context, userID string, since time.Time) ([]models.Invitation, error) {
	query := `SELECT ` + invitationColumns + `
		 FROM invitations
		 WHERE user_id = $1 AND created_at > $2
		 ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

// Get returns the invitation only if it belongs to userID and is outstanding.
func (r *PostgresRepository) Get(ctx context.Context, id, userID string, since time.Time) (*models.Invitation, error) {
	query := `SELECT ` + invitationColumns + `
		 FROM invitations
		 WHERE id = $1 AND user_id = $2 AND created_at > $3`

	inv, err := scanInvitation(r.db.QueryRowContext(ctx, query, id, userID, since))
	if err != nil {
		return nil, dbx.NotFoundOr(err, common.ErrInvitationNotFound)
	}
	return inv, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM invitations WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return dbx.NotFoundOr(err, common.ErrInvitationNotFound)
	}
	return dbx.RequireAffected(res, common.ErrInvitationNotFound)
}

// SweepExpired removes invitations created at or before the cut-off.
func (r *PostgresRepository) SweepExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM invitations WHERE created_at <= $1`, before)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
