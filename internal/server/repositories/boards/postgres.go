// Package boards is the PostgreSQL repository for boards and their
// membership rows.
package boards

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/taskboard/internal/common"
	"github.com/dmitrijs2005/taskboard/internal/dbx"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/listquery"
)

var (
	filterColumns = listquery.Columns{"title": "b.title", "description": "b.description"}
	sortColumns   = listquery.Columns{"title": "b.title", "description": "b.description", "createdAt": "b.created_at"}
)

const boardColumns = `b.id, b.title, b.description, b.created_at, b.updated_at, b.last_activity_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBoard(row scanner) (*models.Board, error) {
	b := &models.Board{}
	var lastActivity sql.NullTime
	if err := row.Scan(&b.ID, &b.Title, &b.Description, &b.CreatedAt, &b.UpdatedAt, &lastActivity); err != nil {
		return nil, err
	}
	if lastActivity.Valid {
		b.LastActivityAt = &lastActivity.Time
	}
	return b, nil
}

// Create inserts the board row only; memberships are added with AddMember.
func (r *PostgresRepository) Create(ctx context.Context, board *models.Board) (*models.Board, error) {
	query :=
		`INSERT INTO boards (title, description)
		 VALUES ($1, $2)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query, board.Title, board.Description).
		Scan(&board.ID, &board.CreatedAt, &board.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return board, nil
}

// Get loads the board and its members.
func (r *PostgresRepository) Get(ctx context.Context, boardID string) (*models.Board, error) {
	query := `SELECT ` + boardColumns + ` FROM boards b WHERE b.id = $1`

	board, err := scanBoard(r.db.QueryRowContext(ctx, query, boardID))
	if err != nil {
		return nil, dbx.NotFoundOr(err, common.ErrBoardNotFound)
	}

	if board.Members, err = r.Members(ctx, boardID); err != nil {
		return nil, err
	}
	return board, nil
}

// ListForMember returns up to limit boards userID belongs to.
func (r *PostgresRepository) ListForMember(ctx context.Context, userID string, q models.ListQuery, limit int) ([]models.Board, error) {
	cond, args, err := listquery.Search(q, filterColumns, []any{userID})
	if err != nil {
		return nil, err
	}
	order, err := listquery.OrderBy(q, sortColumns, "b.id ASC")
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + boardColumns + `
		 FROM boards b
		 JOIN board_members m ON m.board_id = b.id
		 WHERE m.user_id = $1`
	if cond != "" {
		query += ` AND ` + cond
	}
	args = append(args, limit)
	query += fmt.Sprintf(` ORDER BY %s LIMIT $%d`, order, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.Board
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	rows.Close()

	for i := range out {
		if out[i].Members, err = r.Members(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, boardID, title, description string) error {
	query :=
		`UPDATE boards
		 SET title = $2, description = $3, updated_at = now()
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, boardID, title, description)
	if err != nil {
		return dbx.NotFoundOr(err, common.ErrBoardNotFound)
	}
	return dbx.RequireAffected(res, common.ErrBoardNotFound)
}

// Delete removes the board; members, lists and cards cascade. Invitations
// are left to fail on resolve.
func (r *PostgresRepository) Delete(ctx context.Context, boardID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM boards WHERE id = $1`, boardID)
	if err != nil {
		return dbx.NotFoundOr(err, common.ErrBoardNotFound)
	}
	return dbx.RequireAffected(res, common.ErrBoardNotFound)
}

// Touch records activity on the board.
func (r *PostgresRepository) Touch(ctx context.Context, boardID string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE boards SET last_activity_at = now() WHERE id = $1`, boardID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Members lists the board's members in join order with their user details.
func (r *PostgresRepository) Members(ctx context.Context, boardID string) ([]models.Member, error) {
	query :=
		`SELECT m.user_id, m.role, COALESCE(m.invited_by::text, ''), m.joined_at,
		        u.email, u.username, u.display_name
		 FROM board_members m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.board_id = $1
		 ORDER BY m.member_order
		 `

	rows, err := r.db.QueryContext(ctx, query, boardID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.Member
	for rows.Next() {
		var m models.Member
		var role string
		if err := rows.Scan(&m.UserID, &role, &m.InvitedBy, &m.JoinedAt, &m.Email, &m.UserName, &m.DisplayName); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		m.Role = models.BoardRole(role)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

// AddMember inserts a membership row, provided the board still exists.
// It returns ErrBoardNotFound when the board is gone and ErrAlreadyMember
// when userID is already on the board (or the board already has an owner).
func (r *PostgresRepository) AddMember(ctx context.Context, boardID, userID string, role models.BoardRole, invitedBy string) error {
	query :=
		`INSERT INTO board_members (board_id, user_id, role, invited_by)
		 SELECT id, $2, $3, NULLIF($4, '')::uuid FROM boards WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, boardID, userID, string(role), invitedBy)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrAlreadyMember
		}
		return dbx.NotFoundOr(err, common.ErrBoardNotFound)
	}
	return dbx.RequireAffected(res, common.ErrBoardNotFound)
}

// CountOwned returns how many boards userID owns.
func (r *PostgresRepository) CountOwned(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM board_members WHERE user_id = $1 AND role = 'owner'`, userID).Scan(&n)
	if err != nil {
		if dbx.IsInvalidText(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
