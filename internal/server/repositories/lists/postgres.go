// Package lists is the PostgreSQL repository for board lists.
package lists

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/taskboard/internal/common"
	"github.com/dmitrijs2005/taskboard/internal/dbx"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
	"github.com/dmitrijs2005/taskboard/internal/server/ordering"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, list *models.List) (*models.List, error) {
	query :=
		`INSERT INTO lists (board_id, title, pos)
		 VALUES ($1, $2, $3)
		 RETURNING id
		 `

	if err := r.db.QueryRowContext(ctx, query, list.BoardID, list.Title, list.Pos).Scan(&list.ID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return list, nil
}

func (r *PostgresRepository) Get(ctx context.Context, boardID, listID string) (*models.List, error) {
	query := `SELECT id, board_id, title, pos FROM lists WHERE id = $1 AND board_id = $2`

	l := &models.List{}
	if err := r.db.QueryRowContext(ctx, query, listID, boardID).Scan(&l.ID, &l.BoardID, &l.Title, &l.Pos); err != nil {
		return nil, dbx.NotFoundOr(err, common.ErrListNotFound)
	}
	return l, nil
}

// ListByBoard returns the board's lists ordered by (pos, id).
func (r *PostgresRepository) ListByBoard(ctx context.Context, boardID string) ([]models.List, error) {
	query := `SELECT id, board_id, title, pos FROM lists WHERE board_id = $1 ORDER BY pos, id`

	rows, err := r.db.QueryContext(ctx, query, boardID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.List
	for rows.Next() {
		var l models.List
		if err := rows.Scan(&l.ID, &l.BoardID, &l.Title, &l.Pos); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Rename(ctx context.Context, boardID, listID, title string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE lists SET title = $3 WHERE id = $1 AND board_id = $2`, listID, boardID, title)
	if err != nil {
		return dbx.NotFoundOr(err, common.ErrListNotFound)
	}
	return dbx.RequireAffected(res, common.ErrListNotFound)
}

func (r *PostgresRepository) Move(ctx context.Context, boardID, listID string, pos float64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE lists SET pos = $3 WHERE id = $1 AND board_id = $2`, listID, boardID, pos)
	if err != nil {
		return dbx.NotFoundOr(err, common.ErrListNotFound)
	}
	return dbx.RequireAffected(res, common.ErrListNotFound)
}

// Delete removes the list and, by cascade, its cards.
func (r *PostgresRepository) Delete(ctx context.Context, boardID, listID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM lists WHERE id = $1 AND board_id = $2`, listID, boardID)
	if err != nil {
		return dbx.NotFoundOr(err, common.ErrListNotFound)
	}
	return dbx.RequireAffected(res, common.ErrListNotFound)
}

// Scope exposes the board's lists to the ordering package.
func (r *PostgresRepository) Scope(boardID string) ordering.Scope {
	return &boardScope{db: r.db, boardID: boardID}
}

type boardScope struct {
	db      dbx.DBTX
	boardID string
}

func (s *boardScope) MaxPos(ctx context.Context) (float64, bool, error) {
	var max sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(pos) FROM lists WHERE board_id = $1`, s.boardID).Scan(&max); err != nil {
		return 0, false, fmt.Errorf("db error: %w", err)
	}
	return max.Float64, max.Valid, nil
}

func (s *boardScope) Items(ctx context.Context) ([]ordering.Item, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, pos FROM lists WHERE board_id = $1 ORDER BY pos, id`, s.boardID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []ordering.Item
	for rows.Next() {
		var it ordering.Item
		if err := rows.Scan(&it.ID, &it.Pos); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (s *boardScope) SetPos(ctx context.Context, id string, pos float64) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE lists SET pos = $3 WHERE id = $1 AND board_id = $2`, id, s.boardID, pos); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
