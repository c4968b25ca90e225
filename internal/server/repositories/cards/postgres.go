// Package cards is the PostgreSQL repository for cards, their assignees and
// their activity log.
package cards

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/taskboard/internal/common"
	"github.com/dmitrijs2005/taskboard/internal/dbx"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
	"github.com/dmitrijs2005/taskboard/internal/server/ordering"
)

const cardColumns = `id, board_id, list_id, title, description, pos, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCard(row scanner) (*models.Card, error) {
	c := &models.Card{}
	err := row.Scan(&c.ID, &c.BoardID, &c.ListID, &c.Title, &c.Description, &c.Pos, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *PostgresRepository) Create(ctx context.Context, card *models.Card) (*models.Card, error) {
	query :=
		`INSERT INTO cards (board_id, list_id, title, description, pos)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query, card.BoardID, card.ListID, card.Title, card.Description, card.Pos).
		Scan(&card.ID, &card.CreatedAt, &card.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return card, nil
}

// Get loads one card of the board together with its assignees.
func (r *PostgresRepository) Get(ctx context.Context, boardID, cardID string) (*models.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1 AND board_id = $2`

	card, err := scanCard(r.db.QueryRowContext(ctx, query, cardID, boardID))
	if err != nil {
		return nil, dbx.NotFoundOr(err, common.ErrCardNotFound)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT user_id FROM card_assignees WHERE card_id = $1 ORDER BY user_id`, cardID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	card.AssignedTo = []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		card.AssignedTo = append(card.AssignedTo, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return card, nil
}

// ListByBoard returns every card of the board ordered by list, then (pos, id).
func (r *PostgresRepository) ListByBoard(ctx context.Context, boardID string) ([]models.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE board_id = $1 ORDER BY list_id, pos, id`

	rows, err := r.db.QueryContext(ctx, query, boardID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.Card
	index := map[string]int{}
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		c.AssignedTo = []string{}
		index[c.ID] = len(out)
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	rows.Close()

	if len(out) == 0 {
		return out, nil
	}

	aq :=
		`SELECT a.card_id, a.user_id
		 FROM card_assignees a
		 JOIN cards c ON c.id = a.card_id
		 WHERE c.board_id = $1
		 ORDER BY a.card_id, a.user_id
		 `
	arows, err := r.db.QueryContext(ctx, aq, boardID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer arows.Close()

	for arows.Next() {
		var cardID, userID string
		if err := arows.Scan(&cardID, &userID); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if i, ok := index[cardID]; ok {
			out[i].AssignedTo = append(out[i].AssignedTo, userID)
		}
	}
	if err := arows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, boardID, cardID, title, description string) error {
	query :=
		`UPDATE cards
		 SET title = $3, description = $4, updated_at = now()
		 WHERE id = $1 AND board_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, cardID, boardID, title, description)
	if err != nil {
		return dbx.NotFoundOr(err, common.ErrCardNotFound)
	}
	return dbx.RequireAffected(res, common.ErrCardNotFound)
}

// Move places the card in listID at pos. The list must belong to the same
// board as the card; the caller checks that.
func (r *PostgresRepository) Move(ctx context.Context, boardID, cardID, listID string, pos float64) error {
	query :=
		`UPDATE cards
		 SET list_id = $3, pos = $4, updated_at = now()
		 WHERE id = $1 AND board_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, cardID, boardID, listID, pos)
	if err != nil {
		return dbx.NotFoundOr(err, common.ErrCardNotFound)
	}
	return dbx.RequireAffected(res, common.ErrCardNotFound)
}

func (r *PostgresRepository) Delete(ctx context.Context, boardID, cardID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cards WHERE id = $1 AND board_id = $2`, cardID, boardID)
	if err != nil {
		return dbx.NotFoundOr(err, common.ErrCardNotFound)
	}
	return dbx.RequireAffected(res, common.ErrCardNotFound)
}

// AddAssignee is idempotent.
func (r *PostgresRepository) AddAssignee(ctx context.Context, cardID, userID string) error {
	query :=
		`INSERT INTO card_assignees (card_id, user_id)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING
		 `
	if _, err := r.db.ExecContext(ctx, query, cardID, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) RemoveAssignee(ctx context.Context, cardID, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM card_assignees WHERE card_id = $1 AND user_id = $2`, cardID, userID)
	if err != nil && !dbx.IsInvalidText(err) {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) AddActivity(ctx context.Context, a *models.Activity) error {
	query :=
		`INSERT INTO card_activities (card_id, user_id, type, comment, assignee, move_from, move_to)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		a.CardID, a.UserID, string(a.Type), a.Comment, a.Assignee, a.MoveFrom, a.MoveTo).
		Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Activities returns the card's log, oldest first.
func (r *PostgresRepository) Activities(ctx context.Context, cardID string) ([]models.Activity, error) {
	query :=
		`SELECT id, card_id, user_id, type, comment, assignee, move_from, move_to, created_at
		 FROM card_activities
		 WHERE card_id = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, cardID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.Activity
	for rows.Next() {
		var a models.Activity
		var typ string
		if err := rows.Scan(&a.ID, &a.CardID, &a.UserID, &typ, &a.Comment, &a.Assignee, &a.MoveFrom, &a.MoveTo, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		a.Type = models.ActivityType(typ)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

// Scope exposes the list's cards to the ordering package.
func (r *PostgresRepository) Scope(listID string) ordering.Scope {
	return &listScope{db: r.db, listID: listID}
}

type listScope struct {
	db     dbx.DBTX
	listID string
}

func (s *listScope) MaxPos(ctx context.Context) (float64, bool, error) {
	var max sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(pos) FROM cards WHERE list_id = $1`, s.listID).Scan(&max); err != nil {
		return 0, false, fmt.Errorf("db error: %w", err)
	}
	return max.Float64, max.Valid, nil
}

func (s *listScope) Items(ctx context.Context) ([]ordering.Item, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, pos FROM cards WHERE list_id = $1 ORDER BY pos, id`, s.listID)
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

func (s *listScope) SetPos(ctx context.Context, id string, pos float64) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE cards SET pos = $3 WHERE id = $1 AND list_id = $2`, id, s.listID, pos); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
