// Package users is the PostgreSQL repository for accounts. Email and
// username are compared case-insensitively everywhere.
package users

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/taskboard/internal/common"
	"github.com/dmitrijs2005/taskboard/internal/dbx"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/listquery"
)

var (
	filterColumns = listquery.Columns{"email": "email", "username": "username", "displayName": "display_name"}
	sortColumns   = listquery.Columns{"email": "email", "username": "username", "displayName": "display_name", "createdAt": "created_at"}
)

const userColumns = `id, email, username, display_name, password_hash, role, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*models.User, error) {
	u := &models.User{}
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.UserName, &u.DisplayName, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = models.UserRole(role)
	return u, nil
}

// Create inserts user and fills in ID and timestamps. A taken email or
// username yields ErrIdentityTaken.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (email, username, display_name, password_hash, role)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.UserName, user.DisplayName, user.PasswordHash, string(user.Role)).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrIdentityTaken
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, dbx.NotFoundOr(err, common.ErrUserNotFound)
	}
	return user, nil
}

// GetByLogin finds a user by email or username.
func (r *PostgresRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		 WHERE lower(email) = lower($1) OR (username <> '' AND lower(username) = lower($1))
		 LIMIT 1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, login))
	if err != nil {
		return nil, dbx.NotFoundOr(err, common.ErrUserNotFound)
	}
	return user, nil
}

// IdentityTaken reports whether another account (not excludeID) already uses
// email or username. An empty username never collides.
func (r *PostgresRepository) IdentityTaken(ctx context.Context, email, username, excludeID string) (bool, error) {
	query :=
		`SELECT EXISTS (
			SELECT 1 FROM users
			WHERE (lower(email) = lower($1) OR ($2 <> '' AND lower(username) = lower($2)))
			  AND ($3 = '' OR id::text <> $3)
		 )`

	var taken bool
	if err := r.db.QueryRowContext(ctx, query, email, username, excludeID).Scan(&taken); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return taken, nil
}

// List returns up to limit users matching q.
func (r *PostgresRepository) List(ctx context.Context, q models.ListQuery, limit int) ([]models.User, error) {
	cond, args, err := listquery.Search(q, filterColumns, nil)
	if err != nil {
		return nil, err
	}
	order, err := listquery.OrderBy(q, sortColumns, "id ASC")
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users`
	if cond != "" {
		query += ` WHERE ` + cond
	}
	args = append(args, limit)
	query += fmt.Sprintf(` ORDER BY %s LIMIT $%d`, order, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, upd models.ProfileUpdate) error {
	query :=
		`UPDATE users
		 SET email = $2, username = $3, display_name = $4, updated_at = now()
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, upd.Email, upd.UserName, upd.DisplayName)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrIdentityTaken
		}
		return dbx.NotFoundOr(err, common.ErrUserNotFound)
	}
	return dbx.RequireAffected(res, common.ErrUserNotFound)
}

// Delete removes the account; memberships and assignments cascade. An owner
// is never deleted, so every board keeps its owner row.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query :=
		`DELETE FROM users
		 WHERE id = $1
		   AND NOT EXISTS (SELECT 1 FROM board_members WHERE user_id = $1 AND role = 'owner')
		 `

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return dbx.NotFoundOr(err, common.ErrUserNotFound)
	}
	return dbx.RequireAffected(res, common.ErrUserNotFound)
}
