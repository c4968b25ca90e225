package dbx

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation           = "23505"
	invalidTextRepresentation = "22P02"
)

// IsUniqueViolation reports whether err is a PostgreSQL unique_violation.
func IsUniqueViolation(err error) bool {
	return hasCode(err, uniqueViolation)
}

// IsInvalidText reports whether PostgreSQL rejected a parameter it could not
// parse, such as a malformed id compared with a uuid column.
func IsInvalidText(err error) bool {
	return hasCode(err, invalidTextRepresentation)
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// NotFoundOr maps the error of an id-keyed statement. No rows and a
// malformed id both mean notFound; anything else is a db error.
func NotFoundOr(err, notFound error) error {
	if errors.Is(err, sql.ErrNoRows) || IsInvalidText(err) {
		return notFound
	}
	return fmt.Errorf("db error: %w", err)
}

// RequireAffected returns notFound when res touched no rows.
func RequireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
