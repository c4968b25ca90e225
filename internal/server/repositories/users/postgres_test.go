package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/taskboard/internal/common"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var (
	ts       = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	userCols = []string{"id", "email", "username", "display_name", "password_hash", "role", "created_at", "updated_at"}
)

const insertQ = `(?s)^INSERT\s+INTO\s+users\s*\(email,\s*username,\s*display_name,\s*password_hash,\s*role\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*RETURNING\s+id,\s*created_at,\s*updated_at\s*$`

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).
		WithArgs("a@b.c", "", "", "hash", "user").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("42", ts, ts))

	u := &models.User{Email: "a@b.c", PasswordHash: "hash", Role: models.UserRoleUser}
	got, err := repo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "42" || !got.CreatedAt.Equal(ts) {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestCreate_UniqueViolation(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), &models.User{Email: "a@b.c"})
	if !errors.Is(err, common.ErrIdentityTaken) || !errors.Is(err, common.ErrConflict) {
		t.Fatalf("want ErrIdentityTaken, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{Email: "a@b.c"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByLogin_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)FROM\s+users\s+WHERE\s+lower\(email\)\s*=\s*lower\(\$1\)\s+OR\s+\(username\s*<>\s*''\s+AND\s+lower\(username\)\s*=\s*lower\(\$1\)\)`

	mock.ExpectQuery(q).
		WithArgs("Alice").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("u-1", "a@b.c", "alice", "Alice", "hash", "admin", ts, ts))

	got, err := repo.GetByLogin(context.Background(), "Alice")
	if err != nil {
		t.Fatalf("GetByLogin error: %v", err)
	}
	if got.ID != "u-1" || got.UserName != "alice" || got.Role != models.UserRoleAdmin {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestGetByLogin_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+users`).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByLogin(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetByID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)FROM\s+users\s+WHERE\s+id\s*=\s*\$1`
	mock.ExpectQuery(q).WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("u-1", "a@b.c", "", "", "hash", "user", ts, ts))
	mock.ExpectQuery(q).WithArgs("u-2").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(q).WithArgs("u-3").WillReturnError(errors.New("boom"))
	mock.ExpectQuery(q).WithArgs("ghost").WillReturnError(&pgconn.PgError{Code: "22P02"})

	if u, err := repo.GetByID(context.Background(), "u-1"); err != nil || u.Email != "a@b.c" {
		t.Fatalf("unexpected: %+v %v", u, err)
	}
	if _, err := repo.GetByID(context.Background(), "u-2"); !errors.Is(err, common.ErrUserNotFound) {
		t.Fatalf("want ErrUserNotFound, got %v", err)
	}
	if _, err := repo.GetByID(context.Background(), "u-3"); err == nil || errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want db error, got %v", err)
	}
	if _, err := repo.GetByID(context.Background(), "ghost"); !errors.Is(err, common.ErrUserNotFound) {
		t.Fatalf("malformed id: want ErrUserNotFound, got %v", err)
	}
}

func TestIdentityTaken(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)SELECT\s+EXISTS.*FROM\s+users.*id::text\s*<>\s*\$3`
	mock.ExpectQuery(q).WithArgs("a@b.c", "alice", "u-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	taken, err := repo.IdentityTaken(context.Background(), "a@b.c", "alice", "u-1")
	if err != nil || !taken {
		t.Fatalf("want taken, got %v %v", taken, err)
	}
}

func TestList_SearchSortLimit(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)FROM\s+users\s+WHERE\s+\(email\s+ILIKE\s+\$1\s+OR\s+display_name\s+ILIKE\s+\$1\)\s+ORDER\s+BY\s+created_at\s+DESC,\s*id\s+ASC\s+LIMIT\s+\$2$`
	mock.ExpectQuery(q).WithArgs("%ali%", 10).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("u-1", "ali@b.c", "", "", "h", "user", ts, ts).
			AddRow("u-2", "bob@b.c", "", "Ali", "h", "user", ts, ts))

	got, err := repo.List(context.Background(), models.ListQuery{
		Search:  "ali",
		Filters: []string{"email", "displayName"},
		Sort:    []models.SortField{{Field: "createdAt", Desc: true}},
	}, 10)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "u-1" {
		t.Fatalf("unexpected users: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestList_RejectsUnknownFields(t *testing.T) {
	repo, _, db := newRepoWithMock(t)
	defer db.Close()

	_, err := repo.List(context.Background(), models.ListQuery{Search: "x", Filters: []string{"password_hash"}}, 10)
	if !errors.Is(err, common.ErrInvalidQuery) {
		t.Fatalf("want ErrInvalidQuery, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+users\s+SET\s+email\s*=\s*\$2,\s*username\s*=\s*\$3,\s*display_name\s*=\s*\$4`
	upd := models.ProfileUpdate{Email: "n@b.c", UserName: "neo", DisplayName: "Neo"}

	mock.ExpectExec(q).WithArgs("u-1", "n@b.c", "neo", "Neo").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("u-2", "n@b.c", "neo", "Neo").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q).WithArgs("u-3", "n@b.c", "neo", "Neo").WillReturnError(&pgconn.PgError{Code: "23505"})

	if err := repo.Update(context.Background(), "u-1", upd); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if err := repo.Update(context.Background(), "u-2", upd); !errors.Is(err, common.ErrUserNotFound) {
		t.Fatalf("want ErrUserNotFound, got %v", err)
	}
	if err := repo.Update(context.Background(), "u-3", upd); !errors.Is(err, common.ErrIdentityTaken) {
		t.Fatalf("want ErrIdentityTaken, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s+AND\s+NOT\s+EXISTS\s*\(SELECT\s+1\s+FROM\s+board_members\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+role\s*=\s*'owner'\)$`
	mock.ExpectExec(q).WithArgs("u-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("u-2").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "u-1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := repo.Delete(context.Background(), "u-2"); !errors.Is(err, common.ErrUserNotFound) {
		t.Fatalf("want ErrUserNotFound, got %v", err)
	}
}
