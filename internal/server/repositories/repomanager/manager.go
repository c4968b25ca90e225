package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/taskboard/internal/dbx"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/boards"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/cards"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/invitations"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/lists"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/revocations"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/users"
)

// RepositoryManager binds repositories to a DBTX, so the same code runs
// against the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Boards(db dbx.DBTX) boards.Repository
	Lists(db dbx.DBTX) lists.Repository
	Cards(db dbx.DBTX) cards.Repository
	Invitations(db dbx.DBTX) invitations.Repository
	Revocations(db dbx.DBTX) revocations.Repository
}
