// Package dbx provides tiny DB abstractions shared by repositories:
// a minimal interface (DBTX) implemented by both *sql.DB and *sql.Tx,
// a helper to run a function inside a transaction, and a step runner whose
// steps report an explicit Outcome instead of unwinding.
package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskboard/internal/common"
)

// DBTX is the subset of database/sql used by our repos.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx begins a transaction, runs fn with a transactional handle, and then
// commits on success or rolls back on error/panic. Panics are rethrown.
//
// Typical use:
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    _, err := tx.ExecContext(ctx, "UPDATE ...")
//	    return err
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}

// Outcome is what a transactional step reports back to RunSteps.
// The zero value means the step succeeded and the run may continue.
type Outcome struct {
	aborted bool
	reason  error
}

// Continue reports a successful step.
func Continue() Outcome { return Outcome{} }

// Abort reports a step that must not be committed. The reason is returned
// to the caller of RunSteps unchanged.
func Abort(reason error) Outcome {
	if reason == nil {
		reason = common.ErrTransactionAborted
	}
	return Outcome{aborted: true, reason: reason}
}

// Fail reports a storage failure inside a step. The caller of RunSteps sees
// ErrTransactionAborted wrapping the cause.
func Fail(cause error) Outcome {
	return Abort(fmt.Errorf("%w: %w", common.ErrTransactionAborted, cause))
}

// Aborted tells whether the step asked for a rollback.
func (o Outcome) Aborted() bool { return o.aborted }

// Reason is the error attached to an aborted outcome.
func (o Outcome) Reason() error { return o.reason }

// Step is one unit of work inside RunSteps.
type Step func(ctx context.Context, tx DBTX) Outcome

// RunSteps executes steps in order inside a single transaction. The first
// aborted outcome stops the run and rolls everything back; when every step
// continues the transaction is committed. Failures to begin or commit are
// reported as ErrTransactionAborted. A panicking step rolls back and the
// panic is rethrown.
func RunSteps(ctx context.Context, db *sql.DB, opts *sql.TxOptions, steps ...Step) error {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", common.ErrTransactionAborted, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	for _, step := range steps {
		out := step(ctx, tx)
		if out.Aborted() {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				return errors.Join(out.Reason(), fmt.Errorf("rollback: %w", rbErr))
			}
			return out.Reason()
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", common.ErrTransactionAborted, err)
	}
	return nil
}
