package db

import (
	"context"
	"database/sql"
)

// DBTX is the query surface repositories are built on. Both *sql.DB and
// *sql.Tx satisfy it, so a repository constructed inside WithinTx runs
// its statements on the transaction, and one constructed on the pool
// runs them standalone — same code either way.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)
