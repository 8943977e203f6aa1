package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgExecutor captures the query surface shared by pgxpool.Pool, pgx.Tx and
// pgxmock, so repositories run against any of them.
type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgTxBeginner is the subset of pgxpool.Pool (and pgxmock) that opens
// transactions. Executors that are already a transaction don't provide it.
type pgTxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
