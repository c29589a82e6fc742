package ingest

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeQuerier records every statement executed against it. It is not a
// real SQL engine: Exec always succeeds and QueryRow always returns
// pgx.ErrNoRows, which is enough to exercise ApplyTransfer/insert* control
// flow without a live database.
type fakeQuerier struct {
	execs []recordedExec
}

type recordedExec struct {
	sql  string
	args []any
}

func (f *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, recordedExec{sql: sql, args: args})
	return pgconn.CommandTag{}, nil
}

func (f *fakeQuerier) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	return fakeRow{}
}

type fakeRow struct{}

func (fakeRow) Scan(...any) error { return pgx.ErrNoRows }
