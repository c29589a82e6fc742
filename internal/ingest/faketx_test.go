package ingest

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeTx satisfies pgx.Tx well enough to drive WriteBlock end to end: Exec
// and QueryRow are backed by fakeQuerier, Begin/Commit/Rollback just
// record whether they were called, and the remaining methods (batching,
// large objects, prepared statements) are never exercised by this
// package and panic if they ever are.
type fakeTx struct {
	fakeQuerier
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Begin(context.Context) (pgx.Tx, error) { return t, nil }

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

func (t *fakeTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	panic("not used by writer")
}

func (t *fakeTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults {
	panic("not used by writer")
}

func (t *fakeTx) LargeObjects() pgx.LargeObjects {
	panic("not used by writer")
}

func (t *fakeTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	panic("not used by writer")
}

func (t *fakeTx) Query(context.Context, string, ...any) (pgx.Rows, error) {
	panic("not used by writer")
}

func (t *fakeTx) QueryFunc(context.Context, string, []any, []any, func(pgx.QueryFuncRow) error) (pgconn.CommandTag, error) {
	panic("not used by writer")
}

func (t *fakeTx) Conn() *pgx.Conn {
	panic("not used by writer")
}

// fakeBeginner hands out a single shared fakeTx, so a test can inspect
// every statement the write issued after WriteBlock returns.
type fakeBeginner struct {
	tx *fakeTx
}

func newFakeBeginner() *fakeBeginner {
	return &fakeBeginner{tx: &fakeTx{}}
}

func (b *fakeBeginner) Begin(context.Context) (pgx.Tx, error) {
	return b.tx, nil
}
