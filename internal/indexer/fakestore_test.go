package indexer

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeTx is a minimal pgx.Tx: Exec/QueryRow succeed trivially, everything
// else is unused by the indexer loop's write path and panics if called.
type fakeTx struct{}

func (fakeTx) Begin(context.Context) (pgx.Tx, error) { return fakeTx{}, nil }
func (fakeTx) Commit(context.Context) error          { return nil }
func (fakeTx) Rollback(context.Context) error         { return nil }
func (fakeTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (fakeTx) QueryRow(context.Context, string, ...any) pgx.Row { return fakeRow{} }
func (fakeTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	panic("not used")
}
func (fakeTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { panic("not used") }
func (fakeTx) LargeObjects() pgx.LargeObjects                         { panic("not used") }
func (fakeTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	panic("not used")
}
func (fakeTx) Query(context.Context, string, ...any) (pgx.Rows, error) { panic("not used") }
func (fakeTx) QueryFunc(context.Context, string, []any, []any, func(pgx.QueryFuncRow) error) (pgconn.CommandTag, error) {
	panic("not used")
}
func (fakeTx) Conn() *pgx.Conn { panic("not used") }

type fakeRow struct{}

func (fakeRow) Scan(...any) error { return pgx.ErrNoRows }

// fakeStore satisfies the Store seam: every write succeeds against
// fakeTx, and ResumeHeight returns a fixed value set by the test.
type fakeStore struct {
	resumeHeight uint64
}

func (s *fakeStore) Begin(context.Context) (pgx.Tx, error) { return fakeTx{}, nil }

func (s *fakeStore) ResumeHeight(context.Context, uint64) (uint64, error) {
	return s.resumeHeight, nil
}
