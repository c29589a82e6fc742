// (c) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package store is the thin PostgreSQL boundary: connection-pool
// construction and the handful of queries the indexer loop and read API
// need. Schema migrations are an external collaborator (see
// SPEC_FULL.md §1, §4.11); schema.sql documents the DDL this package
// assumes already exists.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps a pgx connection pool. It satisfies ingest.Beginner and
// ingest.Querier directly, and the narrower indexer.Store interface via
// ResumeHeight below.
type Store struct {
	Pool *pgxpool.Pool
}

// Open constructs the connection pool. Pool sizing, timeouts, and TLS are
// left to dsn (and to pgxpool's own defaults) — tuning the pool is
// explicitly out of scope per SPEC_FULL.md §1.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	return &Store{Pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.Pool.Close()
}

// Begin satisfies internal/ingest.Beginner by delegating to the pool.
func (s *Store) Begin(ctx context.Context) (pgx.Tx, error) {
	return s.Pool.Begin(ctx)
}

// Exec satisfies internal/ingest.Querier by delegating to the pool.
func (s *Store) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return s.Pool.Exec(ctx, sql, args...)
}

// QueryRow satisfies internal/ingest.Querier by delegating to the pool.
func (s *Store) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return s.Pool.QueryRow(ctx, sql, args...)
}

// ResumeHeight implements internal/indexer.Store: max(stored
// block.number)+1 if any block is stored, else startBlock.
func (s *Store) ResumeHeight(ctx context.Context, startBlock uint64) (uint64, error) {
	var max *int64
	err := s.Pool.QueryRow(ctx, `SELECT MAX(number) FROM blocks`).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("store: resume height: %w", err)
	}
	if max == nil {
		return startBlock, nil
	}
	return uint64(*max) + 1, nil
}
