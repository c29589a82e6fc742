// (c) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/shubhamdubey02/chainindexer/internal/model"
)

// ErrNotFound is returned by the single-entity read queries below when no
// matching row exists; internal/api maps it to an HTTP 404.
var ErrNotFound = errors.New("store: not found")

// RecentBlocks returns the 20 most recent blocks by descending number, per
// SPEC_FULL.md §6's GET /blocks.
func (s *Store) RecentBlocks(ctx context.Context) ([]model.Block, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT hash, parent_hash, number, timestamp, miner, gas_used, gas_limit, base_fee_per_gas, extra_data, tx_count
		FROM blocks
		ORDER BY number DESC
		LIMIT 20
	`)
	if err != nil {
		return nil, fmt.Errorf("store: recent blocks: %w", err)
	}
	defer rows.Close()

	var out []model.Block
	for rows.Next() {
		var b model.Block
		if err := rows.Scan(&b.Hash, &b.ParentHash, &b.Number, &b.Timestamp, &b.Miner,
			&b.GasUsed, &b.GasLimit, &b.BaseFeePerGas, &b.ExtraData, &b.TxCount); err != nil {
			return nil, fmt.Errorf("store: recent blocks: scan: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: recent blocks: %w", err)
	}
	return out, nil
}

// BlockByHash returns one block, or ErrNotFound.
func (s *Store) BlockByHash(ctx context.Context, hash string) (*model.Block, error) {
	var b model.Block
	err := s.Pool.QueryRow(ctx, `
		SELECT hash, parent_hash, number, timestamp, miner, gas_used, gas_limit, base_fee_per_gas, extra_data, tx_count
		FROM blocks WHERE hash = $1
	`, hash).Scan(&b.Hash, &b.ParentHash, &b.Number, &b.Timestamp, &b.Miner,
		&b.GasUsed, &b.GasLimit, &b.BaseFeePerGas, &b.ExtraData, &b.TxCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: block by hash: %w", err)
	}
	return &b, nil
}

// TransactionsByBlock returns every transaction in block order; an empty
// slice (not an error) if the block has none or does not exist.
func (s *Store) TransactionsByBlock(ctx context.Context, blockHash string) ([]model.Transaction, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT hash, block_hash, block_number, from_address, to_address, value, gas_price, gas_used, nonce, position
		FROM transactions
		WHERE block_hash = $1
		ORDER BY position ASC
	`, blockHash)
	if err != nil {
		return nil, fmt.Errorf("store: transactions by block: %w", err)
	}
	defer rows.Close()

	var out []model.Transaction
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(&t.Hash, &t.BlockHash, &t.BlockNumber, &t.FromAddress, &t.ToAddress,
			&t.Value, &t.GasPrice, &t.GasUsed, &t.Nonce, &t.Position); err != nil {
			return nil, fmt.Errorf("store: transactions by block: scan: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: transactions by block: %w", err)
	}
	return out, nil
}

// TransactionByHash returns one transaction, or ErrNotFound.
func (s *Store) TransactionByHash(ctx context.Context, hash string) (*model.Transaction, error) {
	var t model.Transaction
	err := s.Pool.QueryRow(ctx, `
		SELECT hash, block_hash, block_number, from_address, to_address, value, gas_price, gas_used, nonce, position
		FROM transactions WHERE hash = $1
	`, hash).Scan(&t.Hash, &t.BlockHash, &t.BlockNumber, &t.FromAddress, &t.ToAddress,
		&t.Value, &t.GasPrice, &t.GasUsed, &t.Nonce, &t.Position)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: transaction by hash: %w", err)
	}
	return &t, nil
}

// LogsByTransaction returns every raw log attached to a transaction, in
// insertion order.
func (s *Store) LogsByTransaction(ctx context.Context, txHash string) ([]model.Log, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, tx_hash, address, topic0, topic1, topic2, topic3, data
		FROM logs WHERE tx_hash = $1 ORDER BY id ASC
	`, txHash)
	if err != nil {
		return nil, fmt.Errorf("store: logs by transaction: %w", err)
	}
	defer rows.Close()

	var out []model.Log
	for rows.Next() {
		var l model.Log
		if err := rows.Scan(&l.ID, &l.TxHash, &l.Address, &l.Topic0, &l.Topic1, &l.Topic2, &l.Topic3, &l.Data); err != nil {
			return nil, fmt.Errorf("store: logs by transaction: scan: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: logs by transaction: %w", err)
	}
	return out, nil
}

// TokenTransfersByTransaction returns every decoded transfer attached to a
// transaction, in insertion order.
func (s *Store) TokenTransfersByTransaction(ctx context.Context, txHash string) ([]model.TokenTransfer, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, tx_hash, token_address, from_address, to_address, value, token_id
		FROM token_transfers WHERE tx_hash = $1 ORDER BY id ASC
	`, txHash)
	if err != nil {
		return nil, fmt.Errorf("store: token transfers by transaction: %w", err)
	}
	defer rows.Close()

	var out []model.TokenTransfer
	for rows.Next() {
		var t model.TokenTransfer
		if err := rows.Scan(&t.ID, &t.TxHash, &t.TokenAddress, &t.FromAddress, &t.ToAddress, &t.Value, &t.TokenID); err != nil {
			return nil, fmt.Errorf("store: token transfers by transaction: scan: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: token transfers by transaction: %w", err)
	}
	return out, nil
}

// AccountExists reports whether address has an accounts row.
func (s *Store) AccountExists(ctx context.Context, address string) (bool, error) {
	var exists bool
	err := s.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE address = $1)`, address).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("store: account exists: %w", err)
	}
	return exists, nil
}

// AccountBalances returns every token_balances row owned by address.
func (s *Store) AccountBalances(ctx context.Context, address string) ([]model.TokenBalance, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, owner_address, token_address, token_id, amount
		FROM token_balances WHERE owner_address = $1
	`, address)
	if err != nil {
		return nil, fmt.Errorf("store: account balances: %w", err)
	}
	defer rows.Close()

	var out []model.TokenBalance
	for rows.Next() {
		var b model.TokenBalance
		if err := rows.Scan(&b.ID, &b.OwnerAddress, &b.TokenAddress, &b.TokenID, &b.Amount); err != nil {
			return nil, fmt.Errorf("store: account balances: scan: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: account balances: %w", err)
	}
	return out, nil
}
