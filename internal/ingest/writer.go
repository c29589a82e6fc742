// (c) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	lru "github.com/hashicorp/golang-lru"

	"github.com/shubhamdubey02/chainindexer/internal/addrfmt"
	"github.com/shubhamdubey02/chainindexer/internal/model"
	"github.com/shubhamdubey02/chainindexer/internal/numeric"
)

// AccountCache short-circuits ensure_account_exists for addresses this
// process has already confirmed exist. It is a pure optimization: a
// cache miss still issues the idempotent upsert, so an empty cache after
// a restart changes nothing about correctness.
type AccountCache struct {
	cache *lru.Cache
}

// NewAccountCache builds a bounded LRU of known-existing addresses.
func NewAccountCache(size int) (*AccountCache, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("ingest: account cache: %w", err)
	}
	return &AccountCache{cache: c}, nil
}

// WriteBlock runs the entire per-block write inside one DB transaction:
// insert the block, then for each (transaction, receipt) in order, ensure
// its accounts exist, insert the transaction, and classify/apply every
// log. The transaction is rolled back on any error and committed only if
// every step succeeds.
func WriteBlock(ctx context.Context, db Beginner, accounts *AccountCache, block *types.Block, receipts []*types.Receipt) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ingest: begin block %d: %w", block.NumberU64(), err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := ensureAccountExists(ctx, tx, accounts, addrfmt.Address(block.Coinbase())); err != nil {
		return err
	}
	if err := insertBlock(ctx, tx, block); err != nil {
		return err
	}

	for pos, txn := range block.Transactions() {
		receipt := receipts[pos]

		from, err := senderAddress(block, txn)
		if err != nil {
			return fmt.Errorf("ingest: recover sender for tx %s: %w", txn.Hash(), err)
		}
		if err := ensureAccountExists(ctx, tx, accounts, from); err != nil {
			return err
		}

		var toPtr *string
		if txn.To() != nil {
			to := addrfmt.Address(*txn.To())
			if err := ensureAccountExists(ctx, tx, accounts, to); err != nil {
				return err
			}
			toPtr = &to
		}

		row := transactionRow(block, txn, receipt, pos, from, toPtr)
		if err := insertTransaction(ctx, tx, row); err != nil {
			return err
		}

		for _, l := range receipt.Logs {
			logRow, transfer, err := ClassifyAndDecode(txn.Hash(), l)
			if err != nil {
				return err
			}
			if err := insertLog(ctx, tx, row.Hash, logRow); err != nil {
				return err
			}
			if transfer != nil {
				if err := ApplyTransfer(ctx, tx, row.Hash, *transfer); err != nil {
					return err
				}
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("ingest: commit block %d: %w", block.NumberU64(), err)
	}
	return nil
}

func senderAddress(block *types.Block, txn *types.Transaction) (string, error) {
	signer := types.LatestSignerForChainID(txn.ChainId())
	from, err := types.Sender(signer, txn)
	if err != nil {
		return "", err
	}
	return addrfmt.Address(from), nil
}

func insertBlock(ctx context.Context, q Querier, block *types.Block) error {
	var baseFee *string
	if bf := block.BaseFee(); bf != nil {
		s := bf.String()
		baseFee = &s
	}
	_, err := q.Exec(ctx, `
		INSERT INTO blocks (hash, parent_hash, number, timestamp, miner, gas_used, gas_limit, base_fee_per_gas, extra_data, tx_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (hash) DO NOTHING
	`,
		addrfmt.Hash(block.Hash()),
		addrfmt.Hash(block.ParentHash()),
		int64(block.NumberU64()),
		time.Unix(int64(block.Time()), 0).UTC(),
		addrfmt.Address(block.Coinbase()),
		fmt.Sprint(block.GasUsed()),
		fmt.Sprint(block.GasLimit()),
		baseFee,
		"0x"+fmt.Sprintf("%x", block.Extra()),
		len(block.Transactions()),
	)
	if err != nil {
		return fmt.Errorf("ingest: insert block %d: %w", block.NumberU64(), err)
	}
	return nil
}

func ensureAccountExists(ctx context.Context, q Querier, accounts *AccountCache, address string) error {
	if accounts != nil {
		if _, ok := accounts.cache.Get(address); ok {
			return nil
		}
	}
	if _, err := q.Exec(ctx, `
		INSERT INTO accounts (address) VALUES ($1)
		ON CONFLICT (address) DO NOTHING
	`, address); err != nil {
		return fmt.Errorf("ingest: ensure account %s: %w", address, err)
	}
	if accounts != nil {
		accounts.cache.Add(address, struct{}{})
	}
	return nil
}

func transactionRow(block *types.Block, txn *types.Transaction, receipt *types.Receipt, pos int, from string, to *string) model.Transaction {
	var gasPrice, gasUsed *string
	if receipt != nil {
		gp := receipt.EffectiveGasPrice
		if gp == nil {
			gp = txn.GasPrice()
		}
		if gp != nil {
			s := gp.String()
			gasPrice = &s
		}
		gu := fmt.Sprint(receipt.GasUsed)
		gasUsed = &gu
	}
	return model.Transaction{
		Hash:        addrfmt.Hash(txn.Hash()),
		BlockHash:   addrfmt.Hash(block.Hash()),
		BlockNumber: int64(block.NumberU64()),
		FromAddress: from,
		ToAddress:   to,
		Value:       numeric.ToDecimal(numeric.FromBig(txn.Value())),
		GasPrice:    gasPrice,
		GasUsed:     gasUsed,
		Nonce:       txn.Nonce(),
		Position:    pos,
	}
}

func insertTransaction(ctx context.Context, q Querier, row model.Transaction) error {
	_, err := q.Exec(ctx, `
		INSERT INTO transactions (hash, block_hash, block_number, from_address, to_address, value, gas_price, gas_used, nonce, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (hash) DO NOTHING
	`, row.Hash, row.BlockHash, row.BlockNumber, row.FromAddress, row.ToAddress, row.Value,
		row.GasPrice, row.GasUsed, row.Nonce, row.Position)
	if err != nil {
		return fmt.Errorf("ingest: insert transaction %s: %w", row.Hash, err)
	}
	return nil
}

func insertLog(ctx context.Context, q Querier, txHash string, row model.Log) error {
	_, err := q.Exec(ctx, `
		INSERT INTO logs (tx_hash, address, topic0, topic1, topic2, topic3, data)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, txHash, row.Address, row.Topic0, row.Topic1, row.Topic2, row.Topic3, row.Data)
	if err != nil {
		return fmt.Errorf("ingest: insert log for tx %s: %w", txHash, err)
	}
	return nil
}
