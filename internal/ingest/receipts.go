// (c) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// ErrBlockIncomplete is returned when any transaction's receipt could not
// be fetched (missing or errored); the whole block must be retried.
var ErrBlockIncomplete = errors.New("ingest: block incomplete, missing or errored receipt")

// ReceiptFetcher is the narrow seam C4 needs from the chain client,
// satisfied by *chainclient.Client and, in tests, by a fake.
type ReceiptFetcher interface {
	Receipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// maxConcurrentReceiptFetches bounds the number of in-flight receipt
// fetches per block so a block with thousands of transactions doesn't
// open thousands of simultaneous RPC calls.
const maxConcurrentReceiptFetches = 32

// GatherReceipts fetches the receipt for every transaction in block,
// concurrently, and returns them paired back into transaction order. If
// any receipt is missing or errors, the whole block is aborted with
// ErrBlockIncomplete wrapping the first failure.
func GatherReceipts(ctx context.Context, fetcher ReceiptFetcher, block *types.Block) ([]*types.Receipt, error) {
	txs := block.Transactions()
	receipts := make([]*types.Receipt, len(txs))

	group, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(maxConcurrentReceiptFetches)

	for i, tx := range txs {
		i, tx := i, tx
		if err := sem.Acquire(gctx, 1); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBlockIncomplete, err)
		}
		group.Go(func() error {
			defer sem.Release(1)
			receipt, err := fetcher.Receipt(gctx, tx.Hash())
			if err != nil {
				return fmt.Errorf("%w: tx %s: %v", ErrBlockIncomplete, tx.Hash(), err)
			}
			if receipt == nil {
				return fmt.Errorf("%w: tx %s: receipt not yet available", ErrBlockIncomplete, tx.Hash())
			}
			receipts[i] = receipt
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return receipts, nil
}
