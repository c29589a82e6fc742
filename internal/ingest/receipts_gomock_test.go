package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func receiptFor(txHash common.Hash, gasUsed uint64) *types.Receipt {
	return &types.Receipt{TxHash: txHash, Status: types.ReceiptStatusSuccessful, GasUsed: gasUsed}
}

// TestGatherReceiptsWithMockFetcher exercises GatherReceipts against a
// mockgen-shaped go.uber.org/mock fake instead of the hand-written
// fakeReceiptFetcher, so both seams this package relies on (a literal fake
// and a generated mock) stay exercised.
func TestGatherReceiptsWithMockFetcher(t *testing.T) {
	ctrl := gomock.NewController(t)
	block, txs := blockWithTxs(3)

	fetcher := NewMockReceiptFetcher(ctrl)
	for i, tx := range txs {
		fetcher.EXPECT().Receipt(gomock.Any(), tx.Hash()).Return(receiptFor(tx.Hash(), uint64(i)), nil)
	}

	receipts, err := GatherReceipts(context.Background(), fetcher, block)
	require.NoError(t, err)
	require.Len(t, receipts, 3)
	for i, tx := range txs {
		require.Equal(t, tx.Hash(), receipts[i].TxHash)
	}
}

func TestGatherReceiptsWithMockFetcherPropagatesError(t *testing.T) {
	ctrl := gomock.NewController(t)
	block, txs := blockWithTxs(1)

	fetcher := NewMockReceiptFetcher(ctrl)
	fetcher.EXPECT().Receipt(gomock.Any(), txs[0].Hash()).Return(nil, errors.New("dial timeout"))

	_, err := GatherReceipts(context.Background(), fetcher, block)
	require.ErrorIs(t, err, ErrBlockIncomplete)
}
