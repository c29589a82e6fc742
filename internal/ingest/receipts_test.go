package ingest

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/trie"
	"github.com/stretchr/testify/require"
)

type fakeReceiptFetcher struct {
	mu        sync.Mutex
	byHash    map[common.Hash]*types.Receipt
	errByHash map[common.Hash]error
}

func (f *fakeReceiptFetcher) Receipt(_ context.Context, txHash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errByHash[txHash]; ok {
		return nil, err
	}
	return f.byHash[txHash], nil
}

// signedTx builds a Homestead-signed transaction so types.Sender can
// recover its sender during WriteBlock; an unsigned transaction's zero
// R/S values fail signature validation before the code under test ever
// runs.
func signedTx(nonce uint64) *types.Transaction {
	key, _ := crypto.GenerateKey()
	tx := types.NewTransaction(nonce, common.HexToAddress("0x1111111111111111111111111111111111111111"), big.NewInt(0), 21000, big.NewInt(1), nil)
	signed, _ := types.SignTx(tx, types.HomesteadSigner{}, key)
	return signed
}

func blockWithTxs(n int) (*types.Block, []*types.Transaction) {
	txs := make([]*types.Transaction, n)
	for i := 0; i < n; i++ {
		txs[i] = signedTx(uint64(i))
	}
	header := &types.Header{Number: common.Big1}
	block := types.NewBlock(header, txs, nil, nil, trie.NewStackTrie(nil))
	return block, txs
}

func TestGatherReceiptsPreservesOrder(t *testing.T) {
	block, txs := blockWithTxs(5)
	fetcher := &fakeReceiptFetcher{byHash: map[common.Hash]*types.Receipt{}}
	for i, tx := range txs {
		fetcher.byHash[tx.Hash()] = &types.Receipt{TxHash: tx.Hash(), Status: types.ReceiptStatusSuccessful, GasUsed: uint64(i)}
	}

	receipts, err := GatherReceipts(context.Background(), fetcher, block)
	require.NoError(t, err)
	require.Len(t, receipts, 5)
	for i, tx := range txs {
		require.Equal(t, tx.Hash(), receipts[i].TxHash)
	}
}

func TestGatherReceiptsMissingReceiptAbortsBlock(t *testing.T) {
	block, txs := blockWithTxs(3)
	fetcher := &fakeReceiptFetcher{byHash: map[common.Hash]*types.Receipt{
		txs[0].Hash(): {TxHash: txs[0].Hash()},
		txs[2].Hash(): {TxHash: txs[2].Hash()},
	}}

	_, err := GatherReceipts(context.Background(), fetcher, block)
	require.ErrorIs(t, err, ErrBlockIncomplete)
}

func TestGatherReceiptsTransportErrorAbortsBlock(t *testing.T) {
	block, txs := blockWithTxs(2)
	fetcher := &fakeReceiptFetcher{
		byHash:    map[common.Hash]*types.Receipt{txs[0].Hash(): {TxHash: txs[0].Hash()}},
		errByHash: map[common.Hash]error{txs[1].Hash(): fmt.Errorf("transport down")},
	}

	_, err := GatherReceipts(context.Background(), fetcher, block)
	require.ErrorIs(t, err, ErrBlockIncomplete)
}
