// (c) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package chainclient is the persistent transport to the chain RPC
// endpoint (C3). It surfaces transport errors uninterpreted and embeds no
// retry policy of its own — pacing and retry live in internal/indexer.
package chainclient

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/time/rate"
)

// Client wraps a persistent full-duplex connection (dialed once, reused for
// every call) to the chain RPC endpoint.
type Client struct {
	rpcClient *rpc.Client
	eth       *ethclient.Client
	limiter   *rate.Limiter
}

// Config controls dial and pacing behavior.
type Config struct {
	// URL is the chain RPC endpoint, normally a ws:// or wss:// URL so the
	// same connection serves latest_height, block_with_txs, and the
	// receipt fan-out without per-call connection setup.
	URL string
	// MaxRequestsPerSecond bounds the rate of outbound RPC calls across
	// every method on this Client, including the receipt fan-out in C4.
	// Zero disables rate limiting.
	MaxRequestsPerSecond float64
}

// Dial opens the persistent transport. The caller owns the returned
// Client's lifetime and should call Close on shutdown.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("chainclient: dial %s: %w", cfg.URL, err)
	}
	c := &Client{
		rpcClient: rpcClient,
		eth:       ethclient.NewClient(rpcClient),
	}
	if cfg.MaxRequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.MaxRequestsPerSecond), int(cfg.MaxRequestsPerSecond)+1)
	}
	return c, nil
}

// Close releases the underlying connection.
func (c *Client) Close() {
	c.rpcClient.Close()
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// LatestHeight returns the chain's current head height.
func (c *Client) LatestHeight(ctx context.Context) (uint64, error) {
	if err := c.wait(ctx); err != nil {
		return 0, fmt.Errorf("chainclient: latest height: %w", err)
	}
	height, err := c.eth.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("chainclient: latest height: %w", err)
	}
	return height, nil
}

// BlockWithTxs fetches a block and its transactions by height. A nil
// block and nil error together mean "not yet available" — the caller
// must retry, not treat it as a terminal condition.
func (c *Client) BlockWithTxs(ctx context.Context, height uint64) (*types.Block, error) {
	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("chainclient: block %d: %w", height, err)
	}
	block, err := c.eth.BlockByNumber(ctx, new(big.Int).SetUint64(height))
	if errors.Is(err, ethereum.NotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("chainclient: block %d: %w", height, err)
	}
	return block, nil
}

// Receipt fetches a single transaction's receipt. A nil receipt and nil
// error together mean the receipt is missing and the enclosing block must
// be treated as not-yet-finalized.
func (c *Client) Receipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("chainclient: receipt %s: %w", txHash, err)
	}
	receipt, err := c.eth.TransactionReceipt(ctx, txHash)
	if errors.Is(err, ethereum.NotFound) {
		return nil, nil
	}
	if err != nil {
		log.Debug("receipt fetch failed", "tx", txHash, "err", err)
		return nil, fmt.Errorf("chainclient: receipt %s: %w", txHash, err)
	}
	return receipt, nil
}
