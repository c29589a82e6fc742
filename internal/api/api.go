// (c) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package api is the thin read-only HTTP surface described in
// SPEC_FULL.md §4.10: five JSON routes over the persisted replica, plus
// /metrics. It does no joins or aggregation beyond what §6 names and
// carries no caching of its own.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shubhamdubey02/chainindexer/internal/model"
	"github.com/shubhamdubey02/chainindexer/internal/store"
)

// ReadStore is the narrow seam this package needs from internal/store.
type ReadStore interface {
	RecentBlocks(ctx context.Context) ([]model.Block, error)
	BlockByHash(ctx context.Context, hash string) (*model.Block, error)
	TransactionsByBlock(ctx context.Context, blockHash string) ([]model.Transaction, error)
	TransactionByHash(ctx context.Context, hash string) (*model.Transaction, error)
	LogsByTransaction(ctx context.Context, txHash string) ([]model.Log, error)
	TokenTransfersByTransaction(ctx context.Context, txHash string) ([]model.TokenTransfer, error)
	AccountExists(ctx context.Context, address string) (bool, error)
	AccountBalances(ctx context.Context, address string) ([]model.TokenBalance, error)
}

// NewMux builds the routed handler: the five read routes plus /metrics.
func NewMux(rs ReadStore) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/blocks", handleRecentBlocks(rs))
	mux.HandleFunc("/block/", handleBlockPath(rs))
	mux.HandleFunc("/tx/", handleTransaction(rs))
	mux.HandleFunc("/account/", handleAccount(rs))
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func handleRecentBlocks(rs ReadStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blocks, err := rs.RecentBlocks(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, blocks)
	}
}

// handleBlockPath dispatches GET /block/{hash} and
// GET /block/{hash}/transactions.
func handleBlockPath(rs ReadStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/block/")
		hash, suffix, hasSuffix := strings.Cut(rest, "/")
		if hash == "" {
			http.NotFound(w, r)
			return
		}

		block, err := rs.BlockByHash(r.Context(), hash)
		if err != nil {
			if isNotFound(err) {
				http.NotFound(w, r)
				return
			}
			writeError(w, http.StatusInternalServerError, err)
			return
		}

		if !hasSuffix {
			writeJSON(w, http.StatusOK, block)
			return
		}
		if suffix != "transactions" {
			http.NotFound(w, r)
			return
		}
		txs, err := rs.TransactionsByBlock(r.Context(), hash)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, txs)
	}
}

type txResponse struct {
	Transaction   *model.Transaction    `json:"transaction"`
	Logs          []model.Log           `json:"logs"`
	TokenTransfers []model.TokenTransfer `json:"token_transfers"`
}

func handleTransaction(rs ReadStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hash := strings.TrimPrefix(r.URL.Path, "/tx/")
		if hash == "" {
			http.NotFound(w, r)
			return
		}
		txn, err := rs.TransactionByHash(r.Context(), hash)
		if err != nil {
			if isNotFound(err) {
				http.NotFound(w, r)
				return
			}
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		logs, err := rs.LogsByTransaction(r.Context(), hash)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		transfers, err := rs.TokenTransfersByTransaction(r.Context(), hash)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, txResponse{Transaction: txn, Logs: logs, TokenTransfers: transfers})
	}
}

type accountResponse struct {
	Address       string               `json:"address"`
	TokenBalances []model.TokenBalance `json:"token_balances"`
}

func handleAccount(rs ReadStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		address := strings.TrimPrefix(r.URL.Path, "/account/")
		if address == "" {
			http.NotFound(w, r)
			return
		}
		exists, err := rs.AccountExists(r.Context(), address)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if !exists {
			http.NotFound(w, r)
			return
		}
		balances, err := rs.AccountBalances(r.Context(), address)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, accountResponse{Address: address, TokenBalances: balances})
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("api: failed to encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	log.Error("api: request failed", "status", status, "err", err)
	http.Error(w, err.Error(), status)
}
