// (c) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ingest

import (
	"context"
	"fmt"

	"github.com/shubhamdubey02/chainindexer/internal/addrfmt"
	"github.com/shubhamdubey02/chainindexer/internal/model"
)

// ApplyTransfer persists one decoded transfer and updates token_balances:
// debit the sender (unless it is the zero address, a mint), then
// upsert-credit the recipient (unless it is the zero address, a burn).
// The debit is a no-op, not an error, when the sender has no tracked
// balance row — tolerated under the sequential-indexing assumption (see
// §9 of the specification).
func ApplyTransfer(ctx context.Context, q Querier, txHash string, t model.DecodedTransfer) error {
	value := "0"
	if t.Value != nil {
		value = *t.Value
	}

	if _, err := q.Exec(ctx, `
		INSERT INTO token_transfers (tx_hash, token_address, from_address, to_address, value, token_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, txHash, t.TokenAddress, t.From, t.To, t.Value, t.TokenID); err != nil {
		return fmt.Errorf("ingest: insert token_transfer: %w", err)
	}

	if !addrfmt.IsZero(t.From) {
		if _, err := q.Exec(ctx, `
			UPDATE token_balances
			SET amount = amount - $1
			WHERE owner_address = $2 AND token_address = $3
			  AND token_id IS NOT DISTINCT FROM $4
		`, value, t.From, t.TokenAddress, t.TokenID); err != nil {
			return fmt.Errorf("ingest: debit balance: %w", err)
		}
	}

	if !addrfmt.IsZero(t.To) {
		if _, err := q.Exec(ctx, `
			INSERT INTO token_balances (owner_address, token_address, token_id, amount)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (owner_address, token_address, (COALESCE(token_id, -1)))
			DO UPDATE SET amount = token_balances.amount + EXCLUDED.amount
		`, t.To, t.TokenAddress, t.TokenID, value); err != nil {
			return fmt.Errorf("ingest: credit balance: %w", err)
		}
	}

	return nil
}
