// (c) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ingest

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/shubhamdubey02/chainindexer/internal/addrfmt"
	"github.com/shubhamdubey02/chainindexer/internal/model"
	"github.com/shubhamdubey02/chainindexer/internal/numeric"
)

// TransferTopic0 is the canonical keccak256 of Transfer(address,address,uint256).
const TransferTopic0 = "0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"

// DecodeError reports a malformed Transfer event payload; it aborts the
// enclosing block transaction before that log's raw Log row is inserted.
type DecodeError struct {
	TxHash common.Hash
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("ingest: decode transfer in tx %s: %s", e.TxHash, e.Reason)
}

// ClassifyAndDecode inspects one log. It always returns the canonical raw
// Log row. If the log is a standard Transfer event with 3 or 4 topics, it
// also returns a DecodedTransfer; any other topic0, or a Transfer with
// fewer than 3 topics, yields a nil transfer with no error — the raw Log
// row alone is persisted. A *DecodeError is returned only for a malformed
// Transfer payload (3/4 topics but an unreadable amount).
func ClassifyAndDecode(txHash common.Hash, l *types.Log) (model.Log, *model.DecodedTransfer, error) {
	row := toLogRow(txHash, l)

	if len(l.Topics) == 0 || l.Topics[0].Hex() != TransferTopic0 {
		return row, nil, nil
	}
	if len(l.Topics) < 3 {
		return row, nil, nil
	}

	from := addrfmt.AddressFromTopic(l.Topics[1])
	to := addrfmt.AddressFromTopic(l.Topics[2])
	tokenAddr := addrfmt.Address(l.Address)

	switch len(l.Topics) {
	case 3:
		value, err := numeric.FromWire(l.Data)
		if err != nil {
			return row, nil, &DecodeError{TxHash: txHash, Reason: err.Error()}
		}
		valueStr := numeric.ToDecimal(value)
		return row, &model.DecodedTransfer{
			TokenAddress: tokenAddr,
			From:         from,
			To:           to,
			Value:        &valueStr,
		}, nil
	case 4:
		tokenID, err := numeric.FromWire(l.Topics[3].Bytes())
		if err != nil {
			return row, nil, &DecodeError{TxHash: txHash, Reason: err.Error()}
		}
		one := "1"
		tokenIDStr := numeric.ToDecimal(tokenID)
		return row, &model.DecodedTransfer{
			TokenAddress: tokenAddr,
			From:         from,
			To:           to,
			Value:        &one,
			TokenID:      &tokenIDStr,
		}, nil
	default:
		// More than 4 topics is not a shape the standard Transfer event
		// can take; treat like any other non-matching log.
		return row, nil, nil
	}
}

func toLogRow(txHash common.Hash, l *types.Log) model.Log {
	row := model.Log{
		TxHash:  addrfmt.Hash(txHash),
		Address: addrfmt.Address(l.Address),
		Data:    common.Bytes2Hex(l.Data),
	}
	row.Data = "0x" + row.Data
	topics := []**string{&row.Topic0, &row.Topic1, &row.Topic2, &row.Topic3}
	for i, slot := range topics {
		if i >= len(l.Topics) {
			break
		}
		h := addrfmt.Hash(l.Topics[i])
		*slot = &h
	}
	return row
}
