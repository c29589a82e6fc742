// (c) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package model holds the persisted and transient entities of the indexed
// replica. Addresses and hashes are canonical lowercase "0x"-hex strings
// (internal/addrfmt); integers wider than 64 bits are canonical base-10
// decimal strings (internal/numeric) so no layer above the database driver
// ever touches a float or risks truncating a uint256 into an int64.
package model

import "time"

// Account is created on first observation as a sender, recipient, or miner.
// Never deleted.
type Account struct {
	Address   string
	CreatedAt time.Time
}

// Block mirrors one fetched block. Number is signed 64-bit; gaps between
// successive numbers are tolerated (no reorg handling).
type Block struct {
	Hash          string
	ParentHash    string
	Number        int64
	Timestamp     time.Time
	Miner         string
	GasUsed       string
	GasLimit      string
	BaseFeePerGas *string
	ExtraData     string
	TxCount       int
}

// Transaction belongs to exactly one Block. ToAddress is nil for contract
// creation. GasPrice/GasUsed come from the matched receipt and are nil
// only if the receipt was never attached (never true post-C4).
type Transaction struct {
	Hash        string
	BlockHash   string
	BlockNumber int64
	FromAddress string
	ToAddress   *string
	Value       string
	GasPrice    *string
	GasUsed     *string
	Nonce       uint64
	Position    int
}

// Log is an insert-only raw event record; insertion order within a
// transaction mirrors receipt order.
type Log struct {
	ID      int64
	TxHash  string
	Address string
	Topic0  *string
	Topic1  *string
	Topic2  *string
	Topic3  *string
	Data    string
}

// TokenTransfer is exactly one of fungible (Value set, TokenID nil) or
// non-fungible (Value == "1", TokenID set).
type TokenTransfer struct {
	ID           int64
	TxHash       string
	TokenAddress string
	FromAddress  string
	ToAddress    string
	Value        *string
	TokenID      *string
}

// TokenBalance is keyed by (OwnerAddress, TokenAddress, TokenID) with
// null-equal semantics on TokenID; Amount may transiently go negative if
// transfers are applied out of chronological order (never the case under
// this repository's serial indexer loop).
type TokenBalance struct {
	ID           int64
	OwnerAddress string
	TokenAddress string
	TokenID      *string
	Amount       string
}

// BlockWithReceipts is a transient join shape: a block plus its
// transactions paired with receipts in block order. The receipt gatherer
// (C4) does not build it; GatherReceipts returns go-ethereum receipts as a
// slice in transaction order.
type BlockWithReceipts struct {
	Block        *Block
	Transactions []TxWithReceipt
}

// TxWithReceipt pairs one transaction with its receipt's logs and
// effective gas price/used. The block writer (C5) does not take it;
// WriteBlock reads the go-ethereum block and receipts directly.
type TxWithReceipt struct {
	Tx   Transaction
	Logs []RawLog
}

// RawLog is a pre-canonicalization log shape: raw topics and data as
// produced by the RPC layer, before address/hash canonicalization. The
// classifier/decoder (C6) does not take it; ClassifyAndDecode reads a
// go-ethereum *types.Log.
type RawLog struct {
	Address string
	Topics  []string // 1 to 4 entries; Topics[0] is the event signature
	Data    string   // "0x"-hex
}

// DecodedTransfer is produced by C6 for a log whose topic0 matches the
// standard Transfer signature and whose topic count is 3 or 4.
type DecodedTransfer struct {
	TokenAddress string
	From         string
	To           string
	Value        *string // decoded amount for fungible transfers; "1" for non-fungible
	TokenID      *string // set for non-fungible transfers only
}
