// (c) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package addrfmt canonicalizes 20-byte addresses and 32-byte hashes to
// lowercase "0x"-prefixed hex, the textual form used throughout storage.
package addrfmt

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ZeroAddress is the sentinel for mint/burn transfers.
var ZeroAddress = "0x" + strings.Repeat("0", 40)

// Address canonicalizes a 20-byte address to lowercase "0x"-hex.
func Address(a common.Address) string {
	return strings.ToLower(a.Hex())
}

// Hash canonicalizes a 32-byte hash to lowercase "0x"-hex.
func Hash(h common.Hash) string {
	return strings.ToLower(h.Hex())
}

// AddressFromTopic extracts an address embedded in a 32-byte log topic: the
// low 20 bytes are used, the upper 12 bytes are ignored.
func AddressFromTopic(topic common.Hash) string {
	return Address(common.BytesToAddress(topic.Bytes()))
}

// IsZero reports whether a canonical address string is the zero address.
func IsZero(addr string) bool {
	return strings.EqualFold(addr, ZeroAddress)
}

// ParseAddress parses a canonical address string back into its 20 raw bytes.
func ParseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, &FormatError{Kind: "address", Value: s}
	}
	return common.HexToAddress(s), nil
}

// FormatError reports a string that is not valid canonical hex.
type FormatError struct {
	Kind  string
	Value string
}

func (e *FormatError) Error() string {
	return "addrfmt: invalid " + e.Kind + " " + e.Value
}
