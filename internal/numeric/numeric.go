// (c) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package numeric converts 256-bit unsigned integers between wire, hex, and
// decimal forms without losing precision. All three forms round-trip
// exactly for every value in [0, 2^256-1]; the package never fails on
// range, only on malformed input.
package numeric

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// DecodeError reports a malformed numeric input. It is never returned for
// values that are simply large; uint256.Int already spans the full range.
type DecodeError struct {
	Kind  string // "wire", "hex", or "decimal"
	Value string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("numeric: invalid %s value %q: %v", e.Kind, e.Value, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// FromWire decodes a big-endian wire-form integer. Inputs longer than 32
// bytes are rejected; shorter inputs are treated as left-zero-padded.
func FromWire(b []byte) (*uint256.Int, error) {
	if len(b) > 32 {
		return nil, &DecodeError{Kind: "wire", Value: fmt.Sprintf("%d bytes", len(b)), Err: fmt.Errorf("exceeds 32 bytes")}
	}
	var padded [32]byte
	copy(padded[32-len(b):], b)
	return new(uint256.Int).SetBytes32(padded[:]), nil
}

// FromHex decodes a "0x"-prefixed (or bare) hex string.
func FromHex(s string) (*uint256.Int, error) {
	v, err := uint256.FromHex(withPrefix(s))
	if err != nil {
		return nil, &DecodeError{Kind: "hex", Value: s, Err: err}
	}
	return v, nil
}

// FromDecimal decodes a base-10 string, the form used throughout storage.
func FromDecimal(s string) (*uint256.Int, error) {
	v, ok := uint256.FromDecimal(s)
	if !ok {
		return nil, &DecodeError{Kind: "decimal", Value: s, Err: fmt.Errorf("not a valid base-10 uint256")}
	}
	return v, nil
}

// ToDecimal renders the canonical arbitrary-precision decimal form used by
// the relational store (the NUMERIC column text representation).
func ToDecimal(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}

// ToHex renders the canonical lowercase "0x"-prefixed hex form.
func ToHex(v *uint256.Int) string {
	if v == nil {
		return "0x0"
	}
	return v.Hex()
}

// ToWire renders the big-endian 32-byte wire form.
func ToWire(v *uint256.Int) [32]byte {
	if v == nil {
		return [32]byte{}
	}
	return v.Bytes32()
}

// FromBig converts a *big.Int already in [0, 2^256) — as produced by
// go-ethereum's decoders — into the canonical uint256 form. Negative
// inputs are clamped to zero since the domain never carries signed wire
// values; go-ethereum itself never hands back a negative here.
func FromBig(v *big.Int) *uint256.Int {
	if v == nil || v.Sign() < 0 {
		return new(uint256.Int)
	}
	u, _ := uint256.FromBig(v)
	return u
}

func withPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s
	}
	return "0x" + s
}
