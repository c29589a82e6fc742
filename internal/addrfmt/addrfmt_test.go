package addrfmt

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestAddressRoundTrip(t *testing.T) {
	raw := common.HexToAddress("0xAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAa")
	canonical := Address(raw)
	require.Equal(t, "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", canonical)

	parsed, err := ParseAddress(canonical)
	require.NoError(t, err)
	require.Equal(t, raw, parsed)
}

func TestAddressFromTopicUsesLow20Bytes(t *testing.T) {
	var topic common.Hash
	addr := common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	copy(topic[12:], addr.Bytes())
	// upper 12 bytes carry noise that must be ignored.
	for i := 0; i < 12; i++ {
		topic[i] = 0xff
	}

	got := AddressFromTopic(topic)
	require.Equal(t, Address(addr), got)
}

func TestIsZero(t *testing.T) {
	require.True(t, IsZero(ZeroAddress))
	require.False(t, IsZero("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"))
}

func TestParseAddressRejectsMalformed(t *testing.T) {
	_, err := ParseAddress("not-an-address")
	require.Error(t, err)
}
