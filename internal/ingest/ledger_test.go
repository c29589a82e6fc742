package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shubhamdubey02/chainindexer/internal/addrfmt"
	"github.com/shubhamdubey02/chainindexer/internal/model"
)

func TestApplyTransferDebitsAndCredits(t *testing.T) {
	value := "100"
	q := &fakeQuerier{}
	transfer := model.DecodedTransfer{
		TokenAddress: "0xtoken",
		From:         "0xfrom",
		To:           "0xto",
		Value:        &value,
	}

	require.NoError(t, ApplyTransfer(context.Background(), q, "0xtx", transfer))
	require.Len(t, q.execs, 3) // insert transfer, debit, credit

	require.Contains(t, q.execs[0].sql, "INSERT INTO token_transfers")
	require.Contains(t, q.execs[1].sql, "UPDATE token_balances")
	require.Contains(t, q.execs[2].sql, "INSERT INTO token_balances")
}

func TestApplyTransferMintSkipsDebit(t *testing.T) {
	value := "100"
	q := &fakeQuerier{}
	transfer := model.DecodedTransfer{
		TokenAddress: "0xtoken",
		From:         addrfmt.ZeroAddress,
		To:           "0xto",
		Value:        &value,
	}

	require.NoError(t, ApplyTransfer(context.Background(), q, "0xtx", transfer))
	require.Len(t, q.execs, 2) // insert transfer, credit only
	for _, e := range q.execs {
		require.False(t, strings.Contains(e.sql, "UPDATE token_balances"))
	}
}

func TestApplyTransferBurnSkipsCredit(t *testing.T) {
	value := "100"
	q := &fakeQuerier{}
	transfer := model.DecodedTransfer{
		TokenAddress: "0xtoken",
		From:         "0xfrom",
		To:           addrfmt.ZeroAddress,
		Value:        &value,
	}

	require.NoError(t, ApplyTransfer(context.Background(), q, "0xtx", transfer))
	require.Len(t, q.execs, 2) // insert transfer, debit only
	for _, e := range q.execs {
		require.False(t, strings.Contains(e.sql, "INSERT INTO token_balances"))
	}
}
