package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLedgerTransaction_Signed(t *testing.T) {
	tests := []struct {
		kind TransactionKind
		want string
	}{
		{KindDebit, "-10.00"},
		{KindTransferOut, "-10.00"},
		{KindFee, "-10.00"},
		{KindCredit, "10.00"},
		{KindTransferIn, "10.00"},
		{KindInterest, "10.00"},
		{KindOther, "10.00"},
	}
	for _, tt := range tests {
		txn := LedgerTransaction{Kind: tt.kind, Amount: decimal.NewFromInt(10)}
		assert.Equal(t, tt.want, txn.Signed().StringFixed(2), string(tt.kind))
	}
}

func TestTransactionKind_Opposite(t *testing.T) {
	tests := []struct {
		kind, want TransactionKind
	}{
		{KindDebit, KindCredit},
		{KindFee, KindCredit},
		{KindTransferOut, KindTransferIn},
		{KindTransferIn, KindTransferOut},
		{KindCredit, KindDebit},
		{KindInterest, KindDebit},
		{KindOther, KindDebit},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.Opposite(), string(tt.kind))
		assert.NotEqual(t, tt.kind.IsDebitLike(), tt.kind.Opposite().IsDebitLike(), string(tt.kind))
	}
}

func TestTransactionKind_Valid(t *testing.T) {
	assert.True(t, KindFee.Valid())
	assert.False(t, TransactionKind("refund").Valid())
}
