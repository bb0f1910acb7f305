package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind classifies an internally recorded bank movement.
type TransactionKind string

const (
	KindDebit       TransactionKind = "debit"
	KindCredit      TransactionKind = "credit"
	KindTransferIn  TransactionKind = "transfer_in"
	KindTransferOut TransactionKind = "transfer_out"
	KindFee         TransactionKind = "fee"
	KindInterest    TransactionKind = "interest"
	KindOther       TransactionKind = "other"
)

// Valid reports whether k is a known kind.
func (k TransactionKind) Valid() bool {
	switch k {
	case KindDebit, KindCredit, KindTransferIn, KindTransferOut, KindFee, KindInterest, KindOther:
		return true
	}
	return false
}

// IsDebitLike reports whether the kind takes money out of the account.
func (k TransactionKind) IsDebitLike() bool {
	return k == KindDebit || k == KindTransferOut || k == KindFee
}

// Opposite returns the kind used to reverse a transaction of kind k.
func (k TransactionKind) Opposite() TransactionKind {
	switch k {
	case KindTransferOut:
		return KindTransferIn
	case KindTransferIn:
		return KindTransferOut
	}
	if k.IsDebitLike() {
		return KindCredit
	}
	return KindDebit
}

// LedgerTransaction is a bank movement recorded by the business itself,
// independent of any imported statement.
type LedgerTransaction struct {
	ID             int64
	AccountID      int64
	Date           time.Time
	ValueDate      *time.Time
	Kind           TransactionKind
	Amount         decimal.Decimal // always positive
	Description    string
	Reference      string
	JournalEntryID *int64
	Reconciled     bool
	ReconciledAt   *time.Time
	ReconciledBy   string
	CreatedAt      time.Time
}

// Signed returns -Amount for debit-like kinds and +Amount otherwise.
func (t LedgerTransaction) Signed() decimal.Decimal {
	if t.Kind.IsDebitLike() {
		return t.Amount.Neg()
	}
	return t.Amount
}
