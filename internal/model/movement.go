package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Side tells which bucket a statement movement falls in.
type Side int

const (
	SideDebit Side = iota + 1
	SideCredit
)

// Movement is either Debit(amount) or Credit(amount). The amount is always a
// non-negative magnitude. The zero Movement is invalid.
type Movement struct {
	side   Side
	amount decimal.Decimal
}

// ErrInvalidMovement is returned when stored columns do not describe exactly
// one of debit or credit.
var ErrInvalidMovement = errors.New("exactly one of debit or credit must be set")

// Debit returns a debit movement of |amount|.
func Debit(amount decimal.Decimal) Movement {
	return Movement{side: SideDebit, amount: amount.Abs()}
}

// Credit returns a credit movement of |amount|.
func Credit(amount decimal.Decimal) Movement {
	return Movement{side: SideCredit, amount: amount.Abs()}
}

// FromSigned maps a signed amount onto a movement: negative is a debit,
// zero or positive a credit.
func FromSigned(amount decimal.Decimal) Movement {
	if amount.IsNegative() {
		return Debit(amount)
	}
	return Credit(amount)
}

func (m Movement) Side() Side              { return m.side }
func (m Movement) IsDebit() bool           { return m.side == SideDebit }
func (m Movement) IsCredit() bool          { return m.side == SideCredit }
func (m Movement) Valid() bool             { return m.side == SideDebit || m.side == SideCredit }
func (m Movement) Amount() decimal.Decimal { return m.amount }

// Signed returns the amount negated for debits.
func (m Movement) Signed() decimal.Decimal {
	if m.side == SideDebit {
		return m.amount.Neg()
	}
	return m.amount
}

// Split returns the movement as a (debit, credit) column pair with exactly one
// side valid.
func (m Movement) Split() (debit, credit decimal.NullDecimal) {
	switch m.side {
	case SideDebit:
		debit = decimal.NewNullDecimal(m.amount)
	case SideCredit:
		credit = decimal.NewNullDecimal(m.amount)
	}
	return debit, credit
}

func (m Movement) String() string {
	switch m.side {
	case SideDebit:
		return "Debit(" + m.amount.StringFixed(2) + ")"
	case SideCredit:
		return "Credit(" + m.amount.StringFixed(2) + ")"
	}
	return "Movement(invalid)"
}

// MovementFromColumns is the inverse of Split.
func MovementFromColumns(debit, credit decimal.NullDecimal) (Movement, error) {
	switch {
	case debit.Valid && !credit.Valid:
		return Debit(debit.Decimal), nil
	case credit.Valid && !debit.Valid:
		return Credit(credit.Decimal), nil
	}
	return Movement{}, fmt.Errorf("debit=%v credit=%v: %w", debit.Valid, credit.Valid, ErrInvalidMovement)
}
