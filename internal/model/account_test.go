package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBankAccount_MaskedNumber(t *testing.T) {
	tests := []struct {
		number, want string
	}{
		{"2200123456", "****3456"},
		{"1234", "1234"},
		{" 987 ", "987"},
	}
	for _, tt := range tests {
		acct := BankAccount{Number: tt.number}
		assert.Equal(t, tt.want, acct.MaskedNumber())
	}
}

func TestEnumsValid(t *testing.T) {
	assert.True(t, AccountTypeSavings.Valid())
	assert.False(t, AccountType("brokerage").Valid())
	assert.True(t, CurrencyUSD.Valid())
	assert.False(t, Currency("GBP").Valid())
}

func TestStatement_Period(t *testing.T) {
	jan1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	jan31 := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	ok := Statement{PeriodStart: jan1, PeriodEnd: jan31}
	assert.NoError(t, ok.ValidatePeriod())
	assert.NoError(t, Statement{PeriodStart: jan1, PeriodEnd: jan1}.ValidatePeriod())
	assert.ErrorIs(t, Statement{PeriodStart: jan31, PeriodEnd: jan1}.ValidatePeriod(), ErrInvalidPeriod)

	assert.True(t, ok.Overlaps(jan31, jan31.AddDate(0, 1, 0)))
	assert.False(t, ok.Overlaps(jan31.AddDate(0, 0, 1), jan31.AddDate(0, 1, 0)))
}
