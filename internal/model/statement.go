package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// StatementStatus is the processing state of an imported statement.
type StatementStatus string

const (
	StatementUploaded   StatementStatus = "uploaded"
	StatementProcessing StatementStatus = "processing"
	StatementProcessed  StatementStatus = "processed"
	StatementReconciled StatementStatus = "reconciled"
	StatementError      StatementStatus = "error"
)

// ErrInvalidPeriod is returned when a statement period ends before it starts.
var ErrInvalidPeriod = errors.New("period start must not be after period end")

// Statement is one bank-issued export covering a period of an account.
type Statement struct {
	ID             int64
	AccountID      int64
	FileName       string // name inside the file store
	OriginalName   string
	PeriodStart    time.Time
	PeriodEnd      time.Time
	OpeningBalance decimal.Decimal
	ClosingBalance decimal.Decimal
	Status         StatementStatus
	Notes          string
	UploadedBy     string
	UploadedAt     time.Time
	ProcessedAt    *time.Time
}

// ValidatePeriod checks PeriodStart <= PeriodEnd.
func (s Statement) ValidatePeriod() error {
	if s.PeriodStart.After(s.PeriodEnd) {
		return ErrInvalidPeriod
	}
	return nil
}

// Overlaps reports whether the statement period intersects [from, to].
func (s Statement) Overlaps(from, to time.Time) bool {
	return !s.PeriodStart.After(to) && !s.PeriodEnd.Before(from)
}

// StatementLine is one row of an imported statement.
type StatementLine struct {
	ID          int64
	StatementID int64
	Date        time.Time
	Description string
	Reference   string
	Movement    Movement
	Balance     decimal.NullDecimal // running balance as declared by the bank
	Reconciled  bool
	MatchedID   *int64 // ledger transaction, set manually
}
