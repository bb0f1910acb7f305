package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bankrec/internal/model"
	"github.com/cleared-dev/bankrec/internal/store"
)

// RangeQuery selects an account (0 for all) and an optional date range.
type RangeQuery struct {
	AccountID int64
	From, To  *time.Time
}

// Differences lists what is still open on both sides.
type Differences struct {
	Transactions []model.LedgerTransaction
	Lines        []model.StatementLine

	LedgerNet   decimal.Decimal // sum of signed ledger amounts
	LineDebits  decimal.Decimal
	LineCredits decimal.Decimal
	// Net is (LineCredits - LineDebits) - LedgerNet: zero when the open
	// items on both sides cancel out.
	Net decimal.Decimal
}

// UnreconciledDifferences returns the unreconciled ledger transactions and
// statement lines in range with their totals.
func (s *Service) UnreconciledDifferences(ctx context.Context, scope model.Scope, q RangeQuery) (*Differences, error) {
	if q.AccountID != 0 {
		if _, err := s.db.GetAccount(ctx, scope.CompanyID, q.AccountID); err != nil {
			return nil, err
		}
	}

	d := &Differences{}
	var err error
	d.Transactions, err = s.db.ListLedger(ctx, scope.CompanyID, store.LedgerFilter{
		AccountID: q.AccountID, From: q.From, To: q.To, UnreconciledOnly: true,
	})
	if err != nil {
		return nil, err
	}
	for _, tx := range d.Transactions {
		d.LedgerNet = d.LedgerNet.Add(tx.Signed())
	}

	d.Lines, err = s.db.ListLines(ctx, scope.CompanyID, store.LineFilter{
		AccountID: q.AccountID, From: q.From, To: q.To, UnreconciledOnly: true,
	})
	if err != nil {
		return nil, err
	}
	for _, l := range d.Lines {
		if l.Movement.IsDebit() {
			d.LineDebits = d.LineDebits.Add(l.Movement.Amount())
		} else {
			d.LineCredits = d.LineCredits.Add(l.Movement.Amount())
		}
	}

	d.Net = d.LineCredits.Sub(d.LineDebits).Sub(d.LedgerNet)
	return d, nil
}
