package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bankrec/internal/model"
	"github.com/cleared-dev/bankrec/internal/store"
)

// Query selects an account and a month. Zero values fall back to the first
// active account and the current month.
type Query struct {
	AccountID int64
	Year      int
	Month     int
}

// ExtractRow is a ledger transaction with the balance after it.
type ExtractRow struct {
	model.LedgerTransaction
	Balance decimal.Decimal
}

// Extract is the monthly bank extract of one account.
type Extract struct {
	Account    model.BankAccount
	Year       int
	Month      time.Month
	From, To   time.Time
	Starting   decimal.Decimal // opening balance rolled forward to From
	Rows       []ExtractRow
	Lines      []model.StatementLine
	Statements []model.Statement // overlapping the month, latest period first

	Debits        decimal.Decimal
	Credits       decimal.Decimal
	LineDebits    decimal.Decimal
	LineCredits   decimal.Decimal
	SystemBalance decimal.Decimal

	// Declared is the closing balance of the latest overlapping statement
	// and Difference is Declared minus SystemBalance. Both are nil without
	// a statement.
	Declared   *decimal.Decimal
	Difference *decimal.Decimal
}

// MonthlyExtract rolls the account forward to the start of the month and
// lists the month's transactions and statement lines.
func (s *Service) MonthlyExtract(ctx context.Context, scope model.Scope, q Query, now time.Time) (*Extract, error) {
	acct, err := s.defaultAccount(ctx, scope, q.AccountID)
	if err != nil {
		return nil, err
	}

	year, month := q.Year, time.Month(q.Month)
	if year <= 0 || month < time.January || month > time.December {
		year, month = now.Year(), now.Month()
	}
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	x := &Extract{Account: *acct, Year: year, Month: month, From: from, To: to}

	before, err := s.db.ListLedger(ctx, scope.CompanyID, store.LedgerFilter{AccountID: acct.ID, Before: &from})
	if err != nil {
		return nil, err
	}
	x.Starting = acct.OpeningBalance
	for _, tx := range before {
		x.Starting = x.Starting.Add(tx.Signed())
	}

	txs, err := s.db.ListLedger(ctx, scope.CompanyID, store.LedgerFilter{AccountID: acct.ID, From: &from, To: &to})
	if err != nil {
		return nil, err
	}
	balance := x.Starting
	for _, tx := range txs {
		balance = balance.Add(tx.Signed())
		if tx.Kind.IsDebitLike() {
			x.Debits = x.Debits.Add(tx.Amount)
		} else {
			x.Credits = x.Credits.Add(tx.Amount)
		}
		x.Rows = append(x.Rows, ExtractRow{LedgerTransaction: tx, Balance: balance})
	}
	x.SystemBalance = balance

	if x.Lines, err = s.db.ListLines(ctx, scope.CompanyID, store.LineFilter{AccountID: acct.ID, From: &from, To: &to}); err != nil {
		return nil, err
	}
	for _, l := range x.Lines {
		if l.Movement.IsDebit() {
			x.LineDebits = x.LineDebits.Add(l.Movement.Amount())
		} else {
			x.LineCredits = x.LineCredits.Add(l.Movement.Amount())
		}
	}

	stmts, err := s.db.ListStatements(ctx, scope.CompanyID, acct.ID)
	if err != nil {
		return nil, err
	}
	for _, st := range stmts {
		if st.Overlaps(from, to) {
			x.Statements = append(x.Statements, st)
		}
	}
	if len(x.Statements) > 0 {
		declared := x.Statements[0].ClosingBalance
		diff := declared.Sub(x.SystemBalance)
		x.Declared, x.Difference = &declared, &diff
	}
	return x, nil
}
