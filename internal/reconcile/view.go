package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bankrec/internal/model"
	"github.com/cleared-dev/bankrec/internal/store"
)

// Filter selects what the reconciliation view shows. By default only
// unreconciled items appear; ShowAll includes reconciled ones too.
type Filter struct {
	AccountID   int64
	StatementID int64 // 0 for every statement of the account
	From, To    *time.Time
	ShowAll     bool
}

// LedgerRow is a ledger transaction with the running balance after it.
type LedgerRow struct {
	model.LedgerTransaction
	Balance decimal.Decimal
}

// View is the side-by-side state an operator reconciles from.
type View struct {
	Account      model.BankAccount
	Statement    *model.Statement
	Transactions []LedgerRow
	Lines        []model.StatementLine

	OpeningBalance decimal.Decimal // account opening balance
	SystemBalance  decimal.Decimal // running balance after the last transaction shown
	// Difference is the statement's declared closing balance minus
	// SystemBalance. It is nil when no statement is selected.
	Difference *decimal.Decimal
}

// View loads ledger transactions and statement lines for one account.
//
// When a statement is selected and no date range is given, the range
// defaults to the statement period. Running balances walk the shown
// transactions in date order starting from the account opening balance.
func (e *Engine) View(ctx context.Context, scope model.Scope, f Filter) (*View, error) {
	acct, err := e.db.GetAccount(ctx, scope.CompanyID, f.AccountID)
	if err != nil {
		return nil, err
	}

	v := &View{Account: *acct, OpeningBalance: acct.OpeningBalance}
	from, to := f.From, f.To

	if f.StatementID != 0 {
		st, err := e.db.GetStatement(ctx, scope.CompanyID, f.StatementID)
		if err != nil {
			return nil, err
		}
		if st.AccountID != acct.ID {
			return nil, fmt.Errorf("statement %d of account %d: %w", st.ID, acct.ID, store.ErrNotFound)
		}
		v.Statement = st
		if from == nil && to == nil {
			from, to = &st.PeriodStart, &st.PeriodEnd
		}
	}

	txs, err := e.db.ListLedger(ctx, scope.CompanyID, store.LedgerFilter{
		AccountID:        acct.ID,
		From:             from,
		To:               to,
		UnreconciledOnly: !f.ShowAll,
	})
	if err != nil {
		return nil, err
	}
	balance := acct.OpeningBalance
	for _, tx := range txs {
		balance = balance.Add(tx.Signed())
		v.Transactions = append(v.Transactions, LedgerRow{LedgerTransaction: tx, Balance: balance})
	}
	v.SystemBalance = balance

	lf := store.LineFilter{AccountID: acct.ID, StatementID: f.StatementID, UnreconciledOnly: !f.ShowAll}
	if f.StatementID == 0 {
		lf.From, lf.To = from, to
	}
	if v.Lines, err = e.db.ListLines(ctx, scope.CompanyID, lf); err != nil {
		return nil, err
	}

	if v.Statement != nil {
		diff := v.Statement.ClosingBalance.Sub(balance)
		v.Difference = &diff
	}
	return v, nil
}
