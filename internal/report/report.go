// Package report aggregates reconciliation state. Nothing here writes.
package report

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bankrec/internal/model"
	"github.com/cleared-dev/bankrec/internal/store"
)

// ErrNoAccounts is returned when a report needs an account and the company
// has no active one.
var ErrNoAccounts = errors.New("no active bank accounts")

var hundred = decimal.NewFromInt(100)

// Service builds read-only reports over the store.
type Service struct {
	db *store.DB
}

// NewService creates a report Service.
func NewService(db *store.DB) *Service {
	return &Service{db: db}
}

// Counts splits items into reconciled and unreconciled.
type Counts struct {
	Total              int
	Reconciled         int
	Unreconciled       int
	ReconciledAmount   decimal.Decimal
	UnreconciledAmount decimal.Decimal
}

func (c *Counts) add(reconciled bool, amount decimal.Decimal) {
	c.Total++
	if reconciled {
		c.Reconciled++
		c.ReconciledAmount = c.ReconciledAmount.Add(amount)
		return
	}
	c.Unreconciled++
	c.UnreconciledAmount = c.UnreconciledAmount.Add(amount)
}

// Percent is the reconciled share rounded to two places, 0 when empty.
func (c Counts) Percent() decimal.Decimal {
	return percent(c.Reconciled, c.Total)
}

func percent(part, total int) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(part)).Mul(hundred).Div(decimal.NewFromInt(int64(total))).Round(2)
}

// StatementCounts tallies statements by progress.
type StatementCounts struct {
	Total      int
	Processed  int
	Reconciled int
}

// AccountSummary is the reconciliation state of one account.
type AccountSummary struct {
	Account    model.BankAccount
	Ledger     Counts
	Lines      Counts
	Statements StatementCounts
	Latest     *model.Statement // latest processed or reconciled, by period end
}

// AccountSummaries summarizes every active account of the company.
func (s *Service) AccountSummaries(ctx context.Context, scope model.Scope) ([]AccountSummary, error) {
	accounts, err := s.db.ListAccounts(ctx, scope.CompanyID, true)
	if err != nil {
		return nil, err
	}

	out := make([]AccountSummary, 0, len(accounts))
	for _, acct := range accounts {
		sum := AccountSummary{Account: acct}

		txs, err := s.db.ListLedger(ctx, scope.CompanyID, store.LedgerFilter{AccountID: acct.ID})
		if err != nil {
			return nil, err
		}
		for _, tx := range txs {
			sum.Ledger.add(tx.Reconciled, tx.Amount)
		}

		lines, err := s.db.ListLines(ctx, scope.CompanyID, store.LineFilter{AccountID: acct.ID})
		if err != nil {
			return nil, err
		}
		for _, l := range lines {
			sum.Lines.add(l.Reconciled, l.Movement.Amount())
		}

		stmts, err := s.db.ListStatements(ctx, scope.CompanyID, acct.ID)
		if err != nil {
			return nil, err
		}
		sum.Statements.Total = len(stmts)
		for i, st := range stmts {
			switch st.Status {
			case model.StatementProcessed:
				sum.Statements.Processed++
			case model.StatementReconciled:
				sum.Statements.Reconciled++
			default:
				continue
			}
			if sum.Latest == nil {
				sum.Latest = &stmts[i]
			}
		}
		out = append(out, sum)
	}
	return out, nil
}

// defaultAccount returns the requested account, or the first active one
// when id is 0.
func (s *Service) defaultAccount(ctx context.Context, scope model.Scope, id int64) (*model.BankAccount, error) {
	if id != 0 {
		return s.db.GetAccount(ctx, scope.CompanyID, id)
	}
	accounts, err := s.db.ListAccounts(ctx, scope.CompanyID, true)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, ErrNoAccounts
	}
	return &accounts[0], nil
}
