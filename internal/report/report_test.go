package report

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/bankrec/internal/model"
	"github.com/cleared-dev/bankrec/internal/store"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type env struct {
	svc     *Service
	db      *store.DB
	scope   model.Scope
	account *model.BankAccount
}

func setup(t *testing.T) env {
	t.Helper()
	ctx := context.Background()
	db, err := store.Open(filepath.Join(t.TempDir(), "bankrec.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Init(ctx))

	company := &model.Company{Name: "Comercial Andina S.A."}
	require.NoError(t, db.CreateCompany(ctx, company))
	bank := &model.Bank{SBSCode: "001", Name: "Banco Pichincha C.A.", ShortName: "PICHINCHA"}
	require.NoError(t, db.UpsertBank(ctx, bank))
	account := &model.BankAccount{
		CompanyID: company.ID, BankID: bank.ID, Number: "2200123456",
		Type: model.AccountTypeChecking, Currency: model.CurrencyUSD,
		OpeningBalance: dec("5000.00"), OpeningDate: date(2025, 1, 1), Active: true,
	}
	require.NoError(t, db.CreateAccount(ctx, account))

	return env{svc: NewService(db), db: db, scope: model.Scope{CompanyID: company.ID, Actor: "ana"}, account: account}
}

func (e env) tx(t *testing.T, d time.Time, kind model.TransactionKind, amount string) model.LedgerTransaction {
	t.Helper()
	tx := model.LedgerTransaction{AccountID: e.account.ID, Date: d, Kind: kind, Amount: dec(amount)}
	require.NoError(t, e.db.CreateLedgerTransaction(context.Background(), &tx))
	return tx
}

func (e env) statement(t *testing.T, from, to time.Time, closing string, status model.StatementStatus, lines ...model.StatementLine) *model.Statement {
	t.Helper()
	ctx := context.Background()
	st := &model.Statement{
		AccountID: e.account.ID, FileName: "s.csv",
		PeriodStart: from, PeriodEnd: to,
		ClosingBalance: dec(closing), Status: status, UploadedAt: time.Now(),
	}
	require.NoError(t, e.db.CreateStatement(ctx, st))
	require.NoError(t, e.db.InsertLines(ctx, st.ID, lines))
	return st
}

func TestAccountSummaries(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	a := e.tx(t, date(2025, 10, 3), model.KindCredit, "1500")
	e.tx(t, date(2025, 10, 5), model.KindDebit, "350")
	e.tx(t, date(2025, 10, 7), model.KindFee, "12.50")
	_, err := e.db.SetLedgerReconciled(ctx, []int64{a.ID}, true, "ana", time.Now())
	require.NoError(t, err)

	e.statement(t, date(2025, 9, 1), date(2025, 9, 30), "5000", model.StatementReconciled)
	oct := e.statement(t, date(2025, 10, 1), date(2025, 10, 31), "6137.50", model.StatementProcessed,
		model.StatementLine{Date: date(2025, 10, 3), Movement: model.Credit(dec("1500")), Reconciled: true},
		model.StatementLine{Date: date(2025, 10, 5), Movement: model.Debit(dec("350"))},
	)
	e.statement(t, date(2025, 11, 1), date(2025, 11, 30), "0", model.StatementUploaded)

	sums, err := e.svc.AccountSummaries(ctx, e.scope)
	require.NoError(t, err)
	require.Len(t, sums, 1)
	s := sums[0]

	assert.Equal(t, 3, s.Ledger.Total)
	assert.Equal(t, 1, s.Ledger.Reconciled)
	assert.Equal(t, 2, s.Ledger.Unreconciled)
	assert.Equal(t, "1500.00", s.Ledger.ReconciledAmount.StringFixed(2))
	assert.Equal(t, "362.50", s.Ledger.UnreconciledAmount.StringFixed(2))
	assert.Equal(t, "33.33", s.Ledger.Percent().StringFixed(2))

	assert.Equal(t, 2, s.Lines.Total)
	assert.Equal(t, "50.00", s.Lines.Percent().StringFixed(2))

	assert.Equal(t, StatementCounts{Total: 3, Processed: 1, Reconciled: 1}, s.Statements)
	require.NotNil(t, s.Latest)
	assert.Equal(t, oct.ID, s.Latest.ID)
}

func TestAccountSummariesEmpty(t *testing.T) {
	e := setup(t)
	sums, err := e.svc.AccountSummaries(context.Background(), e.scope)
	require.NoError(t, err)
	require.Len(t, sums, 1)
	assert.True(t, sums[0].Ledger.Percent().IsZero())
	assert.Nil(t, sums[0].Latest)
}

func TestMonthlyExtract(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	e.tx(t, date(2025, 9, 20), model.KindCredit, "100")
	e.tx(t, date(2025, 10, 3), model.KindCredit, "1500")
	e.tx(t, date(2025, 10, 5), model.KindDebit, "350")
	e.tx(t, date(2025, 10, 31), model.KindFee, "12.50")
	e.tx(t, date(2025, 11, 1), model.KindDebit, "1")
	e.statement(t, date(2025, 10, 1), date(2025, 10, 31), "6240.00", model.StatementProcessed,
		model.StatementLine{Date: date(2025, 10, 3), Movement: model.Credit(dec("1500"))},
		model.StatementLine{Date: date(2025, 10, 5), Movement: model.Debit(dec("350"))},
	)

	x, err := e.svc.MonthlyExtract(ctx, e.scope, Query{AccountID: e.account.ID, Year: 2025, Month: 10}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, date(2025, 10, 1), x.From)
	assert.Equal(t, date(2025, 10, 31), x.To)
	assert.Equal(t, "5100.00", x.Starting.StringFixed(2))
	require.Len(t, x.Rows, 3)
	assert.Equal(t, "6600.00", x.Rows[0].Balance.StringFixed(2))
	assert.Equal(t, "6237.50", x.SystemBalance.StringFixed(2))
	assert.Equal(t, "1500.00", x.Credits.StringFixed(2))
	assert.Equal(t, "362.50", x.Debits.StringFixed(2))
	assert.Len(t, x.Lines, 2)
	assert.Equal(t, "350.00", x.LineDebits.StringFixed(2))
	require.Len(t, x.Statements, 1)
	require.NotNil(t, x.Difference)
	assert.Equal(t, "2.50", x.Difference.StringFixed(2))
}

func TestMonthlyExtractFallbacks(t *testing.T) {
	e := setup(t)
	now := time.Date(2025, 7, 15, 10, 0, 0, 0, time.UTC)

	x, err := e.svc.MonthlyExtract(context.Background(), e.scope, Query{Month: 13}, now)
	require.NoError(t, err)
	assert.Equal(t, e.account.ID, x.Account.ID)
	assert.Equal(t, 2025, x.Year)
	assert.Equal(t, time.July, x.Month)
	assert.Equal(t, date(2025, 7, 31), x.To)
	assert.True(t, x.SystemBalance.Equal(dec("5000")))
	assert.Nil(t, x.Difference)
}

func TestMonthlyExtractNoAccounts(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	require.NoError(t, e.db.SetAccountActive(ctx, e.scope.CompanyID, e.account.ID, false))

	_, err := e.svc.MonthlyExtract(ctx, e.scope, Query{}, time.Now())
	assert.ErrorIs(t, err, ErrNoAccounts)
}

func TestUnreconciledDifferences(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	a := e.tx(t, date(2025, 10, 3), model.KindCredit, "1500")
	e.tx(t, date(2025, 10, 5), model.KindDebit, "350")
	st := e.statement(t, date(2025, 10, 1), date(2025, 10, 31), "0", model.StatementProcessed,
		model.StatementLine{Date: date(2025, 10, 3), Movement: model.Credit(dec("1500"))},
		model.StatementLine{Date: date(2025, 10, 5), Movement: model.Debit(dec("350"))},
		model.StatementLine{Date: date(2025, 10, 9), Movement: model.Debit(dec("2.50"))},
	)
	_, err := e.db.SetLedgerReconciled(ctx, []int64{a.ID}, true, "ana", time.Now())
	require.NoError(t, err)
	lines, err := e.db.ListLines(ctx, e.scope.CompanyID, store.LineFilter{StatementID: st.ID})
	require.NoError(t, err)
	_, err = e.db.SetLinesReconciled(ctx, []int64{lines[0].ID}, true)
	require.NoError(t, err)

	d, err := e.svc.UnreconciledDifferences(ctx, e.scope, RangeQuery{AccountID: e.account.ID})
	require.NoError(t, err)
	assert.Len(t, d.Transactions, 1)
	assert.Len(t, d.Lines, 2)
	assert.Equal(t, "-350.00", d.LedgerNet.StringFixed(2))
	assert.Equal(t, "352.50", d.LineDebits.StringFixed(2))
	assert.Equal(t, "-2.50", d.Net.StringFixed(2))

	_, err = e.svc.UnreconciledDifferences(ctx, model.Scope{CompanyID: e.scope.CompanyID + 1}, RangeQuery{AccountID: e.account.ID})
	assert.ErrorIs(t, err, store.ErrNotFound)
}
