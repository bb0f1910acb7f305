package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cleared-dev/bankrec/internal/model"
)

const accountSelect = `
	SELECT a.id, a.company_id, a.bank_id, b.short_name, a.number, a.type, a.currency,
		a.chart_account, a.opening_balance, a.opening_date, a.contact_person, a.notes, a.active
	FROM bank_accounts a
	JOIN banks b ON b.id = a.bank_id`

// CreateAccount inserts a bank account and sets its ID. A second account
// with the same company, bank and number fails with ErrDuplicate.
func (q *Queries) CreateAccount(ctx context.Context, a *model.BankAccount) error {
	res, err := q.q.ExecContext(ctx, `
		INSERT INTO bank_accounts (company_id, bank_id, number, type, currency, chart_account,
			opening_balance, opening_date, contact_person, notes, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.CompanyID, a.BankID, a.Number, a.Type, a.Currency, a.ChartAccount,
		a.OpeningBalance, formatDate(a.OpeningDate), a.ContactPerson, a.Notes, a.Active)
	if err != nil {
		return wrapWriteErr("insert bank account", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("get bank account id: %w", err)
	}
	a.ID = id
	return nil
}

// GetAccount returns an account owned by companyID.
func (q *Queries) GetAccount(ctx context.Context, companyID, id int64) (*model.BankAccount, error) {
	row := q.q.QueryRowContext(ctx, accountSelect+` WHERE a.company_id = ? AND a.id = ?`, companyID, id)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("bank account %d: %w", id, ErrNotFound)
	}
	return a, err
}

// ListAccounts returns the company's accounts ordered by ID.
func (q *Queries) ListAccounts(ctx context.Context, companyID int64, activeOnly bool) ([]model.BankAccount, error) {
	query := accountSelect + ` WHERE a.company_id = ?`
	if activeOnly {
		query += ` AND a.active = 1`
	}
	rows, err := q.q.QueryContext(ctx, query+` ORDER BY a.id`, companyID)
	if err != nil {
		return nil, fmt.Errorf("query bank accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.BankAccount
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

// FindAccountByChart returns the active account linked to a chart-of-accounts
// code.
func (q *Queries) FindAccountByChart(ctx context.Context, companyID int64, chartAccount string) (*model.BankAccount, error) {
	row := q.q.QueryRowContext(ctx, accountSelect+`
		WHERE a.company_id = ? AND a.chart_account = ? AND a.active = 1
		ORDER BY a.id LIMIT 1`, companyID, chartAccount)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("bank account for chart account %q: %w", chartAccount, ErrNotFound)
	}
	return a, err
}

// SetAccountActive activates or deactivates an account.
func (q *Queries) SetAccountActive(ctx context.Context, companyID, id int64, active bool) error {
	res, err := q.q.ExecContext(ctx, `UPDATE bank_accounts SET active = ? WHERE company_id = ? AND id = ?`,
		active, companyID, id)
	if err != nil {
		return fmt.Errorf("update bank account: %w", err)
	}
	return expectOne(res, "bank account", id)
}

// LinkChartAccount sets (or clears, with "") the chart-of-accounts link.
func (q *Queries) LinkChartAccount(ctx context.Context, companyID, id int64, chartAccount string) error {
	res, err := q.q.ExecContext(ctx, `UPDATE bank_accounts SET chart_account = ? WHERE company_id = ? AND id = ?`,
		chartAccount, companyID, id)
	if err != nil {
		return fmt.Errorf("update bank account: %w", err)
	}
	return expectOne(res, "bank account", id)
}

func scanAccount(row rowScanner) (*model.BankAccount, error) {
	var a model.BankAccount
	var openingDate string
	err := row.Scan(&a.ID, &a.CompanyID, &a.BankID, &a.BankName, &a.Number, &a.Type, &a.Currency,
		&a.ChartAccount, &a.OpeningBalance, &openingDate, &a.ContactPerson, &a.Notes, &a.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan bank account: %w", err)
	}
	if a.OpeningDate, err = parseDate(openingDate); err != nil {
		return nil, err
	}
	return &a, nil
}

func expectOne(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return nil
}
