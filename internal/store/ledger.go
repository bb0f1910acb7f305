package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cleared-dev/bankrec/internal/model"
)

const ledgerSelect = `
	SELECT t.id, t.account_id, t.date, t.value_date, t.kind, t.amount, t.description, t.reference,
		t.journal_entry_id, t.reconciled, t.reconciled_at, t.reconciled_by, t.created_at
	FROM ledger_transactions t
	JOIN bank_accounts a ON a.id = t.account_id`

// LedgerFilter selects ledger transactions. Zero fields do not filter.
// Before is exclusive; From and To are inclusive.
type LedgerFilter struct {
	AccountID        int64
	From, To         *time.Time
	Before           *time.Time
	UnreconciledOnly bool
}

// CreateLedgerTransaction inserts a ledger transaction and sets its ID.
func (q *Queries) CreateLedgerTransaction(ctx context.Context, t *model.LedgerTransaction) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	res, err := q.q.ExecContext(ctx, `
		INSERT INTO ledger_transactions (account_id, date, value_date, kind, amount, description,
			reference, journal_entry_id, reconciled, reconciled_at, reconciled_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.AccountID, formatDate(t.Date), nullDate(t.ValueDate), t.Kind, t.Amount, t.Description,
		t.Reference, nullInt64(t.JournalEntryID), t.Reconciled, nullTime(t.ReconciledAt),
		t.ReconciledBy, formatTime(t.CreatedAt))
	if err != nil {
		return wrapWriteErr("insert ledger transaction", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("get ledger transaction id: %w", err)
	}
	t.ID = id
	return nil
}

// GetLedgerTransaction returns a transaction owned by companyID.
func (q *Queries) GetLedgerTransaction(ctx context.Context, companyID, id int64) (*model.LedgerTransaction, error) {
	row := q.q.QueryRowContext(ctx, ledgerSelect+` WHERE a.company_id = ? AND t.id = ?`, companyID, id)
	t, err := scanLedger(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ledger transaction %d: %w", id, ErrNotFound)
	}
	return t, err
}

// FindLedgerByReference returns the oldest transaction of the company with
// the given reference.
func (q *Queries) FindLedgerByReference(ctx context.Context, companyID int64, reference string) (*model.LedgerTransaction, error) {
	row := q.q.QueryRowContext(ctx, ledgerSelect+`
		WHERE a.company_id = ? AND t.reference = ? ORDER BY t.id LIMIT 1`, companyID, reference)
	t, err := scanLedger(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ledger transaction %q: %w", reference, ErrNotFound)
	}
	return t, err
}

// ListLedger returns the company's ledger transactions ordered by date then
// ID.
func (q *Queries) ListLedger(ctx context.Context, companyID int64, f LedgerFilter) ([]model.LedgerTransaction, error) {
	query := ledgerSelect + ` WHERE a.company_id = ?`
	args := []any{companyID}
	if f.AccountID != 0 {
		query += ` AND t.account_id = ?`
		args = append(args, f.AccountID)
	}
	if f.From != nil {
		query += ` AND t.date >= ?`
		args = append(args, formatDate(*f.From))
	}
	if f.To != nil {
		query += ` AND t.date <= ?`
		args = append(args, formatDate(*f.To))
	}
	if f.Before != nil {
		query += ` AND t.date < ?`
		args = append(args, formatDate(*f.Before))
	}
	if f.UnreconciledOnly {
		query += ` AND t.reconciled = 0`
	}

	rows, err := q.q.QueryContext(ctx, query+` ORDER BY t.date, t.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query ledger transactions: %w", err)
	}
	defer rows.Close()

	var out []model.LedgerTransaction
	for rows.Next() {
		t, err := scanLedger(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// DeleteLedgerTransaction removes a transaction. Statement lines matched to
// it lose the link.
func (q *Queries) DeleteLedgerTransaction(ctx context.Context, companyID, id int64) error {
	res, err := q.q.ExecContext(ctx, `
		DELETE FROM ledger_transactions
		WHERE id = ? AND account_id IN (SELECT id FROM bank_accounts WHERE company_id = ?)`, id, companyID)
	if err != nil {
		return fmt.Errorf("delete ledger transaction: %w", err)
	}
	return expectOne(res, "ledger transaction", id)
}

// ScopedLedgerIDs returns the subset of ids that belong to accountID under
// companyID.
func (q *Queries) ScopedLedgerIDs(ctx context.Context, companyID, accountID int64, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	in, args := inClause(ids)
	args = append([]any{companyID, accountID}, args...)
	return q.queryIDs(ctx, `
		SELECT t.id FROM ledger_transactions t
		JOIN bank_accounts a ON a.id = t.account_id
		WHERE a.company_id = ? AND t.account_id = ? AND t.id IN (`+in+`)
		ORDER BY t.id`, args...)
}

// SetLedgerReconciled flags transactions as reconciled by actor at the given
// time, or clears the flag and its metadata.
func (q *Queries) SetLedgerReconciled(ctx context.Context, ids []int64, reconciled bool, actor string, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	in, args := inClause(ids)
	var res sql.Result
	var err error
	if reconciled {
		args = append([]any{formatTime(at), actor}, args...)
		res, err = q.q.ExecContext(ctx, `
			UPDATE ledger_transactions SET reconciled = 1, reconciled_at = ?, reconciled_by = ?
			WHERE id IN (`+in+`)`, args...)
	} else {
		res, err = q.q.ExecContext(ctx, `
			UPDATE ledger_transactions SET reconciled = 0, reconciled_at = NULL, reconciled_by = ''
			WHERE id IN (`+in+`)`, args...)
	}
	if err != nil {
		return 0, fmt.Errorf("update ledger transactions: %w", err)
	}
	return res.RowsAffected()
}

func scanLedger(row rowScanner) (*model.LedgerTransaction, error) {
	var t model.LedgerTransaction
	var date, createdAt string
	var valueDate, reconciledAt sql.NullString
	var journal sql.NullInt64
	err := row.Scan(&t.ID, &t.AccountID, &date, &valueDate, &t.Kind, &t.Amount, &t.Description,
		&t.Reference, &journal, &t.Reconciled, &reconciledAt, &t.ReconciledBy, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan ledger transaction: %w", err)
	}
	if t.Date, err = parseDate(date); err != nil {
		return nil, err
	}
	if t.ValueDate, err = scanNullDate(valueDate); err != nil {
		return nil, err
	}
	if t.ReconciledAt, err = scanNullTime(reconciledAt); err != nil {
		return nil, err
	}
	if t.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	t.JournalEntryID = int64Ptr(journal)
	return &t, nil
}
