package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bankrec/internal/model"
)

const lineSelect = `
	SELECT l.id, l.statement_id, l.date, l.description, l.reference, l.debit, l.credit,
		l.balance, l.reconciled, l.matched_ledger_id
	FROM statement_lines l
	JOIN statements s ON s.id = l.statement_id
	JOIN bank_accounts a ON a.id = s.account_id`

// LineFilter selects statement lines. Zero fields do not filter.
type LineFilter struct {
	AccountID        int64
	StatementID      int64
	From, To         *time.Time
	UnreconciledOnly bool
}

// InsertLines bulk-inserts lines for a statement, setting their IDs.
func (q *Queries) InsertLines(ctx context.Context, statementID int64, lines []model.StatementLine) error {
	for i := range lines {
		l := &lines[i]
		if !l.Movement.Valid() {
			return fmt.Errorf("insert statement line %d: %w", i, model.ErrInvalidMovement)
		}
		debit, credit := l.Movement.Split()
		res, err := q.q.ExecContext(ctx, `
			INSERT INTO statement_lines (statement_id, row_number, date, description, reference,
				debit, credit, balance, reconciled, matched_ledger_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, statementID, i+1, formatDate(l.Date), l.Description, l.Reference,
			debit, credit, l.Balance, l.Reconciled, nullInt64(l.MatchedID))
		if err != nil {
			return fmt.Errorf("insert statement line: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("get statement line id: %w", err)
		}
		l.ID = id
		l.StatementID = statementID
	}
	return nil
}

// DeleteLines removes every line of a statement and returns how many went.
func (q *Queries) DeleteLines(ctx context.Context, statementID int64) (int64, error) {
	res, err := q.q.ExecContext(ctx, `DELETE FROM statement_lines WHERE statement_id = ?`, statementID)
	if err != nil {
		return 0, fmt.Errorf("delete statement lines: %w", err)
	}
	return res.RowsAffected()
}

// ListLines returns the company's statement lines ordered by date then ID.
func (q *Queries) ListLines(ctx context.Context, companyID int64, f LineFilter) ([]model.StatementLine, error) {
	query := lineSelect + ` WHERE a.company_id = ?`
	args := []any{companyID}
	if f.AccountID != 0 {
		query += ` AND s.account_id = ?`
		args = append(args, f.AccountID)
	}
	if f.StatementID != 0 {
		query += ` AND l.statement_id = ?`
		args = append(args, f.StatementID)
	}
	if f.From != nil {
		query += ` AND l.date >= ?`
		args = append(args, formatDate(*f.From))
	}
	if f.To != nil {
		query += ` AND l.date <= ?`
		args = append(args, formatDate(*f.To))
	}
	if f.UnreconciledOnly {
		query += ` AND l.reconciled = 0`
	}

	rows, err := q.q.QueryContext(ctx, query+` ORDER BY l.date, l.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query statement lines: %w", err)
	}
	defer rows.Close()

	var out []model.StatementLine
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

// GetLine returns one line owned by companyID.
func (q *Queries) GetLine(ctx context.Context, companyID, id int64) (*model.StatementLine, error) {
	row := q.q.QueryRowContext(ctx, lineSelect+` WHERE a.company_id = ? AND l.id = ?`, companyID, id)
	l, err := scanLine(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("statement line %d: %w", id, ErrNotFound)
	}
	return l, err
}

// LineAccount returns the bank account a line belongs to.
func (q *Queries) LineAccount(ctx context.Context, lineID int64) (int64, error) {
	var accountID int64
	err := q.q.QueryRowContext(ctx, `
		SELECT s.account_id FROM statement_lines l JOIN statements s ON s.id = l.statement_id
		WHERE l.id = ?`, lineID).Scan(&accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("statement line %d: %w", lineID, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("get line account: %w", err)
	}
	return accountID, nil
}

// ScopedLineIDs returns the subset of ids that belong to accountID (and to
// statementID when non-zero) under companyID.
func (q *Queries) ScopedLineIDs(ctx context.Context, companyID, accountID, statementID int64, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	in, args := inClause(ids)
	query := `
		SELECT l.id FROM statement_lines l
		JOIN statements s ON s.id = l.statement_id
		JOIN bank_accounts a ON a.id = s.account_id
		WHERE a.company_id = ? AND s.account_id = ? AND l.id IN (` + in + `)`
	args = append([]any{companyID, accountID}, args...)
	if statementID != 0 {
		query += ` AND l.statement_id = ?`
		args = append(args, statementID)
	}
	return q.queryIDs(ctx, query+` ORDER BY l.id`, args...)
}

// SetLinesReconciled flags or clears lines. Clearing also drops the match
// link.
func (q *Queries) SetLinesReconciled(ctx context.Context, ids []int64, reconciled bool) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	in, args := inClause(ids)
	query := `UPDATE statement_lines SET reconciled = 1 WHERE id IN (` + in + `)`
	if !reconciled {
		query = `UPDATE statement_lines SET reconciled = 0, matched_ledger_id = NULL WHERE id IN (` + in + `)`
	}
	res, err := q.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("update statement lines: %w", err)
	}
	return res.RowsAffected()
}

// SetLineMatch sets or clears (nil) the ledger transaction a line is matched
// to.
func (q *Queries) SetLineMatch(ctx context.Context, lineID int64, ledgerID *int64) error {
	res, err := q.q.ExecContext(ctx, `UPDATE statement_lines SET matched_ledger_id = ? WHERE id = ?`,
		nullInt64(ledgerID), lineID)
	if err != nil {
		return fmt.Errorf("update line match: %w", err)
	}
	return expectOne(res, "statement line", lineID)
}

// StatementsOfLines returns the distinct statements the lines belong to.
func (q *Queries) StatementsOfLines(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	in, args := inClause(ids)
	return q.queryIDs(ctx, `SELECT DISTINCT statement_id FROM statement_lines WHERE id IN (`+in+`) ORDER BY statement_id`, args...)
}

// CountLines returns the total and unreconciled line counts of a statement.
func (q *Queries) CountLines(ctx context.Context, statementID int64) (total, unreconciled int, err error) {
	err = q.q.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN reconciled = 0 THEN 1 ELSE 0 END), 0)
		FROM statement_lines WHERE statement_id = ?`, statementID).Scan(&total, &unreconciled)
	if err != nil {
		return 0, 0, fmt.Errorf("count statement lines: %w", err)
	}
	return total, unreconciled, nil
}

func (q *Queries) queryIDs(ctx context.Context, query string, args ...any) ([]int64, error) {
	rows, err := q.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanLine(row rowScanner) (*model.StatementLine, error) {
	var l model.StatementLine
	var date string
	var debit, credit decimal.NullDecimal
	var matched sql.NullInt64
	err := row.Scan(&l.ID, &l.StatementID, &date, &l.Description, &l.Reference,
		&debit, &credit, &l.Balance, &l.Reconciled, &matched)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan statement line: %w", err)
	}
	if l.Date, err = parseDate(date); err != nil {
		return nil, err
	}
	if l.Movement, err = model.MovementFromColumns(debit, credit); err != nil {
		return nil, fmt.Errorf("statement line %d: %w", l.ID, err)
	}
	l.MatchedID = int64Ptr(matched)
	return &l, nil
}
