package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cleared-dev/bankrec/internal/model"
)

const statementSelect = `
	SELECT s.id, s.account_id, s.file_name, s.original_name, s.period_start, s.period_end,
		s.opening_balance, s.closing_balance, s.status, s.notes, s.uploaded_by, s.uploaded_at,
		s.processed_at
	FROM statements s
	JOIN bank_accounts a ON a.id = s.account_id`

// CreateStatement inserts a statement and sets its ID.
func (q *Queries) CreateStatement(ctx context.Context, s *model.Statement) error {
	if err := s.ValidatePeriod(); err != nil {
		return err
	}
	res, err := q.q.ExecContext(ctx, `
		INSERT INTO statements (account_id, file_name, original_name, period_start, period_end,
			opening_balance, closing_balance, status, notes, uploaded_by, uploaded_at, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.AccountID, s.FileName, s.OriginalName, formatDate(s.PeriodStart), formatDate(s.PeriodEnd),
		s.OpeningBalance, s.ClosingBalance, s.Status, s.Notes, s.UploadedBy, formatTime(s.UploadedAt),
		nullTime(s.ProcessedAt))
	if err != nil {
		return wrapWriteErr("insert statement", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("get statement id: %w", err)
	}
	s.ID = id
	return nil
}

// GetStatement returns a statement whose account belongs to companyID.
func (q *Queries) GetStatement(ctx context.Context, companyID, id int64) (*model.Statement, error) {
	row := q.q.QueryRowContext(ctx, statementSelect+` WHERE a.company_id = ? AND s.id = ?`, companyID, id)
	s, err := scanStatement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("statement %d: %w", id, ErrNotFound)
	}
	return s, err
}

// ListStatements returns the company's statements, newest period first.
// accountID 0 means every account.
func (q *Queries) ListStatements(ctx context.Context, companyID, accountID int64) ([]model.Statement, error) {
	query := statementSelect + ` WHERE a.company_id = ?`
	args := []any{companyID}
	if accountID != 0 {
		query += ` AND s.account_id = ?`
		args = append(args, accountID)
	}
	rows, err := q.q.QueryContext(ctx, query+` ORDER BY s.period_end DESC, s.id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("query statements: %w", err)
	}
	defer rows.Close()

	var out []model.Statement
	for rows.Next() {
		s, err := scanStatement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// UpdateStatementStatus sets the status, the notes and the processed time.
func (q *Queries) UpdateStatementStatus(ctx context.Context, id int64, status model.StatementStatus, notes string, processedAt *time.Time) error {
	res, err := q.q.ExecContext(ctx, `UPDATE statements SET status = ?, notes = ?, processed_at = ? WHERE id = ?`,
		status, notes, nullTime(processedAt), id)
	if err != nil {
		return fmt.Errorf("update statement status: %w", err)
	}
	return expectOne(res, "statement", id)
}

// SetStatementStatus changes only the status.
func (q *Queries) SetStatementStatus(ctx context.Context, id int64, status model.StatementStatus) error {
	res, err := q.q.ExecContext(ctx, `UPDATE statements SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("update statement status: %w", err)
	}
	return expectOne(res, "statement", id)
}

func scanStatement(row rowScanner) (*model.Statement, error) {
	var s model.Statement
	var start, end, uploadedAt string
	var processedAt sql.NullString
	err := row.Scan(&s.ID, &s.AccountID, &s.FileName, &s.OriginalName, &start, &end,
		&s.OpeningBalance, &s.ClosingBalance, &s.Status, &s.Notes, &s.UploadedBy, &uploadedAt,
		&processedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan statement: %w", err)
	}
	if s.PeriodStart, err = parseDate(start); err != nil {
		return nil, err
	}
	if s.PeriodEnd, err = parseDate(end); err != nil {
		return nil, err
	}
	if s.UploadedAt, err = time.Parse(timeLayout, uploadedAt); err != nil {
		return nil, fmt.Errorf("parse uploaded_at %q: %w", uploadedAt, err)
	}
	if s.ProcessedAt, err = scanNullTime(processedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// TransitionStatement moves a statement from one status to another and
// reports whether it was in the from status.
func (q *Queries) TransitionStatement(ctx context.Context, id int64, from, to model.StatementStatus) (bool, error) {
	res, err := q.q.ExecContext(ctx, `UPDATE statements SET status = ? WHERE id = ? AND status = ?`, to, id, from)
	if err != nil {
		return false, fmt.Errorf("update statement status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
