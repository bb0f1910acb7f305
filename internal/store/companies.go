package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cleared-dev/bankrec/internal/model"
)

// CreateCompany inserts a company and sets its ID.
func (q *Queries) CreateCompany(ctx context.Context, c *model.Company) error {
	res, err := q.q.ExecContext(ctx, `INSERT INTO companies (name, ruc) VALUES (?, ?)`, c.Name, c.RUC)
	if err != nil {
		return wrapWriteErr("insert company", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("get company id: %w", err)
	}
	c.ID = id
	return nil
}

// GetCompany returns a company by ID.
func (q *Queries) GetCompany(ctx context.Context, id int64) (*model.Company, error) {
	var c model.Company
	err := q.q.QueryRowContext(ctx, `SELECT id, name, ruc FROM companies WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.RUC)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("company %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get company: %w", err)
	}
	return &c, nil
}
