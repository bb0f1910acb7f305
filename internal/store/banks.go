package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/cleared-dev/bankrec/internal/model"
)

const bankColumns = `id, sbs_code, name, short_name, swift_code, website, phone`

// UpsertBank inserts a bank or updates the one with the same SBS code, and
// sets b.ID.
func (q *Queries) UpsertBank(ctx context.Context, b *model.Bank) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO banks (sbs_code, name, short_name, swift_code, website, phone)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (sbs_code) DO UPDATE SET
			name = excluded.name,
			short_name = excluded.short_name,
			swift_code = excluded.swift_code,
			website = excluded.website,
			phone = excluded.phone
	`, b.SBSCode, b.Name, b.ShortName, b.SwiftCode, b.Website, b.Phone)
	if err != nil {
		return wrapWriteErr("upsert bank", err)
	}
	err = q.q.QueryRowContext(ctx, `SELECT id FROM banks WHERE sbs_code = ?`, b.SBSCode).Scan(&b.ID)
	if err != nil {
		return fmt.Errorf("get bank id: %w", err)
	}
	return nil
}

// ListBanks returns the catalogue ordered by SBS code.
func (q *Queries) ListBanks(ctx context.Context) ([]model.Bank, error) {
	rows, err := q.q.QueryContext(ctx, `SELECT `+bankColumns+` FROM banks ORDER BY sbs_code`)
	if err != nil {
		return nil, fmt.Errorf("query banks: %w", err)
	}
	defer rows.Close()

	var banks []model.Bank
	for rows.Next() {
		b, err := scanBank(rows)
		if err != nil {
			return nil, err
		}
		banks = append(banks, *b)
	}
	return banks, rows.Err()
}

// FindBank looks a bank up by SBS code or short name (case-insensitive).
func (q *Queries) FindBank(ctx context.Context, key string) (*model.Bank, error) {
	key = strings.TrimSpace(key)
	row := q.q.QueryRowContext(ctx, `
		SELECT `+bankColumns+` FROM banks
		WHERE sbs_code = ? OR UPPER(short_name) = UPPER(?)
		ORDER BY sbs_code LIMIT 1
	`, key, key)
	b, err := scanBank(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("bank %q: %w", key, ErrNotFound)
	}
	return b, err
}

func scanBank(row rowScanner) (*model.Bank, error) {
	var b model.Bank
	if err := row.Scan(&b.ID, &b.SBSCode, &b.Name, &b.ShortName, &b.SwiftCode, &b.Website, &b.Phone); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan bank: %w", err)
	}
	return &b, nil
}
