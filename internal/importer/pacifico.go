package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bankrec/internal/model"
)

// PacificoParser parses Banco del Pacífico exports and other CSV files with
// a named header row. The delimiter is sniffed from the first line.
type PacificoParser struct{}

var pacificoRoles = []RoleSpec{
	{RoleDate, []string{"fecha", "date"}},
	{RoleDescription, []string{"descripcion", "detalle", "concepto", "description", "memo"}},
	{RoleReference, []string{"referencia", "reference", "documento", "ref"}},
	{RoleDebit, []string{"debito", "debe", "debit", "cargo", "retiro"}},
	{RoleCredit, []string{"credito", "haber", "credit", "abono", "deposito"}},
	{RoleBalance, []string{"saldo", "balance"}},
	{RoleAmount, []string{"monto", "valor", "importe", "amount"}},
	{RoleKind, []string{"tipo", "type"}},
}

var (
	errNoMovement   = errors.New("no debit, credit or amount value")
	errBothMovement = errors.New("both debit and credit are set")
)

// Format returns the parser name.
func (p *PacificoParser) Format() Format { return FormatPacifico }

// Parse reads a header-driven statement CSV.
func (p *PacificoParser) Parse(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading pacifico CSV: %w", err)
	}
	text := string(data)

	records, err := readRecords(strings.NewReader(text), sniffDelimiter(text))
	if err != nil {
		return nil, fmt.Errorf("reading pacifico CSV: %w", err)
	}

	hdr, cols := findPacificoHeader(records)
	if hdr < 0 {
		return nil, fmt.Errorf("%w: no header with date and amount columns", ErrNoDataSection)
	}

	res := &Result{}
	for _, rec := range records[hdr+1:] {
		if nonEmptyCells(rec.cells) == 0 {
			res.Skipped++
			continue
		}
		line, err := parsePacificoRow(rec.cells, cols)
		if err != nil {
			res.addRowError(rec.line, err)
			continue
		}
		line.Row = rec.line
		res.Lines = append(res.Lines, line)
	}
	return res, nil
}

// findPacificoHeader returns the first row that names a date column and at
// least one amount column.
func findPacificoHeader(records []record) (int, Columns) {
	for i, rec := range records {
		cols := ResolveColumns(rec.cells, pacificoRoles)
		if !cols.Has(RoleDate) {
			continue
		}
		if cols.Has(RoleDebit) || cols.Has(RoleCredit) || cols.Has(RoleAmount) {
			return i, cols
		}
	}
	return -1, nil
}

func parsePacificoRow(cells []string, cols Columns) (ParsedLine, error) {
	dateCell := cols.Cell(cells, RoleDate)
	if dateCell == "" {
		return ParsedLine{}, errors.New("missing date")
	}
	date, err := ParseDate(dateCell)
	if err != nil {
		return ParsedLine{}, fmt.Errorf("parsing date: %w", err)
	}

	mv, err := pacificoMovement(cells, cols)
	if err != nil {
		return ParsedLine{}, err
	}

	return ParsedLine{
		Date:        date,
		Description: describe(cols.Cell(cells, RoleDescription), date),
		Reference:   cols.Cell(cells, RoleReference),
		Movement:    mv,
		Balance:     optionalAmount(cols.Cell(cells, RoleBalance)),
	}, nil
}

// pacificoMovement reads the debit and credit columns. A zero in one column
// yields to the other; a single amount column is used when both are empty.
func pacificoMovement(cells []string, cols Columns) (model.Movement, error) {
	debit, err := columnAmount(cells, cols, RoleDebit)
	if err != nil {
		return model.Movement{}, err
	}
	credit, err := columnAmount(cells, cols, RoleCredit)
	if err != nil {
		return model.Movement{}, err
	}

	hasDebit := debit.Valid && !debit.Decimal.IsZero()
	hasCredit := credit.Valid && !credit.Decimal.IsZero()
	switch {
	case hasDebit && hasCredit:
		return model.Movement{}, errBothMovement
	case hasDebit:
		return model.Debit(debit.Decimal), nil
	case hasCredit:
		return model.Credit(credit.Decimal), nil
	}

	amount, err := columnAmount(cells, cols, RoleAmount)
	if err != nil {
		return model.Movement{}, err
	}
	if !amount.Valid {
		return model.Movement{}, errNoMovement
	}
	return classify(cols.Cell(cells, RoleKind), amount.Decimal), nil
}

func columnAmount(cells []string, cols Columns, role Role) (decimal.NullDecimal, error) {
	cell := cols.Cell(cells, role)
	if cell == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := ParseAmount(cell)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("parsing %s: %w", role, err)
	}
	return decimal.NewNullDecimal(d), nil
}
