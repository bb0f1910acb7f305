package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// PichinchaParser parses Banco Pichincha movement exports. They are
// semicolon delimited and carry a free-form preamble (account holder,
// balances) above a "Movimientos" section.
type PichinchaParser struct{}

const (
	pichinchaDelimiter    = ';'
	pichinchaMinCells     = 2
	pichinchaHeaderWindow = 4
	pichinchaMarker       = "movimientos"
	pichinchaDateLabel    = "fecha"
)

var pichinchaRoles = []RoleSpec{
	{RoleAccountingDate, []string{"fecha contable", "fecha de contabilizacion"}},
	{RoleDate, []string{"fecha"}},
	{RoleKind, []string{"tipo"}},
	{RoleAmount, []string{"monto", "valor", "importe"}},
	{RoleBalance, []string{"saldo"}},
	{RoleDescription, []string{"detalle", "concepto", "descripcion"}},
	{RoleReference, []string{"documento", "referencia"}},
	{RoleCategory, []string{"categoria"}},
}

// pichinchaDefaultColumns is the layout assumed when the header names
// cannot be resolved.
var pichinchaDefaultColumns = Columns{
	RoleDate:           0,
	RoleKind:           1,
	RoleAmount:         2,
	RoleDescription:    3,
	RoleAccountingDate: 4,
	RoleCategory:       5,
}

// Format returns the parser name.
func (p *PichinchaParser) Format() Format { return FormatPichincha }

// Parse reads a Pichincha export.
func (p *PichinchaParser) Parse(r io.Reader) (*Result, error) {
	records, err := readRecords(r, pichinchaDelimiter)
	if err != nil {
		return nil, fmt.Errorf("reading pichincha CSV: %w", err)
	}

	hdr, ok := findPichinchaHeader(records)
	if !ok {
		return nil, ErrNoDataSection
	}

	cols := ResolveColumns(records[hdr].cells, pichinchaRoles)
	if !cols.Has(RoleDate) || !cols.Has(RoleAmount) {
		cols = pichinchaDefaultColumns
	}

	res := &Result{}
	for _, rec := range records[hdr+1:] {
		if nonEmptyCells(rec.cells) < pichinchaMinCells {
			res.Skipped++
			continue
		}
		line, err := parsePichinchaRow(rec.cells, cols)
		if err != nil {
			res.addRowError(rec.line, err)
			continue
		}
		line.Row = rec.line
		res.Lines = append(res.Lines, line)
	}
	return res, nil
}

// findPichinchaHeader returns the index of the movements header row: a row
// labelled "Fecha" within a few rows after the "Movimientos" marker, or else
// the first row of more than two cells with a "Fecha" label.
func findPichinchaHeader(records []record) (int, bool) {
	for i, rec := range records {
		if !rowContains(rec.cells, pichinchaMarker) {
			continue
		}
		for j := i + 1; j <= i+pichinchaHeaderWindow && j < len(records); j++ {
			if hasLabel(records[j].cells, pichinchaDateLabel) {
				return j, true
			}
		}
	}
	for i, rec := range records {
		if nonEmptyCells(rec.cells) > 2 && hasLabel(rec.cells, pichinchaDateLabel) {
			return i, true
		}
	}
	return -1, false
}

func rowContains(cells []string, marker string) bool {
	for _, c := range cells {
		if strings.Contains(fold(c), marker) {
			return true
		}
	}
	return false
}

func hasLabel(cells []string, label string) bool {
	for _, c := range cells {
		if strings.HasPrefix(fold(c), label) {
			return true
		}
	}
	return false
}

func parsePichinchaRow(cells []string, cols Columns) (ParsedLine, error) {
	f := rowFields{
		date:        cols.Cell(cells, RoleDate),
		kind:        cols.Cell(cells, RoleKind),
		amount:      cols.Cell(cells, RoleAmount),
		balance:     cols.Cell(cells, RoleBalance),
		description: cols.Cell(cells, RoleDescription),
		reference:   cols.Cell(cells, RoleReference),
	}
	if !isDateCandidate(f.date) {
		// The row does not line up with the header.
		f = sniffFields(cells)
	}

	if f.date == "" {
		return ParsedLine{}, errors.New("no date found")
	}
	date, err := ParseDate(f.date)
	if err != nil {
		return ParsedLine{}, fmt.Errorf("parsing date: %w", err)
	}
	if f.amount == "" {
		return ParsedLine{}, errors.New("no amount found")
	}
	amount, err := ParseAmount(f.amount)
	if err != nil {
		return ParsedLine{}, fmt.Errorf("parsing amount: %w", err)
	}

	return ParsedLine{
		Date:        date,
		Description: describe(f.description, date),
		Reference:   f.reference,
		Movement:    classify(f.kind, amount),
		Balance:     optionalAmount(f.balance),
	}, nil
}
