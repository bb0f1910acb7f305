package importer

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bankrec/internal/model"
)

// record is one CSV record and the file line it started on.
type record struct {
	line  int
	cells []string
}

func readRecords(r io.Reader, delim rune) ([]record, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	var records []record
	for {
		cells, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		records = append(records, record{line: line, cells: cells})
	}
}

func nonEmptyCells(cells []string) int {
	n := 0
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			n++
		}
	}
	return n
}

// sniffDelimiter picks ';' when the first line has more semicolons than
// commas.
func sniffDelimiter(text string) rune {
	first, _, _ := strings.Cut(text, "\n")
	if strings.Count(first, ";") > strings.Count(first, ",") {
		return ';'
	}
	return ','
}

type label int

const (
	labelNone label = iota
	labelCredit
	labelDebit
)

var (
	creditLabels = []string{"credito", "credit", "abono", "deposito", "cr", "c"}
	debitLabels  = []string{"debito", "debit", "cargo", "retiro", "db", "d"}
)

func movementLabel(cell string) label {
	f := fold(cell)
	for _, l := range creditLabels {
		if f == l {
			return labelCredit
		}
	}
	for _, l := range debitLabels {
		if f == l {
			return labelDebit
		}
	}
	return labelNone
}

// classify honours an explicit type label and otherwise falls back to the
// sign of the amount.
func classify(kind string, amount decimal.Decimal) model.Movement {
	switch movementLabel(kind) {
	case labelCredit:
		return model.Credit(amount)
	case labelDebit:
		return model.Debit(amount)
	}
	return model.FromSigned(amount)
}

func optionalAmount(cell string) decimal.NullDecimal {
	if strings.TrimSpace(cell) == "" {
		return decimal.NullDecimal{}
	}
	d, err := ParseAmount(cell)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// rowFields holds the raw cells picked for each role of one row.
type rowFields struct {
	date        string
	kind        string
	amount      string
	balance     string
	description string
	reference   string
}

// sniffFields guesses roles from cell shapes alone: the first date-like cell
// is the date, the first two money-like cells are the amount and the running
// balance, a type label is the kind, and the first other text cell longer
// than three characters is the description.
func sniffFields(cells []string) rowFields {
	var f rowFields
	for _, raw := range cells {
		c := strings.TrimSpace(raw)
		if c == "" {
			continue
		}
		switch {
		case isDateCandidate(c):
			if f.date == "" {
				f.date = c
			}
		case f.kind == "" && movementLabel(c) != labelNone:
			f.kind = c
		case isAmountCandidate(c):
			if f.amount == "" {
				f.amount = c
			} else if f.balance == "" {
				f.balance = c
			}
		case f.description == "" && len([]rune(c)) > 3 && !strings.Contains(c, "$"):
			f.description = c
		}
	}
	return f
}

// describe falls back to a dated placeholder for rows without text.
func describe(desc string, date time.Time) string {
	if desc != "" {
		return desc
	}
	return "Movimiento " + date.Format("2006-01-02")
}
