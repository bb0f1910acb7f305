package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bankrec/internal/importer"
	"github.com/cleared-dev/bankrec/internal/statements"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow, color.Bold)
	red    = color.New(color.FgRed)
)

const dateLayout = "2006-01-02"

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// printSummary prints one line per statement and the tallies.
func printSummary(w io.Writer, sum statements.Summary) {
	for _, o := range sum.Outcomes {
		switch o.Level {
		case statements.LevelSuccess:
			green.Fprintf(w, "  ✓ statement %d: %s\n", o.StatementID, o.Message)
		case statements.LevelWarning:
			yellow.Fprintf(w, "  ⚠ statement %d: %s\n", o.StatementID, o.Message)
		default:
			red.Fprintf(w, "  ✗ statement %d: %s\n", o.StatementID, o.Message)
		}
	}
	green.Fprintf(w, "%d succeeded", sum.Success)
	fmt.Fprint(w, ", ")
	yellow.Fprintf(w, "%d warnings", sum.Warnings)
	fmt.Fprint(w, ", ")
	red.Fprintf(w, "%d errors\n", sum.Errors)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func optMoney(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return d.StringFixed(2)
}

func mark(b bool) string {
	if b {
		return "x"
	}
	return ""
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// parseOptDate returns nil for an empty string.
func parseOptDate(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := parseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseMoney accepts "1500.00" as well as regional forms like "1.500,00".
func parseMoney(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	d, err := importer.ParseAmount(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// parseIDs parses positional ids, each of which may itself be a comma list.
func parseIDs(args []string) ([]int64, error) {
	var ids []int64
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			id, err := parseID(part)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func today() time.Time {
	t := now()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func nullable(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	return &d.Decimal
}
