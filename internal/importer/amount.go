package importer

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var currencyStripper = strings.NewReplacer("$", "", "USD", "", "usd", "", " ", "", "\u00a0", "")

// ParseAmount parses a monetary cell written in any of the regional formats
// banks export:
//
//	"5,00"      -> 5.00     (comma decimal)
//	"12,500"    -> 12500    (comma thousands)
//	"5.000,50"  -> 5000.50  (dot thousands, comma decimal)
//	"1,234.56"  -> 1234.56  (comma thousands, dot decimal)
//	"1234.56"   -> 1234.56
//
// When both separators occur the last one is the decimal mark. A lone comma
// is a decimal mark unless exactly three digits follow it ("1,200" is
// 1200); a separator repeated more than once is a thousands separator. "(x)" and a trailing "-" mean negative.
func ParseAmount(s string) (decimal.Decimal, error) {
	raw := s
	s = currencyStripper.Replace(strings.TrimSpace(s))

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	if strings.HasSuffix(s, "-") {
		neg = true
		s = strings.TrimSuffix(s, "-")
	}
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	if s == "" || !unicode.IsDigit(rune(s[0])) && s[0] != '.' && s[0] != ',' {
		return decimal.Zero, fmt.Errorf("invalid amount %q", raw)
	}

	d, err := decimal.NewFromString(normalizeSeparators(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", raw)
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}

func normalizeSeparators(s string) string {
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			return strings.ReplaceAll(s, ",", ".")
		}
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 || len(s)-lastComma-1 == 3 {
			return strings.ReplaceAll(s, ",", "")
		}
		return strings.Replace(s, ",", ".", 1)
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 {
			return strings.ReplaceAll(s, ".", "")
		}
	}
	return s
}

// isAmountCandidate reports whether a cell looks like money: it carries a
// currency symbol, or is purely numeric once separators and signs are
// stripped and is longer than one character.
func isAmountCandidate(cell string) bool {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return false
	}
	hasDigit := strings.IndexFunc(cell, unicode.IsDigit) >= 0
	if strings.Contains(cell, "$") {
		return hasDigit
	}
	if len(cell) <= 1 {
		return false
	}
	stripped := strings.Map(func(r rune) rune {
		switch r {
		case ',', '.', '-', '+', '(', ')', ' ':
			return -1
		}
		return r
	}, cell)
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
