package importer

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Layouts are tried in order; day-first wins over the US month-first
// fallback.
var dateLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	"2/1/2006",
	"2-1-2006",
	"1/2/2006",
}

// ParseDate parses a statement date. Anything after a comma or a space
// (time of day) is ignored.
func ParseDate(s string) (time.Time, error) {
	raw := s
	s = strings.TrimSpace(s)
	if i := strings.Index(s, ","); i >= 0 {
		s = s[:i]
	}
	if f := strings.Fields(s); len(f) > 0 {
		s = f[0]
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

// isDateCandidate reports whether a cell looks like a date: it starts with a
// digit, contains a '/' or '-' separator and is at least 8 characters long.
func isDateCandidate(cell string) bool {
	cell = strings.TrimSpace(cell)
	if len(cell) < 8 || !unicode.IsDigit(rune(cell[0])) {
		return false
	}
	return strings.ContainsAny(cell, "/-")
}
