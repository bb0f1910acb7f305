package ref

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	invoicePrefix  = "FAC-"
	reversalPrefix = "REV-"
	journalPrefix  = "AST-"
	txPrefix       = "TX-"
)

// Invoice returns the reference for a sale settled by transfer, e.g. "FAC-42".
func Invoice(invoiceID int64) string {
	return fmt.Sprintf("%s%d", invoicePrefix, invoiceID)
}

// Transaction returns a fallback reference for a ledger row without one.
func Transaction(id int64) string {
	return fmt.Sprintf("%s%d", txPrefix, id)
}

// JournalLine returns a reference like "AST-2025-0007-L31".
func JournalLine(entryNumber string, lineID int64) string {
	return fmt.Sprintf("%s%s-L%d", journalPrefix, entryNumber, lineID)
}

// Reversal tags a reference as the reversal of original.
// "FAC-42" -> "REV-FAC-42"
func Reversal(original string) string {
	return reversalPrefix + original
}

// IsReversal reports whether r was produced by Reversal.
func IsReversal(r string) bool {
	return strings.HasPrefix(r, reversalPrefix)
}

// Original strips one reversal tag. "REV-FAC-42" -> "FAC-42"
func Original(r string) string {
	return strings.TrimPrefix(r, reversalPrefix)
}

// ParseInvoice extracts the invoice id from "FAC-42" or "REV-FAC-42".
func ParseInvoice(r string) (int64, error) {
	base := Original(r)
	if !strings.HasPrefix(base, invoicePrefix) {
		return 0, fmt.Errorf("invalid invoice reference: %q", r)
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(base, invoicePrefix), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid invoice id in reference %q: %w", r, err)
	}
	return id, nil
}

// ParseJournalLine splits "AST-<number>-L<line>" into its parts.
func ParseJournalLine(r string) (entryNumber string, lineID int64, err error) {
	base := Original(r)
	if !strings.HasPrefix(base, journalPrefix) {
		return "", 0, fmt.Errorf("invalid journal reference: %q", r)
	}
	body := strings.TrimPrefix(base, journalPrefix)
	i := strings.LastIndex(body, "-L")
	if i <= 0 {
		return "", 0, fmt.Errorf("invalid journal reference: %q", r)
	}
	lineID, err = strconv.ParseInt(body[i+2:], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid line id in reference %q: %w", r, err)
	}
	return body[:i], lineID, nil
}
