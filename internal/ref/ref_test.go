package ref

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "FAC-42", Invoice(42))
	assert.Equal(t, "TX-7", Transaction(7))
	assert.Equal(t, "AST-2025-0007-L31", JournalLine("2025-0007", 31))
	assert.Equal(t, "REV-FAC-42", Reversal(Invoice(42)))
}

func TestReversal(t *testing.T) {
	tests := []struct {
		in       string
		reversal bool
		original string
	}{
		{"FAC-1", false, "FAC-1"},
		{"REV-FAC-1", true, "FAC-1"},
		{"REV-TX-9", true, "TX-9"},
		{"", false, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.reversal, IsReversal(tt.in), tt.in)
		assert.Equal(t, tt.original, Original(tt.in), tt.in)
	}
}

func TestParseInvoice(t *testing.T) {
	id, err := ParseInvoice("FAC-1042")
	require.NoError(t, err)
	assert.Equal(t, int64(1042), id)

	id, err = ParseInvoice("REV-FAC-3")
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)

	_, err = ParseInvoice("AST-1-L2")
	assert.Error(t, err)
	_, err = ParseInvoice("FAC-abc")
	assert.Error(t, err)
}

func TestParseJournalLine(t *testing.T) {
	num, line, err := ParseJournalLine("AST-2025-0007-L31")
	require.NoError(t, err)
	assert.Equal(t, "2025-0007", num)
	assert.Equal(t, int64(31), line)

	_, _, err = ParseJournalLine("AST-0007")
	assert.Error(t, err)
	_, _, err = ParseJournalLine("FAC-1")
	assert.Error(t, err)
}
