package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	oct3 := time.Date(2025, 10, 3, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-10-03", oct3},
		{"2025-10-3", oct3},
		{"03/10/2025", oct3},
		{"3/10/2025", oct3},
		{"03-10-2025", oct3},
		{"2025-10-3, 9:34 PM", oct3},
		{"03/10/2025 09:15", oct3},
		{"12/25/2025", time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		require.NoError(t, err, tt.in)
		assert.True(t, tt.want.Equal(got), "%q: got %s", tt.in, got)
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "NOTADATE", "32/13/2025", "2025/99/99"} {
		_, err := ParseDate(in)
		assert.Error(t, err, in)
	}
}

func TestIsDateCandidate(t *testing.T) {
	assert.True(t, isDateCandidate("03/10/2025"))
	assert.True(t, isDateCandidate("2025-10-03"))
	assert.False(t, isDateCandidate("3/10/25"))
	assert.False(t, isDateCandidate("-1.234,56"))
	assert.False(t, isDateCandidate("PAGO-SERVICIO"))
	assert.False(t, isDateCandidate("12345678"))
}
