package importer

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseFixture(t *testing.T, p Parser, name string) *Result {
	t.Helper()
	data, err := os.ReadFile("../../testdata/" + name)
	require.NoError(t, err)
	text, err := Decode(data)
	require.NoError(t, err)
	res, err := p.Parse(strings.NewReader(text))
	require.NoError(t, err)
	return res
}

func TestPichinchaParser_Parse(t *testing.T) {
	res := parseFixture(t, &PichinchaParser{}, "pichincha_movimientos.csv")
	require.Len(t, res.Lines, 5)
	assert.Empty(t, res.RowErrors)

	first := res.Lines[0]
	assert.Equal(t, 8, first.Row)
	assert.True(t, time.Date(2025, 10, 3, 0, 0, 0, 0, time.UTC).Equal(first.Date))
	assert.Equal(t, "TRANSFERENCIA RECIBIDA CLIENTE ACME", first.Description)
	assert.Equal(t, "100234", first.Reference)
	assert.True(t, first.Movement.IsCredit())
	assert.Equal(t, "1500.00", first.Movement.Amount().StringFixed(2))
	require.True(t, first.Balance.Valid)
	assert.Equal(t, "6500.00", first.Balance.Decimal.StringFixed(2))

	fee := res.Lines[2]
	assert.True(t, fee.Movement.IsDebit())
	assert.Equal(t, "12.50", fee.Movement.Amount().StringFixed(2))
}

func TestPichinchaParser_BalancesAreConsistent(t *testing.T) {
	res := parseFixture(t, &PichinchaParser{}, "pichincha_movimientos.csv")

	running := decimal.RequireFromString("5000.00")
	for _, l := range res.Lines {
		running = running.Add(l.Movement.Signed())
		require.True(t, l.Balance.Valid)
		assert.True(t, running.Equal(l.Balance.Decimal), "row %d: running %s declared %s", l.Row, running, l.Balance.Decimal)
	}
	assert.Equal(t, "6335.00", running.StringFixed(2))
}

func TestPichinchaParser_DefaultPositionalColumns(t *testing.T) {
	res := parseFixture(t, &PichinchaParser{}, "pichincha_positional.csv")
	require.Len(t, res.Lines, 3)
	assert.Empty(t, res.RowErrors)

	assert.True(t, res.Lines[0].Movement.IsCredit())
	assert.Equal(t, "Transferencia recibida", res.Lines[0].Description)
	assert.True(t, res.Lines[1].Movement.IsDebit())
	assert.Equal(t, "350.00", res.Lines[1].Movement.Amount().StringFixed(2))

	// No type label: the sign decides. No detail: dated placeholder.
	assert.True(t, res.Lines[2].Movement.IsDebit())
	assert.Equal(t, "12.50", res.Lines[2].Movement.Amount().StringFixed(2))
	assert.Equal(t, "Movimiento 2025-10-07", res.Lines[2].Description)
	assert.False(t, res.Lines[2].Balance.Valid)
}

func TestPichinchaParser_Malformed(t *testing.T) {
	res := parseFixture(t, &PichinchaParser{}, "malformed.csv")
	assert.Empty(t, res.Lines)
	require.Len(t, res.RowErrors, 3)
	assert.Equal(t, 1, res.Skipped)
	assert.Contains(t, res.RowErrors[0].Error(), "row 4: no date found")
	assert.Contains(t, res.RowErrors[1].Error(), "parsing date")
	assert.Contains(t, res.RowErrors[2].Error(), "no amount found")
}

func TestPichinchaParser_SniffsUnlabelledRows(t *testing.T) {
	csv := "Movimientos\nFecha;Concepto;Tipo;Monto\n;2025-10-05;PAGO LUZ;débito;$45,20;120,80\n"
	res, err := (&PichinchaParser{}).Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)

	l := res.Lines[0]
	assert.True(t, time.Date(2025, 10, 5, 0, 0, 0, 0, time.UTC).Equal(l.Date))
	assert.Equal(t, "PAGO LUZ", l.Description)
	assert.True(t, l.Movement.IsDebit())
	assert.Equal(t, "45.20", l.Movement.Amount().StringFixed(2))
	require.True(t, l.Balance.Valid)
	assert.Equal(t, "120.80", l.Balance.Decimal.StringFixed(2))
}

func TestPichinchaParser_NoHeader(t *testing.T) {
	_, err := (&PichinchaParser{}).Parse(strings.NewReader("Banco Pichincha\nsin datos;;\n"))
	assert.ErrorIs(t, err, ErrNoDataSection)
}

func TestPichinchaParser_RowErrorsCapped(t *testing.T) {
	var b strings.Builder
	b.WriteString("Fecha;Concepto;Tipo;Monto\n")
	for i := 0; i < 15; i++ {
		b.WriteString("99/99/2025;PAGO;D;10,00\n")
	}
	res, err := (&PichinchaParser{}).Parse(strings.NewReader(b.String()))
	require.NoError(t, err)
	assert.Len(t, res.RowErrors, MaxRowErrors)
	assert.Equal(t, 5, res.Dropped)
	assert.Len(t, res.Reasons(5), 5)
}
