package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveColumns_Pichincha(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		want   Columns
	}{
		{
			name:   "online banking export",
			header: []string{"Fecha", "Concepto", "Tipo", "Documento", "Oficina", "Monto", "Saldo"},
			want: Columns{
				RoleDate: 0, RoleDescription: 1, RoleKind: 2, RoleReference: 3,
				RoleAmount: 5, RoleBalance: 6,
			},
		},
		{
			name:   "accounting date listed first",
			header: []string{"Fecha contable", "Fecha", "Valor", "Detalle", "Categoría"},
			want: Columns{
				RoleAccountingDate: 0, RoleDate: 1, RoleAmount: 2,
				RoleDescription: 3, RoleCategory: 4,
			},
		},
		{
			name:   "unrecognized amount",
			header: []string{"Fecha", "Tipo de movimiento", "Cantidad"},
			want:   Columns{RoleDate: 0, RoleKind: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveColumns(tt.header, pichinchaRoles))
		})
	}
}

func TestResolveColumns_Pacifico(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		want   Columns
	}{
		{
			name:   "spanish with accents",
			header: []string{"Fecha", "Descripción", "Referencia", "Débito", "Crédito", "Saldo"},
			want: Columns{
				RoleDate: 0, RoleDescription: 1, RoleReference: 2,
				RoleDebit: 3, RoleCredit: 4, RoleBalance: 5,
			},
		},
		{
			name:   "debe haber upper case",
			header: []string{"FECHA", "DETALLE", "DEBE", "HABER"},
			want:   Columns{RoleDate: 0, RoleDescription: 1, RoleDebit: 2, RoleCredit: 3},
		},
		{
			name:   "english single amount",
			header: []string{"Transaction Date", "Description", "Ref", "Amount", "Type", "Balance"},
			want: Columns{
				RoleDate: 0, RoleDescription: 1, RoleReference: 2,
				RoleAmount: 3, RoleKind: 4, RoleBalance: 5,
			},
		},
		{
			name:   "no date column",
			header: []string{"Descripcion", "Monto"},
			want:   Columns{RoleDescription: 0, RoleAmount: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveColumns(tt.header, pacificoRoles))
		})
	}
}

func TestResolveColumns_ColumnClaimedOnce(t *testing.T) {
	specs := []RoleSpec{
		{RoleDebit, []string{"debito"}},
		{RoleAmount, []string{"valor"}},
	}
	cols := ResolveColumns([]string{"Valor débito", "Valor"}, specs)
	assert.Equal(t, Columns{RoleDebit: 0, RoleAmount: 1}, cols)
}

func TestColumns_Cell(t *testing.T) {
	cols := Columns{RoleDate: 0, RoleAmount: 4}
	row := []string{" 2025-10-03 ", "x"}
	assert.Equal(t, "2025-10-03", cols.Cell(row, RoleDate))
	assert.Equal(t, "", cols.Cell(row, RoleAmount))
	assert.Equal(t, "", cols.Cell(row, RoleBalance))
	assert.True(t, cols.Has(RoleAmount))
	assert.False(t, cols.Has(RoleBalance))
}
