package importer

import "strings"

// Role is the meaning of a statement column.
type Role string

const (
	RoleDate           Role = "date"
	RoleAccountingDate Role = "accounting_date"
	RoleKind           Role = "kind"
	RoleAmount         Role = "amount"
	RoleDebit          Role = "debit"
	RoleCredit         Role = "credit"
	RoleBalance        Role = "balance"
	RoleDescription    Role = "description"
	RoleReference      Role = "reference"
	RoleCategory       Role = "category"
)

// RoleSpec lists the header substrings that identify a role, in priority
// order. Synonyms are compared against folded header text.
type RoleSpec struct {
	Role     Role
	Synonyms []string
}

// Columns maps roles to zero-based column indexes.
type Columns map[Role]int

// ResolveColumns maps a header row to column roles. Specs are resolved in
// order; for each, synonyms are tried in order against every header cell and
// the first substring match wins. A column is claimed by at most one role.
func ResolveColumns(header []string, specs []RoleSpec) Columns {
	folded := make([]string, len(header))
	for i, h := range header {
		folded[i] = fold(h)
	}

	claimed := make(map[int]bool, len(header))
	cols := make(Columns, len(specs))
	for _, spec := range specs {
		if i, ok := matchRole(folded, claimed, spec.Synonyms); ok {
			cols[spec.Role] = i
			claimed[i] = true
		}
	}
	return cols
}

func matchRole(folded []string, claimed map[int]bool, synonyms []string) (int, bool) {
	for _, syn := range synonyms {
		for i, h := range folded {
			if h == "" || claimed[i] {
				continue
			}
			if strings.Contains(h, syn) {
				return i, true
			}
		}
	}
	return 0, false
}

// Has reports whether role was resolved.
func (c Columns) Has(role Role) bool {
	_, ok := c[role]
	return ok
}

// Cell returns the trimmed cell for role, or "" when the role is unmapped or
// the row is short.
func (c Columns) Cell(row []string, role Role) string {
	i, ok := c[role]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
