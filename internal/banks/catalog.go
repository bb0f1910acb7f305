package banks

import (
	"strings"

	"github.com/cleared-dev/bankrec/internal/model"
)

// Catalog provides in-memory lookup over a list of banks.
type Catalog struct {
	banks  []model.Bank
	byCode map[string]model.Bank
	byName map[string]model.Bank
}

// NewCatalog indexes banks by SBS code and short name.
func NewCatalog(banks []model.Bank) *Catalog {
	c := &Catalog{
		banks:  banks,
		byCode: make(map[string]model.Bank, len(banks)),
		byName: make(map[string]model.Bank, len(banks)),
	}
	for _, b := range banks {
		c.byCode[b.SBSCode] = b
		if b.ShortName != "" {
			c.byName[strings.ToUpper(b.ShortName)] = b
		}
	}
	return c
}

// All returns every bank in catalogue order.
func (c *Catalog) All() []model.Bank {
	return c.banks
}

// Lookup finds a bank by SBS code or (case-insensitive) short name.
func (c *Catalog) Lookup(key string) (model.Bank, bool) {
	key = strings.TrimSpace(key)
	if b, ok := c.byCode[key]; ok {
		return b, true
	}
	b, ok := c.byName[strings.ToUpper(key)]
	return b, ok
}

// Validate returns descriptions of duplicate codes or short names.
func Validate(banks []model.Bank) []string {
	var errs []string
	codes := make(map[string]bool)
	names := make(map[string]bool)
	for _, b := range banks {
		if codes[b.SBSCode] {
			errs = append(errs, "duplicate sbs_code "+b.SBSCode)
		}
		codes[b.SBSCode] = true
		short := strings.ToUpper(b.ShortName)
		if short == "" {
			continue
		}
		if names[short] {
			errs = append(errs, "duplicate short_name "+b.ShortName)
		}
		names[short] = true
	}
	return errs
}
