package banks

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/cleared-dev/bankrec/internal/model"
)

const (
	numFields    = 6
	colSBSCode   = 0
	colName      = 1
	colShortName = 2
	colSwift     = 3
	colWebsite   = 4
	colPhone     = 5
)

var header = []string{"sbs_code", "name", "short_name", "swift_code", "website", "phone"}

// ReadBanks reads a bank catalogue CSV. The first row is the header.
func ReadBanks(r io.Reader) ([]model.Bank, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading banks CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var banks []model.Bank
	for i, rec := range records[1:] {
		b, err := UnmarshalBank(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		banks = append(banks, b)
	}
	return banks, nil
}

// WriteBanks writes a bank catalogue CSV with header.
func WriteBanks(w io.Writer, banks []model.Bank) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, b := range banks {
		if err := cw.Write(MarshalBank(b)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalBank converts a Bank to a CSV row.
func MarshalBank(b model.Bank) []string {
	row := make([]string, numFields)
	row[colSBSCode] = b.SBSCode
	row[colName] = b.Name
	row[colShortName] = b.ShortName
	row[colSwift] = b.SwiftCode
	row[colWebsite] = b.Website
	row[colPhone] = b.Phone
	return row
}

// UnmarshalBank converts a CSV row to a Bank.
func UnmarshalBank(record []string) (model.Bank, error) {
	if len(record) != numFields {
		return model.Bank{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	if record[colSBSCode] == "" {
		return model.Bank{}, fmt.Errorf("missing sbs_code")
	}
	if record[colName] == "" {
		return model.Bank{}, fmt.Errorf("missing name for sbs_code %q", record[colSBSCode])
	}
	return model.Bank{
		SBSCode:   record[colSBSCode],
		Name:      record[colName],
		ShortName: record[colShortName],
		SwiftCode: record[colSwift],
		Website:   record[colWebsite],
		Phone:     record[colPhone],
	}, nil
}
