package actionlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Entry is one operator bulk action in the action log.
type Entry struct {
	Timestamp    time.Time
	Actor        string
	Action       string
	Details      string
	StatementIDs []int64
	Result       string
}

// Header is the CSV header for the action log.
const Header = "timestamp,actor,action,details,statement_ids,result"

const (
	numFields       = 6
	colTimestamp    = 0
	colActor        = 1
	colAction       = 2
	colDetails      = 3
	colStatementIDs = 4
	colResult       = 5
)

// MarshalEntry converts an Entry to a CSV row. Statement IDs are joined with
// ";".
func MarshalEntry(e Entry) []string {
	ids := make([]string, len(e.StatementIDs))
	for i, id := range e.StatementIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}

	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colActor] = e.Actor
	row[colAction] = e.Action
	row[colDetails] = e.Details
	row[colStatementIDs] = strings.Join(ids, ";")
	row[colResult] = e.Result
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	var ids []int64
	if s := strings.TrimSpace(record[colStatementIDs]); s != "" {
		for _, part := range strings.Split(s, ";") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return Entry{}, fmt.Errorf("parsing statement id %q: %w", part, err)
			}
			ids = append(ids, id)
		}
	}

	return Entry{
		Timestamp:    ts,
		Actor:        record[colActor],
		Action:       record[colAction],
		Details:      record[colDetails],
		StatementIDs: ids,
		Result:       record[colResult],
	}, nil
}

// Append writes entries to the CSV file at path, creating the directory,
// the file and the header if needed.
func Append(path string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening action log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	return cw.Error()
}

// Read returns all entries from the action log at path.
// Returns an empty slice if the file does not exist.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening action log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading action log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
