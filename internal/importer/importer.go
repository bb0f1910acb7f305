package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bankrec/internal/model"
)

// Format tags the bank-specific layout of a statement file.
type Format string

const (
	FormatPichincha Format = "pichincha"
	FormatPacifico  Format = "pacifico"
	FormatGeneric   Format = "generic"
	FormatUnknown   Format = "unknown"
)

// MaxRowErrors caps how many row failures a Result keeps.
const MaxRowErrors = 10

var (
	// ErrUnsupportedFormat is returned for files no parser understands.
	ErrUnsupportedFormat = errors.New("unsupported statement format: expected a Pichincha or Pacífico export")
	// ErrNoDataSection is returned when no header row can be located.
	ErrNoDataSection = errors.New("no header/movements section found")
)

// Parser converts decoded statement text into statement lines.
//
// A returned error means the whole file is unusable. Failures confined to a
// single row are reported in Result.RowErrors instead.
type Parser interface {
	Parse(r io.Reader) (*Result, error)
	Format() Format
}

// ParsedLine is a statement row before it is stored.
type ParsedLine struct {
	Row         int // 1-based record number in the file
	Date        time.Time
	Description string
	Reference   string
	Movement    model.Movement
	Balance     decimal.NullDecimal
}

// RowError records why a row was skipped.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// Result is the outcome of parsing one file.
type Result struct {
	Lines     []ParsedLine
	RowErrors []RowError
	Dropped   int // row errors beyond MaxRowErrors
	Skipped   int // blank or near-empty rows
}

func (r *Result) addRowError(row int, err error) {
	if len(r.RowErrors) >= MaxRowErrors {
		r.Dropped++
		return
	}
	r.RowErrors = append(r.RowErrors, RowError{Row: row, Err: err})
}

// Reasons returns up to n row errors as strings.
func (r *Result) Reasons(n int) []string {
	var out []string
	for i, e := range r.RowErrors {
		if i >= n {
			break
		}
		out = append(out, e.Error())
	}
	return out
}

// Registry holds parsers keyed by format.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(string(p.Format()))
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format Format) Parser {
	return r.parsers[strings.ToLower(string(format))]
}

// Resolve returns the parser for format, falling back to the generic parser
// for unknown or unregistered formats.
func (r *Registry) Resolve(format Format) Parser {
	if p := r.Get(format); p != nil {
		return p
	}
	if p := r.Get(FormatGeneric); p != nil {
		return p
	}
	return &GenericParser{}
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&PichinchaParser{})
	r.Register(&PacificoParser{})
	r.Register(&GenericParser{})
	return r
}

// GenericParser handles files no bank parser claims. It never yields lines.
type GenericParser struct{}

// Format returns the parser name.
func (p *GenericParser) Format() Format { return FormatGeneric }

// Parse always fails with ErrUnsupportedFormat.
func (p *GenericParser) Parse(io.Reader) (*Result, error) {
	return nil, ErrUnsupportedFormat
}
