package statements

import (
	"fmt"

	"github.com/cleared-dev/bankrec/internal/importer"
)

// Level grades the outcome of one statement in a bulk action.
type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Outcome is what happened to one statement.
type Outcome struct {
	StatementID int64
	Level       Level
	Message     string
	Format      importer.Format
	Lines       int
	Reasons     []string // collected row errors, when processing yielded none
	Err         error
}

// Summary tallies a bulk action. It is never fail-fast: every requested
// statement has an outcome.
type Summary struct {
	Success  int
	Warnings int
	Errors   int
	Outcomes []Outcome
}

func (s *Summary) add(o Outcome) {
	switch o.Level {
	case LevelSuccess:
		s.Success++
	case LevelWarning:
		s.Warnings++
	default:
		s.Errors++
	}
	s.Outcomes = append(s.Outcomes, o)
}

// IDs returns the statement IDs in outcome order.
func (s Summary) IDs() []int64 {
	ids := make([]int64, len(s.Outcomes))
	for i, o := range s.Outcomes {
		ids[i] = o.StatementID
	}
	return ids
}

// String renders the counts, e.g. "success=2 warnings=0 errors=1".
func (s Summary) String() string {
	return fmt.Sprintf("success=%d warnings=%d errors=%d", s.Success, s.Warnings, s.Errors)
}

func success(id int64, msg string) Outcome {
	return Outcome{StatementID: id, Level: LevelSuccess, Message: msg}
}

func warning(id int64, err error) Outcome {
	return Outcome{StatementID: id, Level: LevelWarning, Message: err.Error(), Err: err}
}

func failure(id int64, msg string, err error) Outcome {
	return Outcome{StatementID: id, Level: LevelError, Message: msg, Err: err}
}
