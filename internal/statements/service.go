package statements

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bankrec/internal/actionlog"
	"github.com/cleared-dev/bankrec/internal/filestore"
	"github.com/cleared-dev/bankrec/internal/importer"
	"github.com/cleared-dev/bankrec/internal/logger"
	"github.com/cleared-dev/bankrec/internal/model"
	"github.com/cleared-dev/bankrec/internal/store"
)

// ErrInvalidStatus is returned when a statement is not in a state the
// requested action accepts.
var ErrInvalidStatus = errors.New("invalid statement status")

// Notes written on the statement after each action.
const (
	noteProcessed  = "Procesado exitosamente: %d movimientos"
	noteZeroYield  = "No se procesaron movimientos. Errores: %s"
	noteFileError  = "Error: %s"
	noteUnexpected = "Error inesperado: %s"
	noteMarked     = "Marcado manualmente como error"
	noteReset      = "Preparado para reprocesamiento"

	noRowsReason = "no se encontraron filas de movimientos"
)

// Options configures a Service. Zero values select defaults.
type Options struct {
	Parsers        *importer.Registry
	SurfacedErrors int    // row errors quoted in a zero-yield note; default 5
	ActionsFile    string // CSV action log; empty disables it
	Now            func() time.Time
}

// Service uploads statements, runs them through the parsers and applies the
// operator bulk actions.
type Service struct {
	db          *store.DB
	files       *filestore.Store
	parsers     *importer.Registry
	surfaced    int
	actionsFile string
	now         func() time.Time
}

// NewService creates a statement Service.
func NewService(db *store.DB, files *filestore.Store, opts Options) *Service {
	s := &Service{
		db:          db,
		files:       files,
		parsers:     opts.Parsers,
		surfaced:    opts.SurfacedErrors,
		actionsFile: opts.ActionsFile,
		now:         opts.Now,
	}
	if s.parsers == nil {
		s.parsers = importer.DefaultRegistry()
	}
	if s.surfaced <= 0 {
		s.surfaced = 5
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// UploadParams holds the data for a new statement.
type UploadParams struct {
	AccountID      int64
	FileName       string
	Content        io.Reader
	PeriodStart    time.Time
	PeriodEnd      time.Time
	OpeningBalance decimal.Decimal
	ClosingBalance decimal.Decimal
	Notes          string
}

// Upload stores the file and creates a statement in status uploaded.
func (s *Service) Upload(ctx context.Context, scope model.Scope, p UploadParams) (*model.Statement, error) {
	st := &model.Statement{
		AccountID:      p.AccountID,
		OriginalName:   p.FileName,
		PeriodStart:    p.PeriodStart,
		PeriodEnd:      p.PeriodEnd,
		OpeningBalance: p.OpeningBalance,
		ClosingBalance: p.ClosingBalance,
		Status:         model.StatementUploaded,
		Notes:          p.Notes,
		UploadedBy:     scope.Actor,
		UploadedAt:     s.now().UTC(),
	}
	if err := st.ValidatePeriod(); err != nil {
		return nil, err
	}
	if _, err := s.db.GetAccount(ctx, scope.CompanyID, p.AccountID); err != nil {
		return nil, err
	}

	name, err := s.files.Save(p.FileName, p.Content)
	if err != nil {
		return nil, fmt.Errorf("storing statement file: %w", err)
	}
	st.FileName = name

	if err := s.db.CreateStatement(ctx, st); err != nil {
		if derr := s.files.Delete(name); derr != nil {
			logger.FromContext(ctx).Warn().Err(derr).Str("file", name).Msg("statement_file_cleanup_failed")
		}
		return nil, err
	}

	logger.FromContext(ctx).Info().
		Int64("statement_id", st.ID).
		Int64("account_id", st.AccountID).
		Str("file", p.FileName).
		Msg("statement_uploaded")
	return st, nil
}

// Get returns a statement in scope.
func (s *Service) Get(ctx context.Context, scope model.Scope, id int64) (*model.Statement, error) {
	return s.db.GetStatement(ctx, scope.CompanyID, id)
}

// List returns the statements in scope; accountID 0 lists every account.
func (s *Service) List(ctx context.Context, scope model.Scope, accountID int64) ([]model.Statement, error) {
	return s.db.ListStatements(ctx, scope.CompanyID, accountID)
}

// Lines returns the stored lines of a statement in scope.
func (s *Service) Lines(ctx context.Context, scope model.Scope, id int64) ([]model.StatementLine, error) {
	if _, err := s.db.GetStatement(ctx, scope.CompanyID, id); err != nil {
		return nil, err
	}
	return s.db.ListLines(ctx, scope.CompanyID, store.LineFilter{StatementID: id})
}

// Detect classifies the stored file of a statement.
func (s *Service) Detect(ctx context.Context, scope model.Scope, id int64) (importer.Format, error) {
	st, err := s.db.GetStatement(ctx, scope.CompanyID, id)
	if err != nil {
		return importer.FormatUnknown, err
	}
	return importer.DetectFile(s.files.FullPath(st.FileName)), nil
}

// ProcessSelected processes each statement in turn and records the action.
func (s *Service) ProcessSelected(ctx context.Context, scope model.Scope, ids []int64) Summary {
	var sum Summary
	for _, id := range ids {
		sum.add(s.Process(ctx, scope, id))
	}
	s.record(ctx, scope, "process_statements", sum)
	return sum
}

// MarkError flags each statement as error.
func (s *Service) MarkError(ctx context.Context, scope model.Scope, ids []int64) Summary {
	var sum Summary
	for _, id := range ids {
		sum.add(s.markError(ctx, scope, id))
	}
	s.record(ctx, scope, "mark_error", sum)
	return sum
}

func (s *Service) markError(ctx context.Context, scope model.Scope, id int64) Outcome {
	st, err := s.db.GetStatement(ctx, scope.CompanyID, id)
	if err != nil {
		return failure(id, err.Error(), err)
	}
	if err := s.db.UpdateStatementStatus(ctx, id, model.StatementError, noteMarked, st.ProcessedAt); err != nil {
		return failure(id, err.Error(), err)
	}
	return success(id, noteMarked)
}

// Reset returns processed or failed statements to uploaded, deleting their
// lines so they can be processed again.
func (s *Service) Reset(ctx context.Context, scope model.Scope, ids []int64) Summary {
	var sum Summary
	for _, id := range ids {
		sum.add(s.reset(ctx, scope, id))
	}
	s.record(ctx, scope, "reset_statements", sum)
	return sum
}

func (s *Service) reset(ctx context.Context, scope model.Scope, id int64) Outcome {
	log := logger.FromContext(ctx)

	st, err := s.db.GetStatement(ctx, scope.CompanyID, id)
	if err != nil {
		return failure(id, err.Error(), err)
	}
	if st.Status != model.StatementProcessed && st.Status != model.StatementError {
		return warning(id, fmt.Errorf("statement %d is %s, only processed or error statements can be reset: %w",
			id, st.Status, ErrInvalidStatus))
	}

	var deleted int64
	err = s.db.InTx(ctx, func(q *store.Queries) error {
		n, err := q.DeleteLines(ctx, id)
		if err != nil {
			return err
		}
		deleted = n
		return q.UpdateStatementStatus(ctx, id, model.StatementUploaded, noteReset, nil)
	})
	if err != nil {
		return failure(id, err.Error(), err)
	}

	log.Info().Int64("statement_id", id).Int64("lines_deleted", deleted).Msg("statement_reset")
	return success(id, noteReset)
}

func (s *Service) record(ctx context.Context, scope model.Scope, action string, sum Summary) {
	if s.actionsFile == "" || len(sum.Outcomes) == 0 {
		return
	}
	details := make([]string, 0, len(sum.Outcomes))
	for _, o := range sum.Outcomes {
		details = append(details, fmt.Sprintf("%d: %s", o.StatementID, o.Message))
	}
	entry := actionlog.Entry{
		Timestamp:    s.now(),
		Actor:        scope.Actor,
		Action:       action,
		Details:      strings.Join(details, " | "),
		StatementIDs: sum.IDs(),
		Result:       sum.String(),
	}
	if err := actionlog.Append(s.actionsFile, []actionlog.Entry{entry}); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("action", action).Msg("action_log_write_failed")
	}
}
