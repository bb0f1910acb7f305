package statements

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cleared-dev/bankrec/internal/importer"
	"github.com/cleared-dev/bankrec/internal/logger"
	"github.com/cleared-dev/bankrec/internal/model"
	"github.com/cleared-dev/bankrec/internal/store"
)

// Process parses the file of an uploaded statement and stores its lines.
//
// Failures never escape: they are recorded on the statement (status error
// plus a note) and returned in the Outcome. A panicking parser is handled
// the same way.
func (s *Service) Process(ctx context.Context, scope model.Scope, id int64) (out Outcome) {
	log := logger.FromContext(ctx).With().Int64("statement_id", id).Logger()
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("statement_process_panicked")
			out = s.fail(ctx, id, fmt.Sprintf(noteUnexpected, r), fmt.Errorf("processing statement %d panicked: %v", id, r))
		}
	}()

	st, err := s.db.GetStatement(ctx, scope.CompanyID, id)
	if err != nil {
		return failure(id, err.Error(), err)
	}
	if st.Status != model.StatementUploaded {
		return warning(id, fmt.Errorf("statement %d is %s, only uploaded statements can be processed: %w",
			id, st.Status, ErrInvalidStatus))
	}
	if err := s.db.SetStatementStatus(ctx, id, model.StatementProcessing); err != nil {
		return failure(id, err.Error(), err)
	}

	data, err := s.files.Read(st.FileName)
	if err != nil {
		return s.fail(ctx, id, fmt.Sprintf(noteUnexpected, err), err)
	}

	// Text that cannot be decoded goes to the parser for unknown formats,
	// which reports it as unsupported.
	format := importer.FormatUnknown
	text, decodeErr := importer.Decode(data)
	if decodeErr == nil {
		format = importer.Detect(text)
	}
	parser := s.parsers.Resolve(format)
	log.Debug().Str("format", string(format)).Str("parser", string(parser.Format())).Msg("statement_format_detected")

	res, err := parser.Parse(strings.NewReader(text))
	if err != nil && decodeErr != nil {
		err = fmt.Errorf("%w: %w", decodeErr, err)
	}
	if err != nil {
		o := s.fail(ctx, id, fmt.Sprintf(noteFileError, err), err)
		o.Format = format
		return o
	}

	if len(res.Lines) == 0 {
		reasons := res.Reasons(s.surfaced)
		if len(reasons) == 0 {
			reasons = []string{noRowsReason}
		}
		err := fmt.Errorf("no lines parsed from statement %d", id)
		o := s.fail(ctx, id, fmt.Sprintf(noteZeroYield, strings.Join(reasons, "; ")), err)
		o.Format = format
		o.Reasons = reasons
		return o
	}

	lines := make([]model.StatementLine, len(res.Lines))
	for i, pl := range res.Lines {
		lines[i] = model.StatementLine{
			Date:        pl.Date,
			Description: pl.Description,
			Reference:   pl.Reference,
			Movement:    pl.Movement,
			Balance:     pl.Balance,
		}
	}

	note := fmt.Sprintf(noteProcessed, len(lines))
	now := s.now().UTC()
	err = s.db.InTx(ctx, func(q *store.Queries) error {
		if _, err := q.DeleteLines(ctx, id); err != nil {
			return err
		}
		if err := q.InsertLines(ctx, id, lines); err != nil {
			return err
		}
		return q.UpdateStatementStatus(ctx, id, model.StatementProcessed, note, &now)
	})
	if err != nil {
		return s.fail(ctx, id, fmt.Sprintf(noteUnexpected, err), err)
	}

	log.Info().
		Str("format", string(format)).
		Int("lines", len(lines)).
		Int("row_errors", len(res.RowErrors)+res.Dropped).
		Int("skipped", res.Skipped).
		Msg("statement_processed")

	return Outcome{StatementID: id, Level: LevelSuccess, Message: note, Format: format, Lines: len(lines)}
}

// fail clears any partial lines and leaves the statement in status error.
func (s *Service) fail(ctx context.Context, id int64, note string, cause error) Outcome {
	log := logger.FromContext(ctx)
	err := s.db.InTx(ctx, func(q *store.Queries) error {
		if _, err := q.DeleteLines(ctx, id); err != nil {
			return err
		}
		return q.UpdateStatementStatus(ctx, id, model.StatementError, note, nil)
	})
	if err != nil {
		log.Error().Err(err).Int64("statement_id", id).Msg("statement_status_update_failed")
		cause = errors.Join(cause, err)
	}
	log.Warn().Err(cause).Int64("statement_id", id).Str("note", note).Msg("statement_process_failed")
	return failure(id, note, cause)
}
