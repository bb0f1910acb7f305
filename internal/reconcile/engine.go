package reconcile

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/cleared-dev/bankrec/internal/logger"
	"github.com/cleared-dev/bankrec/internal/model"
	"github.com/cleared-dev/bankrec/internal/store"
)

// ErrAccountMismatch is returned when a match would link items of
// different bank accounts.
var ErrAccountMismatch = errors.New("statement line and ledger transaction belong to different accounts")

// Engine flags ledger transactions and statement lines as reconciled.
// Matching is manual: nothing here pairs lines with transactions on its own.
type Engine struct {
	db  *store.DB
	now func() time.Time
}

// NewEngine creates a reconciliation Engine.
func NewEngine(db *store.DB) *Engine {
	return &Engine{db: db, now: time.Now}
}

// Request names the items of one account to flag or clear.
type Request struct {
	AccountID   int64
	StatementID int64 // when set, lines must belong to this statement
	LedgerIDs   []int64
	LineIDs     []int64
}

// Result reports what a Reconcile or Unreconcile call changed.
type Result struct {
	Ledger     int64   // ledger transactions updated
	Lines      int64   // statement lines updated
	Excluded   IDs     // requested ids outside the scope
	Statements []int64 // statements whose status changed
}

// IDs groups ledger and line ids.
type IDs struct {
	Ledger []int64
	Lines  []int64
}

// Empty reports whether no id is listed.
func (i IDs) Empty() bool { return len(i.Ledger) == 0 && len(i.Lines) == 0 }

// Changed reports whether anything was updated.
func (r Result) Changed() bool { return r.Ledger > 0 || r.Lines > 0 }

// Reconcile flags the requested items in one transaction. Ids not found, or
// not owned by the scope's company and the request's account, are left out
// and listed in Result.Excluded; the rest are still flagged. Ledger rows are
// stamped with the actor and time. A processed statement whose lines are now
// all reconciled moves to reconciled.
func (e *Engine) Reconcile(ctx context.Context, scope model.Scope, req Request) (Result, error) {
	return e.apply(ctx, scope, req, true)
}

// Unreconcile clears the flags set by Reconcile, together with the match
// link of lines and the who/when of ledger rows. Reconciled statements
// touched by it return to processed.
func (e *Engine) Unreconcile(ctx context.Context, scope model.Scope, req Request) (Result, error) {
	return e.apply(ctx, scope, req, false)
}

func (e *Engine) apply(ctx context.Context, scope model.Scope, req Request, reconciled bool) (Result, error) {
	ledgerIDs := dedupe(req.LedgerIDs)
	lineIDs := dedupe(req.LineIDs)
	now := e.now().UTC()

	var res Result
	err := e.db.InTx(ctx, func(q *store.Queries) error {
		validLedger, err := q.ScopedLedgerIDs(ctx, scope.CompanyID, req.AccountID, ledgerIDs)
		if err != nil {
			return err
		}
		validLines, err := q.ScopedLineIDs(ctx, scope.CompanyID, req.AccountID, req.StatementID, lineIDs)
		if err != nil {
			return err
		}
		res.Excluded = IDs{Ledger: missing(ledgerIDs, validLedger), Lines: missing(lineIDs, validLines)}

		if res.Ledger, err = q.SetLedgerReconciled(ctx, validLedger, reconciled, scope.Actor, now); err != nil {
			return err
		}
		if res.Lines, err = q.SetLinesReconciled(ctx, validLines, reconciled); err != nil {
			return err
		}

		stmts, err := q.StatementsOfLines(ctx, validLines)
		if err != nil {
			return err
		}
		for _, id := range stmts {
			changed, err := syncStatus(ctx, q, id, reconciled)
			if err != nil {
				return err
			}
			if changed {
				res.Statements = append(res.Statements, id)
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("applying reconciliation: %w", err)
	}

	event := "reconcile_applied"
	if !reconciled {
		event = "reconcile_reverted"
	}
	logger.FromContext(ctx).Info().
		Int64("account_id", req.AccountID).
		Str("actor", scope.Actor).
		Int64("ledger", res.Ledger).
		Int64("lines", res.Lines).
		Int("excluded", len(res.Excluded.Ledger)+len(res.Excluded.Lines)).
		Ints64("statements", res.Statements).
		Msg(event)
	return res, nil
}

// syncStatus moves a statement between processed and reconciled to follow
// its lines.
func syncStatus(ctx context.Context, q *store.Queries, statementID int64, reconciled bool) (bool, error) {
	total, open, err := q.CountLines(ctx, statementID)
	if err != nil {
		return false, err
	}
	var from, to model.StatementStatus
	switch {
	case reconciled && total > 0 && open == 0:
		from, to = model.StatementProcessed, model.StatementReconciled
	case !reconciled && open > 0:
		from, to = model.StatementReconciled, model.StatementProcessed
	default:
		return false, nil
	}
	return q.TransitionStatement(ctx, statementID, from, to)
}

// Match links a statement line to a ledger transaction of the same account.
func (e *Engine) Match(ctx context.Context, scope model.Scope, lineID, ledgerID int64) error {
	if _, err := e.db.GetLine(ctx, scope.CompanyID, lineID); err != nil {
		return err
	}
	tx, err := e.db.GetLedgerTransaction(ctx, scope.CompanyID, ledgerID)
	if err != nil {
		return err
	}
	accountID, err := e.db.LineAccount(ctx, lineID)
	if err != nil {
		return err
	}
	if accountID != tx.AccountID {
		return fmt.Errorf("line %d, transaction %d: %w", lineID, ledgerID, ErrAccountMismatch)
	}
	if err := e.db.SetLineMatch(ctx, lineID, &ledgerID); err != nil {
		return err
	}
	logger.FromContext(ctx).Info().Int64("line_id", lineID).Int64("transaction_id", ledgerID).Msg("line_matched")
	return nil
}

// Unmatch clears the match link of a statement line.
func (e *Engine) Unmatch(ctx context.Context, scope model.Scope, lineID int64) error {
	if _, err := e.db.GetLine(ctx, scope.CompanyID, lineID); err != nil {
		return err
	}
	if err := e.db.SetLineMatch(ctx, lineID, nil); err != nil {
		return err
	}
	logger.FromContext(ctx).Info().Int64("line_id", lineID).Msg("line_unmatched")
	return nil
}

func dedupe(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

// missing returns the ids of want not in have. Both are sorted.
func missing(want, have []int64) []int64 {
	var out []int64
	for _, id := range want {
		if _, found := slices.BinarySearch(have, id); !found {
			out = append(out, id)
		}
	}
	return out
}
