package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bankrec/internal/logger"
	"github.com/cleared-dev/bankrec/internal/model"
	"github.com/cleared-dev/bankrec/internal/ref"
	"github.com/cleared-dev/bankrec/internal/store"
)

var (
	// ErrInvalidAmount is returned for non-positive magnitudes.
	ErrInvalidAmount = errors.New("amount must be greater than zero")
	// ErrInvalidKind is returned for unknown transaction kinds.
	ErrInvalidKind = errors.New("unknown transaction kind")
)

// Service records and reverses internal ledger transactions.
type Service struct {
	db  *store.DB
	now func() time.Time
}

// NewService creates a ledger Service.
func NewService(db *store.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// RecordParams holds the fields of a manually recorded transaction.
type RecordParams struct {
	AccountID      int64
	Date           time.Time
	ValueDate      *time.Time
	Kind           model.TransactionKind
	Amount         decimal.Decimal
	Description    string
	Reference      string
	JournalEntryID *int64
}

// Record validates and stores a ledger transaction.
func (s *Service) Record(ctx context.Context, scope model.Scope, p RecordParams) (*model.LedgerTransaction, error) {
	if !p.Amount.IsPositive() {
		return nil, fmt.Errorf("%s: %w", p.Amount, ErrInvalidAmount)
	}
	if !p.Kind.Valid() {
		return nil, fmt.Errorf("%q: %w", p.Kind, ErrInvalidKind)
	}
	if _, err := s.db.GetAccount(ctx, scope.CompanyID, p.AccountID); err != nil {
		return nil, err
	}

	tx := &model.LedgerTransaction{
		AccountID:      p.AccountID,
		Date:           p.Date,
		ValueDate:      p.ValueDate,
		Kind:           p.Kind,
		Amount:         p.Amount,
		Description:    strings.TrimSpace(p.Description),
		Reference:      strings.TrimSpace(p.Reference),
		JournalEntryID: p.JournalEntryID,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.db.CreateLedgerTransaction(ctx, tx); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().
		Int64("transaction_id", tx.ID).
		Int64("account_id", tx.AccountID).
		Str("kind", string(tx.Kind)).
		Str("amount", tx.Amount.StringFixed(2)).
		Str("reference", tx.Reference).
		Msg("ledger_transaction_recorded")
	return tx, nil
}

// Get returns a transaction in scope.
func (s *Service) Get(ctx context.Context, scope model.Scope, id int64) (*model.LedgerTransaction, error) {
	return s.db.GetLedgerTransaction(ctx, scope.CompanyID, id)
}

// List returns the transactions in scope matching f.
func (s *Service) List(ctx context.Context, scope model.Scope, f store.LedgerFilter) ([]model.LedgerTransaction, error) {
	return s.db.ListLedger(ctx, scope.CompanyID, f)
}

// Delete removes a transaction. Statement lines matched to it keep existing
// without the link.
func (s *Service) Delete(ctx context.Context, scope model.Scope, id int64) error {
	if err := s.db.DeleteLedgerTransaction(ctx, scope.CompanyID, id); err != nil {
		return err
	}
	logger.FromContext(ctx).Info().Int64("transaction_id", id).Msg("ledger_transaction_deleted")
	return nil
}

// Reverse records a transaction of the opposite kind and the same amount,
// dated on, whose reference marks it as the reversal of id. The original is
// left untouched. Reversing twice returns the existing reversal.
func (s *Service) Reverse(ctx context.Context, scope model.Scope, id int64, on time.Time) (*model.LedgerTransaction, error) {
	orig, err := s.db.GetLedgerTransaction(ctx, scope.CompanyID, id)
	if err != nil {
		return nil, err
	}

	base := orig.Reference
	if base == "" {
		base = ref.Transaction(orig.ID)
	}
	reversal := ref.Reversal(base)

	if existing, err := s.findByReference(ctx, scope, reversal); err != nil || existing != nil {
		return existing, err
	}

	return s.Record(ctx, scope, RecordParams{
		AccountID:   orig.AccountID,
		Date:        on,
		Kind:        orig.Kind.Opposite(),
		Amount:      orig.Amount,
		Description: "Reverso: " + orig.Description,
		Reference:   reversal,
	})
}

// findByReference returns nil without error when no transaction carries r.
func (s *Service) findByReference(ctx context.Context, scope model.Scope, r string) (*model.LedgerTransaction, error) {
	tx, err := s.db.FindLedgerByReference(ctx, scope.CompanyID, r)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return tx, err
}

// bankAccount returns the active account linked to a chart-of-accounts
// code, or nil when there is none.
func (s *Service) bankAccount(ctx context.Context, scope model.Scope, chartAccount string) (*model.BankAccount, error) {
	if strings.TrimSpace(chartAccount) == "" {
		return nil, nil
	}
	acct, err := s.db.FindAccountByChart(ctx, scope.CompanyID, chartAccount)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return acct, err
}
