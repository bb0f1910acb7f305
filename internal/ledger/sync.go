package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bankrec/internal/logger"
	"github.com/cleared-dev/bankrec/internal/model"
	"github.com/cleared-dev/bankrec/internal/ref"
)

// Sale is an invoice as seen by the bank ledger.
type Sale struct {
	InvoiceID         int64
	Number            string // printed invoice number, e.g. "001-001-000000123"
	Customer          string
	Date              time.Time
	PaymentForm       string
	ChartAccount      string // bank chart-of-accounts code the payment lands in
	Total             decimal.Decimal
	VATWithheld       decimal.Decimal
	IncomeTaxWithheld decimal.Decimal
}

// Net is the amount that reaches the bank: total less retentions.
func (s Sale) Net() decimal.Decimal {
	return s.Total.Sub(s.VATWithheld).Sub(s.IncomeTaxWithheld)
}

// PaidByTransfer reports whether the payment form is a bank transfer.
func (s Sale) PaidByTransfer() bool {
	return strings.Contains(strings.ToUpper(s.PaymentForm), "TRANSFER")
}

// RecordSale records the bank credit of a sale settled by transfer. It
// returns nil, nil when the sale does not touch a bank account: another
// payment form, or no active account linked to the chart account. Recording
// the same invoice twice returns the first transaction.
func (s *Service) RecordSale(ctx context.Context, scope model.Scope, sale Sale) (*model.LedgerTransaction, error) {
	log := logger.FromContext(ctx).With().Int64("invoice_id", sale.InvoiceID).Logger()

	if !sale.PaidByTransfer() {
		log.Debug().Str("payment_form", sale.PaymentForm).Msg("sale_not_bank_transfer")
		return nil, nil
	}

	acct, err := s.bankAccount(ctx, scope, sale.ChartAccount)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		log.Warn().Str("chart_account", sale.ChartAccount).Msg("sale_bank_account_not_found")
		return nil, nil
	}

	reference := ref.Invoice(sale.InvoiceID)
	if existing, err := s.findByReference(ctx, scope, reference); err != nil || existing != nil {
		return existing, err
	}

	net := sale.Net()
	if !net.IsPositive() {
		return nil, fmt.Errorf("invoice %d net of retentions %s: %w", sale.InvoiceID, net, ErrInvalidAmount)
	}

	desc := "Cobro factura " + sale.Number
	if sale.Customer != "" {
		desc += " - " + sale.Customer
	}
	return s.Record(ctx, scope, RecordParams{
		AccountID:   acct.ID,
		Date:        sale.Date,
		Kind:        model.KindCredit,
		Amount:      net,
		Description: desc,
		Reference:   reference,
	})
}

// JournalLine is one line of an accounting journal entry.
type JournalLine struct {
	EntryID      int64
	EntryNumber  string
	LineID       int64
	Date         time.Time
	ChartAccount string
	Description  string
	Debit        decimal.Decimal
	Credit       decimal.Decimal
}

// RecordJournalLine mirrors a journal line posted to a bank chart account.
// A journal debit is money in (bank credit) and a journal credit is money out
// (bank debit). Lines on accounts not linked to a bank account return
// nil, nil. Recording the same line twice returns the first transaction.
func (s *Service) RecordJournalLine(ctx context.Context, scope model.Scope, line JournalLine) (*model.LedgerTransaction, error) {
	var kind model.TransactionKind
	var amount decimal.Decimal
	switch {
	case line.Debit.IsPositive() && !line.Credit.IsPositive():
		kind, amount = model.KindCredit, line.Debit
	case line.Credit.IsPositive() && !line.Debit.IsPositive():
		kind, amount = model.KindDebit, line.Credit
	default:
		return nil, fmt.Errorf("journal line %s/%d needs exactly one positive side: %w",
			line.EntryNumber, line.LineID, ErrInvalidAmount)
	}

	acct, err := s.bankAccount(ctx, scope, line.ChartAccount)
	if err != nil || acct == nil {
		return nil, err
	}

	reference := ref.JournalLine(line.EntryNumber, line.LineID)
	if existing, err := s.findByReference(ctx, scope, reference); err != nil || existing != nil {
		return existing, err
	}

	entryID := line.EntryID
	return s.Record(ctx, scope, RecordParams{
		AccountID:      acct.ID,
		Date:           line.Date,
		Kind:           kind,
		Amount:         amount,
		Description:    line.Description,
		Reference:      reference,
		JournalEntryID: &entryID,
	})
}
