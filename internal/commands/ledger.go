package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankrec/internal/ledger"
	"github.com/cleared-dev/bankrec/internal/model"
	"github.com/cleared-dev/bankrec/internal/store"
)

func newLedgerCommand(opts *rootOptions) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Internal ledger operations",
	}
	ledgerCmd.AddCommand(
		newLedgerAddCommand(opts),
		newLedgerListCommand(opts),
		newLedgerReverseCommand(opts),
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a ledger transaction",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runLedgerDelete(cmd, opts, args[0])
			},
		},
		newLedgerSaleCommand(opts),
		newLedgerJournalCommand(opts),
	)
	return ledgerCmd
}

func newLedgerAddCommand(opts *rootOptions) *cobra.Command {
	var account int64
	var date, valueDate, kind, amount, description, reference string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a ledger transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDate(date)
			if err != nil {
				return err
			}
			vd, err := parseOptDate(valueDate)
			if err != nil {
				return err
			}
			amt, err := parseMoney(amount)
			if err != nil {
				return err
			}
			return runLedgerAdd(cmd, opts, ledger.RecordParams{
				AccountID:   account,
				Date:        d,
				ValueDate:   vd,
				Kind:        model.TransactionKind(strings.ToLower(kind)),
				Amount:      amt,
				Description: description,
				Reference:   reference,
			})
		},
	}

	cmd.Flags().Int64Var(&account, "account", 0, "bank account id (required)")
	cmd.Flags().StringVar(&date, "date", "", "transaction date YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&kind, "kind", "", "debit, credit, transfer_in, transfer_out, fee, interest or other (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "positive amount (required)")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&valueDate, "value-date", "", "value date YYYY-MM-DD")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().StringVar(&reference, "reference", "", "reference code")

	return cmd
}

func runLedgerAdd(cmd *cobra.Command, opts *rootOptions, p ledger.RecordParams) error {
	a, ctx, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	tx, err := a.ledger.Record(ctx, a.scope, p)
	if err != nil {
		return err
	}
	green.Fprintf(cmd.OutOrStdout(), "Recorded transaction %d: %s %s\n", tx.ID, tx.Kind, money(tx.Amount))
	return nil
}

func newLedgerListCommand(opts *rootOptions) *cobra.Command {
	var account int64
	var from, to string
	var open bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ledger transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := store.LedgerFilter{AccountID: account, UnreconciledOnly: open}
			var err error
			if f.From, err = parseOptDate(from); err != nil {
				return err
			}
			if f.To, err = parseOptDate(to); err != nil {
				return err
			}
			return runLedgerList(cmd, opts, f)
		},
	}

	cmd.Flags().Int64Var(&account, "account", 0, "only transactions of this account")
	cmd.Flags().StringVar(&from, "from", "", "from date YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "to date YYYY-MM-DD")
	cmd.Flags().BoolVar(&open, "unreconciled", false, "only unreconciled transactions")

	return cmd
}

func runLedgerList(cmd *cobra.Command, opts *rootOptions, f store.LedgerFilter) error {
	a, ctx, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	txs, err := a.ledger.List(ctx, a.scope, f)
	if err != nil {
		return err
	}
	return printTransactions(cmd.OutOrStdout(), txs)
}

func printTransactions(w io.Writer, txs []model.LedgerTransaction) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tACCOUNT\tDATE\tKIND\tAMOUNT\tREF\tDESCRIPTION\tREC")
	for _, tx := range txs {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			tx.ID, tx.AccountID, tx.Date.Format(dateLayout), tx.Kind, money(tx.Signed()),
			tx.Reference, tx.Description, mark(tx.Reconciled))
	}
	return tw.Flush()
}

func newLedgerReverseCommand(opts *rootOptions) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "reverse <id>",
		Short: "Record the reversal of a ledger transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLedgerReverse(cmd, opts, args[0], date)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "reversal date YYYY-MM-DD (default today)")
	return cmd
}

func runLedgerReverse(cmd *cobra.Command, opts *rootOptions, arg, date string) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	on := today()
	if date != "" {
		if on, err = parseDate(date); err != nil {
			return err
		}
	}

	a, ctx, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	rev, err := a.ledger.Reverse(ctx, a.scope, id, on)
	if err != nil {
		return err
	}
	green.Fprintf(cmd.OutOrStdout(), "Reversal %d (%s) recorded for transaction %d\n", rev.ID, rev.Reference, id)
	return nil
}

func runLedgerDelete(cmd *cobra.Command, opts *rootOptions, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	a, ctx, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.ledger.Delete(ctx, a.scope, id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted transaction %d\n", id)
	return nil
}

func newLedgerSaleCommand(opts *rootOptions) *cobra.Command {
	var sale ledger.Sale
	var date, total, vat, income string

	cmd := &cobra.Command{
		Use:   "sale",
		Short: "Record the bank credit of an invoice paid by transfer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if sale.Date, err = parseDate(date); err != nil {
				return err
			}
			if sale.Total, err = parseMoney(total); err != nil {
				return err
			}
			if sale.VATWithheld, err = parseMoney(vat); err != nil {
				return err
			}
			if sale.IncomeTaxWithheld, err = parseMoney(income); err != nil {
				return err
			}
			return runLedgerSale(cmd, opts, sale)
		},
	}

	cmd.Flags().Int64Var(&sale.InvoiceID, "invoice", 0, "invoice id (required)")
	cmd.Flags().StringVar(&date, "date", "", "payment date YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&total, "total", "", "invoice total (required)")
	cmd.Flags().StringVar(&sale.ChartAccount, "chart-account", "", "bank chart-of-accounts code (required)")
	_ = cmd.MarkFlagRequired("invoice")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("total")
	_ = cmd.MarkFlagRequired("chart-account")
	cmd.Flags().StringVar(&sale.Number, "number", "", "printed invoice number")
	cmd.Flags().StringVar(&sale.Customer, "customer", "", "customer name")
	cmd.Flags().StringVar(&sale.PaymentForm, "payment-form", "TRANSFERENCIA", "payment form")
	cmd.Flags().StringVar(&vat, "vat-withheld", "0", "VAT retention")
	cmd.Flags().StringVar(&income, "income-tax-withheld", "0", "income tax retention")

	return cmd
}

func runLedgerSale(cmd *cobra.Command, opts *rootOptions, sale ledger.Sale) error {
	a, ctx, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	tx, err := a.ledger.RecordSale(ctx, a.scope, sale)
	if err != nil {
		return err
	}
	if tx == nil {
		yellow.Fprintf(cmd.OutOrStdout(), "Invoice %d does not settle into a bank account; nothing recorded\n", sale.InvoiceID)
		return nil
	}
	green.Fprintf(cmd.OutOrStdout(), "Transaction %d (%s): %s\n", tx.ID, tx.Reference, money(tx.Amount))
	return nil
}

func newLedgerJournalCommand(opts *rootOptions) *cobra.Command {
	var line ledger.JournalLine
	var date, debit, credit string

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Mirror a journal line posted to a bank chart account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if line.Date, err = parseDate(date); err != nil {
				return err
			}
			if line.Debit, err = parseMoney(debit); err != nil {
				return err
			}
			if line.Credit, err = parseMoney(credit); err != nil {
				return err
			}
			return runLedgerJournal(cmd, opts, line)
		},
	}

	cmd.Flags().StringVar(&line.EntryNumber, "entry", "", "journal entry number (required)")
	cmd.Flags().Int64Var(&line.LineID, "line", 0, "journal line id (required)")
	cmd.Flags().StringVar(&date, "date", "", "entry date YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&line.ChartAccount, "chart-account", "", "chart-of-accounts code of the line (required)")
	_ = cmd.MarkFlagRequired("entry")
	_ = cmd.MarkFlagRequired("line")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("chart-account")
	cmd.Flags().Int64Var(&line.EntryID, "entry-id", 0, "journal entry id")
	cmd.Flags().StringVar(&debit, "debit", "", "debit amount")
	cmd.Flags().StringVar(&credit, "credit", "", "credit amount")
	cmd.Flags().StringVar(&line.Description, "description", "", "description")

	return cmd
}

func runLedgerJournal(cmd *cobra.Command, opts *rootOptions, line ledger.JournalLine) error {
	a, ctx, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	tx, err := a.ledger.RecordJournalLine(ctx, a.scope, line)
	if err != nil {
		return err
	}
	if tx == nil {
		yellow.Fprintf(cmd.OutOrStdout(), "Chart account %s is not linked to a bank account; nothing recorded\n", line.ChartAccount)
		return nil
	}
	green.Fprintf(cmd.OutOrStdout(), "Transaction %d (%s): %s %s\n", tx.ID, tx.Reference, tx.Kind, money(tx.Amount))
	return nil
}
