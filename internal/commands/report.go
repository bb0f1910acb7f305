package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankrec/internal/model"
	"github.com/cleared-dev/bankrec/internal/report"
)

func newReportCommand(opts *rootOptions) *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Reconciliation reports",
	}
	reportCmd.AddCommand(
		newReportSummaryCommand(opts),
		newReportMonthlyCommand(opts),
		newReportDifferencesCommand(opts),
	)
	return reportCmd
}

func newReportSummaryCommand(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Reconciliation progress per active account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "table" && format != "json" {
				return fmt.Errorf("unknown format %q (table or json)", format)
			}
			return runReportSummary(cmd, opts, format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "output format: table or json")
	return cmd
}

// summaryCounts is the JSON shape of report.Counts.
type summaryCounts struct {
	Total              int             `json:"total"`
	Reconciled         int             `json:"reconciled"`
	Unreconciled       int             `json:"unreconciled"`
	Percentage         decimal.Decimal `json:"percentage"`
	ReconciledAmount   decimal.Decimal `json:"reconciled_amount"`
	UnreconciledAmount decimal.Decimal `json:"unreconciled_amount"`
}

// summaryJSON is one account in the JSON reconciliation status export.
type summaryJSON struct {
	AccountID  int64         `json:"account_id"`
	Account    string        `json:"account"`
	Bank       string        `json:"bank"`
	Ledger     summaryCounts `json:"ledger"`
	Lines      summaryCounts `json:"lines"`
	Statements int           `json:"statements"`
	LatestEnd  string        `json:"latest_period_end,omitempty"`
}

func toSummaryCounts(c report.Counts) summaryCounts {
	return summaryCounts{
		Total:              c.Total,
		Reconciled:         c.Reconciled,
		Unreconciled:       c.Unreconciled,
		Percentage:         c.Percent(),
		ReconciledAmount:   c.ReconciledAmount,
		UnreconciledAmount: c.UnreconciledAmount,
	}
}

func writeSummaryJSON(w io.Writer, sums []report.AccountSummary) error {
	out := make([]summaryJSON, 0, len(sums))
	for _, s := range sums {
		row := summaryJSON{
			AccountID:  s.Account.ID,
			Account:    s.Account.MaskedNumber(),
			Bank:       s.Account.BankName,
			Ledger:     toSummaryCounts(s.Ledger),
			Lines:      toSummaryCounts(s.Lines),
			Statements: s.Statements.Total,
		}
		if s.Latest != nil {
			row.LatestEnd = s.Latest.PeriodEnd.Format(dateLayout)
		}
		out = append(out, row)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func runReportSummary(cmd *cobra.Command, opts *rootOptions, format string) error {
	a, ctx, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	sums, err := a.reports.AccountSummaries(ctx, a.scope)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if format == "json" {
		return writeSummaryJSON(w, sums)
	}
	if len(sums) == 0 {
		fmt.Fprintln(w, "No active accounts.")
		return nil
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tACCOUNT\tLEDGER\tLEDGER %\tLINES\tLINES %\tSTATEMENTS\tLATEST")
	for _, s := range sums {
		latest := "-"
		if s.Latest != nil {
			latest = fmt.Sprintf("%s (%s)", s.Latest.PeriodEnd.Format(dateLayout), s.Latest.Status)
		}
		fmt.Fprintf(tw, "%d\t%s\t%d/%d\t%s\t%d/%d\t%s\t%d (%d processed, %d reconciled)\t%s\n",
			s.Account.ID, s.Account.Label(),
			s.Ledger.Reconciled, s.Ledger.Total, s.Ledger.Percent().StringFixed(2),
			s.Lines.Reconciled, s.Lines.Total, s.Lines.Percent().StringFixed(2),
			s.Statements.Total, s.Statements.Processed, s.Statements.Reconciled, latest)
	}
	return tw.Flush()
}

func newReportMonthlyCommand(opts *rootOptions) *cobra.Command {
	var q report.Query

	cmd := &cobra.Command{
		Use:   "monthly",
		Short: "Monthly bank extract of an account",
		Long: `Monthly bank extract of an account.

Without --account the first active account is used. Without a valid
--year and --month the current month is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReportMonthly(cmd, opts, q)
		},
	}

	cmd.Flags().Int64Var(&q.AccountID, "account", 0, "bank account id")
	cmd.Flags().IntVar(&q.Year, "year", 0, "year")
	cmd.Flags().IntVar(&q.Month, "month", 0, "month 1-12")

	return cmd
}

func runReportMonthly(cmd *cobra.Command, opts *rootOptions, q report.Query) error {
	a, ctx, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	ex, err := a.reports.MonthlyExtract(ctx, a.scope, q, now())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s  %s %d  (%s to %s)\n", ex.Account.Label(), ex.Month, ex.Year,
		ex.From.Format(dateLayout), ex.To.Format(dateLayout))
	fmt.Fprintf(w, "Starting balance %s\n\n", money(ex.Starting))

	tw := newTable(w)
	fmt.Fprintln(tw, "DATE\tKIND\tAMOUNT\tBALANCE\tREF\tDESCRIPTION\tREC")
	for _, r := range ex.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Date.Format(dateLayout), r.Kind, money(r.Signed()), money(r.Balance),
			r.Reference, r.Description, mark(r.Reconciled))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nDebits %s  Credits %s  System balance %s\n",
		money(ex.Debits), money(ex.Credits), money(ex.SystemBalance))
	fmt.Fprintf(w, "Statement lines %d  debits %s  credits %s\n",
		len(ex.Lines), money(ex.LineDebits), money(ex.LineCredits))
	if ex.Declared != nil {
		fmt.Fprintf(w, "Declared closing %s  ", money(*ex.Declared))
		printDifference(w, *ex.Difference)
	}
	return nil
}

func newReportDifferencesCommand(opts *rootOptions) *cobra.Command {
	var q report.RangeQuery
	var from, to string

	cmd := &cobra.Command{
		Use:   "differences",
		Short: "Unreconciled transactions and statement lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if q.From, err = parseOptDate(from); err != nil {
				return err
			}
			if q.To, err = parseOptDate(to); err != nil {
				return err
			}
			return runReportDifferences(cmd, opts, q)
		},
	}

	cmd.Flags().Int64Var(&q.AccountID, "account", 0, "bank account id (default all)")
	cmd.Flags().StringVar(&from, "from", "", "from date YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "to date YYYY-MM-DD")

	return cmd
}

func runReportDifferences(cmd *cobra.Command, opts *rootOptions, q report.RangeQuery) error {
	a, ctx, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	d, err := a.reports.UnreconciledDifferences(ctx, a.scope, q)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Unreconciled ledger transactions: %d\n", len(d.Transactions))
	if err := printTransactions(w, d.Transactions); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nUnreconciled statement lines: %d\n", len(d.Lines))
	if err := printLines(w, d.Lines); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nLedger net %s  Line debits %s  Line credits %s\n",
		money(d.LedgerNet), money(d.LineDebits), money(d.LineCredits))
	printDifference(w, d.Net)
	return nil
}

func printDifference(w io.Writer, d decimal.Decimal) {
	if d.IsZero() {
		green.Fprintf(w, "Difference %s\n", money(d))
		return
	}
	red.Fprintf(w, "Difference %s\n", money(d))
}

func printLines(w io.Writer, lines []model.StatementLine) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tSTATEMENT\tDATE\tDESCRIPTION\tDEBIT\tCREDIT\tREC")
	for _, l := range lines {
		debit, credit := l.Movement.Split()
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
			l.ID, l.StatementID, l.Date.Format(dateLayout), l.Description,
			optMoney(nullable(debit)), optMoney(nullable(credit)), mark(l.Reconciled))
	}
	return tw.Flush()
}
