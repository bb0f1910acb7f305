package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankrec/internal/importer"
	"github.com/cleared-dev/bankrec/internal/model"
	"github.com/cleared-dev/bankrec/internal/statements"
)

type uploadParams struct {
	account          int64
	from, to         string
	opening, closing string
	notes            string
	process          bool
}

func newStatementCommand(opts *rootOptions) *cobra.Command {
	stmtCmd := &cobra.Command{
		Use:     "statement",
		Aliases: []string{"stmt"},
		Short:   "Bank statement operations",
	}
	stmtCmd.AddCommand(
		newStatementUploadCommand(opts),
		newStatementListCommand(opts),
		&cobra.Command{
			Use:   "lines <statement-id>",
			Short: "Show the lines of a statement",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runStatementLines(cmd, opts, args[0])
			},
		},
		newBulkCommand(opts, "process", "Process uploaded statements", (*statements.Service).ProcessSelected),
		newBulkCommand(opts, "mark-error", "Mark statements as error", (*statements.Service).MarkError),
		newBulkCommand(opts, "reset", "Reset statements to uploaded for reprocessing", (*statements.Service).Reset),
		&cobra.Command{
			Use:   "detect <file|statement-id>",
			Short: "Show which bank format a file is detected as",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runStatementDetect(cmd, opts, args[0])
			},
		},
	)
	return stmtCmd
}

func newStatementUploadCommand(opts *rootOptions) *cobra.Command {
	var p uploadParams

	cmd := &cobra.Command{
		Use:   "upload <file.csv>",
		Short: "Upload a bank statement export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatementUpload(cmd, opts, args[0], p)
		},
	}

	cmd.Flags().Int64Var(&p.account, "account", 0, "bank account id (required)")
	cmd.Flags().StringVar(&p.from, "from", "", "period start YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&p.to, "to", "", "period end YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	cmd.Flags().StringVar(&p.opening, "opening-balance", "0", "declared opening balance")
	cmd.Flags().StringVar(&p.closing, "closing-balance", "0", "declared closing balance")
	cmd.Flags().StringVar(&p.notes, "notes", "", "free-text notes")
	cmd.Flags().BoolVar(&p.process, "process", false, "process the statement right after uploading")

	return cmd
}

func runStatementUpload(cmd *cobra.Command, opts *rootOptions, path string, p uploadParams) error {
	from, err := parseDate(p.from)
	if err != nil {
		return err
	}
	to, err := parseDate(p.to)
	if err != nil {
		return err
	}
	opening, err := parseMoney(p.opening)
	if err != nil {
		return err
	}
	closing, err := parseMoney(p.closing)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	a, ctx, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	st, err := a.statements.Upload(ctx, a.scope, statements.UploadParams{
		AccountID:      p.account,
		FileName:       filepath.Base(path),
		Content:        f,
		PeriodStart:    from,
		PeriodEnd:      to,
		OpeningBalance: opening,
		ClosingBalance: closing,
		Notes:          p.notes,
	})
	if err != nil {
		return err
	}
	green.Fprintf(cmd.OutOrStdout(), "Uploaded statement %d (%s to %s)\n",
		st.ID, st.PeriodStart.Format(dateLayout), st.PeriodEnd.Format(dateLayout))

	if p.process {
		printSummary(cmd.OutOrStdout(), a.statements.ProcessSelected(ctx, a.scope, []int64{st.ID}))
	}
	return nil
}

func newStatementListCommand(opts *rootOptions) *cobra.Command {
	var account int64
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List statements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatementList(cmd, opts, account)
		},
	}
	cmd.Flags().Int64Var(&account, "account", 0, "only statements of this account")
	return cmd
}

func runStatementList(cmd *cobra.Command, opts *rootOptions, account int64) error {
	a, ctx, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	list, err := a.statements.List(ctx, a.scope, account)
	if err != nil {
		return err
	}
	tw := newTable(cmd.OutOrStdout())
	fmt.Fprintln(tw, "ID\tACCOUNT\tFROM\tTO\tOPENING\tCLOSING\tSTATUS\tFILE\tNOTES")
	for _, st := range list {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			st.ID, st.AccountID, st.PeriodStart.Format(dateLayout), st.PeriodEnd.Format(dateLayout),
			money(st.OpeningBalance), money(st.ClosingBalance), st.Status, st.OriginalName, st.Notes)
	}
	return tw.Flush()
}

func runStatementLines(cmd *cobra.Command, opts *rootOptions, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	a, ctx, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	lines, err := a.statements.Lines(ctx, a.scope, id)
	if err != nil {
		return err
	}
	tw := newTable(cmd.OutOrStdout())
	fmt.Fprintln(tw, "ID\tDATE\tDESCRIPTION\tREF\tDEBIT\tCREDIT\tBALANCE\tREC\tMATCH")
	for _, l := range lines {
		debit, credit := l.Movement.Split()
		match := ""
		if l.MatchedID != nil {
			match = fmt.Sprint(*l.MatchedID)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			l.ID, l.Date.Format(dateLayout), l.Description, l.Reference,
			optMoney(nullable(debit)), optMoney(nullable(credit)), optMoney(nullable(l.Balance)),
			mark(l.Reconciled), match)
	}
	return tw.Flush()
}

type bulkAction func(s *statements.Service, ctx context.Context, scope model.Scope, ids []int64) statements.Summary

func newBulkCommand(opts *rootOptions, use, short string, action bulkAction) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <statement-id>...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			a, ctx, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			sum := action(a.statements, ctx, a.scope, ids)
			printSummary(cmd.OutOrStdout(), sum)
			if sum.Errors > 0 {
				return fmt.Errorf("%d of %d statements failed", sum.Errors, len(sum.Outcomes))
			}
			return nil
		},
	}
}

func runStatementDetect(cmd *cobra.Command, opts *rootOptions, arg string) error {
	if _, err := os.Stat(arg); err == nil {
		fmt.Fprintln(cmd.OutOrStdout(), importer.DetectFile(arg))
		return nil
	}
	id, err := parseID(arg)
	if err != nil {
		return fmt.Errorf("%q is neither a file nor a statement id", arg)
	}
	a, ctx, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	format, err := a.statements.Detect(ctx, a.scope, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), format)
	return nil
}
