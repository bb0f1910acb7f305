package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankrec/internal/reconcile"
)

func newReconcileCommand(opts *rootOptions) *cobra.Command {
	recCmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile statement lines against the ledger",
	}
	recCmd.AddCommand(
		newReconcileViewCommand(opts),
		newReconcileApplyCommand(opts, "apply", "Flag transactions and lines as reconciled", true),
		newReconcileApplyCommand(opts, "undo", "Clear reconciliation flags and match links", false),
		&cobra.Command{
			Use:   "match <line-id> <transaction-id>",
			Short: "Link a statement line to a ledger transaction",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runReconcileMatch(cmd, opts, args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "unmatch <line-id>",
			Short: "Remove the ledger link of a statement line",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runReconcileMatch(cmd, opts, args[0], "")
			},
		},
	)
	return recCmd
}

func newReconcileViewCommand(opts *rootOptions) *cobra.Command {
	var f reconcile.Filter
	var from, to string

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show unreconciled transactions and statement lines of an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if f.From, err = parseOptDate(from); err != nil {
				return err
			}
			if f.To, err = parseOptDate(to); err != nil {
				return err
			}
			return runReconcileView(cmd, opts, f)
		},
	}

	cmd.Flags().Int64Var(&f.AccountID, "account", 0, "bank account id (required)")
	_ = cmd.MarkFlagRequired("account")
	cmd.Flags().Int64Var(&f.StatementID, "statement", 0, "statement id")
	cmd.Flags().StringVar(&from, "from", "", "from date YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "to date YYYY-MM-DD")
	cmd.Flags().BoolVar(&f.ShowAll, "all", false, "include reconciled items")

	return cmd
}

func runReconcileView(cmd *cobra.Command, opts *rootOptions, f reconcile.Filter) error {
	a, ctx, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	v, err := a.engine.View(ctx, a.scope, f)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Account %d %s  opening %s\n", v.Account.ID, v.Account.Label(), money(v.OpeningBalance))
	if v.Statement != nil {
		fmt.Fprintf(w, "Statement %d  %s to %s  declared %s -> %s\n", v.Statement.ID,
			v.Statement.PeriodStart.Format(dateLayout), v.Statement.PeriodEnd.Format(dateLayout),
			money(v.Statement.OpeningBalance), money(v.Statement.ClosingBalance))
	}

	fmt.Fprintln(w, "\nLedger")
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tDATE\tKIND\tAMOUNT\tBALANCE\tREF\tDESCRIPTION\tREC")
	for _, r := range v.Transactions {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Date.Format(dateLayout), r.Kind, money(r.Signed()), money(r.Balance),
			r.Reference, r.Description, mark(r.Reconciled))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w, "\nStatement lines")
	tw = newTable(w)
	fmt.Fprintln(tw, "ID\tDATE\tDESCRIPTION\tDEBIT\tCREDIT\tREC\tMATCH")
	for _, l := range v.Lines {
		debit, credit := l.Movement.Split()
		match := ""
		if l.MatchedID != nil {
			match = fmt.Sprint(*l.MatchedID)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			l.ID, l.Date.Format(dateLayout), l.Description,
			optMoney(nullable(debit)), optMoney(nullable(credit)), mark(l.Reconciled), match)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nSystem balance %s\n", money(v.SystemBalance))
	if v.Difference != nil {
		printDifference(w, *v.Difference)
	}
	return nil
}

func newReconcileApplyCommand(opts *rootOptions, use, short string, reconciled bool) *cobra.Command {
	var req reconcile.Request

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(req.LedgerIDs) == 0 && len(req.LineIDs) == 0 {
				return fmt.Errorf("nothing selected: pass --ledger and/or --lines")
			}
			return runReconcileApply(cmd, opts, req, reconciled)
		},
	}

	cmd.Flags().Int64Var(&req.AccountID, "account", 0, "bank account id (required)")
	_ = cmd.MarkFlagRequired("account")
	cmd.Flags().Int64Var(&req.StatementID, "statement", 0, "restrict lines to this statement")
	cmd.Flags().Int64SliceVar(&req.LedgerIDs, "ledger", nil, "ledger transaction ids")
	cmd.Flags().Int64SliceVar(&req.LineIDs, "lines", nil, "statement line ids")

	return cmd
}

func runReconcileApply(cmd *cobra.Command, opts *rootOptions, req reconcile.Request, reconciled bool) error {
	a, ctx, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	apply := a.engine.Reconcile
	verb := "Reconciled"
	if !reconciled {
		apply = a.engine.Unreconcile
		verb = "Unreconciled"
	}
	res, err := apply(ctx, a.scope, req)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if res.Changed() {
		green.Fprintf(w, "%s %d transactions and %d lines\n", verb, res.Ledger, res.Lines)
	} else {
		yellow.Fprintln(w, "No changes")
	}
	if !res.Excluded.Empty() {
		yellow.Fprintf(w, "Excluded (not found in account %d): ledger %v, lines %v\n",
			req.AccountID, res.Excluded.Ledger, res.Excluded.Lines)
	}
	for _, id := range res.Statements {
		fmt.Fprintf(w, "Statement %d status updated\n", id)
	}

	action := "reconcile"
	if !reconciled {
		action = "unreconcile"
	}
	a.recordAction(ctx, action,
		fmt.Sprintf("account=%d ledger=%v lines=%v", req.AccountID, req.LedgerIDs, req.LineIDs),
		res.Statements,
		fmt.Sprintf("ledger=%d lines=%d excluded=%d", res.Ledger, res.Lines, len(res.Excluded.Ledger)+len(res.Excluded.Lines)))
	return nil
}

func runReconcileMatch(cmd *cobra.Command, opts *rootOptions, lineArg, txArg string) error {
	lineID, err := parseID(lineArg)
	if err != nil {
		return err
	}
	a, ctx, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	if txArg == "" {
		if err := a.engine.Unmatch(ctx, a.scope, lineID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Line %d unmatched\n", lineID)
		return nil
	}

	txID, err := parseID(txArg)
	if err != nil {
		return err
	}
	if err := a.engine.Match(ctx, a.scope, lineID, txID); err != nil {
		return err
	}
	green.Fprintf(cmd.OutOrStdout(), "Line %d matched to transaction %d\n", lineID, txID)
	return nil
}
