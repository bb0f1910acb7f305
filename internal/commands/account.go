package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankrec/internal/model"
)

type accountAddParams struct {
	bank, number, accountType, currency string
	opening, openingDate                string
	chart, contact, notes               string
}

func newAccountCommand(opts *rootOptions) *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Bank account operations",
	}
	accountCmd.AddCommand(
		newAccountAddCommand(opts),
		newAccountListCommand(opts),
		&cobra.Command{
			Use:   "deactivate <id>",
			Short: "Deactivate a bank account",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runAccountSetActive(cmd, opts, args[0], false)
			},
		},
		&cobra.Command{
			Use:   "activate <id>",
			Short: "Reactivate a bank account",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runAccountSetActive(cmd, opts, args[0], true)
			},
		},
		&cobra.Command{
			Use:   "link <id> <chart-account>",
			Short: `Link an account to a chart-of-accounts code ("" to unlink)`,
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runAccountLink(cmd, opts, args[0], args[1])
			},
		},
	)
	return accountCmd
}

func newAccountAddCommand(opts *rootOptions) *cobra.Command {
	var p accountAddParams

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a bank account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccountAdd(cmd, opts, p)
		},
	}

	cmd.Flags().StringVar(&p.bank, "bank", "", "bank SBS code or short name (required)")
	cmd.Flags().StringVar(&p.number, "number", "", "account number (required)")
	_ = cmd.MarkFlagRequired("bank")
	_ = cmd.MarkFlagRequired("number")
	cmd.Flags().StringVar(&p.accountType, "type", string(model.AccountTypeChecking), "checking, savings, credit or other")
	cmd.Flags().StringVar(&p.currency, "currency", string(model.CurrencyUSD), "currency code")
	cmd.Flags().StringVar(&p.opening, "opening-balance", "0", "opening balance")
	cmd.Flags().StringVar(&p.openingDate, "opening-date", "", "opening date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&p.chart, "chart-account", "", "linked chart-of-accounts code")
	cmd.Flags().StringVar(&p.contact, "contact", "", "contact person at the bank")
	cmd.Flags().StringVar(&p.notes, "notes", "", "free-text notes")

	return cmd
}

func runAccountAdd(cmd *cobra.Command, opts *rootOptions, p accountAddParams) error {
	accountType := model.AccountType(strings.ToLower(p.accountType))
	if !accountType.Valid() {
		return fmt.Errorf("invalid account type %q", p.accountType)
	}
	currency := model.Currency(strings.ToUpper(p.currency))
	if !currency.Valid() {
		return fmt.Errorf("unsupported currency %q", p.currency)
	}
	opening, err := parseMoney(p.opening)
	if err != nil {
		return err
	}
	openingDate := today()
	if p.openingDate != "" {
		if openingDate, err = parseDate(p.openingDate); err != nil {
			return err
		}
	}

	a, ctx, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	bank, err := a.db.FindBank(ctx, p.bank)
	if err != nil {
		return err
	}

	acct := &model.BankAccount{
		CompanyID:      a.scope.CompanyID,
		BankID:         bank.ID,
		BankName:       bank.ShortName,
		Number:         strings.TrimSpace(p.number),
		Type:           accountType,
		Currency:       currency,
		ChartAccount:   p.chart,
		OpeningBalance: opening,
		OpeningDate:    openingDate,
		ContactPerson:  p.contact,
		Notes:          p.notes,
		Active:         true,
	}
	if err := a.db.CreateAccount(ctx, acct); err != nil {
		return err
	}
	green.Fprintf(cmd.OutOrStdout(), "Added account %d: %s\n", acct.ID, acct.Label())
	return nil
}

func newAccountListCommand(opts *rootOptions) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bank accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccountList(cmd, opts, all)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include inactive accounts")
	return cmd
}

func runAccountList(cmd *cobra.Command, opts *rootOptions, all bool) error {
	a, ctx, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	accounts, err := a.db.ListAccounts(ctx, a.scope.CompanyID, !all)
	if err != nil {
		return err
	}
	tw := newTable(cmd.OutOrStdout())
	fmt.Fprintln(tw, "ID\tBANK\tNUMBER\tTYPE\tCUR\tOPENING\tCHART\tACTIVE")
	for _, acct := range accounts {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			acct.ID, acct.BankName, acct.MaskedNumber(), acct.Type, acct.Currency,
			money(acct.OpeningBalance), acct.ChartAccount, mark(acct.Active))
	}
	return tw.Flush()
}

func runAccountSetActive(cmd *cobra.Command, opts *rootOptions, arg string, active bool) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	a, ctx, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.db.SetAccountActive(ctx, a.scope.CompanyID, id, active); err != nil {
		return err
	}
	state := "deactivated"
	if active {
		state = "activated"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Account %d %s\n", id, state)
	return nil
}

func runAccountLink(cmd *cobra.Command, opts *rootOptions, arg, chart string) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	a, ctx, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.db.LinkChartAccount(ctx, a.scope.CompanyID, id, strings.TrimSpace(chart)); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Account %d linked to %q\n", id, chart)
	return nil
}
