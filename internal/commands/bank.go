package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankrec/internal/banks"
)

func newBankCommand(opts *rootOptions) *cobra.Command {
	bankCmd := &cobra.Command{
		Use:   "bank",
		Short: "Bank catalogue operations",
	}
	bankCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List catalogued banks",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runBankList(cmd, opts)
			},
		},
		&cobra.Command{
			Use:   "show <sbs-code|short-name>",
			Short: "Show one bank",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runBankShow(cmd, opts, args[0])
			},
		},
		&cobra.Command{
			Use:   "import <file.csv>",
			Short: "Add or update banks from a CSV file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runBankImport(cmd, opts, args[0])
			},
		},
		&cobra.Command{
			Use:   "export [file.csv]",
			Short: "Write the catalogue as CSV (stdout when no file is given)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				path := ""
				if len(args) > 0 {
					path = args[0]
				}
				return runBankExport(cmd, opts, path)
			},
		},
	)
	return bankCmd
}

func runBankList(cmd *cobra.Command, opts *rootOptions) error {
	a, ctx, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	list, err := a.db.ListBanks(ctx)
	if err != nil {
		return err
	}
	tw := newTable(cmd.OutOrStdout())
	fmt.Fprintln(tw, "CODE\tSHORT\tNAME\tSWIFT")
	for _, b := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", b.SBSCode, b.ShortName, b.Name, b.SwiftCode)
	}
	return tw.Flush()
}

func runBankShow(cmd *cobra.Command, opts *rootOptions, key string) error {
	a, ctx, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	list, err := a.db.ListBanks(ctx)
	if err != nil {
		return err
	}
	b, ok := banks.NewCatalog(list).Lookup(key)
	if !ok {
		return fmt.Errorf("bank %q not found", key)
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s %s\n", b.SBSCode, b.Name)
	fmt.Fprintf(w, "  short name: %s\n  swift: %s\n  website: %s\n  phone: %s\n", b.ShortName, b.SwiftCode, b.Website, b.Phone)
	return nil
}

func runBankImport(cmd *cobra.Command, opts *rootOptions, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	list, err := banks.ReadBanks(f)
	if err != nil {
		return err
	}
	if problems := banks.Validate(list); len(problems) > 0 {
		return fmt.Errorf("invalid bank file: %s", strings.Join(problems, "; "))
	}

	a, ctx, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	for i := range list {
		if err := a.db.UpsertBank(ctx, &list[i]); err != nil {
			return err
		}
	}
	green.Fprintf(cmd.OutOrStdout(), "Imported %d banks\n", len(list))
	return nil
}

func runBankExport(cmd *cobra.Command, opts *rootOptions, path string) error {
	a, ctx, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	list, err := a.db.ListBanks(ctx)
	if err != nil {
		return err
	}
	if path == "" {
		return banks.WriteBanks(cmd.OutOrStdout(), list)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := banks.WriteBanks(f, list); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
