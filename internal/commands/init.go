package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankrec/internal/banks"
	"github.com/cleared-dev/bankrec/internal/config"
	"github.com/cleared-dev/bankrec/internal/model"
	"github.com/cleared-dev/bankrec/internal/store"
)

func newInitCommand(opts *rootOptions) *cobra.Command {
	var name, ruc, actor string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new bankrec workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, opts, absDir, name, ruc, actor)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "company name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&ruc, "ruc", "", "company tax id (RUC)")
	cmd.Flags().StringVar(&actor, "actor", "operator", "operator name recorded on uploads and reconciliations")

	return cmd
}

func runInit(cmd *cobra.Command, opts *rootOptions, dir, name, ruc, actor string) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}

	cfg := config.Default(name, ruc)
	cfg.Operator.Actor = actor

	resolved := *cfg
	resolved.ResolvePaths(dir)
	for _, d := range []string{dir, resolved.Storage.UploadsDir, filepath.Dir(resolved.Log.ActionsFile)} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	ctx := withLogger(cmd, opts, cfg)

	// Create the database and seed the bank catalogue.
	db, err := store.Open(resolved.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Init(ctx); err != nil {
		return err
	}

	catalog := banks.DefaultCatalog()
	if problems := banks.Validate(catalog); len(problems) > 0 {
		return fmt.Errorf("invalid bank catalogue: %v", problems)
	}
	for i := range catalog {
		if err := db.UpsertBank(ctx, &catalog[i]); err != nil {
			return fmt.Errorf("seeding banks: %w", err)
		}
	}

	company := &model.Company{Name: name, RUC: ruc}
	if err := db.CreateCompany(ctx, company); err != nil {
		return err
	}

	// Write bankrec.yaml with relative paths.
	cfg.Company.ID = company.ID
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized bankrec workspace at %s (company %d, %d banks)\n",
		dir, company.ID, len(catalog))
	return nil
}
