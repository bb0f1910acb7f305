package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankrec/internal/buildinfo"
	"github.com/cleared-dev/bankrec/internal/config"
)

// rootOptions holds the persistent flags shared by every sub-command.
type rootOptions struct {
	configPath string
	logLevel   string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "bankrec",
		Short:   "Bank statement ingestion and reconciliation",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", config.FileName, "path to bankrec.yaml")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newInitCommand(opts),
		newBankCommand(opts),
		newAccountCommand(opts),
		newStatementCommand(opts),
		newLedgerCommand(opts),
		newReconcileCommand(opts),
		newReportCommand(opts),
		newLogCommand(opts),
	)

	return rootCmd
}
