package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankrec/internal/actionlog"
)

func newLogCommand(opts *rootOptions) *cobra.Command {
	var (
		limit  int
		action string
	)

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the operator action log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(cmd, opts, action, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "show the last n entries (0 for all)")
	cmd.Flags().StringVar(&action, "action", "", "only entries of this action")

	return cmd
}

func runLog(cmd *cobra.Command, opts *rootOptions, action string, limit int) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	entries, err := actionlog.Read(cfg.Log.ActionsFile)
	if err != nil {
		return err
	}
	if action != "" {
		kept := entries[:0]
		for _, e := range entries {
			if e.Action == action {
				kept = append(kept, e)
			}
		}
		entries = kept
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}

	w := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(w, "No actions recorded.")
		return nil
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "TIME\tACTOR\tACTION\tSTATEMENTS\tRESULT\tDETAILS")
	for _, e := range entries {
		ids := make([]string, len(e.StatementIDs))
		for i, id := range e.StatementIDs {
			ids[i] = fmt.Sprint(id)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Timestamp.Local().Format(time.DateTime), e.Actor, e.Action,
			strings.Join(ids, ","), e.Result, e.Details)
	}
	return tw.Flush()
}
