package main

import (
	"fmt"

	"github.com/loykin/sqlrun/pkg/status"
	"github.com/spf13/cobra"
)

func (a *app) statusCmd() *cobra.Command {
	var (
		statusHistory      bool
		statusHistoryAll   bool
		statusHistoryLimit int
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the latest applied migration, pending migrations, and optionally history",
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := status.FromConfig(cmd.Context(), a.cfg.Config)
			if err != nil {
				return err
			}
			if statusHistory {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), info.FormatHumanWithLimit(true, statusHistoryLimit, statusHistoryAll))
			} else {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), info.FormatHuman(false))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&statusHistory, "history", false, "list applied migrations as well")
	cmd.Flags().BoolVar(&statusHistoryAll, "history-all", false, "when used with --history, show all entries (newest first)")
	cmd.Flags().IntVar(&statusHistoryLimit, "history-limit", 10, "when used with --history, show up to N latest entries")
	return cmd
}
