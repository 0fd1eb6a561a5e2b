package main

import (
	"fmt"

	"github.com/loykin/sqlrun"
	"github.com/spf13/cobra"
)

func (a *app) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "migrate",
		Aliases: []string{"up"},
		Short:   "Apply every pending migration in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := sqlrun.NewMigrator(a.cfg.Config).MigrateUp(cmd.Context())
			out := cmd.OutOrStdout()
			for _, name := range res.Applied {
				_, _ = fmt.Fprintf(out, "applied %s\n", name)
			}
			if err != nil {
				if res.Failed != "" {
					_, _ = fmt.Fprintf(out, "failed  %s\n", res.Failed)
				}
				for _, name := range res.Remaining {
					_, _ = fmt.Fprintf(out, "skipped %s\n", name)
				}
				return err
			}
			if len(res.Applied) == 0 {
				_, _ = fmt.Fprintln(out, "nothing to migrate")
			}
			return nil
		},
	}

	v := a.v
	f := cmd.Flags()
	f.Bool("transactional", v.GetBool("transactional"), "run each migration in its own transaction (on PostgreSQL a multi-statement file is always one implicit transaction)")
	f.Duration("wait-timeout", v.GetDuration("wait.timeout"), "wait up to this long for the database to accept connections (0 = no wait)")
	_ = v.BindPFlag("transactional", f.Lookup("transactional"))
	_ = v.BindPFlag("wait.timeout", f.Lookup("wait-timeout"))
	return cmd
}
