package main

import (
	"fmt"
	"strings"

	"github.com/loykin/sqlrun"
	"github.com/spf13/cobra"
)

func (a *app) createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty migration file named yyyy_mm_dd_hhiiss_<name>.sql",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := sqlrun.CreateMigration(sqlrun.CreateOptions{
				Name: strings.Join(args, " "),
				Dir:  a.cfg.Dir,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), p)
			return nil
		},
	}
}
