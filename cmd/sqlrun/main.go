package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries state shared by the subcommands of one invocation.
type app struct {
	v   *viper.Viper
	cfg ConfigDoc
}

func newRootCmd() *cobra.Command {
	a := &app{v: newViper()}
	v := a.v

	rootCmd := &cobra.Command{
		Use:           "sqlrun",
		Short:         "Create and apply timestamped SQL migrations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(v)
			if err != nil {
				return err
			}
			if err := cfg.SetupLogging(); err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}

	// Bind flags via Cobra and then bind to Viper
	pf := rootCmd.PersistentFlags()
	pf.String("config", v.GetString("config"), "path to a config yaml")
	pf.String("dir", v.GetString("dir"), "directory holding migration files")
	pf.String("driver", v.GetString("driver"), "database driver: postgresql or sqlite")
	pf.String("dsn", "", "PostgreSQL connection string (overrides database.* settings)")
	pf.String("sqlite-path", "", "SQLite database file (default <dir>/sqlrun.db)")
	pf.String("table", v.GetString("table"), "registry table, optionally schema qualified")
	pf.String("log-level", v.GetString("logging.level"), "error, warn, info or debug")
	pf.String("log-format", v.GetString("logging.format"), "text, json or color")

	_ = v.BindPFlag("config", pf.Lookup("config"))
	_ = v.BindPFlag("dir", pf.Lookup("dir"))
	_ = v.BindPFlag("driver", pf.Lookup("driver"))
	_ = v.BindPFlag("database.dsn", pf.Lookup("dsn"))
	_ = v.BindPFlag("sqlite.path", pf.Lookup("sqlite-path"))
	_ = v.BindPFlag("table", pf.Lookup("table"))
	_ = v.BindPFlag("logging.level", pf.Lookup("log-level"))
	_ = v.BindPFlag("logging.format", pf.Lookup("log-format"))

	rootCmd.AddCommand(a.createCmd())
	rootCmd.AddCommand(a.migrateCmd())
	rootCmd.AddCommand(a.statusCmd())
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		exitHandler.LogFatalError(err, "command execution failed")
	}
}
