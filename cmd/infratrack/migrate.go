package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vbonduro/infratrack/internal/db"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: withDatabase(func(cmd *cobra.Command, d *db.DB) error {
				if err := db.Migrate(cmd.Context(), d); err != nil {
					return err
				}
				return printVersion(cmd, d)
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Revert all migrations, dropping both tables",
			Args:  cobra.NoArgs,
			RunE: withDatabase(func(cmd *cobra.Command, d *db.DB) error {
				if err := db.MigrateDown(cmd.Context(), d); err != nil {
					return err
				}
				return printVersion(cmd, d)
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE:  withDatabase(printVersion),
		},
	)
	return cmd
}

// withDatabase runs fn against the configured database.
func withDatabase(fn func(cmd *cobra.Command, d *db.DB) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.cleanup()

		d, err := openDatabase(a.cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := d.Close(); err != nil {
				a.logger.Error("failed to close database", "error", err)
			}
		}()
		return fn(cmd, d)
	}
}

func printVersion(cmd *cobra.Command, d *db.DB) error {
	version, dirty, err := db.MigrationVersion(cmd.Context(), d)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if dirty {
		_, err = fmt.Fprintf(out, "schema version %d (dirty)\n", version)
	} else {
		_, err = fmt.Fprintf(out, "schema version %d\n", version)
	}
	return err
}
