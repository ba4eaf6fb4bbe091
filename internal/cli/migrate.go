package cli

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/erp/storesync/internal/infrastructure/migration"
	"github.com/erp/storesync/migrations"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the schema migration commands
func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the database schema",
		Long: `Runs the embedded SQL migrations against postgres.

sqlite databases are created from the models instead; for them only
"migrate up" is available.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.cfg.Database.Driver == "sqlite" {
				db, err := openDatabase(opts)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "sqlite schema is up to date")
				return db.Close()
			}
			return withMigrator(opts, (*migration.Migrator).Up)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(opts, (*migration.Migrator).Down)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "steps <n>",
		Short: "Apply n migrations, or roll back -n",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n == 0 {
				return WrapExitError(ExitCommandError, "steps must be a non-zero integer", err)
			}
			return withMigrator(opts, func(m *migration.Migrator) error { return m.Steps(n) })
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "force <version>",
		Short: "Mark a version as applied without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "version must be an integer", err)
			}
			return withMigrator(opts, func(m *migration.Migrator) error { return m.Force(v) })
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(opts, func(m *migration.Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the embedded migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := migration.ListMigrations(migrations.FS)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	})
	return cmd
}

func withMigrator(opts *RootOptions, fn func(*migration.Migrator) error) error {
	if opts.cfg.Database.Driver != "postgres" {
		return WrapExitError(ExitCommandError,
			fmt.Sprintf("migrations require postgres, database.driver is %q", opts.cfg.Database.Driver), nil)
	}
	db, err := sql.Open("postgres", opts.cfg.Database.DSN())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer db.Close()

	m, err := migration.New(db, migrations.FS, opts.log)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to initialize migrations", err)
	}
	defer func() { _ = m.Close() }()

	return fn(m)
}
