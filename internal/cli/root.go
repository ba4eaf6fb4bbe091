package cli

import (
	"fmt"

	"github.com/erp/storesync/internal/infrastructure/config"
	"github.com/erp/storesync/internal/infrastructure/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootOptions holds global flags and the state loaded before every command.
type RootOptions struct {
	ConfigPath string
	Format     string // "text" | "json"

	cfg *config.Config
	log *zap.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command of the storesync CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "storesync",
		Short: "PrestaShop order and reference data synchronization",
		Long: `storesync keeps the ERP in step with PrestaShop stores.

It imports orders, customers, products and reference data from each
configured channel and exports local order status back to the store.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return WrapExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats), nil)
			}
			cfg, err := config.LoadFrom(opts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load configuration", err)
			}
			log, err := logger.New(&cfg.Log)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to initialize logger", err)
			}
			opts.cfg = cfg
			opts.log = log.With(zap.String("app", cfg.App.Name), zap.String("env", cfg.App.Env))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.log != nil {
				_ = opts.log.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a TOML config file")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewChannelCommand(opts))
	for _, c := range NewSyncCommands(opts) {
		cmd.AddCommand(c)
	}

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
