package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/erp/storesync/internal/domain/integration"
	"github.com/erp/storesync/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// ChannelOptions holds the flags of `channel create` and `channel update`
type ChannelOptions struct {
	Name            string
	URL             string
	Key             string
	Timezone        string
	Currency        string
	Warehouse       string
	ShippingVariant string
}

// NewChannelCommand creates the channel management commands
func NewChannelCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "channel",
		Short: "Manage PrestaShop channels",
	}
	cmd.AddCommand(newChannelCreateCommand(opts))
	cmd.AddCommand(newChannelListCommand(opts))
	cmd.AddCommand(newChannelToggleCommand(opts, "enable", true))
	cmd.AddCommand(newChannelToggleCommand(opts, "disable", false))
	return cmd
}

func newChannelCreateCommand(opts *RootOptions) *cobra.Command {
	copts := &ChannelOptions{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a PrestaShop store",
		Example: `  storesync channel create --name eu-shop --url https://shop.example \
    --key ABCDEF --timezone Europe/Paris --currency EUR`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			channel, err := integration.NewChannel(copts.Name, copts.URL, copts.Key, copts.Timezone)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid channel", err)
			}
			channel.WarehouseCode = copts.Warehouse

			db, err := openDatabase(opts)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()
			repos := persistence.NewGormTransactionScope(db.DB).Repositories()
			ctx := cmd.Context()

			if copts.Currency != "" {
				currency, err := repos.References().FindCurrencyByCode(ctx, copts.Currency)
				if err != nil {
					return WrapExitError(ExitCommandError, fmt.Sprintf("currency %s", copts.Currency), err)
				}
				channel.CurrencyID = &currency.ID
			}
			if copts.ShippingVariant != "" {
				id, err := uuid.Parse(copts.ShippingVariant)
				if err != nil {
					return WrapExitError(ExitCommandError, "invalid shipping variant id", err)
				}
				if _, err := repos.Variants().FindByID(ctx, id); err != nil {
					return WrapExitError(ExitCommandError, "shipping variant", err)
				}
				channel.ShippingVariantID = &id
			}

			if err := repos.Channels().Create(ctx, channel); err != nil {
				return WrapExitError(ExitFailure, "failed to create channel", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created channel %s (%s)\n", channel.Name, channel.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&copts.Name, "name", "", "unique channel name (required)")
	cmd.Flags().StringVar(&copts.URL, "url", "", "shop URL")
	cmd.Flags().StringVar(&copts.Key, "key", "", "webservice key")
	cmd.Flags().StringVar(&copts.Timezone, "timezone", "UTC", "IANA time zone the store reports dates in")
	cmd.Flags().StringVar(&copts.Currency, "currency", "", "default currency code")
	cmd.Flags().StringVar(&copts.Warehouse, "warehouse", "", "warehouse code for shipments")
	cmd.Flags().StringVar(&copts.ShippingVariant, "shipping-variant", "", "variant id used for shipping lines")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newChannelListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List channels and their sync cursors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase(opts)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			channels, err := persistence.NewGormChannelRepository(db.DB).List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.Format == "json" {
				type row struct {
					ID         uuid.UUID  `json:"id"`
					Name       string     `json:"name"`
					URL        string     `json:"url"`
					Timezone   string     `json:"timezone"`
					Enabled    bool       `json:"enabled"`
					LastImport *time.Time `json:"last_order_import_time"`
					LastExport *time.Time `json:"last_order_export_time"`
				}
				rows := make([]row, 0, len(channels))
				for _, c := range channels {
					rows = append(rows, row{c.ID, c.Name, c.BaseURL, c.Timezone, c.Enabled,
						c.LastOrderImportTime, c.LastOrderExportTime})
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tID\tTIMEZONE\tENABLED\tLAST IMPORT\tLAST EXPORT")
			for _, c := range channels {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\t%s\n", c.Name, c.ID, c.Timezone, c.Enabled,
					cursor(c.LastOrderImportTime), cursor(c.LastOrderExportTime))
			}
			return tw.Flush()
		},
	}
}

func newChannelToggleCommand(opts *RootOptions, verb string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <channel>",
		Short: fmt.Sprintf("%s scheduled and manual passes of a channel", verb),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase(opts)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			rt := &runtime{db: db, tx: persistence.NewGormTransactionScope(db.DB)}
			channel, err := resolveChannel(cmd.Context(), rt, args[0])
			if err != nil {
				return err
			}
			channel.Enabled = enabled
			if err := rt.tx.Repositories().Channels().Save(cmd.Context(), channel); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Channel %s %sd\n", channel.Name, verb)
			return nil
		},
	}
}

func cursor(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
