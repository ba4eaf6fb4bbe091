package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/storesync/internal/domain/integration"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type passFunc func(ctx context.Context, channelID uuid.UUID) (*integration.PassResult, error)

// NewSyncCommands creates one command per sync operation
func NewSyncCommands(opts *RootOptions) []*cobra.Command {
	type passCommand struct {
		use, short string
		pick       func(rt *runtime) passFunc
	}
	passes := []passCommand{
		{"import-orders", "Import orders updated since the last import",
			func(rt *runtime) passFunc { return rt.orchestrator.RunImport }},
		{"export-orders", "Push the status of sales changed since the last export",
			func(rt *runtime) passFunc { return rt.orchestrator.RunExport }},
		{"import-reference-data", "Link countries, states, currencies, languages and order states",
			func(rt *runtime) passFunc { return rt.orchestrator.ImportReferenceData }},
		{"import-languages", "Link the remote languages to local ones",
			func(rt *runtime) passFunc { return rt.orchestrator.ImportLanguages }},
		{"import-order-states", "Map the remote order states to local sale statuses",
			func(rt *runtime) passFunc { return rt.orchestrator.ImportOrderStates }},
	}

	cmds := make([]*cobra.Command, 0, len(passes)+1)
	for _, p := range passes {
		p := p
		cmds = append(cmds, &cobra.Command{
			Use:   p.use + " <channel>",
			Short: p.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				rt, err := newRuntime(opts)
				if err != nil {
					return err
				}
				defer func() { _ = rt.Close() }()
				return runPass(cmd, opts, rt, args[0], p.pick(rt))
			},
		})
	}

	cmds = append(cmds, &cobra.Command{
		Use:   "test-connection <channel>",
		Short: "Check the webservice URL and key of a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(opts)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close() }()

			channel, err := resolveChannel(cmd.Context(), rt, args[0])
			if err != nil {
				return err
			}
			if err := rt.orchestrator.TestConnection(cmd.Context(), channel.ID); err != nil {
				return WrapExitError(ExitFailure, "connection test failed", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Connection successful")
			return nil
		},
	})
	return cmds
}

func runPass(cmd *cobra.Command, opts *RootOptions, rt *runtime, ref string, run passFunc) error {
	channel, err := resolveChannel(cmd.Context(), rt, ref)
	if err != nil {
		return err
	}
	result, err := run(cmd.Context(), channel.ID)
	if err != nil {
		return WrapExitError(ExitFailure, "pass aborted", err)
	}
	if err := printResult(cmd.OutOrStdout(), opts.Format, result); err != nil {
		return err
	}
	if len(result.Exceptions) > 0 {
		return &ExitError{Code: ExitPartial, Message: fmt.Sprintf("%d records could not be synchronized", len(result.Exceptions))}
	}
	return nil
}

// resolveChannel accepts a channel id or name
func resolveChannel(ctx context.Context, rt *runtime, ref string) (*integration.Channel, error) {
	channels := rt.tx.Repositories().Channels()
	var (
		channel *integration.Channel
		err     error
	)
	if id, perr := uuid.Parse(ref); perr == nil {
		channel, err = channels.FindByID(ctx, id)
	} else {
		channel, err = channels.FindByName(ctx, ref)
	}
	if errors.Is(err, integration.ErrChannelNotFound) {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("channel %q not found", ref), nil)
	}
	if err != nil {
		return nil, err
	}
	return channel, nil
}
