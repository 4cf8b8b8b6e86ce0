package cmd

import (
	"context"
	"fmt"

	"github.com/bnema/orca/internal/domain"
	"github.com/bnema/orca/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Host commands talk to the isolation engine and host cache directly, so they
// work without a running server.
func newHostsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "hosts",
		Aliases: []string{"host"},
		Short:   "Inspect and clean up tenant hosts on this machine",
	}

	cmd.AddCommand(
		newHostsListCmd(opts),
		newHostsReapCmd(opts),
		newHostsRemoveCmd(opts),
	)

	return cmd
}

func withLocalApp(cmd *cobra.Command, opts *rootOptions, fn func(context.Context, *app) error) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Level, logging.FormatConsole)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	a, err := wireApp(cmd.Context(), cfg, logger.WithOptions(zap.IncreaseLevel(zap.WarnLevel)))
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(context.WithoutCancel(cmd.Context())) }()

	return fn(cmd.Context(), a)
}

func newHostsListCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List managed hosts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withLocalApp(cmd, opts, func(ctx context.Context, a *app) error {
				hosts, err := a.hosts.ListHosts(ctx)
				if err != nil {
					return err
				}

				if asJSON {
					return writeJSON(cmd.OutOrStdout(), hosts)
				}
				for _, host := range hosts {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n",
						sanitizeForTerminal(string(host.TenantID)), host.Status, shortHostID(host.ID), host.Address)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newHostsReapCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reap",
		Short: "Remove hosts idle for longer than hosts.idle_timeout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withLocalApp(cmd, opts, func(ctx context.Context, a *app) error {
				reaped, err := a.hosts.Reap(ctx)
				for _, tenant := range reaped {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "reaped %s\n", sanitizeForTerminal(string(tenant)))
				}
				if err != nil {
					return fmt.Errorf("reap idle hosts: %w", err)
				}
				if len(reaped) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no idle hosts")
				}
				return nil
			})
		},
	}
}

func newHostsRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <tenant>",
		Aliases: []string{"remove"},
		Short:   "Stop and remove a tenant's host. The workspace is kept.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLocalApp(cmd, opts, func(ctx context.Context, a *app) error {
				if err := a.hosts.RemoveHost(ctx, domain.TenantID(args[0])); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "removed host for %s\n", sanitizeForTerminal(args[0]))
				return err
			})
		},
	}
}

func shortHostID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
