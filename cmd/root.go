package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmdWith(newRootOptions()).Execute()
}

func newRootCmdWith(opts *rootOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "orca",
		Short:         "Orca: stateful remote code execution across a fleet",
		Long:          "orca runs persistent interpreter sessions and per-tenant isolated hosts on every machine of a fleet, and routes each call to the machine that owns the session.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "Config file (default: ./orca.toml, ~/.orca/orca.toml, /etc/orca/orca.toml)")
	flags.StringVar(&opts.envFile, "env-file", ".env", "Env file loaded before configuration")
	flags.StringVar(&opts.server, "server", "", "Server URL for client commands (default: $ORCA_SERVER or "+defaultServerURL+")")

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(opts),
		newSessionCmd(opts),
		newExecCmd(opts),
		newFilesCmd(opts),
		newHostsCmd(opts),
		newStatusCmd(opts),
	)

	return rootCmd
}
