package cmd

import (
	"fmt"
	"time"

	"github.com/bnema/orca/internal/domain"
	"github.com/spf13/cobra"
)

func newSessionCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "session",
		Aliases: []string{"sessions"},
		Short:   "Manage interpreter sessions on a running server",
	}

	cmd.AddCommand(
		newSessionCreateCmd(opts),
		newSessionListCmd(opts),
		newSessionExecCmd(opts),
		newSessionDeleteCmd(opts),
	)

	return cmd
}

func newSessionCreateCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Start a new interpreter session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}

			created, err := client.CreateSession(cmd.Context())
			if err != nil {
				return fmt.Errorf("create session: %w", err)
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), created)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n",
				sanitizeForTerminal(string(created.SessionID)), sanitizeForTerminal(created.MachineID))
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newSessionListCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions owned by the server's machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}

			listed, err := client.ListSessions(cmd.Context())
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), listed)
			}
			for _, session := range listed.Sessions {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n",
					sanitizeForTerminal(string(session.SessionID)),
					session.State,
					session.LastActivity.Local().Format(time.RFC3339))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newSessionExecCmd(opts *rootOptions) *cobra.Command {
	var (
		codeFile string
		timeout  time.Duration
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "exec <session-id> [code...]",
		Short: "Run code in a session, wherever in the fleet it lives",
		Long:  "Run code in a session. Code comes from --file, the remaining arguments, or stdin, in that order.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := readCode(cmd, args[1:], codeFile)
			if err != nil {
				return err
			}

			client, err := opts.client()
			if err != nil {
				return err
			}

			result, err := client.Execute(cmd.Context(), domain.SessionID(args[0]), code, timeout)
			if err != nil {
				return fmt.Errorf("execute in session %s: %w", sanitizeForTerminal(args[0]), err)
			}

			if asJSON {
				if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
				if !result.Success {
					return errExecutionFailed
				}
				return nil
			}
			return writeExecution(cmd, result)
		},
	}

	cmd.Flags().StringVarP(&codeFile, "file", "f", "", "Read code from a file (- for stdin)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Execution budget, rounded up to whole seconds (default: server setting)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newSessionDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <session-id>",
		Aliases: []string{"rm"},
		Short:   "Stop a session and remove its workspace",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}

			if err := client.DeleteSession(cmd.Context(), domain.SessionID(args[0])); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", sanitizeForTerminal(args[0]))
			return err
		},
	}
}
