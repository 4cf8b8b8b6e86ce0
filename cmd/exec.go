package cmd

import (
	"fmt"
	"time"

	"github.com/bnema/orca/internal/domain"
	"github.com/spf13/cobra"
)

func newExecCmd(opts *rootOptions) *cobra.Command {
	var (
		tenant   string
		codeFile string
		timeout  time.Duration
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "exec --tenant <id> [code...]",
		Short: "Run code in a tenant's isolated host",
		Long:  "Run code in the tenant's isolated host, starting the host on first use. Code comes from --file, the arguments, or stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := readCode(cmd, args, codeFile)
			if err != nil {
				return err
			}

			client, err := opts.client()
			if err != nil {
				return err
			}

			result, err := client.ExecuteTenant(cmd.Context(), domain.TenantID(tenant), code, timeout)
			if err != nil {
				return fmt.Errorf("execute for tenant %s: %w", sanitizeForTerminal(tenant), err)
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

			for _, display := range result.Displays {
				label := string(display.Type)
				if display.Format != "" {
					label += "/" + display.Format
				}
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "[display %s, %d bytes]\n", label, len(display.Data))
			}
			return writeExecution(cmd, result.ExecutionResult)
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "Tenant id")
	cmd.Flags().StringVarP(&codeFile, "file", "f", "", "Read code from a file (- for stdin)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Execution budget, rounded up to whole seconds (default: server setting)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	_ = cmd.MarkFlagRequired("tenant")

	return cmd
}
