package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bnema/orca/internal/adapters/httpapi"
	statusadapter "github.com/bnema/orca/internal/adapters/render/status"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	var (
		asJSON    bool
		idleAfter time.Duration
		noSpinner bool
		width     int
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show sessions, capacity and hosts of a running server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}

			var status httpapi.StatusResponse
			fetch := func(ctx context.Context) error {
				var err error
				status, err = client.Status(ctx)
				return err
			}
			if asJSON || noSpinner {
				err = fetch(cmd.Context())
			} else {
				err = fetchStatusWithSpinner(cmd.Context(), cmd.ErrOrStderr(), client.Server(), opts.now, fetch)
			}
			if err != nil {
				return fmt.Errorf("fetch status: %w", err)
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), status)
			}

			rendered, err := opts.render(status.Status(), statusadapter.RenderOptions{
				Now:       opts.now(),
				IdleAfter: idleAfter,
				Width:     renderWidth(width, cmd.OutOrStdout()),
			})
			if err != nil {
				return fmt.Errorf("render status: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	cmd.Flags().DurationVar(&idleAfter, "idle-after", 10*time.Minute, "Mark sessions inactive for longer as idle")
	cmd.Flags().BoolVar(&noSpinner, "no-spinner", false, "Do not show a progress spinner")
	cmd.Flags().IntVar(&width, "width", 0, "Clip output to this many columns (default: terminal width)")

	return cmd
}

// renderWidth is the explicit width when set, else the width of the terminal
// out writes to. Non-terminal output is not clipped.
func renderWidth(explicit int, out io.Writer) int {
	if explicit != 0 {
		return explicit
	}
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(f.Fd()) {
		return 0
	}
	w, _, err := term.GetSize(f.Fd())
	if err != nil {
		return 0
	}
	return w
}
