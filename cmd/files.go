package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bnema/orca/internal/domain"
	"github.com/spf13/cobra"
)

func newFilesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Manage datasets in a tenant workspace",
	}

	cmd.AddCommand(
		newFilesUploadCmd(opts),
		newFilesListCmd(opts),
		newFilesDeleteCmd(opts),
	)

	return cmd
}

func newFilesUploadCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <tenant> <path>...",
		Short: "Upload local files into the tenant workspace",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}

			tenant := domain.TenantID(args[0])
			for _, path := range args[1:] {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("open %s: %w", path, err)
				}
				saved, err := client.UploadFile(cmd.Context(), tenant, filepath.Base(path), f)
				_ = f.Close()
				if err != nil {
					return fmt.Errorf("upload %s: %w", path, err)
				}
				for _, file := range saved {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", sanitizeForTerminal(file.Name), file.Size)
				}
			}
			return nil
		},
	}
}

func newFilesListCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list <tenant>",
		Short: "List files in the tenant workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}

			files, err := client.ListFiles(cmd.Context(), domain.TenantID(args[0]))
			if err != nil {
				return fmt.Errorf("list files: %w", err)
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), files)
			}
			for _, file := range files {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", sanitizeForTerminal(file.Name), file.Size)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newFilesDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <tenant> <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a file from the tenant workspace",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}

			if err := client.DeleteFile(cmd.Context(), domain.TenantID(args[0]), args[1]); err != nil {
				return fmt.Errorf("delete file: %w", err)
			}
			return nil
		},
	}
}
