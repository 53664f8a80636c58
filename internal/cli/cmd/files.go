package cmd

import (
	"fmt"
	"net/url"

	"github.com/driveclone/backend/internal/cli/api"
	"github.com/driveclone/backend/internal/cli/output"
	"github.com/spf13/cobra"
)

var flagTrashed bool

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List your files, newest first",
	Long: `List files you own.

  driveclone ls              Active files
  driveclone ls --trashed    Files in Trash`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		params := url.Values{}
		if flagTrashed {
			params.Set("trashed", "true")
		}

		var resp api.FilesResponse
		if err := apiClient.Get("/files", params, &resp); err != nil {
			return fmt.Errorf("listing files: %w", err)
		}

		if flagJSON {
			output.JSON(cmd.OutOrStdout(), resp.Files)
			return nil
		}
		output.FileTable(cmd.OutOrStdout(), resp.Files, flagTrashed)
		return nil
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename <file-id> <new-name>",
	Short: "Rename a file you own",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.MessageResponse
		body := map[string]string{"name": args[1]}
		if err := apiClient.Post("/files/file/"+url.PathEscape(args[0])+"/rename", body, &resp); err != nil {
			return fmt.Errorf("renaming: %w", err)
		}

		if flagJSON {
			output.JSON(cmd.OutOrStdout(), resp)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Renamed to %s\n", args[1])
		return nil
	},
}

var urlCmd = &cobra.Command{
	Use:   "url <file-id>",
	Short: "Print a one-hour download URL",
	Long: `Mint a signed download URL valid for one hour. Works for files you own
and files whose owner granted your email viewer or editor access.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.SignedURLResponse
		if err := apiClient.Get("/files/file/"+url.PathEscape(args[0])+"/signed-url", nil, &resp); err != nil {
			return fmt.Errorf("creating signed URL: %w", err)
		}

		if flagJSON {
			output.JSON(cmd.OutOrStdout(), resp)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), resp.SignedURL)
		return nil
	},
}

func init() {
	lsCmd.Flags().BoolVar(&flagTrashed, "trashed", false, "List files in Trash instead")
	rootCmd.AddCommand(lsCmd, renameCmd, urlCmd)
}
