package cmd

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/driveclone/backend/internal/cli/api"
	"github.com/driveclone/backend/internal/cli/output"
	"github.com/spf13/cobra"
)

var trashCmd = &cobra.Command{
	Use:   "trash",
	Short: "Manage the Trash",
	Long: `Move files to Trash, restore them or delete them for good.

  driveclone trash ls
  driveclone trash add <file-id>...
  driveclone trash restore <file-id>
  driveclone trash purge <file-id>
  driveclone trash sweep              Purge everything trashed over 30 days ago`,
}

var trashLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List files in Trash, most recently trashed first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.FilesResponse
		if err := apiClient.Get("/files/trash", nil, &resp); err != nil {
			return fmt.Errorf("listing trash: %w", err)
		}

		if flagJSON {
			output.JSON(cmd.OutOrStdout(), resp.Files)
			return nil
		}
		output.FileTable(cmd.OutOrStdout(), resp.Files, true)
		return nil
	},
}

var trashAddCmd = &cobra.Command{
	Use:   "add <file-id>...",
	Short: "Move files to Trash",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var failed int
		for _, id := range args {
			if err := apiClient.Post("/files/trash/"+url.PathEscape(id), nil, nil); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "  ✗ %s: %v\n", id, err)
				failed++
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to Trash\n", id)
		}
		if failed > 0 {
			return fmt.Errorf("%d file(s) could not be trashed", failed)
		}
		return nil
	},
}

var trashRestoreCmd = &cobra.Command{
	Use:   "restore <file-id>",
	Short: "Restore a file from Trash",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return trashAction(cmd, http.MethodPost, "/files/trash/"+url.PathEscape(args[0])+"/restore", "restoring")
	},
}

var trashPurgeCmd = &cobra.Command{
	Use:   "purge <file-id>",
	Short: "Permanently delete a file and its blob",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return trashAction(cmd, http.MethodDelete, "/files/trash/"+url.PathEscape(args[0])+"/purge", "purging")
	},
}

var trashSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Purge every file trashed more than 30 days ago",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.PurgeResponse
		if err := apiClient.Post("/files/trash/purge_older_than_30d", nil, &resp); err != nil {
			return fmt.Errorf("sweeping trash: %w", err)
		}

		if flagJSON {
			output.JSON(cmd.OutOrStdout(), resp)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Purged %d file(s)\n", resp.Purged)
		for _, id := range resp.Failed {
			fmt.Fprintf(cmd.ErrOrStderr(), "  ✗ %s: kept, blob removal failed\n", id)
		}
		return nil
	},
}

func init() {
	trashCmd.AddCommand(trashLsCmd, trashAddCmd, trashRestoreCmd, trashPurgeCmd, trashSweepCmd)
	rootCmd.AddCommand(trashCmd)
}

func trashAction(cmd *cobra.Command, method, path, verb string) error {
	if err := requireAuth(); err != nil {
		return err
	}

	var resp api.MessageResponse
	var err error
	if method == http.MethodDelete {
		err = apiClient.Delete(path, &resp)
	} else {
		err = apiClient.Post(path, nil, &resp)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", verb, err)
	}

	if flagJSON {
		output.JSON(cmd.OutOrStdout(), resp)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
	return nil
}
