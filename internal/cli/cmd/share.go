package cmd

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/driveclone/backend/internal/cli/api"
	"github.com/driveclone/backend/internal/cli/output"
	"github.com/spf13/cobra"
)

var (
	flagPrivate   bool
	flagViewers   []string
	flagEditors   []string
	flagExpiresIn int
)

var shareCmd = &cobra.Command{
	Use:   "share <file-id>",
	Short: "Generate a share link",
	Long: `Generate a new share link for a file. Every call rotates the token,
so earlier links stop working.

  driveclone share <file-id>
  driveclone share <file-id> --private    Keep a token but refuse public access`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.ShareResponse
		body := map[string]bool{"is_public": !flagPrivate}
		if err := apiClient.Post("/files/share/"+url.PathEscape(args[0]), body, &resp); err != nil {
			return fmt.Errorf("sharing: %w", err)
		}

		if flagJSON {
			output.JSON(cmd.OutOrStdout(), resp)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), resp.ShareLink)
		return nil
	},
}

var permsCmd = &cobra.Command{
	Use:   "perms <file-id>",
	Short: "Replace the viewer and editor lists of a file",
	Long: `Replace both grant lists. Omitted lists become empty.

  driveclone perms <file-id> --viewer a@example.com --viewer b@example.com --editor c@example.com`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		body := api.Permissions{Viewer: flagViewers, Editor: flagEditors}
		var resp api.PermissionsResponse
		if err := apiClient.Post("/files/permissions/"+url.PathEscape(args[0]), body, &resp); err != nil {
			return fmt.Errorf("updating permissions: %w", err)
		}

		if flagJSON {
			output.JSON(cmd.OutOrStdout(), resp.Permissions)
			return nil
		}
		output.Permissions(cmd.OutOrStdout(), resp.Permissions)
		return nil
	},
}

var publicCmd = &cobra.Command{
	Use:   "public <share-token>",
	Short: "Resolve a share token to a download URL (no login needed)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		if cmd.Flags().Changed("expires-in") {
			params.Set("expires_in", strconv.Itoa(flagExpiresIn))
		}

		var resp api.PublicFileResponse
		if err := apiClient.Get("/files/public/"+url.PathEscape(args[0]), params, &resp); err != nil {
			return fmt.Errorf("resolving link: %w", err)
		}

		if flagJSON {
			output.JSON(cmd.OutOrStdout(), resp)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s, valid %ds)\n%s\n", resp.File.Filename, resp.File.Type, resp.ExpiresIn, resp.SignedURL)
		return nil
	},
}

func init() {
	shareCmd.Flags().BoolVar(&flagPrivate, "private", false, "Mark the file private")
	permsCmd.Flags().StringSliceVar(&flagViewers, "viewer", nil, "Email granted viewer access (repeatable)")
	permsCmd.Flags().StringSliceVar(&flagEditors, "editor", nil, "Email granted editor access (repeatable)")
	publicCmd.Flags().IntVar(&flagExpiresIn, "expires-in", 3600, "Signed URL lifetime in seconds (MinIO and S3 allow at most 604800)")
	rootCmd.AddCommand(shareCmd, permsCmd, publicCmd)
}
