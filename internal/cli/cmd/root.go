package cmd

import (
	"fmt"
	"os"

	"github.com/driveclone/backend/internal/cli/api"
	"github.com/driveclone/backend/internal/cli/config"
	"github.com/spf13/cobra"
)

var (
	flagJSON      bool
	flagServerURL string

	cfg       *config.Config
	apiClient *api.Client
)

var rootCmd = &cobra.Command{
	Use:   "driveclone",
	Short: "Drive Clone CLI: manage your files from the terminal",
	Long: `driveclone talks to a Drive Clone backend to upload, list, share
and trash files without leaving the terminal.

Get started:
  driveclone signup you@example.com   Create an account
  driveclone login you@example.com    Sign in
  driveclone ls                       List your files
  driveclone upload report.pdf        Upload a file`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if flagServerURL != "" {
			cfg.ServerURL = flagServerURL
		}
		apiClient = api.NewClient(cfg.ServerURL, cfg.Token)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().StringVar(&flagServerURL, "server", "", "Override server URL (default: from config or http://localhost:5000)")
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func requireAuth() error {
	if cfg == nil || !cfg.HasToken() {
		return fmt.Errorf("not authenticated: run \"driveclone login\" first")
	}
	return nil
}
