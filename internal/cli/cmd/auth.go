package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/driveclone/backend/internal/cli/api"
	"github.com/driveclone/backend/internal/cli/config"
	"github.com/driveclone/backend/internal/cli/output"
	"github.com/spf13/cobra"
)

var flagPassword string

var signupCmd = &cobra.Command{
	Use:   "signup <email>",
	Short: "Create an account and sign in",
	Long: `Create an account with the identity provider behind the server.
The password is read from --password or, when omitted, from stdin.

  driveclone signup you@example.com --password s3cret!`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return authenticate(cmd, "/auth/signup", args[0])
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Sign in and store the access token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return authenticate(cmd, "/auth/login", args[0])
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Clear(); err != nil {
			return fmt.Errorf("clearing config: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current authenticated user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.ProfileResponse
		if err := apiClient.Get("/auth/profile", nil, &resp); err != nil {
			var apiErr *api.APIError
			if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
				return fmt.Errorf("session expired: run \"driveclone login\" again")
			}
			return fmt.Errorf("fetching profile: %w", err)
		}

		if flagJSON {
			output.JSON(cmd.OutOrStdout(), resp.User)
			return nil
		}
		output.UserInfo(cmd.OutOrStdout(), resp.User)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{signupCmd, loginCmd} {
		c.Flags().StringVarP(&flagPassword, "password", "p", "", "Account password (read from stdin when omitted)")
	}
	rootCmd.AddCommand(signupCmd, loginCmd, logoutCmd, whoamiCmd)
}

func authenticate(cmd *cobra.Command, path, email string) error {
	password := flagPassword
	if password == "" {
		var err error
		password, err = readPassword(cmd.InOrStdin())
		if err != nil {
			return err
		}
	}

	var resp api.AuthResponse
	if err := apiClient.Post(path, api.Credentials{Email: email, Password: password}, &resp); err != nil {
		return fmt.Errorf("authenticating: %w", err)
	}
	if resp.AccessToken == "" {
		return fmt.Errorf("server returned no access token")
	}

	cfg.Token = resp.AccessToken
	cfg.Email = email
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	if flagJSON {
		output.JSON(cmd.OutOrStdout(), resp)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", email)
	return nil
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", fmt.Errorf("password required")
	}
	return password, nil
}
