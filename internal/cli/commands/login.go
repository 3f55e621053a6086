package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marquee-dev/marquee/internal/account"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var username, password string
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the review service",
		RunE: func(cmd *cobra.Command, args []string) error {
			if passwordStdin {
				p, err := readSecretFromInput(cmd.InOrStdin())
				if err != nil {
					return err
				}
				password = p
			}
			return runLogin(cmd.Context(), username, password, cmdOptions(cmd)...)
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (or set MARQUEE_USERNAME)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (or set MARQUEE_PASSWORD, will prompt if not provided)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")

	return cmd
}

func runLogin(ctx context.Context, username, password string, opts ...Option) error {
	o, err := newOptions(opts)
	if err != nil {
		return err
	}

	// Check for environment variables (useful for scripts)
	if username == "" {
		username = os.Getenv("MARQUEE_USERNAME")
	}
	if password == "" {
		password = os.Getenv("MARQUEE_PASSWORD")
	}

	fmt.Fprintf(o.out, "Logging in to %s...\n", o.app.API.BaseURL())
	if err := o.login(ctx, username, password); err != nil {
		if errors.Is(err, account.ErrInvalidCredentials) {
			return fmt.Errorf("login failed: %w", err)
		}
		return err
	}
	return nil
}

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(cmd.Context(), cmdOptions(cmd)...)
		},
	}
}

func runLogout(ctx context.Context, opts ...Option) error {
	o, err := newOptions(opts)
	if err != nil {
		return err
	}

	username, err := o.app.Sessions.Username()
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}
	if err := o.app.Accounts.Logout(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	if username == "" {
		fmt.Fprintln(o.out, "Not logged in.")
		return nil
	}
	fmt.Fprintf(o.out, "✓ Logged out %s.\n", username)
	return nil
}

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami(cmdOptions(cmd)...)
		},
	}
}

func runWhoami(opts ...Option) error {
	o, err := newOptions(opts)
	if err != nil {
		return err
	}

	sess, err := o.app.Sessions.Load()
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}
	if !sess.Authenticated() {
		fmt.Fprintln(o.out, "Not logged in.")
		fmt.Fprintln(o.out, "\nLog in with: marquee login")
		return nil
	}

	fmt.Fprintf(o.out, "User:    %s\n", sess.Username)
	if sess.UserID != "" {
		fmt.Fprintf(o.out, "ID:      %s\n", sess.UserID)
	}
	role := "User"
	if sess.IsAdmin {
		role = "Admin"
	}
	fmt.Fprintf(o.out, "Role:    %s\n", role)
	fmt.Fprintf(o.out, "Backend: %s\n", o.app.API.BaseURL())
	return nil
}
