package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/marquee-dev/marquee/internal/account"
)

// NewRegisterCmd creates the register command
func NewRegisterCmd() *cobra.Command {
	var req account.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(cmd.Context(), req, cmdOptions(cmd)...)
		},
	}

	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "Username (3-32 characters)")
	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().IntVar(&req.Age, "age", 0, "Age (13 or older)")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "Password (at least 8 characters, will prompt if not provided)")

	return cmd
}

func runRegister(ctx context.Context, req account.RegisterRequest, opts ...Option) error {
	o, err := newOptions(opts)
	if err != nil {
		return err
	}

	fields := []struct {
		label string
		dst   *string
	}{
		{"Username", &req.Username},
		{"First name", &req.FirstName},
		{"Last name", &req.LastName},
		{"Email", &req.Email},
	}
	for _, f := range fields {
		if *f.dst != "" || !o.interactive {
			continue
		}
		if *f.dst, err = o.prompt(f.label, false); err != nil {
			return err
		}
	}
	if req.Age == 0 && o.interactive {
		answer, err := o.prompt("Age", false)
		if err != nil {
			return err
		}
		if req.Age, err = strconv.Atoi(answer); err != nil {
			return fmt.Errorf("age must be a number")
		}
	}
	if req.Password == "" && o.interactive {
		if req.Password, err = o.password("Password"); err != nil {
			return err
		}
		if req.ConfirmPassword, err = o.password("Confirm password"); err != nil {
			return err
		}
	} else if req.ConfirmPassword == "" {
		req.ConfirmPassword = req.Password
	}

	sess, err := o.app.Accounts.Register(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintln(o.out, "✓ Account created!")
	fmt.Fprintf(o.out, "  Logged in as %s\n", sess.Username)
	return nil
}

// NewResetPasswordCmd creates the reset-password command
func NewResetPasswordCmd() *cobra.Command {
	var email, token, password string

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Request a password reset token, or use one to set a new password",
		Example: `  marquee reset-password --email ann@example.com
  marquee reset-password --token <token-from-email>`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResetPassword(cmd.Context(), email, token, password, cmdOptions(cmd)...)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Send a reset token to this address")
	cmd.Flags().StringVar(&token, "token", "", "Reset token received by email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "New password (will prompt if not provided)")
	cmd.MarkFlagsMutuallyExclusive("email", "token")
	cmd.MarkFlagsOneRequired("email", "token")

	return cmd
}

func runResetPassword(ctx context.Context, email, token, password string, opts ...Option) error {
	o, err := newOptions(opts)
	if err != nil {
		return err
	}

	if email != "" {
		msg, err := o.app.Accounts.ForgotPassword(ctx, email)
		if err != nil {
			return err
		}
		fmt.Fprintln(o.out, msg)
		fmt.Fprintln(o.out, "\nThen run: marquee reset-password --token <token>")
		return nil
	}

	if password == "" {
		if password, err = o.password("New password"); err != nil {
			return err
		}
	}
	msg, err := o.app.Accounts.ResetPassword(ctx, token, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(o.out, "✓ %s\n", msg)
	return nil
}
