package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/marquee-dev/marquee/internal/authz"
	"github.com/marquee-dev/marquee/internal/catalog"
	"github.com/marquee-dev/marquee/internal/client"
)

// NewProfileCmd creates the profile command group
func NewProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show your account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfile(cmd.Context(), cmdOptions(cmd)...)
		},
	}

	var form catalog.ProfileForm
	update := &cobra.Command{
		Use:   "update",
		Short: "Change your name, email or age",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdateProfile(cmd.Context(), form, cmdOptions(cmd)...)
		},
	}
	update.Flags().StringVar(&form.FirstName, "first-name", "", "First name")
	update.Flags().StringVar(&form.LastName, "last-name", "", "Last name")
	update.Flags().StringVar(&form.Email, "email", "", "Email address")
	update.Flags().IntVar(&form.Age, "age", 0, "Age")

	cmd.AddCommand(update)
	return cmd
}

func runProfile(ctx context.Context, opts ...Option) error {
	o, err := newOptions(opts)
	if err != nil {
		return err
	}
	if err := o.authorize(ctx, authz.ProfilePage, false); err != nil {
		return err
	}

	user, err := o.app.Catalog.Profile(ctx)
	if err != nil {
		return err
	}
	printUser(o, user)
	return nil
}

func runUpdateProfile(ctx context.Context, form catalog.ProfileForm, opts ...Option) error {
	o, err := newOptions(opts)
	if err != nil {
		return err
	}
	if err := o.authorize(ctx, authz.ProfilePage, false); err != nil {
		return err
	}
	if form == (catalog.ProfileForm{}) {
		return fmt.Errorf("nothing to update (use --first-name, --last-name, --email or --age)")
	}

	user, err := o.app.Catalog.UpdateProfile(ctx, form)
	if err != nil {
		return err
	}
	fmt.Fprintln(o.out, "✓ Profile updated.")
	printUser(o, user)
	return nil
}

func printUser(o *options, u *client.User) {
	w := tabwriter.NewWriter(o.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Username:\t%s\n", u.Username)
	fmt.Fprintf(w, "Name:\t%s %s\n", u.FirstName, u.LastName)
	fmt.Fprintf(w, "Email:\t%s\n", u.Email)
	fmt.Fprintf(w, "Age:\t%s\n", orDash(u.Age))
	if u.IsAdmin {
		fmt.Fprintf(w, "Role:\t%s\n", "Admin")
	}
	w.Flush()
}
