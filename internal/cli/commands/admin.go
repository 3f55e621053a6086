package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/marquee-dev/marquee/internal/authz"
	"github.com/marquee-dev/marquee/internal/client"
	"github.com/marquee-dev/marquee/internal/moderation"
)

// NewAdminCmd creates the admin command group
func NewAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Moderate reviews and manage users (admins only)",
	}

	cmd.AddCommand(newFlagsCmd())
	cmd.AddCommand(newFlagActionCmd(flagAccept, "Uphold a flag and remove the review"))
	cmd.AddCommand(newFlagActionCmd(flagReject, "Dismiss a flag and keep the review"))
	cmd.AddCommand(newFlagActionCmd(flagDelete, "Delete a flagged review"))
	cmd.AddCommand(newUsersCmd())
	cmd.AddCommand(newAdminRightsCmd("grant", "Make a user an admin", true))
	cmd.AddCommand(newAdminRightsCmd("revoke", "Take admin rights from a user", false))
	cmd.AddCommand(newAdminMovieCmd())

	return cmd
}

type flagAction string

const (
	flagAccept flagAction = "accept"
	flagReject flagAction = "reject"
	flagDelete flagAction = "delete"
)

func (a flagAction) apply(ctx context.Context, svc *moderation.Service, page *moderation.QueuePage, reviewID int64) (string, error) {
	switch a {
	case flagAccept:
		return svc.Accept(ctx, page, reviewID)
	case flagReject:
		return svc.Reject(ctx, page, reviewID)
	case flagDelete:
		return svc.Delete(ctx, page, reviewID)
	default:
		return "", fmt.Errorf("unknown action %q", a)
	}
}

func newFlagsCmd() *cobra.Command {
	var page int
	var interactive bool

	cmd := &cobra.Command{
		Use:   "flags",
		Short: "List flagged reviews",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlags(cmd.Context(), page, interactive, cmdOptions(cmd)...)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page of the queue")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Step through the queue and act on each review")

	return cmd
}

func runFlags(ctx context.Context, page int, interactive bool, opts ...Option) error {
	o, err := newOptions(opts)
	if err != nil {
		return err
	}
	if err := o.authorize(ctx, authz.AdminFlags, true); err != nil {
		return err
	}

	q, err := o.app.Moderation.FlagQueue(ctx, page)
	if err != nil {
		return err
	}
	if interactive {
		if !o.interactive {
			return errors.New("--interactive needs a terminal")
		}
		return moderateInteractively(ctx, o, q)
	}

	printQueue(o, q)
	return nil
}

func printQueue(o *options, q *moderation.QueuePage) {
	fmt.Fprintf(o.out, "Flagged reviews: %d (page %d of %d)\n\n", q.TotalFlagged, q.Page, max(q.PageCount, 1))
	if len(q.Reviews) == 0 {
		fmt.Fprintln(o.out, "Nothing to moderate.")
		return
	}

	w := tabwriter.NewWriter(o.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "REVIEW\tMOVIE\tUSER\tREASON\tCONTENT")
	fmt.Fprintln(w, "──────\t─────\t────\t──────\t───────")
	for _, r := range q.Reviews {
		fmt.Fprintf(w, "%d\t%d\t%d\t%s\t%s\n", r.TargetID(), r.MovieID, r.UserID, r.FlaggedReason, truncate(r.Content, 60))
	}
	w.Flush()

	if q.HasNext() {
		fmt.Fprintf(o.out, "\nNext page: marquee admin flags --page %d\n", q.Page+1)
	}
}

// moderateInteractively walks the queue with promptui, applying each action
// to the page in place.
func moderateInteractively(ctx context.Context, o *options, q *moderation.QueuePage) error {
	for {
		items := make([]string, 0, len(q.Reviews)+3)
		for _, r := range q.Reviews {
			items = append(items, fmt.Sprintf("#%d [%s] %s", r.TargetID(), r.FlaggedReason, truncate(r.Content, 50)))
		}
		if q.HasPrev() {
			items = append(items, "← previous page")
		}
		if q.HasNext() {
			items = append(items, "→ next page")
		}
		items = append(items, "quit")

		sel := promptui.Select{
			Label: fmt.Sprintf("Flagged reviews: %d (page %d of %d)", q.TotalFlagged, q.Page, max(q.PageCount, 1)),
			Items: items,
			Size:  12,
		}
		idx, choice, err := sel.Run()
		if err != nil {
			return nil
		}

		switch {
		case choice == "quit":
			return nil
		case strings.HasPrefix(choice, "←"), strings.HasPrefix(choice, "→"):
			next := q.Page + 1
			if strings.HasPrefix(choice, "←") {
				next = q.Page - 1
			}
			if q, err = o.app.Moderation.FlagQueue(ctx, next); err != nil {
				return err
			}
			continue
		}

		target := q.Reviews[idx].TargetID()
		act := promptui.Select{
			Label: fmt.Sprintf("Review #%d", target),
			Items: []flagAction{flagAccept, flagReject, flagDelete, "skip"},
		}
		_, action, err := act.Run()
		if err != nil || action == "skip" {
			continue
		}
		msg, err := flagAction(action).apply(ctx, o.app.Moderation, q, target)
		if err != nil {
			fmt.Fprintf(o.out, "✗ %v\n", err)
			continue
		}
		fmt.Fprintf(o.out, "✓ %s\n", msg)
	}
}

func newFlagActionCmd(action flagAction, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(action) + " <review-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("review", args[0])
			if err != nil {
				return err
			}
			return runFlagAction(cmd.Context(), action, id, cmdOptions(cmd)...)
		},
	}
}

func runFlagAction(ctx context.Context, action flagAction, reviewID int64, opts ...Option) error {
	o, err := newOptions(opts)
	if err != nil {
		return err
	}
	if err := o.authorize(ctx, authz.AdminFlags, true); err != nil {
		return err
	}

	msg, err := action.apply(ctx, o.app.Moderation, nil, reviewID)
	if err != nil {
		return err
	}
	fmt.Fprintf(o.out, "✓ %s\n", msg)
	return nil
}

func newUsersCmd() *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List user accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsers(cmd.Context(), page, cmdOptions(cmd)...)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page of the user list")

	return cmd
}

func runUsers(ctx context.Context, page int, opts ...Option) error {
	o, err := newOptions(opts)
	if err != nil {
		return err
	}
	if err := o.authorize(ctx, authz.AdminUsers, true); err != nil {
		return err
	}

	p, err := o.app.Moderation.Users(ctx, page)
	if err != nil {
		return err
	}
	if len(p.Users) == 0 {
		fmt.Fprintf(o.out, "No users on page %d.\n", p.Page)
		return nil
	}
	printUsers(o, p.Users)
	if p.HasNext {
		fmt.Fprintf(o.out, "\nNext page: marquee admin users --page %d\n", p.Page+1)
	}
	return nil
}

func printUsers(o *options, users []client.User) {
	w := tabwriter.NewWriter(o.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tNAME\tEMAIL\tROLE")
	fmt.Fprintln(w, "──\t────────\t────\t─────\t────")
	for _, u := range users {
		role := "user"
		if u.IsAdmin {
			role = "admin"
		}
		if u.IsBanned {
			role += " (banned)"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", u.ID, u.Username, strings.TrimSpace(u.FirstName+" "+u.LastName), u.Email, role)
	}
	w.Flush()
}

func newAdminRightsCmd(use, short string, grant bool) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   use + " <user-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("user", args[0])
			if err != nil {
				return err
			}
			return runAdminRights(cmd.Context(), id, grant, yes, cmdOptions(cmd)...)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

func runAdminRights(ctx context.Context, userID int64, grant, yes bool, opts ...Option) error {
	o, err := newOptions(opts)
	if err != nil {
		return err
	}
	if err := o.authorize(ctx, authz.AdminUsers, true); err != nil {
		return err
	}

	if !yes {
		question := fmt.Sprintf("Revoke admin rights from user #%d", userID)
		if grant {
			question = fmt.Sprintf("Grant admin rights to user #%d", userID)
		}
		if !o.confirm(question) {
			return errors.New("aborted (use --yes to skip confirmation)")
		}
	}

	var msg string
	if grant {
		msg, err = o.app.Moderation.Grant(ctx, nil, userID)
	} else {
		msg, err = o.app.Moderation.Revoke(ctx, nil, userID)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(o.out, "✓ %s\n", msg)
	return nil
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
