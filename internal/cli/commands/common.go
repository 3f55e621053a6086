package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/marquee-dev/marquee/internal/app"
	"github.com/marquee-dev/marquee/internal/authz"
)

// ErrLoginRequired is returned when a protected command runs without a usable
// session and there is no terminal to log in on.
var ErrLoginRequired = errors.New("login required. Please run 'marquee login' first")

type appKey struct{}

// NewContext returns ctx carrying a.
func NewContext(ctx context.Context, a *app.App) context.Context {
	return context.WithValue(ctx, appKey{}, a)
}

// FromContext returns the App stored by NewContext, or nil.
func FromContext(ctx context.Context) *app.App {
	if ctx == nil {
		return nil
	}
	a, _ := ctx.Value(appKey{}).(*app.App)
	return a
}

// options are shared by every command's run function so tests can inject the
// app, the output and the input.
type options struct {
	app         *app.App
	out         io.Writer
	in          io.Reader
	interactive bool
	lines       *bufio.Reader
}

// Option configures a command run.
type Option func(*options)

// WithApp sets the app the command runs against.
func WithApp(a *app.App) Option {
	return func(o *options) { o.app = a }
}

// WithOutput redirects command output.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithInput sets where answers to prompts are read from.
func WithInput(r io.Reader) Option {
	return func(o *options) { o.in = r }
}

// WithInteractive forces prompting on or off.
func WithInteractive(interactive bool) Option {
	return func(o *options) { o.interactive = interactive }
}

func newOptions(opts []Option) (*options, error) {
	o := &options{
		out:         os.Stdout,
		in:          os.Stdin,
		interactive: term.IsTerminal(int(os.Stdin.Fd())),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.app == nil {
		return nil, errors.New("internal error: command started without configuration")
	}
	return o, nil
}

// cmdOptions returns the options every RunE passes to its run function.
func cmdOptions(cmd *cobra.Command) []Option {
	return []Option{
		WithApp(FromContext(cmd.Context())),
		WithOutput(cmd.OutOrStdout()),
		WithInput(cmd.InOrStdin()),
	}
}

// authorize runs view through the authorizer. A refused view sends the user to
// the login prompt on a terminal and fails otherwise.
func (o *options) authorize(ctx context.Context, view authz.View, admin bool) error {
	check := o.app.Authz.Authorize
	if admin {
		check = o.app.Authz.AuthorizeAdmin
	}

	decided, err := check(view)
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}
	if !authz.IsRedirect(decided) {
		return nil
	}
	if !o.interactive {
		return ErrLoginRequired
	}

	fmt.Fprintf(o.out, "%s requires login.\n", view.Route())
	if err := o.login(ctx, "", ""); err != nil {
		return err
	}

	decided, err = check(view)
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}
	if authz.IsRedirect(decided) {
		return ErrLoginRequired
	}
	return nil
}

// login prompts for whatever credentials are missing and logs in.
func (o *options) login(ctx context.Context, username, password string) error {
	var err error
	if username == "" {
		if username, err = o.prompt("Username", false); err != nil {
			return err
		}
	}
	if password == "" {
		if password, err = o.password("Password"); err != nil {
			return err
		}
	}

	sess, err := o.app.Accounts.Login(ctx, username, password)
	if err != nil {
		return err
	}

	fmt.Fprintln(o.out, "✓ Login successful!")
	fmt.Fprintf(o.out, "  User: %s\n", sess.Username)
	if sess.IsAdmin {
		fmt.Fprintln(o.out, "  Role: Admin")
	}
	return nil
}

// prompt asks for a line of text. On a terminal it uses promptui; otherwise it
// reads the next line of input.
func (o *options) prompt(label string, optional bool) (string, error) {
	if o.interactive && o.in == os.Stdin {
		p := promptui.Prompt{Label: label}
		if !optional {
			p.Validate = func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("%s is required", strings.ToLower(label))
				}
				return nil
			}
		}
		v, err := p.Run()
		if err != nil {
			return "", fmt.Errorf("prompt aborted: %w", err)
		}
		return strings.TrimSpace(v), nil
	}

	if !o.interactive {
		return "", fmt.Errorf("%s is required in non-interactive mode", strings.ToLower(label))
	}
	fmt.Fprintf(o.out, "%s: ", label)
	return o.readLine()
}

// password asks for a secret without echoing it on a terminal.
func (o *options) password(label string) (string, error) {
	if f, ok := o.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprintf(o.out, "%s: ", label)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(o.out)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}
	if !o.interactive {
		return "", fmt.Errorf("%s is required in non-interactive mode", strings.ToLower(label))
	}
	fmt.Fprintf(o.out, "%s: ", label)
	return o.readLine()
}

func (o *options) readLine() (string, error) {
	if o.lines == nil {
		o.lines = bufio.NewReader(o.in)
	}
	line, err := o.lines.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// confirm asks a yes/no question. Without a terminal the answer is no.
func (o *options) confirm(label string) bool {
	if !o.interactive {
		return false
	}
	if o.in == os.Stdin {
		_, err := (&promptui.Prompt{Label: label, IsConfirm: true}).Run()
		return err == nil
	}
	fmt.Fprintf(o.out, "%s [y/N]: ", label)
	answer, err := o.readLine()
	return err == nil && strings.EqualFold(strings.TrimSpace(answer), "y")
}

// readSecretFromInput reads a password piped on stdin.
func readSecretFromInput(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read password from stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}
