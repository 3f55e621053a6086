package commands

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/marquee-dev/marquee/internal/web"
)

// NewWebCmd creates the web command
func NewWebCmd() *cobra.Command {
	var addr string
	var open bool

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Serve the browser UI locally",
		Long: `Serve the browser UI on a local address until interrupted.

The web UI shares its session with the terminal client: logging in or out in
one is seen by the other.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWeb(cmd.Context(), addr, open, cmdOptions(cmd)...)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Address to listen on (default from config)")
	cmd.Flags().BoolVar(&open, "open", false, "Open the UI in the default browser")

	return cmd
}

func runWeb(ctx context.Context, addr string, open bool, opts ...Option) error {
	o, err := newOptions(opts)
	if err != nil {
		return err
	}
	if addr != "" {
		o.app.Config.Web.Addr = addr
	}

	srv, err := web.New(o.app)
	if err != nil {
		return err
	}
	ln, err := srv.Listen()
	if err != nil {
		return err
	}

	uiURL := fmt.Sprintf("http://%s", ln.Addr())
	fmt.Fprintf(o.out, "Serving marquee on %s (press Ctrl+C to stop)\n", uiURL)
	if open {
		if err := openBrowser(uiURL); err != nil {
			fmt.Fprintf(o.out, "Failed to open browser: %v\nPlease visit: %s\n", err, uiURL)
		}
	}

	return srv.Serve(ctx, ln)
}

// openBrowser opens the URL in the default browser
func openBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
