package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/marquee-dev/marquee/internal/app"
	"github.com/marquee-dev/marquee/internal/cli/commands"
	"github.com/marquee-dev/marquee/internal/config"
	"github.com/marquee-dev/marquee/internal/logger"
	"github.com/marquee-dev/marquee/internal/storage"
)

var version = "dev" // Will be set during build

// closeGrace bounds how long the process waits on exit for a logout
// notification still in flight.
const closeGrace = 5 * time.Second

var flags struct {
	apiURL      string
	storage     string
	storagePath string
	ephemeral   bool
	logLevel    string
}

var current *app.App

var rootCmd = &cobra.Command{
	Use:   "marquee",
	Short: "marquee - Movie reviews from your terminal",
	Long: `marquee CLI - Browse movies, write reviews and moderate the community.

The session is kept per backend in local storage, so logging in once works
for every later command and for the local web UI.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Commands that never touch the session skip setup
		if cmd.Name() == "version" || cmd.Name() == "help" ||
			(cmd.HasParent() && cmd.Parent().Name() == "completion") {
			return nil
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger.Init(cfg.Logging.Level, cfg.Logging.Format)

		a, err := app.New(cfg, logger.GetLogger())
		if err != nil {
			return err
		}
		current = a
		cmd.SetContext(commands.NewContext(cmd.Context(), a))
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.apiURL, "api-url", "", "Backend base URL (env MARQUEE_API_URL)")
	pf.StringVar(&flags.storage, "storage", "", "Session storage: file, keyring or sqlite (env MARQUEE_STORAGE)")
	pf.StringVar(&flags.storagePath, "storage-path", "", "Session file or database path")
	pf.BoolVar(&flags.ephemeral, "ephemeral", false, "Keep the session in memory for this run only")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "marquee version %s\n", version)
		},
	})

	// Add all subcommands
	rootCmd.AddCommand(commands.NewLoginCmd())
	rootCmd.AddCommand(commands.NewLogoutCmd())
	rootCmd.AddCommand(commands.NewWhoamiCmd())
	rootCmd.AddCommand(commands.NewRegisterCmd())
	rootCmd.AddCommand(commands.NewResetPasswordCmd())
	rootCmd.AddCommand(commands.NewMoviesCmd())
	rootCmd.AddCommand(commands.NewMovieCmd())
	rootCmd.AddCommand(commands.NewReviewCmd())
	rootCmd.AddCommand(commands.NewLikedCmd())
	rootCmd.AddCommand(commands.NewFavoritesCmd())
	rootCmd.AddCommand(commands.NewWatchlistCmd())
	rootCmd.AddCommand(commands.NewProfileCmd())
	rootCmd.AddCommand(commands.NewAdminCmd())
	rootCmd.AddCommand(commands.NewWebCmd())
}

// loadConfig reads the config and applies command line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flags.apiURL != "" {
		cfg.API.BaseURL = flags.apiURL
	}
	if flags.storage != "" {
		cfg.Storage.Backend = flags.storage
	}
	if flags.storagePath != "" {
		cfg.Storage.Path = flags.storagePath
	}
	if flags.ephemeral {
		cfg.Storage.Backend = storage.BackendMemory
	}
	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Execute runs the root command
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)

	if current != nil {
		closeCtx, cancel := context.WithTimeout(context.Background(), closeGrace)
		defer cancel()
		if cerr := current.Close(closeCtx); cerr != nil {
			log := logger.GetLogger()
			log.Warn().Err(cerr).Msg("Failed to close session storage")
		}
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
