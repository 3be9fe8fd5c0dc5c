package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/apexdefense/agd/app"
	"github.com/apexdefense/agd/internal/config"
	"github.com/apexdefense/agd/models"
	"github.com/apexdefense/agd/routes"
)

// Version is set at build time.
var Version = "dev"

var (
	v      = viper.New()
	cfg    config.Config
	logger *slog.Logger
)

// errNotLoggedIn is returned when a protected view redirects to login.
var errNotLoggedIn = errors.New("not logged in (run `agd login`)")

// errAlreadyLoggedIn is returned when a login-only view redirects away
// because a session is held.
var errAlreadyLoggedIn = errors.New("already logged in (run `agd logout` first)")

var rootCmd = &cobra.Command{
	Use:   "agd",
	Short: "Apex Global Defense command-line client",
	Long: `A command-line client for the Apex Global Defense intelligence platform.

Sessions persist between invocations: log in once, then browse countries,
manage projects and scenarios, and configure AI providers.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(v)
		if err != nil {
			return err
		}
		logger = cfg.Logger(cmd.ErrOrStderr())
		slog.SetDefault(logger)
		return nil
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	config.SetDefaults(v)

	flags := rootCmd.PersistentFlags()
	flags.String("api-url", "", "Backend base URL (env AGD_API_URL)")
	flags.String("data-dir", "", "Directory holding client state (env AGD_DATA_DIR)")
	flags.String("profile", "", "Session profile name (env AGD_PROFILE)")
	flags.StringP("output", "o", "", "Output format: table, json or yaml")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("log-format", "", "Log format: text or json")
	flags.Duration("timeout", 0, "Per-request timeout")

	for key, flag := range map[string]string{
		config.KeyAPIURL:         "api-url",
		config.KeyDataDir:        "data-dir",
		config.KeyProfile:        "profile",
		config.KeyOutput:         "output",
		config.KeyLogLevel:       "log-level",
		config.KeyLogFormat:      "log-format",
		config.KeyRequestTimeout: "timeout",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

// withView opens the client, mounts path and runs fn with the mounted view.
// A protected path that redirects to login fails with errNotLoggedIn, and a
// login-only path that redirects away fails with errAlreadyLoggedIn.
// Success notifications queued by fn are echoed to stderr.
func withView(cmd *cobra.Command, path string, fn func(a *app.App, view *app.View) error) error {
	a, err := app.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	view, err := a.Mount(path)
	if err != nil {
		return err
	}
	access := a.Nav.Table().Match(path).Route.Access
	protected := access == routes.Protected
	if protected && view.Match.Path == routes.Login {
		return errNotLoggedIn
	}
	if access == routes.PublicOnly && view.Match.Path != routes.Clean(path) {
		return errAlreadyLoggedIn
	}
	stop := context.AfterFunc(cmd.Context(), view.Close)
	defer stop()

	if err := fn(a, view); err != nil {
		if protected && !a.Session.IsAuthenticated() {
			return fmt.Errorf("%w; session expired, log in again", err)
		}
		return err
	}
	for _, n := range a.UI.Notifications() {
		if n.Severity != models.SeverityError {
			fmt.Fprintln(cmd.ErrOrStderr(), noticeStyle(n.Severity).Render(n.Message))
		}
	}
	return nil
}
