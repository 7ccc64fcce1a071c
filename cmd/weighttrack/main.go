// Command weighttrack records body weight entries in a remote store, from an
// interactive terminal UI or one-shot subcommands.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"weighttrack/internal/adapter/remote"
	"weighttrack/internal/app"
	"weighttrack/internal/config"
	"weighttrack/internal/domain"
	"weighttrack/internal/logging"
	"weighttrack/internal/tui"
)

var v = config.NewClientViper()

var rootCmd = &cobra.Command{
	Use:   "weighttrack",
	Short: "Track your body weight",
	Long: `weighttrack keeps a history of weight entries in a remote store.

Run without a subcommand for the interactive screen: an entry form, the
sortable history, a chart of your weight over time and a status line.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("api-url", "", "Base URL of the weights API")
	flags.Duration("timeout", 10*time.Second, "Per-request timeout")
	flags.String("token", "", "Static bearer token")
	flags.String("unit", "kg", "Display unit (kg or lb)")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-file", "", "Log file path")

	bindFlags(flags, map[string]string{
		"api_url":   "api-url",
		"timeout":   "timeout",
		"token":     "token",
		"unit":      "unit",
		"log_level": "log-level",
		"log_file":  "log-file",
	})
}

// reportedError marks failures the user has already been told about on the
// notification channel.
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return reportedError{err}
}

// session bundles what every command needs to talk to the store.
type session struct {
	cfg     *config.Client
	log     *zap.Logger
	tracker *app.Tracker
}

func (s *session) Close() {
	s.tracker.Close()
	_ = s.log.Sync()
}

func openSession(ctx context.Context, notifier domain.Notifier) (*session, error) {
	cfg, err := config.LoadClient(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return nil, err
	}

	httpClient, err := remote.HTTPClient(ctx, remote.Auth{
		Token:        cfg.Token,
		Issuer:       cfg.OIDCIssuer,
		ClientID:     cfg.OIDCClientID,
		ClientSecret: cfg.OIDCClientSecret,
		Scopes:       cfg.OIDCScopes,
	})
	if err != nil {
		_ = log.Sync()
		return nil, err
	}

	client, err := remote.New(cfg.APIURL,
		remote.WithHTTPClient(httpClient),
		remote.WithTimeout(cfg.Timeout),
		remote.WithLogger(log.Named("remote")))
	if err != nil {
		_ = log.Sync()
		return nil, err
	}

	log.Info("session opened",
		zap.String(logging.FieldOperation, logging.OpStartup),
		zap.String("api_url", cfg.APIURL))
	return &session{
		cfg:     cfg,
		log:     log,
		tracker: app.NewTracker(client, notifier, log.Named("tracker")),
	}, nil
}

func runTUI(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	notes := app.NewChanNotifier(16)
	s, err := openSession(ctx, notes)
	if err != nil {
		return err
	}
	defer s.Close()

	p := tea.NewProgram(tui.New(ctx, s.tracker, notes.C(), s.cfg.Unit),
		tea.WithAltScreen(),
		tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// bindFlags makes each flag override the config key it is mapped to.
func bindFlags(fs *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		_ = v.BindPFlag(key, fs.Lookup(name))
	}
}

func main() {
	config.LoadDotEnv()
	if err := execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	err := rootCmd.ExecuteContext(ctx)
	var rerr reportedError
	if err != nil && !errors.As(err, &rerr) {
		_, _ = fmt.Fprintln(stderr, "Error:", err)
	}
	return err
}
