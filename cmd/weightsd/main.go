// Command weightsd serves the weights API used by weighttrack, backed by
// memory or PostgreSQL.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	adapthttp "weighttrack/internal/adapter/http"
	"weighttrack/internal/adapter/memory"
	"weighttrack/internal/adapter/postgres"
	"weighttrack/internal/app"
	"weighttrack/internal/config"
	"weighttrack/internal/domain"
	"weighttrack/internal/logging"
)

const shutdownTimeout = 30 * time.Second

var v = config.NewServerViper()

var rootCmd = &cobra.Command{
	Use:           "weightsd",
	Short:         "Weights API server",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the weights API (default)",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var hashKeyCmd = &cobra.Command{
	Use:   "hash-key KEY",
	Short: "Print the bcrypt hash to set as WEIGHTSD_API_KEY_HASH",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := app.HashAPIKey(args[0])
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("addr", ":8080", "Listen address")
	flags.String("backend", "memory", "Storage backend (memory or postgres)")
	flags.String("database-url", "", "PostgreSQL connection string")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")

	bindFlags(flags, map[string]string{
		"addr":         "addr",
		"backend":      "backend",
		"database_url": "database-url",
		"log_level":    "log-level",
	})

	rootCmd.AddCommand(serveCmd, hashKeyCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.LoadServer(v)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(logging.Options{Level: cfg.LogLevel, Output: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Error("store open failed", zap.String(logging.FieldOperation, logging.OpStartup), zap.Error(err))
		return err
	}
	defer closeStore()

	var verifier app.TokenVerifier
	if cfg.OIDCIssuer != "" {
		ov, err := adapthttp.NewOIDCVerifier(ctx, cfg.OIDCIssuer, cfg.OIDCAudience)
		if err != nil {
			return err
		}
		verifier = ov
	}
	authSvc := app.NewAuthService(cfg.APIKeyHash, verifier)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           adapthttp.New(app.NewWeightService(store), authSvc, log.Named("http")).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
		ErrorLog:          zap.NewStdLog(log),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening",
			zap.String(logging.FieldOperation, logging.OpStartup),
			zap.String("addr", cfg.Addr),
			zap.String("backend", cfg.Backend),
			zap.Bool("auth", authSvc.Enabled()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down", zap.String(logging.FieldOperation, logging.OpShutdown))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", zap.Error(err))
		return err
	}
	log.Info("server stopped", zap.String(logging.FieldOperation, logging.OpShutdown))
	return nil
}

func openStore(ctx context.Context, cfg *config.Server) (domain.WeightStore, func(), error) {
	if cfg.Backend == "postgres" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("db open: %w", err)
		}
		return db, func() { _ = db.Close() }, nil
	}
	return memory.New(), func() {}, nil
}

// bindFlags makes each flag override the config key it is mapped to.
func bindFlags(fs *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		_ = v.BindPFlag(key, fs.Lookup(name))
	}
}

func main() {
	config.LoadDotEnv()
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
