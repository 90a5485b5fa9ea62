package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Morgan5/digital-planner/internal/app/guides"
	"github.com/Morgan5/digital-planner/internal/app/identity"
	"github.com/Morgan5/digital-planner/internal/app/plannerapi"
	"github.com/Morgan5/digital-planner/internal/platform/config"
	"github.com/Morgan5/digital-planner/internal/platform/logger"
	"github.com/Morgan5/digital-planner/internal/platform/metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "planner",
		Short:        "Digital Planner server",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newServeCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newServeCommand() *cobra.Command {
	v := config.New()
	var envFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the planner HTTP server",
		PreRunE: func(*cobra.Command, []string) error {
			return config.LoadDotEnv(envFile)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd.Context(), v)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	flags.String("addr", config.DefaultAddr, "listen address")
	flags.String("ui-origin", config.DefaultUIOrigin, "origin allowed by CORS")
	flags.Duration("session-ttl", 12*time.Hour, "session lifetime")
	flags.String("log-level", "info", "debug, info, warn or error")
	flags.String("log-format", "json", "json or console")
	bindFlag(v, "addr", cmd, "addr")
	bindFlag(v, "ui_origin", cmd, "ui-origin")
	bindFlag(v, "session_ttl", cmd, "session-ttl")
	bindFlag(v, "log_level", cmd, "log-level")
	bindFlag(v, "log_format", cmd, "log-format")
	return cmd
}

func bindFlag(v *viper.Viper, key string, cmd *cobra.Command, flag string) {
	if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func runServer(parent context.Context, v *viper.Viper) error {
	if parent == nil {
		parent = context.Background()
	}
	runCtx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.TokenSecret == config.DefaultTokenSecret {
		log.Warn("using the default token secret; set PLANNER_TOKEN_SECRET")
	}

	identitySvc := identity.NewService(identity.NewTokenManager(cfg.TokenSecret, cfg.SessionTTL))
	reg := metrics.NewRegistry()
	reg.SessionsGauge(identitySvc.Active)

	limiter := rate.NewLimiter(rate.Limit(cfg.LoginRate), cfg.LoginBurst)
	handler := plannerapi.NewHandler(identitySvc, guides.Default(), reg, log, cfg.UIOrigin, limiter)

	go sweepSessions(runCtx, identitySvc, cfg.SweepInterval, log)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Info("planner listening", zap.String("addr", cfg.Addr), zap.Duration("session_ttl", cfg.SessionTTL))
	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		log.Fatal("server failed", zap.Error(err))
	case <-runCtx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	log.Info("planner stopped")
	return nil
}

func sweepSessions(ctx context.Context, svc *identity.Service, every time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if dropped := svc.Sweep(); dropped > 0 {
				log.Info("expired sessions dropped", zap.Int("count", dropped), zap.Int("active", svc.Active()))
			}
		}
	}
}
