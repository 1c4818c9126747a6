package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/tasi/internal/api"
	"github.com/newthinker/tasi/internal/dashboard"
	"github.com/newthinker/tasi/internal/metrics"
	"github.com/newthinker/tasi/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	defer log.Sync()
	if err != nil {
		return err
	}

	log.Info("starting TASI dashboard",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("backend", cfg.Backend.BaseURL),
	)

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
	}

	deps, err := dashboardDeps(cfg, log, reg)
	if err != nil {
		return err
	}

	var sessionRecorder dashboard.SessionRecorder
	if reg != nil {
		sessionRecorder = reg
	}
	sessions, err := dashboard.NewSessions(deps, cfg.Server.MaxSessions, cfg.Server.SessionTTL, sessionRecorder)
	if err != nil {
		return fmt.Errorf("creating sessions: %w", err)
	}
	defer sessions.Close()

	server, err := api.NewServer(api.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		APIKey:      cfg.Server.APIKey,
		SessionTTL:  cfg.Server.SessionTTL,
		MetricsPath: cfg.Metrics.Path,
	}, api.Dependencies{
		Sessions: sessions,
		Renderer: deps.Renderer,
		Jobs:     deps.Jobs,
		Metrics:  reg,
	}, log.Named("http"))
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	var sched *scheduler.Scheduler
	if cfg.Refresh.Enabled {
		var refreshRecorder scheduler.Recorder
		if reg != nil {
			refreshRecorder = reg
		}
		sched = scheduler.New(sessions, deps.Jobs, refreshRecorder, log.Named("scheduler"))
		if err := sched.Register(cfg.Refresh.Cron); err != nil {
			return err
		}
		sched.Start()
	}

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Error("server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down TASI dashboard")

	if sched != nil {
		sched.Stop()
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}
