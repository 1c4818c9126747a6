package main

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/newthinker/tasi/internal/backend"
	"github.com/newthinker/tasi/internal/config"
	"github.com/newthinker/tasi/internal/dashboard"
	"github.com/newthinker/tasi/internal/job"
	"github.com/newthinker/tasi/internal/loader"
	"github.com/newthinker/tasi/internal/logger"
	"github.com/newthinker/tasi/internal/metrics"
	"github.com/newthinker/tasi/internal/mockdata"
	"github.com/newthinker/tasi/internal/view"
)

// setup loads and validates the configuration and builds the logger.
func setup() (*config.Config, *zap.Logger, error) {
	log := logger.Must(debug)

	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, log, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Warn("no config file specified, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, log, fmt.Errorf("config validation failed: %w", err)
	}

	log = logger.WithFile(log, debug, logger.FileConfig{
		Path:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	return cfg, log, nil
}

// dashboardDeps wires the dashboard to the backend. reg may be nil.
func dashboardDeps(cfg *config.Config, log *zap.Logger, reg *metrics.Registry) (dashboard.Deps, error) {
	renderer, err := view.NewRenderer()
	if err != nil {
		return dashboard.Deps{}, fmt.Errorf("loading templates: %w", err)
	}

	client := backend.New(backend.Options{
		BaseURL: cfg.Backend.BaseURL,
		TransportOptions: backend.TransportOptions{
			Timeout:        cfg.Backend.Timeout,
			RequestsPerSec: cfg.Backend.RequestsPerSec,
			MaxRetries:     cfg.Backend.MaxRetries,
		},
	}, log.Named("backend"))

	deps := dashboard.Deps{
		Backend:   client,
		Renderer:  renderer,
		Generator: mockdata.New(time.Now().UnixNano()),
		Jobs:      job.NewStore(cfg.Dashboard.MaxJobs, cfg.Server.SessionTTL),
		Logger:    log.Named("dashboard"),
		Options: dashboard.Options{
			HistoryDays:       cfg.Dashboard.HistoryDays,
			StrategyDelay:     cfg.Dashboard.StrategyDelay,
			NotificationLimit: cfg.Dashboard.NotificationLimit,
		},
	}

	// a nil registry must not end up inside the interfaces
	if reg != nil {
		deps.Loader = loader.New(log.Named("loader"), reg)
		deps.Charts = reg.LiveCharts()
		deps.Stale = reg
		deps.JobRecorder = reg
	} else {
		deps.Loader = loader.New(log.Named("loader"), nil)
	}
	return deps, nil
}
