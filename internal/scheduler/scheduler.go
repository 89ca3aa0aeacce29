// Package scheduler runs the periodic low-stock scan.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/shaharia-lab/stocknotify/internal/inventory"
)

const (
	jobName            = "low-stock-scan"
	defaultScanTimeout = 2 * time.Minute
)

// Scanner runs one low-stock scan.
type Scanner interface {
	ScanLowStock(ctx context.Context) ([]*inventory.Product, error)
}

// Config holds the scheduler configuration.
type Config struct {
	Scanner Scanner
	// Interval between scans. Must be positive.
	Interval time.Duration
	// Timeout bounds a single scan. Defaults to two minutes.
	Timeout time.Duration
	Logger  *slog.Logger
}

// Scheduler triggers low-stock scans on a fixed interval using gocron.
type Scheduler struct {
	cron   gocron.Scheduler
	cfg    Config
	logger *slog.Logger
}

// New creates a new Scheduler. The first scan runs as soon as Start is called.
func New(cfg Config) (*Scheduler, error) {
	if cfg.Scanner == nil {
		return nil, errors.New("scheduler: scanner is required")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("scheduler: interval must be positive, got %s", cfg.Interval)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultScanTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	cron, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("creating gocron scheduler: %w", err)
	}

	s := &Scheduler{cron: cron, cfg: cfg, logger: cfg.Logger}

	// A scan that outlasts the interval delays the next one instead of overlapping it.
	_, err = cron.NewJob(
		gocron.DurationJob(cfg.Interval),
		gocron.NewTask(s.runScan),
		gocron.WithName(jobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = cron.Shutdown()
		return nil, fmt.Errorf("scheduling %s: %w", jobName, err)
	}
	return s, nil
}

// Start starts the gocron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("low stock scheduler started", "interval", s.cfg.Interval.String())
}

// Stop shuts down the gocron scheduler, waiting for a running scan to finish.
func (s *Scheduler) Stop() error {
	return s.cron.Shutdown()
}

func (s *Scheduler) runScan() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	defer cancel()

	products, err := s.cfg.Scanner.ScanLowStock(ctx)
	if err != nil {
		s.logger.Error("scheduled low stock scan failed", "error", err)
		return
	}
	s.logger.Debug("scheduled low stock scan finished", "matched", len(products))
}
