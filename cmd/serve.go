package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/stocknotify/internal/api"
	"github.com/shaharia-lab/stocknotify/internal/build"
	"github.com/shaharia-lab/stocknotify/internal/config"
	"github.com/shaharia-lab/stocknotify/internal/scheduler"
	"github.com/shaharia-lab/stocknotify/internal/server"
)

// NewServeCmd returns the "serve" subcommand that starts the HTTP server.
func NewServeCmd(cfg *config.AppConfig) *cobra.Command {
	var (
		port         int
		scanInterval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the stocknotify HTTP server. Restocks and low-stock scans made
through the API send their notifications in the background.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// CLI flags override env config.
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("scan-interval") {
				cfg.LowStockScanInterval = scanInterval
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			cmd.SetContext(ctx)

			return withApp(cmd, cfg, func(ctx context.Context, a *app) error {
				logFile := filepath.Join(cfg.LogDir(), "system.log")
				printBanner(cmd.OutOrStdout(), build.Version, fmt.Sprintf("http://localhost:%d", cfg.Port), logFile, a.notifier != nil)
				return runServe(ctx, a)
			}, withTelemetry())
		},
	}

	cmd.Flags().IntVar(&port, "port", cfg.Port, "HTTP server port (overrides PORT env var)")
	cmd.Flags().DurationVar(&scanInterval, "scan-interval", cfg.LowStockScanInterval,
		"Low-stock scan interval, 0 disables (overrides LOW_STOCK_SCAN_INTERVAL env var)")
	return cmd
}

func runServe(ctx context.Context, a *app) error {
	cfg := a.cfg
	a.logger.Info("stocknotify starting",
		slog.Int("port", cfg.Port),
		slog.String("data_dir", cfg.DataDir),
		slog.String("version", build.Version),
		slog.String("commit", build.CommitSHA),
		slog.String("build_date", build.BuildDate),
		slog.Bool("mail_enabled", a.notifier != nil),
	)

	bus := a.newBus()
	defer bus.Close()

	inventorySvc := a.inventoryService(bus)

	if cfg.LowStockScanInterval > 0 {
		sched, err := scheduler.New(scheduler.Config{
			Scanner:  inventorySvc,
			Interval: cfg.LowStockScanInterval,
			Logger:   a.logger,
		})
		if err != nil {
			return fmt.Errorf("creating scheduler: %w", err)
		}
		sched.Start()
		defer func() {
			if err := sched.Stop(); err != nil {
				a.logger.Warn("scheduler shutdown failed", "error", err)
			}
		}()
	}

	apiSrv := api.New(inventorySvc, a.notificationService(), a.logger)
	srv := server.New(apiSrv, cfg.Port, a.logger, server.Options{AllowedOrigins: cfg.CORSAllowedOrigins})

	a.logger.Info("server ready", "url", fmt.Sprintf("http://localhost:%d", cfg.Port))
	return srv.Run(ctx)
}
