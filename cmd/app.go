package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/stocknotify/internal/build"
	"github.com/shaharia-lab/stocknotify/internal/config"
	"github.com/shaharia-lab/stocknotify/internal/eventbus"
	"github.com/shaharia-lab/stocknotify/internal/logger"
	"github.com/shaharia-lab/stocknotify/internal/mail"
	"github.com/shaharia-lab/stocknotify/internal/notification"
	"github.com/shaharia-lab/stocknotify/internal/service"
	"github.com/shaharia-lab/stocknotify/internal/storage"
	"github.com/shaharia-lab/stocknotify/internal/telemetry"
)

// app bundles the dependencies shared by every command.
type app struct {
	cfg      *config.AppConfig
	logger   *slog.Logger
	logClose io.Closer
	db       *sql.DB

	products      storage.ProductStore
	notifications storage.NotificationStore

	// notifier is nil when mail settings are incomplete; mailErr says why.
	notifier *notification.Notifier
	mailErr  error

	telemetry *telemetry.Providers
}

type appOptions struct {
	telemetry bool
}

// appOption customizes openApp.
type appOption func(*appOptions)

// withTelemetry installs OpenTelemetry providers and forwards logs to OTLP
// when an endpoint is configured. Only long-running commands use it.
func withTelemetry() appOption {
	return func(o *appOptions) { o.telemetry = true }
}

// openApp initializes logging, telemetry, the database and the mail channel.
func openApp(cmd *cobra.Command, cfg *config.AppConfig, opts ...appOption) (*app, error) {
	var o appOptions
	for _, opt := range opts {
		opt(&o)
	}
	a := &app{cfg: cfg}

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		a.logger = logger.NewConsoleLogger(os.Stderr, cfg.SlogLevel())
	} else {
		l, closer, err := logger.NewSystemLogger(cfg.LogDir(), cfg.SlogLevel())
		if err != nil {
			return nil, fmt.Errorf("initializing logger: %w", err)
		}
		a.logger, a.logClose = l, closer
	}

	if o.telemetry {
		p, err := telemetry.Setup(cmd.Context(), telemetry.Config{
			Version:      build.Version,
			OTLPEndpoint: cfg.OTLPEndpoint,
			Insecure:     cfg.OTLPInsecure,
		})
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("initializing telemetry: %w", err)
		}
		a.telemetry = p
		if h := p.LogHandler(); h != nil {
			a.logger = slog.New(logger.Tee(cfg.SlogLevel(), a.logger.Handler(), h))
		}
	}

	db, err := storage.Open(cmd.Context(), cfg.DBPath())
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}
	a.db = db
	a.products = storage.NewSQLiteProductStore(db)
	a.notifications = storage.NewSQLiteNotificationStore(db)

	a.notifier, a.mailErr = newNotifier(cfg, a.notifications, a.logger)
	if a.mailErr != nil {
		a.logger.Warn("mail channel not configured; notifications disabled", "error", a.mailErr)
	}
	return a, nil
}

// newNotifier builds the mail channel once and binds it to a Notifier.
func newNotifier(cfg *config.AppConfig, store storage.NotificationStore, log *slog.Logger) (*notification.Notifier, error) {
	if err := cfg.ValidateMail(); err != nil {
		return nil, err
	}
	channel, err := mail.NewSMTPChannel(cfg.MailConfig())
	if err != nil {
		return nil, err
	}
	return notification.New(channel, cfg.NotificationConfig(), store, log), nil
}

// requireNotifier returns the notifier or the reason mail is unavailable.
func (a *app) requireNotifier() (*notification.Notifier, error) {
	if a.notifier == nil {
		return nil, fmt.Errorf("%w: %w", service.ErrMailNotConfigured, a.mailErr)
	}
	return a.notifier, nil
}

// newBus starts an event bus with the notification listener attached when
// mail is configured.
func (a *app) newBus() eventbus.EventBus {
	bus := eventbus.New(0, a.logger)
	if a.notifier != nil {
		bus.Subscribe(notification.NewHandler(a.notifier, a.logger, a.cfg.SMTPTimeout).Handle)
	}
	return bus
}

func (a *app) inventoryService(publisher service.EventPublisher) service.InventoryService {
	return service.NewInventoryService(a.products, publisher, a.logger)
}

func (a *app) notificationService() service.NotificationService {
	var n service.Notifier
	if a.notifier != nil {
		n = a.notifier
	}
	return service.NewNotificationService(n, a.notifications)
}

// Close releases the database, telemetry providers and the log file.
func (a *app) Close() error {
	var errs []error
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	if a.telemetry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		errs = append(errs, a.telemetry.Shutdown(ctx))
		cancel()
	}
	if a.logClose != nil {
		errs = append(errs, a.logClose.Close())
	}
	return errors.Join(errs...)
}

// withApp runs fn with an initialized app and closes it afterwards.
func withApp(
	cmd *cobra.Command, cfg *config.AppConfig, fn func(ctx context.Context, a *app) error, opts ...appOption,
) (err error) {
	a, err := openApp(cmd, cfg, opts...)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, a.Close()) }()
	return fn(cmd.Context(), a)
}
