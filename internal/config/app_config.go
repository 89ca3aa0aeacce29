package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/shaharia-lab/stocknotify/internal/mail"
	"github.com/shaharia-lab/stocknotify/internal/notification"
)

// AppConfig holds all application-level configuration loaded from environment variables.
type AppConfig struct {
	// Port is the HTTP server port. Defaults to 8990.
	Port int `envconfig:"PORT" default:"8990"`

	// DataDir is the root data directory. Defaults to ~/.stocknotify.
	DataDir string `envconfig:"STOCKNOTIFY_DATA_DIR"`

	// LogLevel sets the minimum log level (debug, info, warn, error). Defaults to info.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	SMTPHost               string        `envconfig:"SMTP_HOST"`
	SMTPPort               int           `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername           string        `envconfig:"SMTP_USERNAME"`
	SMTPPassword           string        `envconfig:"SMTP_PASSWORD"`
	SMTPEncryption         string        `envconfig:"SMTP_ENCRYPTION" default:"starttls"`
	SMTPInsecureSkipVerify bool          `envconfig:"SMTP_INSECURE_SKIP_VERIFY" default:"false"`
	SMTPTimeout            time.Duration `envconfig:"SMTP_TIMEOUT" default:"30s"`

	MailFromName   string `envconfig:"MAIL_FROM_NAME" default:"Inventory System"`
	MailFromAddr   string `envconfig:"MAIL_FROM_ADDRESS"`
	ManagementAddr string `envconfig:"MAIL_MANAGEMENT_ADDRESS"`

	// LowStockScanInterval enables the periodic low-stock scan. Zero disables it.
	LowStockScanInterval time.Duration `envconfig:"LOW_STOCK_SCAN_INTERVAL" default:"0"`

	// CORSAllowedOrigins lists origins allowed to call the HTTP API.
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS"`

	// OTLPEndpoint is the host:port of an OTLP/gRPC collector for traces,
	// metrics and logs. Empty disables OTLP export.
	OTLPEndpoint string `envconfig:"STOCKNOTIFY_OTLP_ENDPOINT"`
	OTLPInsecure bool   `envconfig:"STOCKNOTIFY_OTLP_INSECURE" default:"false"`
}

// Load reads AppConfig from environment variables using envconfig.
// DataDir defaults to ~/.stocknotify if not set.
func Load() (*AppConfig, error) {
	var c AppConfig
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		c.DataDir = filepath.Join(home, ".stocknotify")
	}
	c.SMTPEncryption = strings.ToLower(strings.TrimSpace(c.SMTPEncryption))
	return &c, nil
}

// SlogLevel converts the LogLevel string to a slog.Level.
// Unknown values default to slog.LevelInfo.
func (c *AppConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogDir returns the path to the log directory (~/.stocknotify/logs).
func (c *AppConfig) LogDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// DBPath returns the path to the SQLite database file.
func (c *AppConfig) DBPath() string {
	return filepath.Join(c.DataDir, "stocknotify.db")
}

// MailConfig returns the SMTP channel configuration.
func (c *AppConfig) MailConfig() mail.Config {
	return mail.Config{
		Host:               c.SMTPHost,
		Port:               c.SMTPPort,
		Username:           c.SMTPUsername,
		Password:           c.SMTPPassword,
		Encryption:         c.SMTPEncryption,
		InsecureSkipVerify: c.SMTPInsecureSkipVerify,
		Timeout:            c.SMTPTimeout,
	}
}

// NotificationConfig returns the sender and recipient used for every notification.
func (c *AppConfig) NotificationConfig() notification.Config {
	return notification.Config{
		FromName:    c.MailFromName,
		FromAddress: c.MailFromAddr,
		Recipient:   c.ManagementAddr,
	}
}

// ValidateMail reports every missing setting required to send mail.
func (c *AppConfig) ValidateMail() error {
	var errs []error
	if c.SMTPHost == "" {
		errs = append(errs, errors.New("SMTP_HOST is required"))
	}
	if c.MailFromAddr == "" {
		errs = append(errs, errors.New("MAIL_FROM_ADDRESS is required"))
	}
	if c.ManagementAddr == "" {
		errs = append(errs, errors.New("MAIL_MANAGEMENT_ADDRESS is required"))
	}
	if c.SMTPUsername != "" && c.SMTPPassword == "" {
		errs = append(errs, errors.New("SMTP_PASSWORD is required when SMTP_USERNAME is set"))
	}
	return errors.Join(errs...)
}
