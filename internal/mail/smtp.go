package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	gomail "github.com/wneessen/go-mail"
)

// Encryption modes accepted in Config.Encryption.
const (
	EncryptionNone          = "none"
	EncryptionSTARTTLS      = "starttls"
	EncryptionOpportunistic = "opportunistic"
	EncryptionSSLTLS        = "ssl_tls"
)

// Config holds connection parameters for the SMTP server.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	// Encryption is one of the Encryption* constants. Empty means STARTTLS.
	Encryption string
	// InsecureSkipVerify disables certificate validation.
	InsecureSkipVerify bool
	// Timeout bounds dialing and every SMTP command. Zero keeps the go-mail default.
	Timeout time.Duration
}

// SMTPChannel delivers messages via SMTP using the go-mail library.
type SMTPChannel struct {
	config Config
	client *gomail.Client

	// mu serializes SMTP sessions; the go-mail client holds one connection at a time.
	mu sync.Mutex
}

// NewSMTPChannel builds the reusable client. No network I/O happens here;
// the connection is opened on each Send.
func NewSMTPChannel(config Config) (*SMTPChannel, error) {
	if config.Host == "" {
		return nil, errors.New("smtp host is required")
	}
	if config.Port <= 0 || config.Port > 65535 {
		return nil, fmt.Errorf("invalid smtp port %d", config.Port)
	}

	opts, err := clientOptions(config)
	if err != nil {
		return nil, err
	}

	c, err := gomail.NewClient(config.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}
	return &SMTPChannel{config: config, client: c}, nil
}

// Host returns the configured SMTP host.
func (c *SMTPChannel) Host() string { return c.config.Host }

// Send delivers msg using the configured SMTP server.
func (c *SMTPChannel) Send(ctx context.Context, msg Message) (Receipt, error) {
	if err := msg.Validate(); err != nil {
		return Receipt{}, fmt.Errorf("invalid message: %w", err)
	}

	m := gomail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return Receipt{}, &TransportError{Op: "address", Err: fmt.Errorf("invalid from address: %w", err)}
	}
	if err := m.To(msg.To); err != nil {
		return Receipt{}, &TransportError{Op: "address", Err: fmt.Errorf("invalid recipient %q: %w", msg.To, err)}
	}
	m.Subject(msg.Subject)
	m.SetDate()

	id := uuid.NewString() + "@" + c.config.Host
	m.SetMessageIDWithValue(id)
	m.SetBodyString(gomail.TypeTextHTML, msg.HTML)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.client.DialAndSendWithContext(ctx, m); err != nil {
		return Receipt{}, &TransportError{Op: "send", Err: err}
	}
	return Receipt{MessageID: "<" + id + ">", SentAt: time.Now().UTC()}, nil
}

// clientOptions converts Config into go-mail client options.
func clientOptions(config Config) ([]gomail.Option, error) {
	opts := []gomail.Option{
		gomail.WithPort(config.Port),
		//nolint:gosec // InsecureSkipVerify is an explicit operator setting
		gomail.WithTLSConfig(&tls.Config{
			ServerName:         config.Host,
			InsecureSkipVerify: config.InsecureSkipVerify,
			MinVersion:         tls.VersionTLS12,
		}),
	}

	switch config.Encryption {
	case EncryptionSSLTLS:
		opts = append(opts, gomail.WithSSL())
	case EncryptionSTARTTLS, "":
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	case EncryptionOpportunistic:
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	case EncryptionNone:
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	default:
		return nil, fmt.Errorf("unknown smtp encryption %q", config.Encryption)
	}

	if config.Timeout > 0 {
		opts = append(opts, gomail.WithTimeout(config.Timeout))
	}

	// Servers without AUTH reject the command outright, so only enable it
	// when credentials are configured.
	if config.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(config.Username),
			gomail.WithPassword(config.Password),
		)
	}
	return opts, nil
}
