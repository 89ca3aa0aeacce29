// Package mail is the outbound mail channel: a single SMTP configuration,
// built once at startup and reused for every message.
package mail

import (
	"context"
	"errors"
	"time"
)

// Message is one outgoing email. It is built per send and never stored.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Validate enforces that From, To and Subject are present.
func (m Message) Validate() error {
	var errs []error
	if m.From == "" {
		errs = append(errs, errors.New("from address is required"))
	}
	if m.To == "" {
		errs = append(errs, errors.New("recipient is required"))
	}
	if m.Subject == "" {
		errs = append(errs, errors.New("subject is required"))
	}
	return errors.Join(errs...)
}

// Receipt acknowledges a message accepted by the SMTP server.
type Receipt struct {
	MessageID string    `json:"message_id"`
	SentAt    time.Time `json:"sent_at"`
}

// Channel submits messages to a mail server.
type Channel interface {
	// Send blocks until the server accepts or rejects msg. It never retries.
	Send(ctx context.Context, msg Message) (Receipt, error)
}
