package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"

	"github.com/danielolaszy/reqmail/internal/config"
	"github.com/danielolaszy/reqmail/internal/logging"
	gomail "gopkg.in/mail.v2"
)

// ErrNoRecipients is returned when a message has neither a To nor a Cc address.
var ErrNoRecipients = errors.New("message has no recipients")

// SMTPTransport delivers messages through a single SMTP relay. Each Deliver
// call opens a connection, upgrades it with STARTTLS (port 465 uses implicit
// TLS), authenticates, sends once and disconnects. A relay that does not offer
// STARTTLS is refused before any credentials or message data are sent.
type SMTPTransport struct {
	dialer *gomail.Dialer
}

// NewSMTPTransport creates a transport for the relay described by cfg. The
// sender address doubles as the login identity; without a password the relay
// is used unauthenticated.
func NewSMTPTransport(cfg config.MailConfig) *SMTPTransport {
	username := ""
	if cfg.Password != "" {
		username = cfg.Sender
	}

	logging.Debug("initializing smtp transport",
		"host", cfg.Host,
		"port", cfg.Port,
		"user", username,
		"password", logging.MaskSensitive(cfg.Password))

	d := gomail.NewDialer(cfg.Host, cfg.Port, username, cfg.Password)
	d.StartTLSPolicy = gomail.MandatoryStartTLS
	d.RetryFailure = false
	if cfg.InsecureSkipVerify {
		logging.Warn("tls certificate verification disabled for smtp relay", "host", cfg.Host)
		d.TLSConfig = &tls.Config{InsecureSkipVerify: true, ServerName: cfg.Host}
	}

	return &SMTPTransport{dialer: d}
}

// Host returns the relay host.
func (t *SMTPTransport) Host() string {
	return t.dialer.Host
}

// Port returns the relay port.
func (t *SMTPTransport) Port() int {
	return t.dialer.Port
}

// Deliver makes exactly one attempt to hand msg to the relay.
func (t *SMTPTransport) Deliver(ctx context.Context, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	recipients := msg.Recipients()
	if len(recipients) == 0 {
		return ErrNoRecipients
	}

	logging.Debug("connecting to smtp relay",
		"host", t.dialer.Host,
		"port", t.dialer.Port,
		"message_id", msg.MessageID)

	sc, err := t.dialer.Dial()
	if err != nil {
		return fmt.Errorf("failed to connect to smtp relay %s:%d: %w", t.dialer.Host, t.dialer.Port, err)
	}

	if err := sc.Send(msg.From, recipients, msg.gomail()); err != nil {
		sc.Close()
		return fmt.Errorf("relay rejected message %s: %w", msg.MessageID, err)
	}

	if err := sc.Close(); err != nil {
		// The message was accepted before QUIT failed.
		logging.Warn("error closing smtp session", "error", err)
	}

	logging.Debug("message handed to relay",
		"message_id", msg.MessageID,
		"recipients", len(recipients))
	return nil
}

// WriterTransport writes serialized messages to an io.Writer instead of a
// relay. The CLI uses it for dry runs.
type WriterTransport struct {
	w io.Writer
}

// NewWriterTransport returns a transport that prints to w.
func NewWriterTransport(w io.Writer) *WriterTransport {
	return &WriterTransport{w: w}
}

// Deliver writes msg followed by a blank line.
func (t *WriterTransport) Deliver(_ context.Context, msg *Message) error {
	if _, err := msg.WriteTo(t.w); err != nil {
		return fmt.Errorf("failed to write message %s: %w", msg.MessageID, err)
	}
	_, err := io.WriteString(t.w, "\r\n")
	return err
}
