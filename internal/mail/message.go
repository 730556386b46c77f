// Package mail builds plain-text notification emails and hands them to an
// SMTP relay.
package mail

import (
	"io"
	"strings"

	gomail "gopkg.in/mail.v2"
)

// Message is a single outgoing notification. It is built once per call and
// discarded after delivery.
type Message struct {
	From string
	To   string
	// Cc is written to the header as given; Recipients splits it.
	Cc      string
	Subject string
	Body    string

	MessageID string
	// InReplyTo and References carry the thread identity and are empty on
	// the message that opens a thread.
	InReplyTo  string
	References string
}

// Recipients returns the envelope recipients: the To address followed by
// every non-empty entry of the comma-separated Cc list.
func (m *Message) Recipients() []string {
	recipients := []string{}
	if to := strings.TrimSpace(m.To); to != "" {
		recipients = append(recipients, to)
	}
	return append(recipients, parseRecipients(m.Cc)...)
}

// WriteTo serializes the message in RFC 5322 form.
func (m *Message) WriteTo(w io.Writer) (int64, error) {
	return m.gomail().WriteTo(w)
}

func (m *Message) gomail() *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", m.To)
	if m.Cc != "" {
		msg.SetHeader("Cc", m.Cc)
	}
	msg.SetHeader("Subject", m.Subject)
	if m.InReplyTo != "" {
		msg.SetHeader("In-Reply-To", m.InReplyTo)
	}
	if m.References != "" {
		msg.SetHeader("References", m.References)
	}
	msg.SetHeader("Message-ID", m.MessageID)
	msg.SetBody("text/plain", m.Body, gomail.SetPartEncoding(gomail.Unencoded))
	return msg
}

// parseRecipients parses a comma-separated list of email addresses.
func parseRecipients(value string) []string {
	parts := strings.Split(value, ",")
	recipients := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			recipients = append(recipients, trimmed)
		}
	}
	return recipients
}
