// Package mail defines the outbound mail contract consumed by the auth
// service. Sending is fire-and-forget from the caller's perspective: a
// failed send never invalidates a token that has already been persisted.
package mail

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/tasklight/tasklight/pkg/slogx"
)

// Mailer delivers a message to a single recipient.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer sends through a plain SMTP relay.
type SMTPMailer struct {
	Addr string // host:port
	From string
	Auth smtp.Auth // optional
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.From, to, subject, body)
	if err := smtp.SendMail(m.Addr, m.Auth, m.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("mail: send to %s: %w", to, err)
	}
	return nil
}

// LogMailer writes messages to the log instead of delivering them. Used in
// dev where no relay is available; the token link still shows up in the
// output so flows can be exercised end to end.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, to, subject, body string) error {
	slogx.FromContext(ctx).Info("mail (not delivered)",
		"to", to,
		"subject", subject,
		"body", body,
	)
	return nil
}
