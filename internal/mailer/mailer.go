// Package mailer delivers the account emails: the welcome message after signup
// and the one-time passwords for email verification and password reset.
//
// Handlers depend on Notifier, which renders the embedded templates and hands the
// result to a Mailer. SMTP is the production Mailer; Log is used when no SMTP host
// is configured.
package mailer

import (
	"context"
	"errors"
	"log"
)

var ErrNoRecipients = errors.New("no recipients provided")

// Message is a single outgoing email.
type Message struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer abstracts an email transport.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Log is a Mailer that writes messages to a logger instead of delivering them.
type Log struct {
	Logger *log.Logger
}

func (l *Log) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if msg.To == "" {
		return ErrNoRecipients
	}

	l.Logger.Printf("mail to=%s subject=%q\n%s", msg.To, msg.Subject, msg.TextBody)
	return nil
}
