package mailer

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"net/smtp"
	"strings"
)

var ErrSMTPHostPortRequired = errors.New("smtp host and port are required")

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// From is the sender, e.g. "Authify Support <support@example.com>". The envelope sender is its address.
	From string
}

// SMTP is a Mailer backed by net/smtp.
type SMTP struct {
	addr        string
	from        string
	fromAddress string
	auth        smtp.Auth
}

func NewSMTP(cfg SMTPConfig) (*SMTP, error) {
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, ErrSMTPHostPortRequired
	}

	var auth smtp.Auth
	if cfg.Username != "" && cfg.Password != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	return &SMTP{
		addr:        fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		from:        cfg.From,
		fromAddress: envelopeAddress(cfg.From),
		auth:        auth,
	}, nil
}

func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if msg.To == "" {
		return ErrNoRecipients
	}

	return smtp.SendMail(s.addr, s.auth, s.fromAddress, []string{msg.To}, s.build(msg))
}

func (s *SMTP) build(msg Message) []byte {
	body, contentType := buildBody(msg)

	headers := []string{
		"From: " + s.from,
		"To: " + msg.To,
		"Subject: " + msg.Subject,
		"MIME-Version: 1.0",
		"Content-Type: " + contentType,
	}

	return []byte(strings.Join(headers, "\r\n") + "\r\n\r\n" + body)
}

func buildBody(msg Message) (body string, contentType string) {
	if msg.HTMLBody == "" {
		return msg.TextBody, "text/plain; charset=UTF-8"
	}

	if msg.TextBody == "" {
		return msg.HTMLBody, "text/html; charset=UTF-8"
	}

	boundary := multipartBoundary()

	var sb strings.Builder
	fmt.Fprintf(&sb, "--%s\r\n", boundary)
	sb.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	sb.WriteString(msg.TextBody)
	fmt.Fprintf(&sb, "\r\n--%s\r\n", boundary)
	sb.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	sb.WriteString(msg.HTMLBody)
	fmt.Fprintf(&sb, "\r\n--%s--", boundary)

	return sb.String(), "multipart/alternative; boundary=" + boundary
}

func multipartBoundary() string {
	var b [12]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "authify-boundary"
	}
	return "authify-" + hex.EncodeToString(b[:])
}

// envelopeAddress extracts the address from "Name <addr>".
func envelopeAddress(from string) string {
	addr, err := mail.ParseAddress(from)
	if err != nil {
		return strings.TrimSpace(from)
	}
	return addr.Address
}
