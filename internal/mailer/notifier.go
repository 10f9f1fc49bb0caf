package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	ttemplate "text/template"
	"time"

	"github.com/sethvargo/go-retry"
)

//go:embed "templates"
var templateFS embed.FS

const (
	welcomeTemplate   = "welcome.tmpl"
	verifyOTPTemplate = "verify_otp.tmpl"
	resetOTPTemplate  = "reset_otp.tmpl"
)

const (
	MaxRetries   = 2
	RetryBackoff = 250 * time.Millisecond
)

// Notifier renders account emails and sends them through a Mailer, retrying transient failures.
type Notifier struct {
	mailer  Mailer
	backoff func() retry.Backoff
}

func NewNotifier(m Mailer) *Notifier {
	return &Notifier{
		mailer: m,
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(MaxRetries, retry.NewExponential(RetryBackoff))
		},
	}
}

func (n *Notifier) SendWelcome(ctx context.Context, to, name string) error {
	return n.send(ctx, to, welcomeTemplate, map[string]any{"Name": name})
}

func (n *Notifier) SendVerifyOTP(ctx context.Context, to, code string) error {
	return n.send(ctx, to, verifyOTPTemplate, map[string]any{"OTP": code, "Lifetime": "24 hours"})
}

func (n *Notifier) SendResetOTP(ctx context.Context, to, code string) error {
	return n.send(ctx, to, resetOTPTemplate, map[string]any{"OTP": code, "Lifetime": "5 minutes"})
}

func (n *Notifier) send(ctx context.Context, to, name string, data any) error {
	msg, err := render(name, data)
	if err != nil {
		return err
	}
	msg.To = to

	err = retry.Do(ctx, n.backoff(), func(ctx context.Context) error {
		if err := n.mailer.Send(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return err
			}
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("send %s to %s: %w", name, to, err)
	}

	return nil
}

// render executes the "subject", "plainBody" and "htmlBody" templates of the named file.
func render(name string, data any) (Message, error) {
	var msg Message

	tt, err := ttemplate.New("").ParseFS(templateFS, "templates/"+name)
	if err != nil {
		return msg, err
	}

	subject := new(bytes.Buffer)
	if err := tt.ExecuteTemplate(subject, "subject", data); err != nil {
		return msg, err
	}

	plainBody := new(bytes.Buffer)
	if err := tt.ExecuteTemplate(plainBody, "plainBody", data); err != nil {
		return msg, err
	}

	ht, err := template.New("").ParseFS(templateFS, "templates/"+name)
	if err != nil {
		return msg, err
	}

	htmlBody := new(bytes.Buffer)
	if err := ht.ExecuteTemplate(htmlBody, "htmlBody", data); err != nil {
		return msg, err
	}

	msg.Subject = subject.String()
	msg.TextBody = plainBody.String()
	msg.HTMLBody = htmlBody.String()

	return msg, nil
}
