package mailer

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"

	"github.com/mabego/authify/internal/assert"
	"github.com/sethvargo/go-retry"
)

var errTransient = errors.New("421 service not available")

type flakyMailer struct {
	failures int
	calls    int
	last     Message
}

func (f *flakyMailer) Send(_ context.Context, msg Message) error {
	f.calls++
	if f.calls <= f.failures {
		return errTransient
	}
	f.last = msg
	return nil
}

func newTestNotifier(m Mailer) *Notifier {
	n := NewNotifier(m)
	n.backoff = func() retry.Backoff {
		return retry.WithMaxRetries(MaxRetries, retry.NewConstant(1))
	}
	return n
}

func TestNotifierTemplates(t *testing.T) {
	tests := []struct {
		name        string
		send        func(n *Notifier) error
		wantSubject string
		wantBody    string
	}{
		{
			name:        "Welcome",
			send:        func(n *Notifier) error { return n.SendWelcome(context.Background(), "bob@example.com", "Bob") },
			wantSubject: "Welcome to Authify",
			wantBody:    "Hello Bob,",
		},
		{
			name:        "Verify OTP",
			send:        func(n *Notifier) error { return n.SendVerifyOTP(context.Background(), "bob@example.com", "123456") },
			wantSubject: "OTP for Authentication",
			wantBody:    "Your OTP for authentication is: 123456",
		},
		{
			name:        "Reset OTP",
			send:        func(n *Notifier) error { return n.SendResetOTP(context.Background(), "bob@example.com", "654321") },
			wantSubject: "Your OTP for Password Reset",
			wantBody:    "valid for 5 minutes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &flakyMailer{}
			err := tt.send(newTestNotifier(m))
			assert.NilError(t, err)

			assert.Equal(t, m.last.To, "bob@example.com")
			assert.Equal(t, m.last.Subject, tt.wantSubject)
			assert.StringContains(t, m.last.TextBody, tt.wantBody)
			assert.StringContains(t, m.last.HTMLBody, "<html>")
		})
	}
}

func TestNotifierRetries(t *testing.T) {
	m := &flakyMailer{failures: 2}

	err := newTestNotifier(m).SendVerifyOTP(context.Background(), "bob@example.com", "123456")
	assert.NilError(t, err)
	assert.Equal(t, m.calls, 3)

	m = &flakyMailer{failures: 5}

	err = newTestNotifier(m).SendVerifyOTP(context.Background(), "bob@example.com", "123456")
	assert.Equal(t, errors.Is(err, errTransient), true)
	assert.Equal(t, m.calls, MaxRetries+1)
}

func TestLogMailer(t *testing.T) {
	buf := new(bytes.Buffer)
	l := &Log{Logger: log.New(buf, "", 0)}

	err := l.Send(context.Background(), Message{To: "bob@example.com", Subject: "Hi", TextBody: "body"})
	assert.NilError(t, err)
	assert.StringContains(t, buf.String(), `to=bob@example.com subject="Hi"`)

	err = l.Send(context.Background(), Message{Subject: "Hi"})
	assert.Equal(t, errors.Is(err, ErrNoRecipients), true)
}

func TestSMTPBuild(t *testing.T) {
	_, err := NewSMTP(SMTPConfig{})
	assert.Equal(t, errors.Is(err, ErrSMTPHostPortRequired), true)

	s, err := NewSMTP(SMTPConfig{Host: "localhost", Port: 2525, From: "Authify Support <support@example.com>"})
	assert.NilError(t, err)
	assert.Equal(t, s.fromAddress, "support@example.com")

	bare, err := NewSMTP(SMTPConfig{Host: "localhost", Port: 2525, From: " no-reply@example.com "})
	assert.NilError(t, err)
	assert.Equal(t, bare.fromAddress, "no-reply@example.com")

	raw := string(s.build(Message{To: "bob@example.com", Subject: "Hi", TextBody: "plain", HTMLBody: "<p>html</p>"}))
	assert.StringContains(t, raw, "From: Authify Support <support@example.com>\r\n")
	assert.StringContains(t, raw, "Content-Type: multipart/alternative; boundary=authify-")
	assert.StringContains(t, raw, "plain")
	assert.StringContains(t, raw, "<p>html</p>")
}
