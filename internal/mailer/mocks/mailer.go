package mocks

import (
	"context"
	"sync"

	"github.com/mabego/authify/internal/mailer"
)

// Mailer records every message instead of delivering it.
type Mailer struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (m *Mailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent = append(m.sent, msg)
	return nil
}

// Last returns the most recent message sent to the address.
func (m *Mailer) Last(to string) (mailer.Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].To == to {
			return m.sent[i], true
		}
	}

	return mailer.Message{}, false
}

func (m *Mailer) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.sent)
}
