package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mabego/authify/internal/assert"
)

var testSecret = []byte(strings.Repeat("s3cr3t-k3y-", 7))

func newTestManager(t *testing.T, now func() time.Time) *Manager {
	t.Helper()

	m, err := New(Config{Secret: testSecret, Issuer: "authify", TTL: 10 * time.Hour, Now: now})
	if err != nil {
		t.Fatal(err)
	}

	return m
}

func TestNewRejectsShortSecret(t *testing.T) {
	_, err := New(Config{Secret: []byte("short"), Issuer: "authify"})
	assert.Equal(t, errors.Is(err, ErrSigningKeyTooShort), true)
}

func TestGenerateVerify(t *testing.T) {
	m := newTestManager(t, nil)

	tok, err := m.Generate(7, "alice@example.com")
	assert.NilError(t, err)

	claims, err := m.Verify(tok)
	assert.NilError(t, err)
	assert.Equal(t, claims.UserID, 7)
	assert.Equal(t, claims.Email, "alice@example.com")
	assert.Equal(t, claims.Subject, "7")
}

func TestVerifyExpired(t *testing.T) {
	issued := time.Now().Add(-11 * time.Hour)
	m := newTestManager(t, func() time.Time { return issued })

	tok, err := m.Generate(7, "alice@example.com")
	assert.NilError(t, err)

	later := newTestManager(t, time.Now)
	_, err = later.Verify(tok)
	assert.Equal(t, errors.Is(err, ErrExpired), true)
}

func TestVerifyTampered(t *testing.T) {
	m := newTestManager(t, nil)

	tok, err := m.Generate(7, "alice@example.com")
	assert.NilError(t, err)

	other, err := New(Config{Secret: []byte(strings.Repeat("x", 64)), Issuer: "authify", TTL: time.Hour})
	assert.NilError(t, err)

	_, err = other.Verify(tok)
	assert.Equal(t, errors.Is(err, ErrInvalid), true)

	_, err = m.Verify("not.a.token")
	assert.Equal(t, errors.Is(err, ErrInvalid), true)
}
