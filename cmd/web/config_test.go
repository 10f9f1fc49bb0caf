package main

import (
	"testing"

	"github.com/mabego/authify/internal/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := loadConfig(nil)
		assert.NilError(t, err)

		assert.Equal(t, cfg.addr, ":4001")
		assert.Equal(t, cfg.smtp.port, 587)
		assert.Equal(t, cfg.smtp.host, "")
		assert.Equal(t, cfg.debug, false)
	})

	t.Run("Environment", func(t *testing.T) {
		t.Setenv("AUTHIFY_ADDR", ":8080")
		t.Setenv("AUTHIFY_SMTP_PORT", "2525")
		t.Setenv("AUTHIFY_DEBUG", "true")
		t.Setenv("AUTHIFY_JWT_SECRET", "env-secret")

		cfg, err := loadConfig(nil)
		assert.NilError(t, err)

		assert.Equal(t, cfg.addr, ":8080")
		assert.Equal(t, cfg.smtp.port, 2525)
		assert.Equal(t, cfg.debug, true)
		assert.Equal(t, cfg.jwt.secret, "env-secret")
	})

	t.Run("Flags override environment", func(t *testing.T) {
		t.Setenv("AUTHIFY_ADDR", ":8080")
		t.Setenv("AUTHIFY_SMTP_PORT", "2525")

		cfg, err := loadConfig([]string{"-addr", ":9090", "-migrate", "-smtp-port", "25"})
		assert.NilError(t, err)

		assert.Equal(t, cfg.addr, ":9090")
		assert.Equal(t, cfg.migrate, true)
		assert.Equal(t, cfg.smtp.port, 25)
	})

	malformed := []struct {
		name  string
		key   string
		value string
	}{
		{name: "Malformed port", key: "AUTHIFY_SMTP_PORT", value: "25x"},
		{name: "Malformed debug", key: "AUTHIFY_DEBUG", value: "sometimes"},
		{name: "Malformed migrate", key: "AUTHIFY_MIGRATE", value: "2"},
	}

	for _, tt := range malformed {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := loadConfig(nil)
			if err == nil {
				t.Fatalf("got nil error; want an error for %s=%s", tt.key, tt.value)
			}
			assert.StringContains(t, err.Error(), tt.key)
		})
	}

	t.Run("Unknown flag", func(t *testing.T) {
		_, err := loadConfig([]string{"-nope"})
		if err == nil {
			t.Error("got nil error; want an error for an unknown flag")
		}
	})
}
