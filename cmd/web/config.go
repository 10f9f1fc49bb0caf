package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type config struct {
	addr    string
	dsn     string
	debug   bool
	migrate bool
	smtp    struct {
		host     string
		port     int
		username string
		password string
		from     string
	}
	jwt struct {
		secret string
	}
}

// loadConfig reads an optional .env file into the environment, then parses the command-line flags.
// Every flag defaults to its AUTHIFY_* environment variable, so flags win over the environment.
func loadConfig(args []string) (config, error) {
	var cfg config

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, err
	}

	smtpPort, err := envInt("AUTHIFY_SMTP_PORT", 587)
	if err != nil {
		return cfg, err
	}

	debug, err := envBool("AUTHIFY_DEBUG", false)
	if err != nil {
		return cfg, err
	}

	migrate, err := envBool("AUTHIFY_MIGRATE", false)
	if err != nil {
		return cfg, err
	}

	flags := flag.NewFlagSet("web", flag.ContinueOnError)

	flags.StringVar(&cfg.addr, "addr", envString("AUTHIFY_ADDR", ":4001"), "HTTP network address")
	flags.StringVar(&cfg.dsn, "dsn", envString("AUTHIFY_DSN", ""), "MariaDB data source name")
	flags.BoolVar(&cfg.debug, "debug", debug, "Enable debug mode in the browser")
	flags.BoolVar(&cfg.migrate, "migrate", migrate, "Apply database migrations on startup")

	flags.StringVar(&cfg.smtp.host, "smtp-host", envString("AUTHIFY_SMTP_HOST", ""), "SMTP host; log emails when empty")
	flags.IntVar(&cfg.smtp.port, "smtp-port", smtpPort, "SMTP port")
	flags.StringVar(&cfg.smtp.username, "smtp-username", envString("AUTHIFY_SMTP_USERNAME", ""), "SMTP username")
	flags.StringVar(&cfg.smtp.password, "smtp-password", envString("AUTHIFY_SMTP_PASSWORD", ""), "SMTP password")
	flags.StringVar(&cfg.smtp.from, "smtp-from", envString("AUTHIFY_SMTP_FROM", "Authify Support <no-reply@authify.local>"),
		"SMTP sender")

	flags.StringVar(&cfg.jwt.secret, "jwt-secret", envString("AUTHIFY_JWT_SECRET", ""),
		"API token signing key, at least 64 bytes")

	if err := flags.Parse(args); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
