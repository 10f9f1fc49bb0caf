package main

import (
	"database/sql"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/alexedwards/scs/mysqlstore"
	"github.com/alexedwards/scs/v2"
	"github.com/go-playground/form/v4"
	govalidator "github.com/go-playground/validator/v10"
	_ "github.com/go-sql-driver/mysql"
	"github.com/mabego/authify/internal/mailer"
	"github.com/mabego/authify/internal/models"
	"github.com/mabego/authify/internal/token"
	"github.com/mabego/authify/migrations"
)

const (
	IdleTimeout     = time.Minute
	ReadTimeout     = 5 * time.Second
	SessionLifetime = 12 * time.Hour
	TokenLifetime   = 10 * time.Hour
	WriteTimeout    = 10 * time.Second

	TokenIssuer = "authify"
)

type application struct {
	debug          bool
	errorLog       *log.Logger
	infoLog        *log.Logger
	users          models.UserModelInterface
	templateCache  map[string]*template.Template
	formDecoder    *form.Decoder
	sessionManager *scs.SessionManager
	notifier       *mailer.Notifier
	tokens         *token.Manager
	apiValidator   *govalidator.Validate
}

func main() {
	infoLog := log.New(os.Stdout, "INFO\t", log.Ldate|log.Ltime)
	errorLog := log.New(os.Stderr, "ERROR\t", log.Ldate|log.Ltime|log.Lshortfile)

	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		errorLog.Fatal(err)
	}

	db, err := openDB(cfg.dsn)
	if err != nil {
		errorLog.Fatal(err)
	}
	defer func(db *sql.DB) {
		err := db.Close()
		if err != nil {
			errorLog.Fatal(err)
		}
	}(db)

	if cfg.migrate {
		if err := migrations.Up(db); err != nil {
			errorLog.Fatal(err)
		}
		infoLog.Print("Database migrations applied")
	}

	templateCache, err := newTemplateCache()
	if err != nil {
		errorLog.Fatal(err)
	}

	tokens, err := token.New(token.Config{
		Secret: []byte(cfg.jwt.secret),
		Issuer: TokenIssuer,
		TTL:    TokenLifetime,
	})
	if err != nil {
		errorLog.Fatal(err)
	}

	m, err := newMailer(cfg, infoLog)
	if err != nil {
		errorLog.Fatal(err)
	}

	formDecoder := form.NewDecoder()

	sessionManager := scs.New()
	sessionManager.Store = mysqlstore.New(db)
	sessionManager.Lifetime = SessionLifetime
	sessionManager.Cookie.Secure = true

	app := &application{
		debug:          cfg.debug,
		errorLog:       errorLog,
		infoLog:        infoLog,
		users:          &models.UserModel{DB: db},
		templateCache:  templateCache,
		formDecoder:    formDecoder,
		sessionManager: sessionManager,
		notifier:       mailer.NewNotifier(m),
		tokens:         tokens,
		apiValidator:   newAPIValidator(),
	}

	srv := &http.Server{
		Addr:         cfg.addr,
		Handler:      app.routes(),
		ReadTimeout:  ReadTimeout,
		WriteTimeout: WriteTimeout,
		IdleTimeout:  IdleTimeout,
		ErrorLog:     errorLog,
	}

	infoLog.Printf("Starting server on %s", cfg.addr)
	errorLog.Fatal(srv.ListenAndServe())
}

// openDB wraps sql.Open and returns a sql.DB connection pool for a given data source name
func openDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("database pool initialization: %w", err) // wrapped error
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("database connection: %w", err)
	}

	return db, nil
}

// newMailer returns an SMTP mailer, or a mailer that logs messages when no SMTP host is configured.
func newMailer(cfg config, infoLog *log.Logger) (mailer.Mailer, error) {
	if cfg.smtp.host == "" {
		infoLog.Print("No SMTP host configured; emails will be logged")
		return &mailer.Log{Logger: infoLog}, nil
	}

	return mailer.NewSMTP(mailer.SMTPConfig{
		Host:     cfg.smtp.host,
		Port:     cfg.smtp.port,
		Username: cfg.smtp.username,
		Password: cfg.smtp.password,
		From:     cfg.smtp.from,
	})
}
