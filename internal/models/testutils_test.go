package models

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/mabego/authify/migrations"
)

// newTestDB connects to the database named by AUTHIFY_TEST_DSN, applies the migrations and drops
// every table when the test finishes. The DSN must include parseTime=true.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("AUTHIFY_TEST_DSN")
	if dsn == "" {
		t.Skip("models: AUTHIFY_TEST_DSN not set")
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatal(err)
	}

	if err := migrations.Up(db); err != nil {
		db.Close()
		t.Fatal(err)
	}

	t.Cleanup(func() {
		defer db.Close()

		for _, table := range []string{"users", "sessions", "schema_migrations"} {
			if _, err := db.Exec("DROP TABLE IF EXISTS " + table); err != nil {
				t.Fatal(err)
			}
		}
	})

	return db
}
