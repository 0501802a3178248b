package sqlite_test

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/BrandonDHaskell/campusgate/internal/campus/store"
	sqlitestore "github.com/BrandonDHaskell/campusgate/internal/campus/store/sqlite"
	"github.com/BrandonDHaskell/campusgate/internal/db"
)

// openTestDB returns a migrated in-memory SQLite connection with the same
// PRAGMAs as production, closed when the test finishes.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.OpenMemory(context.Background(), "test_"+strings.ReplaceAll(t.Name(), "/", "_"))
	if err != nil {
		t.Fatalf("openTestDB: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// newTestWriter returns a db.Worker backed by conn.  The worker is closed
// automatically when the test finishes.
func newTestWriter(t *testing.T, conn *sql.DB) *db.Worker {
	t.Helper()

	w := db.NewWorker(conn)
	t.Cleanup(w.Close)
	return w
}

// seedUser inserts a member account directly through the store.
func seedUser(t *testing.T, us *sqlitestore.UserStore, code, name string) store.UserRecord {
	t.Helper()

	rec, err := us.CreateUser(context.Background(), store.UserRecord{
		Code:         code,
		Name:         name,
		Email:        strings.ToLower(code) + "@campus.test",
		Program:      "Ingenieria",
		Role:         "member",
		PasswordHash: "x",
		CreatedAt:    time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("seedUser %s: %v", code, err)
	}
	return rec
}
