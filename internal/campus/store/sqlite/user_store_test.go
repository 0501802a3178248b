package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/BrandonDHaskell/campusgate/internal/campus/store"
	sqlitestore "github.com/BrandonDHaskell/campusgate/internal/campus/store/sqlite"
)

func TestUserStore_CreateAndLookup(t *testing.T) {
	conn := openTestDB(t)
	us := sqlitestore.NewUserStore(conn, newTestWriter(t, conn))
	ctx := context.Background()

	created := seedUser(t, us, "A1B2C3", "Ana")
	if created.ID == 0 {
		t.Fatal("expected an assigned user_id")
	}

	byCode, err := us.UserByCode(ctx, "A1B2C3")
	if err != nil {
		t.Fatalf("UserByCode: %v", err)
	}
	if byCode.Name != "Ana" || byCode.ID != created.ID {
		t.Errorf("unexpected record %+v", byCode)
	}
	if !byCode.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("created_at round trip: got %s want %s", byCode.CreatedAt, created.CreatedAt)
	}

	byMail, err := us.UserByEmail(ctx, "A1B2C3@CAMPUS.TEST")
	if err != nil {
		t.Fatalf("UserByEmail: %v", err)
	}
	if byMail.Code != "A1B2C3" {
		t.Errorf("expected A1B2C3, got %q", byMail.Code)
	}
}

func TestUserStore_NotFound(t *testing.T) {
	conn := openTestDB(t)
	us := sqlitestore.NewUserStore(conn, newTestWriter(t, conn))

	_, err := us.UserByCode(context.Background(), "Z9Z9Z9")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserStore_DuplicateCode(t *testing.T) {
	conn := openTestDB(t)
	us := sqlitestore.NewUserStore(conn, newTestWriter(t, conn))
	seedUser(t, us, "A1B2C3", "Ana")

	_, err := us.CreateUser(context.Background(), store.UserRecord{
		Code: "A1B2C3", Name: "Otra", Email: "otra@campus.test",
		Program: "Derecho", Role: "member", PasswordHash: "x",
	})
	if !errors.Is(err, store.ErrDuplicateCode) {
		t.Fatalf("expected ErrDuplicateCode, got %v", err)
	}
}

func TestUserStore_DuplicateEmail(t *testing.T) {
	conn := openTestDB(t)
	us := sqlitestore.NewUserStore(conn, newTestWriter(t, conn))
	seedUser(t, us, "A1B2C3", "Ana")

	_, err := us.CreateUser(context.Background(), store.UserRecord{
		Code: "B2C3D4", Name: "Otra", Email: "a1b2c3@campus.test",
		Program: "Derecho", Role: "member", PasswordHash: "x",
	})
	if !errors.Is(err, store.ErrDuplicateMail) {
		t.Fatalf("expected ErrDuplicateMail, got %v", err)
	}
}
