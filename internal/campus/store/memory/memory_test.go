package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/BrandonDHaskell/campusgate/internal/campus/store"
	"github.com/BrandonDHaskell/campusgate/internal/campus/store/memory"
)

func TestUserStore_DuplicatesAndLookup(t *testing.T) {
	us := memory.NewUserStore()
	ctx := context.Background()

	rec, err := us.CreateUser(ctx, store.UserRecord{Code: "A1B2C3", Name: "Ana", Email: "Ana@Campus.test"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if rec.ID != 1 || rec.CreatedAt.IsZero() {
		t.Errorf("expected id and created_at assigned, got %+v", rec)
	}

	if _, err := us.CreateUser(ctx, store.UserRecord{Code: "A1B2C3", Email: "x@campus.test"}); !errors.Is(err, store.ErrDuplicateCode) {
		t.Errorf("expected ErrDuplicateCode, got %v", err)
	}
	if _, err := us.CreateUser(ctx, store.UserRecord{Code: "X", Email: "ana@campus.test"}); !errors.Is(err, store.ErrDuplicateMail) {
		t.Errorf("expected ErrDuplicateMail, got %v", err)
	}

	got, err := us.UserByEmail(ctx, "ANA@campus.test")
	if err != nil || got.Code != "A1B2C3" {
		t.Errorf("UserByEmail: %+v, %v", got, err)
	}
	if _, err := us.UserByCode(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAccessEventStore_ListEvents(t *testing.T) {
	es := memory.NewAccessEventStore()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 12; i++ {
		kind := "entry"
		if i%3 == 0 {
			kind = "exit"
		}
		if _, err := es.RecordEvent(ctx, store.AccessEventRecord{
			UserCode: "A1B2C3", Kind: kind, OccurredAt: base.Add(time.Duration(i) * time.Hour),
		}); err != nil {
			t.Fatalf("RecordEvent: %v", err)
		}
	}

	page, total, err := es.ListEvents(ctx, store.EventQuery{Offset: 10, Limit: 10})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if total != 12 || len(page) != 2 {
		t.Fatalf("expected total=12 and 2 rows, got total=%d rows=%d", total, len(page))
	}
	if !page[1].OccurredAt.Equal(base) {
		t.Errorf("expected oldest event last, got %s", page[1].OccurredAt)
	}

	_, total, _ = es.ListEvents(ctx, store.EventQuery{Kind: "exit"})
	if total != 4 {
		t.Errorf("expected 4 exits, got %d", total)
	}

	page, total, _ = es.ListEvents(ctx, store.EventQuery{Offset: 50, Limit: 10})
	if total != 12 || len(page) != 0 {
		t.Errorf("offset past end: total=%d rows=%d", total, len(page))
	}
}
