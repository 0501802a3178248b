package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/BrandonDHaskell/campusgate/internal/campus/dedup"
	"github.com/BrandonDHaskell/campusgate/internal/campus/service"
	"github.com/BrandonDHaskell/campusgate/internal/campus/store"
	"github.com/BrandonDHaskell/campusgate/internal/campus/store/memory"
	"github.com/BrandonDHaskell/campusgate/internal/campus/types"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

type publishedMsg struct {
	channel string
	data    []byte
	attrs   map[string]string
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []publishedMsg
	err  error
}

func (p *fakePublisher) Publish(_ context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	p.msgs = append(p.msgs, publishedMsg{channel, data, attrs})
	return "id", nil
}

// failingEventStore rejects every write.
type failingEventStore struct{ store.AccessEventStore }

func (failingEventStore) RecordEvent(context.Context, store.AccessEventRecord) (store.AccessEventRecord, error) {
	return store.AccessEventRecord{}, errors.New("disk full")
}

var t0 = time.Date(2026, 5, 4, 7, 30, 0, 0, time.UTC)

type accessFixture struct {
	svc    *service.AccessService
	events *memory.AccessEventStore
	clock  *fakeClock
	pub    *fakePublisher
}

// newTestAccessService builds an AccessService over in-memory stores with
// Ana (A1B2C3) registered and a 2s dedup window.
func newTestAccessService(t *testing.T) accessFixture {
	t.Helper()

	userSvc, users := newTestUserService()
	mustRegister(t, userSvc, anaRequest())

	clock := &fakeClock{t: t0}
	pub := &fakePublisher{}
	events := memory.NewAccessEventStore()
	svc := service.NewAccessService(users, events, service.AccessOptions{
		Guard:     dedup.NewMemoryGuard(2 * time.Second),
		Publisher: pub,
		Logger:    silentLogger(),
		Now:       clock.Now,
	})
	return accessFixture{svc: svc, events: events, clock: clock, pub: pub}
}

// ── Recording ────────────────────────────────────────────────────────────────

func TestRecord_KnownUser_RecordsEvent(t *testing.T) {
	f := newTestAccessService(t)

	ev, err := f.svc.Record(context.Background(), types.RecordAccessRequest{
		UserCode:  "A1B2C3",
		EventType: types.KindEntry,
		StationID: "gate-north",
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if !ev.Timestamp.Equal(t0) {
		t.Errorf("expected server timestamp %s, got %s", t0, ev.Timestamp)
	}

	events := f.events.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].UserCode != "A1B2C3" || events[0].Kind != "entry" || events[0].StationID != "gate-north" {
		t.Errorf("unexpected event %+v", events[0])
	}
}

func TestRecord_KindIsCaseInsensitive(t *testing.T) {
	f := newTestAccessService(t)

	ev, err := f.svc.Record(context.Background(), types.RecordAccessRequest{UserCode: "A1B2C3", EventType: "EXIT"})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if ev.EventType != types.KindExit {
		t.Errorf("expected exit, got %q", ev.EventType)
	}
}

func TestRecord_UnknownUser_NotRecorded(t *testing.T) {
	f := newTestAccessService(t)

	_, err := f.svc.Record(context.Background(), types.RecordAccessRequest{UserCode: "Z9Z9Z9", EventType: types.KindEntry})
	if !errors.Is(err, service.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if n := len(f.events.Events()); n != 0 {
		t.Errorf("expected no events, got %d", n)
	}
}

func TestRecord_Validation(t *testing.T) {
	f := newTestAccessService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  types.RecordAccessRequest
		want error
	}{
		{"missing code", types.RecordAccessRequest{EventType: types.KindEntry}, service.ErrAccessFieldsRequired},
		{"missing kind", types.RecordAccessRequest{UserCode: "A1B2C3"}, service.ErrAccessFieldsRequired},
		{"missing code beats bad kind", types.RecordAccessRequest{EventType: "lunch"}, service.ErrAccessFieldsRequired},
		{"bad kind", types.RecordAccessRequest{UserCode: "A1B2C3", EventType: "lunch"}, service.ErrInvalidEventType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Record(ctx, tc.req)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !errors.Is(err, service.ErrValidation) {
				t.Errorf("expected error to match ErrValidation")
			}
		})
	}
	if n := len(f.events.Events()); n != 0 {
		t.Errorf("expected no events, got %d", n)
	}
}

// ── Dedup ────────────────────────────────────────────────────────────────────

func TestRecord_DuplicateWithinWindow(t *testing.T) {
	f := newTestAccessService(t)
	ctx := context.Background()
	req := types.RecordAccessRequest{UserCode: "A1B2C3", EventType: types.KindEntry}

	if _, err := f.svc.Record(ctx, req); err != nil {
		t.Fatalf("first Record: %v", err)
	}

	f.clock.Set(t0.Add(time.Second))
	if _, err := f.svc.Record(ctx, req); !errors.Is(err, service.ErrDuplicateAccess) {
		t.Fatalf("expected ErrDuplicateAccess, got %v", err)
	}

	f.clock.Set(t0.Add(2 * time.Second))
	if _, err := f.svc.Record(ctx, req); err != nil {
		t.Fatalf("Record after window: %v", err)
	}

	if n := len(f.events.Events()); n != 2 {
		t.Errorf("expected 2 events, got %d", n)
	}
}

func TestRecord_StoreFailureReleasesClaim(t *testing.T) {
	userSvc, users := newTestUserService()
	mustRegister(t, userSvc, anaRequest())
	guard := dedup.NewMemoryGuard(time.Minute)

	svc := service.NewAccessService(users, failingEventStore{}, service.AccessOptions{
		Guard:  guard,
		Logger: silentLogger(),
	})

	_, err := svc.Record(context.Background(), types.RecordAccessRequest{UserCode: "A1B2C3", EventType: types.KindEntry})
	if err == nil || errors.Is(err, service.ErrValidation) {
		t.Fatalf("expected a store error, got %v", err)
	}
	if guard.Len() != 0 {
		t.Errorf("expected the claim to be released, %d held", guard.Len())
	}
}

// ── Timestamps ───────────────────────────────────────────────────────────────

func TestRecord_TimestampsNeverGoBackwards(t *testing.T) {
	userSvc, users := newTestUserService()
	mustRegister(t, userSvc, anaRequest())
	bob := anaRequest()
	bob.Code, bob.Email, bob.Name = "B2C3D4", "bob@campus.test", "Bob"
	mustRegister(t, userSvc, bob)

	clock := &fakeClock{t: t0}
	svc := service.NewAccessService(users, memory.NewAccessEventStore(), service.AccessOptions{
		Logger: silentLogger(),
		Now:    clock.Now,
	})
	ctx := context.Background()

	first, err := svc.Record(ctx, types.RecordAccessRequest{UserCode: "A1B2C3", EventType: types.KindEntry})
	if err != nil {
		t.Fatalf("first: %v", err)
	}

	clock.Set(t0.Add(-time.Minute)) // wall clock stepped back
	second, err := svc.Record(ctx, types.RecordAccessRequest{UserCode: "B2C3D4", EventType: types.KindEntry})
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if second.Timestamp.Before(first.Timestamp) {
		t.Errorf("timestamp went backwards: %s < %s", second.Timestamp, first.Timestamp)
	}
}

// ── Publishing ───────────────────────────────────────────────────────────────

func TestRecord_PublishesNotification(t *testing.T) {
	f := newTestAccessService(t)

	ev, err := f.svc.Record(context.Background(), types.RecordAccessRequest{UserCode: "A1B2C3", EventType: types.KindExit})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	if len(f.pub.msgs) != 1 {
		t.Fatalf("expected 1 published message, got %d", len(f.pub.msgs))
	}
	msg := f.pub.msgs[0]
	if msg.channel != service.DefaultChannel {
		t.Errorf("expected channel %q, got %q", service.DefaultChannel, msg.channel)
	}
	if msg.attrs["event_type"] != "exit" {
		t.Errorf("expected event_type attr, got %v", msg.attrs)
	}

	var got types.AccessEvent
	if err := json.Unmarshal(msg.data, &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got.ID != ev.ID || got.UserCode != "A1B2C3" {
		t.Errorf("unexpected body %+v", got)
	}
}

func TestRecord_PublishFailureIsNotFatal(t *testing.T) {
	f := newTestAccessService(t)
	f.pub.err = errors.New("broker down")

	if _, err := f.svc.Record(context.Background(), types.RecordAccessRequest{UserCode: "A1B2C3", EventType: types.KindEntry}); err != nil {
		t.Fatalf("expected success despite broker failure, got %v", err)
	}
	if n := len(f.events.Events()); n != 1 {
		t.Errorf("expected the event to be stored, got %d", n)
	}
}
