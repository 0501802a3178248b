package history

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/BrandonDHaskell/campusgate/internal/campus/types"
)

var now = time.Date(2026, 5, 20, 15, 0, 0, 0, time.UTC)

func day(d int, hour int) time.Time {
	return time.Date(2026, 5, d, hour, 0, 0, 0, time.UTC)
}

// ── Filter ───────────────────────────────────────────────────────────────────

func TestFilter_InclusiveBounds(t *testing.T) {
	f := Filter{Start: "2026-05-10", End: "2026-05-12", Kind: types.TypeAll}

	cases := []struct {
		at   time.Time
		want bool
	}{
		{day(9, 23), false},
		{day(10, 0), true},
		{day(12, 23), true},
		{time.Date(2026, 5, 12, 23, 59, 59, 0, time.UTC), true},
		{day(13, 0), false},
	}
	for _, tc := range cases {
		if got := f.Matches(Entry{At: tc.at, Kind: types.KindEntry}); got != tc.want {
			t.Errorf("Matches(%s) = %v, want %v", tc.at, got, tc.want)
		}
	}
}

func TestFilter_KindWildcard(t *testing.T) {
	entry := Entry{At: day(10, 8), Kind: types.KindEntry}
	exit := Entry{At: day(10, 9), Kind: types.KindExit}

	for _, kind := range []string{"", types.TypeAll} {
		f := Filter{Kind: kind}
		if !f.Matches(entry) || !f.Matches(exit) {
			t.Errorf("kind %q should match both", kind)
		}
	}

	f := Filter{Kind: "exit"}
	if f.Matches(entry) || !f.Matches(exit) {
		t.Error("kind exit should match only exits")
	}
}

func TestFilter_Validate(t *testing.T) {
	bad := []Filter{
		{Start: "20-05-2026"},
		{Start: "2026-05-12", End: "2026-05-10"},
		{Kind: "lunch"},
	}
	for _, f := range bad {
		if err := f.Validate(); !errors.Is(err, ErrInvalidFilter) {
			t.Errorf("Validate(%+v) = %v, want ErrInvalidFilter", f, err)
		}
	}
	if err := DefaultFilter(now).Validate(); err != nil {
		t.Errorf("default filter: %v", err)
	}
}

func TestDefaultFilter(t *testing.T) {
	f := DefaultFilter(now)
	if f.Start != "2026-05-13" || f.End != "2026-05-20" || f.Kind != "all" {
		t.Errorf("unexpected default %+v", f)
	}
}

func TestTotalPages(t *testing.T) {
	cases := map[int]int{0: 1, 1: 1, 10: 1, 11: 2, 50: 5, 51: 6}
	for total, want := range cases {
		if got := TotalPages(total, PageSize); got != want {
			t.Errorf("TotalPages(%d) = %d, want %d", total, got, want)
		}
	}
}

// ── MockSource ───────────────────────────────────────────────────────────────

func TestMockSource_Deterministic(t *testing.T) {
	a := NewMockSource(42, now).All()
	b := NewMockSource(42, now).All()

	if len(a) != 50 {
		t.Fatalf("expected 50 entries, got %d", len(a))
	}
	oldest := now.AddDate(0, 0, -60)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("entry %d differs between runs", i)
		}
		if a[i].At.Before(oldest.Truncate(24*time.Hour)) || a[i].At.After(now.Truncate(24*time.Hour).Add(24*time.Hour)) {
			t.Errorf("entry %d out of range: %s", i, a[i].At)
		}
		if a[i].Status != "success" && a[i].Status != "error" {
			t.Errorf("entry %d has status %q", i, a[i].Status)
		}
	}
}

// ── ViewModel ────────────────────────────────────────────────────────────────

func openAll(t *testing.T) *ViewModel {
	t.Helper()
	vm := NewViewModel(NewMockSource(7, now), now)
	if err := vm.ApplyFilter(context.Background(), Filter{Kind: types.TypeAll}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	return vm
}

func TestViewModel_PagesThroughAll(t *testing.T) {
	vm := openAll(t)
	ctx := context.Background()

	if vm.Total() != 50 || vm.TotalPages() != 5 {
		t.Fatalf("expected 50 items over 5 pages, got %d over %d", vm.Total(), vm.TotalPages())
	}
	if len(vm.Entries()) != PageSize {
		t.Errorf("expected a full page, got %d", len(vm.Entries()))
	}

	if moved, _ := vm.ChangePage(ctx, -1); moved || vm.CurrentPage() != 1 {
		t.Error("cannot go before page 1")
	}

	for want := 2; want <= 5; want++ {
		if moved, err := vm.ChangePage(ctx, 1); !moved || err != nil {
			t.Fatalf("move to %d: moved=%v err=%v", want, moved, err)
		}
		if vm.CurrentPage() != want {
			t.Fatalf("expected page %d, got %d", want, vm.CurrentPage())
		}
	}

	if moved, _ := vm.ChangePage(ctx, 1); moved || vm.CurrentPage() != 5 {
		t.Error("cannot go past the last page")
	}
	if moved, _ := vm.ChangePage(ctx, -10); moved || vm.CurrentPage() != 5 {
		t.Error("a jump outside the range is a no-op")
	}
}

func TestViewModel_ApplyFilterResetsPage(t *testing.T) {
	vm := openAll(t)
	ctx := context.Background()

	if _, err := vm.ChangePage(ctx, 2); err != nil {
		t.Fatal(err)
	}
	if vm.CurrentPage() != 3 {
		t.Fatalf("expected page 3, got %d", vm.CurrentPage())
	}

	if err := vm.ApplyFilter(ctx, Filter{Kind: "entry"}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if vm.CurrentPage() != 1 {
		t.Errorf("filter should reset to page 1, got %d", vm.CurrentPage())
	}
	for _, e := range vm.Entries() {
		if e.Kind != types.KindEntry {
			t.Errorf("unexpected kind %s", e.Kind)
		}
	}
}

func TestViewModel_EmptyResultHasOnePage(t *testing.T) {
	vm := openAll(t)

	if err := vm.ApplyFilter(context.Background(), Filter{Start: "2030-01-01", Kind: "all"}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if vm.Total() != 0 || vm.TotalPages() != 1 || len(vm.Entries()) != 0 {
		t.Errorf("expected empty single page, got total=%d pages=%d", vm.Total(), vm.TotalPages())
	}
	if moved, _ := vm.ChangePage(context.Background(), 1); moved {
		t.Error("no second page to move to")
	}
}

func TestViewModel_InvalidFilterKeepsState(t *testing.T) {
	vm := openAll(t)
	before := vm.Filter()

	if err := vm.ApplyFilter(context.Background(), Filter{Kind: "lunch"}); err == nil {
		t.Fatal("expected error")
	}
	if vm.Filter() != before {
		t.Error("filter should be unchanged")
	}
}

func TestViewModel_ResetFilter(t *testing.T) {
	vm := openAll(t)
	if err := vm.ResetFilter(context.Background(), now); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if vm.Filter() != DefaultFilter(now) || vm.CurrentPage() != 1 {
		t.Errorf("unexpected state after reset: %+v page %d", vm.Filter(), vm.CurrentPage())
	}
}

// ── GatewaySource ────────────────────────────────────────────────────────────

type fakeLister struct {
	got types.HistoryQuery
}

func (f *fakeLister) ListAccessHistory(_ context.Context, q types.HistoryQuery) (types.HistoryPage, error) {
	f.got = q
	return types.HistoryPage{
		Data:  []types.AccessEvent{{ID: 9, UserCode: "A1B2C3", EventType: types.KindExit, Timestamp: day(14, 18), StationID: "gate-1"}},
		Total: 21,
		Page:  q.Page,
		Limit: q.Limit,
	}, nil
}

func TestGatewaySource(t *testing.T) {
	api := &fakeLister{}
	vm := NewViewModel(GatewaySource{API: api, UserCode: "A1B2C3"}, now)

	if err := vm.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if api.got.UserCode != "A1B2C3" || api.got.StartDate != "2026-05-13" || api.got.Type != "all" || api.got.Limit != PageSize {
		t.Errorf("unexpected query %+v", api.got)
	}
	if vm.TotalPages() != 3 {
		t.Errorf("expected 3 pages, got %d", vm.TotalPages())
	}
	e := vm.Entries()[0]
	if e.Location != "gate-1" || e.Kind != types.KindExit || e.Status != "success" {
		t.Errorf("unexpected entry %+v", e)
	}
}

// ── Export ───────────────────────────────────────────────────────────────────

func TestExportCSV_WritesEveryMatch(t *testing.T) {
	src := NewMockSource(7, now)
	f := Filter{Kind: "exit"}

	want := 0
	for _, e := range src.All() {
		if f.Matches(e) {
			want++
		}
	}

	var buf bytes.Buffer
	n, err := ExportCSV(context.Background(), &buf, src, f)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if n != want {
		t.Errorf("expected %d rows, wrote %d", want, n)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(rows) != want+1 || rows[0][0] != "id" {
		t.Fatalf("expected header plus %d rows, got %d", want, len(rows))
	}
	for _, row := range rows[1:] {
		if row[2] != "exit" {
			t.Errorf("unexpected kind in row %v", row)
		}
	}
}
