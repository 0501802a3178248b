package history

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/BrandonDHaskell/campusgate/internal/campus/types"
)

// Result is one page of a filtered listing plus the filtered total.
type Result struct {
	Entries []Entry
	Total   int
}

type Source interface {
	Fetch(ctx context.Context, f Filter, page, size int) (Result, error)
}

// MockSource serves a fixed, seeded set of entries for demos and tests.
type MockSource struct {
	entries []Entry
}

var mockLocations = []string{"Edificio A", "Edificio B", "Edificio C", "Biblioteca", "Gimnasio"}

// NewMockSource generates 50 entries spread over the 60 days before now.
// The same seed and now always give the same entries.
func NewMockSource(seed uint64, now time.Time) *MockSource {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	now = now.UTC()

	const n = 50
	entries := make([]Entry, 0, n)
	for i := range n {
		day := now.AddDate(0, 0, -rng.IntN(60))
		at := time.Date(day.Year(), day.Month(), day.Day(), rng.IntN(24), rng.IntN(60), 0, 0, time.UTC)

		kind := types.KindEntry
		if rng.IntN(2) == 1 {
			kind = types.KindExit
		}
		status := "success"
		if rng.IntN(2) == 1 {
			status = "error"
		}

		entries = append(entries, Entry{
			ID:       int64(i + 1),
			At:       at,
			Kind:     kind,
			Location: mockLocations[rng.IntN(len(mockLocations))],
			Status:   status,
		})
	}
	return &MockSource{entries: entries}
}

// All returns every generated entry in generation order.
func (m *MockSource) All() []Entry {
	return append([]Entry(nil), m.entries...)
}

func (m *MockSource) Fetch(ctx context.Context, f Filter, page, size int) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	var matched []Entry
	for _, e := range m.entries {
		if f.Matches(e) {
			matched = append(matched, e)
		}
	}

	start := min(max(page-1, 0)*size, len(matched))
	end := min(start+size, len(matched))
	return Result{Entries: matched[start:end], Total: len(matched)}, nil
}

// Lister is the part of the API client GatewaySource uses.
type Lister interface {
	ListAccessHistory(ctx context.Context, q types.HistoryQuery) (types.HistoryPage, error)
}

// GatewaySource reads the backend access log. UserCode may be empty when
// the caller is staff and wants everyone's events.
type GatewaySource struct {
	API      Lister
	UserCode string
}

func (g GatewaySource) Fetch(ctx context.Context, f Filter, page, size int) (Result, error) {
	resp, err := g.API.ListAccessHistory(ctx, types.HistoryQuery{
		UserCode:  g.UserCode,
		StartDate: f.Start,
		EndDate:   f.End,
		Type:      f.Kind,
		Page:      page,
		Limit:     size,
	})
	if err != nil {
		return Result{}, fmt.Errorf("history: %w", err)
	}

	entries := make([]Entry, 0, len(resp.Data))
	for _, ev := range resp.Data {
		entries = append(entries, Entry{
			ID:       ev.ID,
			At:       ev.Timestamp,
			Kind:     ev.EventType,
			Location: ev.StationID,
			Status:   "success",
			UserCode: ev.UserCode,
		})
	}
	return Result{Entries: entries, Total: resp.Total}, nil
}
