package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/BrandonDHaskell/campusgate/internal/campus/store"
)

// AccessEventStore is an in-memory append-only access log.
type AccessEventStore struct {
	mu     sync.Mutex
	events []store.AccessEventRecord
}

func NewAccessEventStore() *AccessEventStore {
	return &AccessEventStore{}
}

func (s *AccessEventStore) RecordEvent(_ context.Context, rec store.AccessEventRecord) (store.AccessEventRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = int64(len(s.events) + 1)
	s.events = append(s.events, rec)
	return rec, nil
}

func (s *AccessEventStore) ListEvents(_ context.Context, q store.EventQuery) ([]store.AccessEventRecord, int, error) {
	s.mu.Lock()
	matched := make([]store.AccessEventRecord, 0, len(s.events))
	for _, ev := range s.events {
		if q.Matches(ev) {
			matched = append(matched, ev)
		}
	}
	s.mu.Unlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].OccurredAt.Equal(matched[j].OccurredAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].OccurredAt.After(matched[j].OccurredAt)
	})

	total := len(matched)
	start := min(max(q.Offset, 0), total)
	end := total
	if q.Limit > 0 {
		end = min(start+q.Limit, total)
	}
	return matched[start:end], total, nil
}

// Events returns a copy of all recorded events.  Test-only helper.
func (s *AccessEventStore) Events() []store.AccessEventRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.AccessEventRecord, len(s.events))
	copy(out, s.events)
	return out
}
