package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/BrandonDHaskell/campusgate/internal/campus/store"
	"github.com/BrandonDHaskell/campusgate/internal/campus/types"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type HistoryService struct {
	events store.AccessEventStore
}

func NewHistoryService(events store.AccessEventStore) *HistoryService {
	return &HistoryService{events: events}
}

// List returns one page of the access log, newest first.
func (s *HistoryService) List(ctx context.Context, q types.HistoryQuery) (types.HistoryPage, error) {
	eq, err := eventQuery(q)
	if err != nil {
		return types.HistoryPage{}, err
	}

	page := max(q.Page, 1)
	limit := q.Limit
	switch {
	case limit <= 0:
		limit = DefaultPageSize
	case limit > MaxPageSize:
		limit = MaxPageSize
	}
	if page-1 > math.MaxInt/limit {
		return types.HistoryPage{}, ErrInvalidPage
	}
	eq.Offset = (page - 1) * limit
	eq.Limit = limit

	recs, total, err := s.events.ListEvents(ctx, eq)
	if err != nil {
		return types.HistoryPage{}, fmt.Errorf("list history: %w", err)
	}

	data := make([]types.AccessEvent, 0, len(recs))
	for _, rec := range recs {
		data = append(data, toAccessEvent(rec))
	}
	return types.HistoryPage{Data: data, Total: total, Page: page, Limit: limit}, nil
}

// eventQuery turns calendar-day bounds into inclusive instants.
func eventQuery(q types.HistoryQuery) (store.EventQuery, error) {
	eq := store.EventQuery{UserCode: strings.TrimSpace(q.UserCode)}

	switch kind := strings.ToLower(strings.TrimSpace(q.Type)); kind {
	case "", types.TypeAll:
	case string(types.KindEntry), string(types.KindExit):
		eq.Kind = kind
	default:
		return store.EventQuery{}, ErrInvalidTypeFilter
	}

	if s := strings.TrimSpace(q.StartDate); s != "" {
		d, err := time.Parse(types.DateLayout, s)
		if err != nil {
			return store.EventQuery{}, ErrInvalidDate
		}
		eq.From = d
	}
	if s := strings.TrimSpace(q.EndDate); s != "" {
		d, err := time.Parse(types.DateLayout, s)
		if err != nil {
			return store.EventQuery{}, ErrInvalidDate
		}
		eq.To = d.Add(24*time.Hour - time.Millisecond)
	}
	if !eq.From.IsZero() && !eq.To.IsZero() && eq.From.After(eq.To) {
		return store.EventQuery{}, ErrInvalidDateRange
	}
	return eq, nil
}
