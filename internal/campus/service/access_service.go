package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/BrandonDHaskell/campusgate/internal/campus/dedup"
	"github.com/BrandonDHaskell/campusgate/internal/campus/store"
	"github.com/BrandonDHaskell/campusgate/internal/campus/types"
	"github.com/BrandonDHaskell/campusgate/internal/metrics"
)

// RecordedMessage is returned to the station on success.
const RecordedMessage = "Access recorded successfully."

// DefaultChannel is the queue access notifications are published on.
const DefaultChannel = "access.recorded"

// Publisher fans recorded events out to other systems. *mq.MQ satisfies it.
type Publisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

type AccessOptions struct {
	Guard     dedup.Guard // nil means no server-side dedup
	Publisher Publisher   // nil means nothing is published
	Channel   string
	Logger    zerolog.Logger
	Now       func() time.Time
}

type AccessService struct {
	users     store.UserStore
	events    store.AccessEventStore
	guard     dedup.Guard
	publisher Publisher
	channel   string
	logger    zerolog.Logger
	now       func() time.Time

	mu   sync.Mutex
	last time.Time
}

func NewAccessService(users store.UserStore, events store.AccessEventStore, opts AccessOptions) *AccessService {
	s := &AccessService{
		users:     users,
		events:    events,
		guard:     opts.Guard,
		publisher: opts.Publisher,
		channel:   opts.Channel,
		logger:    opts.Logger,
		now:       opts.Now,
	}
	if s.guard == nil {
		s.guard = dedup.Nop{}
	}
	if s.channel == "" {
		s.channel = DefaultChannel
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Record appends one access event. The user is looked up again here even
// though stations resolve the code first, so a stale or forged code never
// reaches the log.
func (s *AccessService) Record(ctx context.Context, req types.RecordAccessRequest) (types.AccessEvent, error) {
	req.UserCode = strings.TrimSpace(req.UserCode)
	req.StationID = strings.TrimSpace(req.StationID)
	if k, ok := types.ParseEventKind(string(req.EventType)); ok {
		req.EventType = k
	}

	if err := checkRecordRequest(req); err != nil {
		metrics.AccessRejectedTotal.WithLabelValues("invalid").Inc()
		return types.AccessEvent{}, err
	}

	if _, err := s.users.UserByCode(ctx, req.UserCode); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.AccessRejectedTotal.WithLabelValues("unknown_user").Inc()
			return types.AccessEvent{}, ErrUserNotFound
		}
		metrics.AccessRejectedTotal.WithLabelValues("store_error").Inc()
		return types.AccessEvent{}, fmt.Errorf("record access: lookup user: %w", err)
	}

	at := s.stamp()

	claimed, err := s.guard.Claim(ctx, req.UserCode, at)
	if err != nil {
		// Fail open on guard errors.
		s.logger.Warn().Err(err).Str("user_code", req.UserCode).Msg("dedup guard unavailable")
		claimed = true
	}
	if !claimed {
		metrics.DedupTotal.WithLabelValues("hit").Inc()
		metrics.AccessRejectedTotal.WithLabelValues("duplicate").Inc()
		s.logger.Info().Str("user_code", req.UserCode).Msg("duplicate scan ignored")
		return types.AccessEvent{}, ErrDuplicateAccess
	}
	metrics.DedupTotal.WithLabelValues("miss").Inc()

	rec, err := s.events.RecordEvent(ctx, store.AccessEventRecord{
		UserCode:   req.UserCode,
		Kind:       string(req.EventType),
		OccurredAt: at,
		StationID:  req.StationID,
	})
	if err != nil {
		if rerr := s.guard.Release(ctx, req.UserCode); rerr != nil {
			s.logger.Warn().Err(rerr).Str("user_code", req.UserCode).Msg("dedup release failed")
		}
		metrics.AccessRejectedTotal.WithLabelValues("store_error").Inc()
		return types.AccessEvent{}, fmt.Errorf("record access: %w", err)
	}

	ev := toAccessEvent(rec)
	metrics.AccessRecordedTotal.WithLabelValues(string(ev.EventType)).Inc()
	s.logger.Info().
		Int64("log_id", ev.ID).
		Str("user_code", ev.UserCode).
		Str("event_type", string(ev.EventType)).
		Str("station_id", ev.StationID).
		Msg("access recorded")

	s.publish(ctx, ev)
	return ev, nil
}

// stamp returns the server timestamp for a new event, millisecond precision
// and never earlier than the previous one.
func (s *AccessService) stamp() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.now().UTC().Truncate(time.Millisecond)
	if t.Before(s.last) {
		t = s.last
	}
	s.last = t
	return t
}

// publish notifies subscribers. Failures are logged, never returned: the
// event is already in the log.
func (s *AccessService) publish(ctx context.Context, ev types.AccessEvent) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(ev)
	if err != nil {
		s.logger.Error().Err(err).Msg("encode access notification")
		return
	}
	attrs := map[string]string{
		"event_type": string(ev.EventType),
		"user_code":  ev.UserCode,
	}
	if _, err := s.publisher.Publish(ctx, s.channel, body, attrs); err != nil {
		s.logger.Warn().Err(err).Int64("log_id", ev.ID).Msg("publish access notification")
	}
}

// checkRecordRequest reports missing fields before a bad kind, matching the
// order stations have always seen.
func checkRecordRequest(req types.RecordAccessRequest) error {
	fes, err := fieldErrors(req)
	if err != nil {
		return err
	}
	var badKind bool
	for _, fe := range fes {
		switch {
		case fe.Tag() == "required":
			return ErrAccessFieldsRequired
		case fe.Field() == "event_type":
			badKind = true
		}
	}
	if badKind {
		return ErrInvalidEventType
	}
	if len(fes) > 0 {
		return invalid(fieldError(fes[0]))
	}
	return nil
}

func toAccessEvent(rec store.AccessEventRecord) types.AccessEvent {
	return types.AccessEvent{
		ID:        rec.ID,
		UserCode:  rec.UserCode,
		EventType: types.EventKind(rec.Kind),
		Timestamp: rec.OccurredAt.UTC(),
		StationID: rec.StationID,
	}
}
