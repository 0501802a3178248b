package types

import (
	"strings"
	"time"
)

// EventKind is the direction of an access event.
type EventKind string

const (
	KindEntry EventKind = "entry"
	KindExit  EventKind = "exit"
)

func (k EventKind) Valid() bool {
	return k == KindEntry || k == KindExit
}

// ParseEventKind accepts the wire values case-insensitively.
func ParseEventKind(s string) (EventKind, bool) {
	k := EventKind(strings.ToLower(strings.TrimSpace(s)))
	return k, k.Valid()
}

type RecordAccessRequest struct {
	UserCode  string    `json:"user_code" validate:"required"`
	EventType EventKind `json:"event_type" validate:"required,oneof=entry exit"`
	StationID string    `json:"station_id,omitempty" validate:"max=64"`
}

type RecordAccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Reason is the server's explanation for a refused record: "error" first,
// then "message".
func (r RecordAccessResponse) Reason() string {
	if r.Error != "" {
		return r.Error
	}
	return r.Message
}

// AccessEvent is an immutable access log row.
type AccessEvent struct {
	ID        int64     `json:"id"`
	UserCode  string    `json:"user_code"`
	EventType EventKind `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	StationID string    `json:"station_id,omitempty"`
}

// HistoryQuery filters the access log. Dates are inclusive calendar days in
// UTC, formatted YYYY-MM-DD; empty means unbounded. Type "all" or empty
// matches both kinds.
type HistoryQuery struct {
	UserCode  string
	StartDate string
	EndDate   string
	Type      string
	Page      int
	Limit     int
}

type HistoryPage struct {
	Data  []AccessEvent `json:"data"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// DateLayout is the calendar-day format used by history filters.
const DateLayout = "2006-01-02"

// TypeAll is the wildcard kind filter.
const TypeAll = "all"
