package store

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateCode = errors.New("user code already registered")
	ErrDuplicateMail = errors.New("email already registered")
)

// UserRecord is a persisted account, credential hash included.
type UserRecord struct {
	ID           int64
	Code         string
	Name         string
	Email        string
	Program      string
	Role         string
	PasswordHash string
	CreatedAt    time.Time
}

type UserStore interface {
	CreateUser(ctx context.Context, rec UserRecord) (UserRecord, error)
	UserByCode(ctx context.Context, code string) (UserRecord, error)
	UserByEmail(ctx context.Context, email string) (UserRecord, error)
}

// AccessEventRecord is one row of the append-only access log.
type AccessEventRecord struct {
	ID         int64
	UserCode   string
	Kind       string
	OccurredAt time.Time
	StationID  string
}

// EventQuery selects access events. From and To are inclusive instants;
// zero values leave that side open. Empty Kind matches every kind.
type EventQuery struct {
	UserCode string
	From     time.Time
	To       time.Time
	Kind     string
	Offset   int
	Limit    int
}

// Matches applies the query's filter (not its paging) to one record.
func (q EventQuery) Matches(rec AccessEventRecord) bool {
	if q.UserCode != "" && rec.UserCode != q.UserCode {
		return false
	}
	if q.Kind != "" && rec.Kind != q.Kind {
		return false
	}
	if !q.From.IsZero() && rec.OccurredAt.Before(q.From) {
		return false
	}
	if !q.To.IsZero() && rec.OccurredAt.After(q.To) {
		return false
	}
	return true
}

type AccessEventStore interface {
	RecordEvent(ctx context.Context, rec AccessEventRecord) (AccessEventRecord, error)
	// ListEvents returns one page, newest first, and the unpaged total.
	ListEvents(ctx context.Context, q EventQuery) ([]AccessEventRecord, int, error)
}
