package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/BrandonDHaskell/campusgate/internal/campus/store"
	dbpkg "github.com/BrandonDHaskell/campusgate/internal/db"
)

type AccessEventStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewAccessEventStore(db *sql.DB, writer *dbpkg.Worker) *AccessEventStore {
	return &AccessEventStore{db: db, writer: writer}
}

func (s *AccessEventStore) RecordEvent(ctx context.Context, rec store.AccessEventRecord) (store.AccessEventRecord, error) {
	if rec.OccurredAt.IsZero() {
		rec.OccurredAt = time.Now().UTC()
	}

	var stationID any
	if rec.StationID != "" {
		stationID = rec.StationID
	}

	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO access_logs(user_code, event_type, event_at_ms, station_id)
VALUES (?, ?, ?, ?);
`,
			rec.UserCode, rec.Kind, rec.OccurredAt.UTC().UnixMilli(), stationID,
		)
		if err != nil {
			return fmt.Errorf("RecordEvent insert: %w", err)
		}
		rec.ID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return store.AccessEventRecord{}, err
	}
	return rec, nil
}

func (s *AccessEventStore) ListEvents(ctx context.Context, q store.EventQuery) ([]store.AccessEventRecord, int, error) {
	var (
		where []string
		args  []any
	)
	if q.UserCode != "" {
		where = append(where, "user_code = ?")
		args = append(args, q.UserCode)
	}
	if q.Kind != "" {
		where = append(where, "event_type = ?")
		args = append(args, q.Kind)
	}
	if !q.From.IsZero() {
		where = append(where, "event_at_ms >= ?")
		args = append(args, q.From.UTC().UnixMilli())
	}
	if !q.To.IsZero() {
		where = append(where, "event_at_ms <= ?")
		args = append(args, q.To.UTC().UnixMilli())
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM access_logs`+clause+`;`, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ListEvents count: %w", err)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	pageArgs := append(append([]any{}, args...), limit, max(q.Offset, 0))

	rows, err := s.db.QueryContext(ctx, `
SELECT log_id, user_code, event_type, event_at_ms, station_id
FROM access_logs`+clause+`
ORDER BY event_at_ms DESC, log_id DESC
LIMIT ? OFFSET ?;`, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("ListEvents query: %w", err)
	}
	defer rows.Close()

	var out []store.AccessEventRecord
	for rows.Next() {
		var (
			rec       store.AccessEventRecord
			atMs      int64
			stationID sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.UserCode, &rec.Kind, &atMs, &stationID); err != nil {
			return nil, 0, fmt.Errorf("ListEvents scan: %w", err)
		}
		rec.OccurredAt = time.UnixMilli(atMs).UTC()
		rec.StationID = stationID.String
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ListEvents rows: %w", err)
	}
	return out, total, nil
}
