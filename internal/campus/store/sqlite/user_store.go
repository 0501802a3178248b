package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/BrandonDHaskell/campusgate/internal/campus/store"
	dbpkg "github.com/BrandonDHaskell/campusgate/internal/db"
)

type UserStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewUserStore(db *sql.DB, writer *dbpkg.Worker) *UserStore {
	return &UserStore{db: db, writer: writer}
}

const userColumns = `user_id, codigo_barra, nombre, correo, carrera, rol, password_hash, created_at_ms`

func (s *UserStore) CreateUser(ctx context.Context, rec store.UserRecord) (store.UserRecord, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO users(codigo_barra, nombre, correo, carrera, rol, password_hash, created_at_ms)
VALUES (?, ?, ?, ?, ?, ?, ?);`,
			rec.Code, rec.Name, rec.Email, rec.Program, rec.Role, rec.PasswordHash,
			rec.CreatedAt.UTC().UnixMilli(),
		)
		if err != nil {
			return mapUniqueViolation(err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		rec.ID = id
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateCode) || errors.Is(err, store.ErrDuplicateMail) {
			return store.UserRecord{}, err
		}
		return store.UserRecord{}, fmt.Errorf("CreateUser: %w", err)
	}
	return rec, nil
}

func (s *UserStore) UserByCode(ctx context.Context, code string) (store.UserRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE codigo_barra = ?;`, code)
	rec, err := scanUser(row)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return store.UserRecord{}, fmt.Errorf("UserByCode: %w", err)
	}
	return rec, err
}

func (s *UserStore) UserByEmail(ctx context.Context, email string) (store.UserRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE correo = ? COLLATE NOCASE;`, email)
	rec, err := scanUser(row)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return store.UserRecord{}, fmt.Errorf("UserByEmail: %w", err)
	}
	return rec, err
}

func scanUser(row *sql.Row) (store.UserRecord, error) {
	var (
		rec       store.UserRecord
		createdMs int64
	)
	err := row.Scan(&rec.ID, &rec.Code, &rec.Name, &rec.Email, &rec.Program, &rec.Role, &rec.PasswordHash, &createdMs)
	if errors.Is(err, sql.ErrNoRows) {
		return store.UserRecord{}, store.ErrNotFound
	}
	if err != nil {
		return store.UserRecord{}, err
	}
	rec.CreatedAt = time.UnixMilli(createdMs).UTC()
	return rec, nil
}
