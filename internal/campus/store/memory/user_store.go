package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/BrandonDHaskell/campusgate/internal/campus/store"
)

// UserStore keeps accounts in process memory. Tests and --memory demos.
type UserStore struct {
	mu     sync.RWMutex
	nextID int64
	byCode map[string]store.UserRecord
	codeOf map[string]string // lower-cased email -> code
}

func NewUserStore() *UserStore {
	return &UserStore{
		byCode: make(map[string]store.UserRecord),
		codeOf: make(map[string]string),
	}
}

func (s *UserStore) CreateUser(_ context.Context, rec store.UserRecord) (store.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byCode[rec.Code]; ok {
		return store.UserRecord{}, store.ErrDuplicateCode
	}
	mail := strings.ToLower(rec.Email)
	if _, ok := s.codeOf[mail]; ok {
		return store.UserRecord{}, store.ErrDuplicateMail
	}

	s.nextID++
	rec.ID = s.nextID
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	s.byCode[rec.Code] = rec
	s.codeOf[mail] = rec.Code
	return rec, nil
}

func (s *UserStore) UserByCode(_ context.Context, code string) (store.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byCode[code]
	if !ok {
		return store.UserRecord{}, store.ErrNotFound
	}
	return rec, nil
}

func (s *UserStore) UserByEmail(_ context.Context, email string) (store.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	code, ok := s.codeOf[strings.ToLower(email)]
	if !ok {
		return store.UserRecord{}, store.ErrNotFound
	}
	return s.byCode[code], nil
}
