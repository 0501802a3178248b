package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/BrandonDHaskell/campusgate/internal/campus/store"
	"github.com/BrandonDHaskell/campusgate/internal/campus/types"
	"github.com/BrandonDHaskell/campusgate/internal/metrics"
)

type UserService struct {
	users    store.UserStore
	logger   zerolog.Logger
	hashCost int
}

func NewUserService(users store.UserStore, logger zerolog.Logger) *UserService {
	return &UserService{users: users, logger: logger, hashCost: bcrypt.DefaultCost}
}

// WithHashCost lowers the bcrypt cost. Tests only.
func (s *UserService) WithHashCost(cost int) *UserService {
	s.hashCost = cost
	return s
}

// Register creates an account. The password is stored only as a bcrypt hash.
func (s *UserService) Register(ctx context.Context, req types.RegisterRequest) (types.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Code = strings.TrimSpace(req.Code)
	req.Program = strings.TrimSpace(req.Program)
	req.Role = types.Role(strings.ToLower(strings.TrimSpace(string(req.Role))))

	if err := checkStruct(req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return types.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}

	rec, err := s.users.CreateUser(ctx, store.UserRecord{
		Code:         req.Code,
		Name:         req.Name,
		Email:        req.Email,
		Program:      req.Program,
		Role:         string(req.Role),
		PasswordHash: string(hash),
	})
	switch {
	case errors.Is(err, store.ErrDuplicateMail):
		metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
		return types.User{}, ErrEmailTaken
	case errors.Is(err, store.ErrDuplicateCode):
		metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
		return types.User{}, ErrCodeTaken
	case err != nil:
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return types.User{}, fmt.Errorf("register: %w", err)
	}

	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	s.logger.Info().Str("user_code", rec.Code).Str("role", rec.Role).Msg("user registered")
	return toUser(rec), nil
}

// Authenticate checks credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (types.User, error) {
	req := types.LoginRequest{Email: strings.ToLower(strings.TrimSpace(email)), Password: password}
	if err := checkStruct(req); err != nil {
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return types.User{}, err
	}

	rec, err := s.users.UserByEmail(ctx, req.Email)
	if errors.Is(err, store.ErrNotFound) {
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return types.User{}, ErrInvalidCredentials
	}
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return types.User{}, fmt.Errorf("authenticate: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)); err != nil {
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return types.User{}, ErrInvalidCredentials
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	return toUser(rec), nil
}

func (s *UserService) UserByCode(ctx context.Context, code string) (types.User, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return types.User{}, ErrUserCodeRequired
	}

	rec, err := s.users.UserByCode(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		metrics.UserLookupsTotal.WithLabelValues("not_found").Inc()
		return types.User{}, ErrUserNotFound
	}
	if err != nil {
		metrics.UserLookupsTotal.WithLabelValues("error").Inc()
		return types.User{}, fmt.Errorf("lookup user: %w", err)
	}

	metrics.UserLookupsTotal.WithLabelValues("found").Inc()
	return toUser(rec), nil
}

func toUser(rec store.UserRecord) types.User {
	return types.User{
		ID:      rec.ID,
		Name:    rec.Name,
		Email:   rec.Email,
		Program: rec.Program,
		Role:    types.Role(rec.Role),
		Code:    rec.Code,
	}
}
