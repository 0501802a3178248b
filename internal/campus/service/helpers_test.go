package service_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/BrandonDHaskell/campusgate/internal/campus/service"
	"github.com/BrandonDHaskell/campusgate/internal/campus/store/memory"
	"github.com/BrandonDHaskell/campusgate/internal/campus/types"
)

func silentLogger() zerolog.Logger {
	return zerolog.Nop()
}

func newTestUserService() (*service.UserService, *memory.UserStore) {
	us := memory.NewUserStore()
	return service.NewUserService(us, silentLogger()).WithHashCost(bcrypt.MinCost), us
}

func anaRequest() types.RegisterRequest {
	return types.RegisterRequest{
		Name:     "Ana",
		Email:    "ana@campus.test",
		Code:     "A1B2C3",
		Program:  "Ingenieria",
		Role:     types.RoleMember,
		Password: "supersecret",
	}
}

func mustRegister(t *testing.T, svc *service.UserService, req types.RegisterRequest) types.User {
	t.Helper()

	u, err := svc.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("Register %s: %v", req.Code, err)
	}
	return u
}
