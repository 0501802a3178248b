package grpcapi

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/BrandonDHaskell/campusgate/internal/auth"
	"github.com/BrandonDHaskell/campusgate/internal/campus/service"
	"github.com/BrandonDHaskell/campusgate/internal/campus/types"
	"github.com/BrandonDHaskell/campusgate/internal/campus/wire"
)

type Dependencies struct {
	Logger        zerolog.Logger
	UserService   *service.UserService
	AccessService *service.AccessService
	// With EnforceAuth, every call needs a staff or admin bearer token in
	// the "authorization" metadata.
	Tokens      *auth.Issuer
	EnforceAuth bool
}

type Server struct {
	logger  zerolog.Logger
	users   *service.UserService
	access  *service.AccessService
	tokens  *auth.Issuer
	enforce bool
}

func NewServer(d Dependencies) *Server {
	return &Server{
		logger:  d.Logger.With().Str("component", "grpcapi").Logger(),
		users:   d.UserService,
		access:  d.AccessService,
		tokens:  d.Tokens,
		enforce: d.EnforceAuth,
	}
}

// NewGRPCServer returns a grpc.Server with the interceptors installed and
// the Stations service registered.
func (s *Server) NewGRPCServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(s.logCalls, s.authorize))
	g := grpc.NewServer(opts...)
	Register(g, s)
	return g
}

func (s *Server) LookupUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	code := wire.LookupRequestFromStruct(in)
	u, err := s.users.UserByCode(ctx, code)
	if err != nil {
		return nil, s.toStatus(err, "lookup user", code)
	}
	return wire.UserResponseToStruct(u), nil
}

func (s *Server) RecordAccess(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := wire.RecordRequestFromStruct(in)
	if _, err := s.access.Record(ctx, req); err != nil {
		return nil, s.toStatus(err, "record access", req.UserCode)
	}
	return wire.RecordResponseToStruct(types.RecordAccessResponse{
		Success: true,
		Message: service.RecordedMessage,
	}), nil
}

func (s *Server) toStatus(err error, op, code string) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrDuplicateAccess):
		return status.Error(codes.AlreadyExists, err.Error())
	}
	s.logger.Error().Err(err).Str("user_code", code).Msg(op)
	return status.Error(codes.Internal, "internal error")
}

func (s *Server) logCalls(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Info().
		Str("method", info.FullMethod).
		Str("code", status.Code(err).String()).
		Dur("dur", time.Since(start)).
		Msg("grpc call")
	return resp, err
}

func (s *Server) authorize(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if !s.enforce {
		return handler(ctx, req)
	}

	md, _ := metadata.FromIncomingContext(ctx)
	vals := md.Get(authorizationMetadata)
	if len(vals) == 0 || s.tokens == nil {
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}
	token, ok := strings.CutPrefix(vals[0], "Bearer ")
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}
	p, err := s.tokens.Parse(strings.TrimSpace(token))
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}
	if !p.Role.CanOperateStation() {
		return nil, status.Error(codes.PermissionDenied, "forbidden")
	}
	return handler(auth.WithPrincipal(ctx, p), req)
}
