package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/BrandonDHaskell/campusgate/internal/campus/types"
	"github.com/BrandonDHaskell/campusgate/internal/campus/wire"
	"github.com/BrandonDHaskell/campusgate/internal/gateway"
)

// Client calls the Stations service. Errors are *gateway.Error, so a
// Client can stand in for the HTTP gateway in a scan coordinator.
type Client struct {
	cc        grpc.ClientConnInterface
	tokens    gateway.TokenSource
	stationID string
}

func NewClient(cc grpc.ClientConnInterface, tokens gateway.TokenSource, stationID string) *Client {
	return &Client{cc: cc, tokens: tokens, stationID: stationID}
}

func (c *Client) GetUserByCode(ctx context.Context, code string) (types.User, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(c.outgoing(ctx), LookupUserMethod, wire.LookupRequestToStruct(code), out); err != nil {
		return types.User{}, fromStatus(err)
	}
	u, err := wire.UserResponseFromStruct(out)
	if err != nil {
		return types.User{}, &gateway.Error{Kind: gateway.KindNotFound, Message: "User not found.", Err: err}
	}
	return u, nil
}

func (c *Client) RecordAccess(ctx context.Context, code string, kind types.EventKind) (types.RecordAccessResponse, error) {
	in := wire.RecordRequestToStruct(types.RecordAccessRequest{UserCode: code, EventType: kind, StationID: c.stationID})
	out := new(structpb.Struct)
	if err := c.cc.Invoke(c.outgoing(ctx), RecordAccessMethod, in, out); err != nil {
		return types.RecordAccessResponse{}, fromStatus(err)
	}
	return wire.RecordResponseFromStruct(out), nil
}

func (c *Client) outgoing(ctx context.Context) context.Context {
	if c.tokens == nil {
		return ctx
	}
	if tok := c.tokens.Token(); tok != "" {
		return metadata.AppendToOutgoingContext(ctx, authorizationMetadata, "Bearer "+tok)
	}
	return ctx
}

// fromStatus maps a gRPC status to the gateway error taxonomy, using the
// HTTP status the JSON API would have answered with.
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return &gateway.Error{Kind: gateway.KindTransport, Message: err.Error(), Err: err}
	}

	httpStatus := 0
	switch st.Code() {
	case codes.InvalidArgument:
		httpStatus = 400
	case codes.Unauthenticated:
		httpStatus = 401
	case codes.PermissionDenied:
		httpStatus = 403
	case codes.NotFound:
		httpStatus = 404
	case codes.AlreadyExists:
		httpStatus = 409
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return &gateway.Error{Kind: gateway.KindTransport, Message: st.Message(), Err: err}
	default:
		httpStatus = 500
	}
	return &gateway.Error{
		Kind:    gateway.KindForStatus(httpStatus),
		Status:  httpStatus,
		Payload: map[string]any{"error": st.Message()},
		Message: st.Message(),
		Err:     err,
	}
}
