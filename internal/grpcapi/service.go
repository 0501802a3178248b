// Package grpcapi serves the station operations over gRPC.
//
// The service is campusgate.v1.Stations. Both methods take and return a
// google.protobuf.Struct with the same keys as the JSON API, so stations
// need no generated code.
package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName           = "campusgate.v1.Stations"
	LookupUserMethod      = "/" + ServiceName + "/LookupUser"
	RecordAccessMethod    = "/" + ServiceName + "/RecordAccess"
	authorizationMetadata = "authorization"
)

type StationsServer interface {
	LookupUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	RecordAccess(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

func Register(s grpc.ServiceRegistrar, srv StationsServer) {
	s.RegisterService(&ServiceDesc, srv)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*StationsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "LookupUser", Handler: lookupUserHandler},
		{MethodName: "RecordAccess", Handler: recordAccessHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "campusgate/v1/stations.proto",
}

func lookupUserHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StationsServer).LookupUser(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: LookupUserMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(StationsServer).LookupUser(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func recordAccessHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StationsServer).RecordAccess(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: RecordAccessMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(StationsServer).RecordAccess(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
