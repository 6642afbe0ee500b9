package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The session service carries well known protobuf types only, so it is
// described here instead of being generated from a .proto file:
//
//	service SessionService {
//	  rpc NewSession(google.protobuf.Int64Value) returns (google.protobuf.StringValue);
//	  rpc GameSession(stream google.protobuf.Struct) returns (stream google.protobuf.Struct);
//	}
const (
	serviceName       = "matchtris.SessionService"
	newSessionMethod  = "/matchtris.SessionService/NewSession"
	gameSessionMethod = "/matchtris.SessionService/GameSession"
)

type SessionServiceServer interface {
	// NewSession creates a game seeded with the request value and returns its id.
	NewSession(context.Context, *wrapperspb.Int64Value) (*wrapperspb.StringValue, error)
	// GameSession attaches to a session, applies intents and streams frames back.
	GameSession(grpc.BidiStreamingServer[structpb.Struct, structpb.Struct]) error
}

func RegisterSessionServiceServer(s grpc.ServiceRegistrar, srv SessionServiceServer) {
	s.RegisterService(&sessionServiceDesc, srv)
}

var sessionServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*SessionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "NewSession", Handler: newSessionHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "GameSession", Handler: gameSessionHandler, ServerStreams: true, ClientStreams: true},
	},
	Metadata: "matchtris/session.proto",
}

func newSessionHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SessionServiceServer).NewSession(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: newSessionMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SessionServiceServer).NewSession(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

func gameSessionHandler(srv any, stream grpc.ServerStream) error {
	return srv.(SessionServiceServer).GameSession(&grpc.GenericServerStream[structpb.Struct, structpb.Struct]{ServerStream: stream})
}

type SessionServiceClient interface {
	NewSession(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	GameSession(ctx context.Context, opts ...grpc.CallOption) (grpc.BidiStreamingClient[structpb.Struct, structpb.Struct], error)
}

type sessionServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewSessionServiceClient(cc grpc.ClientConnInterface) SessionServiceClient {
	return &sessionServiceClient{cc: cc}
}

func (c *sessionServiceClient) NewSession(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, newSessionMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *sessionServiceClient) GameSession(ctx context.Context, opts ...grpc.CallOption) (grpc.BidiStreamingClient[structpb.Struct, structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, &sessionServiceDesc.Streams[0], gameSessionMethod, opts...)
	if err != nil {
		return nil, err
	}
	return &grpc.GenericClientStream[structpb.Struct, structpb.Struct]{ClientStream: stream}, nil
}
