package grpcstate

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const serviceName = "xdao.degreeledger.state.v1.WorldState"

// KeyHeader carries the key of a PutState call. The -bin suffix lets the key
// hold arbitrary bytes.
const KeyHeader = "state-key-bin"

// WorldStateServer is the server API for the WorldState gRPC service.
//
// Messages are protobuf well-known types so this package does not require a
// protoc/codegen toolchain.
//
// Proto definition: worldstate.proto.
type WorldStateServer interface {
	GetState(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error)
	// PutState reads the key from the KeyHeader metadata entry.
	PutState(context.Context, *wrapperspb.BytesValue) (*emptypb.Empty, error)
	Keys(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
}

// UnimplementedWorldStateServer can be embedded to have forward compatible implementations.
type UnimplementedWorldStateServer struct{}

func (UnimplementedWorldStateServer) GetState(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method GetState not implemented")
}
func (UnimplementedWorldStateServer) PutState(context.Context, *wrapperspb.BytesValue) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method PutState not implemented")
}
func (UnimplementedWorldStateServer) Keys(context.Context, *emptypb.Empty) (*structpb.ListValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Keys not implemented")
}

// RegisterWorldStateServer registers the WorldState service on a gRPC server.
func RegisterWorldStateServer(s grpc.ServiceRegistrar, srv WorldStateServer) {
	s.RegisterService(&WorldState_ServiceDesc, srv)
}

// WorldStateClient is the client API for the WorldState gRPC service.
type WorldStateClient interface {
	GetState(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	PutState(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*emptypb.Empty, error)
	Keys(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error)
}

type worldStateClient struct{ cc grpc.ClientConnInterface }

func NewWorldStateClient(cc grpc.ClientConnInterface) WorldStateClient {
	return &worldStateClient{cc: cc}
}

func (c *worldStateClient) GetState(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	err := c.cc.Invoke(ctx, "/"+serviceName+"/GetState", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *worldStateClient) PutState(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	err := c.cc.Invoke(ctx, "/"+serviceName+"/PutState", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *worldStateClient) Keys(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	err := c.cc.Invoke(ctx, "/"+serviceName+"/Keys", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func _WorldState_GetState_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WorldStateServer).GetState(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/GetState"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(WorldStateServer).GetState(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _WorldState_PutState_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WorldStateServer).PutState(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/PutState"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(WorldStateServer).PutState(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _WorldState_Keys_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WorldStateServer).Keys(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Keys"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(WorldStateServer).Keys(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// WorldState_ServiceDesc is the grpc.ServiceDesc for WorldState service.
var WorldState_ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*WorldStateServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetState", Handler: _WorldState_GetState_Handler},
		{MethodName: "PutState", Handler: _WorldState_PutState_Handler},
		{MethodName: "Keys", Handler: _WorldState_Keys_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "worldstate.proto",
}
