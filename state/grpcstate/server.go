// Package grpcstate serves a world state over gRPC and provides the matching
// client, so several ledger processes can share one store.
package grpcstate

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/degreeledger/internal/log"
	"xdao.co/degreeledger/state"
)

// Server exposes a state.Store over the WorldState service.
type Server struct {
	UnimplementedWorldStateServer
	Store state.Store
}

func (s *Server) GetState(_ context.Context, in *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	if s.Store == nil {
		return nil, status.Error(codes.FailedPrecondition, "state store not configured")
	}
	v, err := s.Store.GetState(in.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	if len(v) == 0 {
		return nil, status.Error(codes.NotFound, "key not found")
	}
	return wrapperspb.Bytes(v), nil
}

func (s *Server) PutState(ctx context.Context, in *wrapperspb.BytesValue) (*emptypb.Empty, error) {
	if s.Store == nil {
		return nil, status.Error(codes.FailedPrecondition, "state store not configured")
	}
	key := ""
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get(KeyHeader); len(vals) > 0 {
			key = vals[0]
		}
	}
	if err := s.Store.PutState(key, in.GetValue()); err != nil {
		log.Warn("Remote PutState failed", "key", key, "err", err)
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *Server) Keys(context.Context, *emptypb.Empty) (*structpb.ListValue, error) {
	it, ok := s.Store.(state.Iterable)
	if !ok {
		return nil, status.Error(codes.Unimplemented, "state store is not iterable")
	}
	keys, err := it.Keys()
	if err != nil {
		return nil, toStatus(err)
	}
	vals := make([]*structpb.Value, 0, len(keys))
	for _, k := range keys {
		vals = append(vals, structpb.NewStringValue(k))
	}
	return &structpb.ListValue{Values: vals}, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, state.ErrEmptyKey), errors.Is(err, state.ErrEmptyValue):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, state.ErrClosed):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
