package grpcstate

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/degreeledger/state"
)

var _ state.Iterable = (*Client)(nil)

// Client implements state.Iterable over a WorldState gRPC service.
type Client struct {
	cc     *grpc.ClientConn
	client WorldStateClient
	closed atomic.Bool

	// Timeout applies per RPC when non-zero.
	Timeout time.Duration
}

type DialOptions struct {
	// Timeout applies to the initial dial when non-zero.
	Timeout time.Duration

	// MaxMsgBytes sets both send/recv max sizes when non-zero.
	MaxMsgBytes int

	// Extra is appended to the dial options (tests use it for bufconn).
	Extra []grpc.DialOption
}

func Dial(target string, opts DialOptions) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if opts.MaxMsgBytes > 0 {
		dialOpts = append(dialOpts,
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(opts.MaxMsgBytes),
				grpc.MaxCallSendMsgSize(opts.MaxMsgBytes),
			),
		)
	}
	dialOpts = append(dialOpts, opts.Extra...)

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cc, err := grpc.DialContext(ctx, target, dialOpts...)
	if err != nil {
		return nil, err
	}
	return NewClient(cc), nil
}

// NewClient wraps an existing connection. Close closes cc.
func NewClient(cc *grpc.ClientConn) *Client {
	return &Client{cc: cc, client: NewWorldStateClient(cc)}
}

func (c *Client) Close() error {
	if c == nil || c.cc == nil || c.closed.Swap(true) {
		return nil
	}
	return c.cc.Close()
}

func (c *Client) GetState(key string) ([]byte, error) {
	if key == "" {
		return nil, state.ErrEmptyKey
	}
	if c.closed.Load() {
		return nil, state.ErrClosed
	}
	ctx, cancel := c.ctx()
	defer cancel()

	reply, err := c.client.GetState(ctx, wrapperspb.String(key))
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, mapRPC(err)
	}
	return reply.GetValue(), nil
}

func (c *Client) PutState(key string, value []byte) error {
	if err := state.CheckPut(key, value); err != nil {
		return err
	}
	if c.closed.Load() {
		return state.ErrClosed
	}
	ctx, cancel := c.ctx()
	defer cancel()
	ctx = metadata.AppendToOutgoingContext(ctx, KeyHeader, key)

	_, err := c.client.PutState(ctx, wrapperspb.Bytes(value))
	return mapRPC(err)
}

func (c *Client) Keys() ([]string, error) {
	if c.closed.Load() {
		return nil, state.ErrClosed
	}
	ctx, cancel := c.ctx()
	defer cancel()

	reply, err := c.client.Keys(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, mapRPC(err)
	}
	out := make([]string, 0, len(reply.GetValues()))
	for i, v := range reply.GetValues() {
		s, ok := v.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, fmt.Errorf("grpcstate: key %d is not a string", i)
		}
		out = append(out, s.StringValue)
	}
	return out, nil
}

func (c *Client) ctx() (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), c.Timeout)
}
