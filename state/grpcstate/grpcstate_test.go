package grpcstate

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"

	"xdao.co/degreeledger/state"
	"xdao.co/degreeledger/state/testkit"
)

func serve(t *testing.T, store state.Store) *Client {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	RegisterWorldStateServer(srv, &Server{Store: store})
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	dialer := func(ctx context.Context, s string) (net.Conn, error) { return lis.DialContext(ctx) }
	client, err := Dial("passthrough:///bufnet", DialOptions{
		Extra: []grpc.DialOption{grpc.WithContextDialer(dialer)},
	})
	require.NoError(t, err)
	client.Timeout = 2 * time.Second
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestGRPC_Conformance(t *testing.T) {
	testkit.RunStoreConformance(t, func(t *testing.T) state.Store {
		return serve(t, state.NewMemory())
	})
}

func TestGRPC_WritesReachBackingStore(t *testing.T) {
	mem := state.NewMemory()
	client := serve(t, mem)

	require.NoError(t, client.PutState("degree1", []byte(`{"ID":"degree1"}`)))
	got, err := mem.GetState("degree1")
	require.NoError(t, err)
	assert.Equal(t, `{"ID":"degree1"}`, string(got))
	assert.Equal(t, 1, mem.Writes())
}

type opaqueStore struct{ state.Store }

func TestGRPC_KeysUnsupported(t *testing.T) {
	client := serve(t, opaqueStore{state.NewMemory()})
	_, err := client.Keys()
	assert.Error(t, err)
}

func TestGRPC_ServerRejectsEmptyKey(t *testing.T) {
	srv := &Server{Store: state.NewMemory()}
	_, err := srv.PutState(context.Background(), nil)
	assert.Error(t, err)
	assert.ErrorIs(t, mapRPC(err), state.ErrEmptyKey)
}

func TestGRPC_ClosedClient(t *testing.T) {
	client := serve(t, state.NewMemory())
	require.NoError(t, client.Close())
	require.NoError(t, client.Close())

	_, err := client.GetState("k")
	assert.ErrorIs(t, err, state.ErrClosed)
	assert.ErrorIs(t, client.PutState("k", []byte("v")), state.ErrClosed)
}
