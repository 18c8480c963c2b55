package redisstate

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xdao.co/degreeledger/state"
	"xdao.co/degreeledger/state/registry"
	"xdao.co/degreeledger/state/testkit"
)

func TestRedis_Conformance(t *testing.T) {
	testkit.RunStoreConformance(t, func(t *testing.T) state.Store {
		mr := miniredis.RunT(t)
		s, err := Open(Options{Addr: mr.Addr()})
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestRedis_PrefixIsolation(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	a := New(rdb, "a:")
	b := New(rdb, "b:")
	require.NoError(t, a.PutState("degree1", []byte("A")))
	require.NoError(t, b.PutState("degree2", []byte("B")))
	require.NoError(t, mr.Set("unrelated", "x"))

	ka, err := a.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"degree1"}, ka)

	kb, err := b.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"degree2"}, kb)

	got, err := mr.Get("a:degree1")
	require.NoError(t, err)
	assert.Equal(t, "A", got)

	v, err := b.GetState("degree1")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestRedis_OpenFailures(t *testing.T) {
	_, err := Open(Options{})
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err = Open(Options{Addr: addr})
	assert.Error(t, err)
}

func TestRedis_Closed(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := Open(Options{Addr: mr.Addr()})
	require.NoError(t, err)
	require.NoError(t, s.Close())
	_, err = s.GetState("k")
	assert.ErrorIs(t, err, state.ErrClosed)
}

func TestRedis_Registered(t *testing.T) {
	mr := miniredis.RunT(t)
	s, closeFn, err := registry.Open("redis", registry.UsageCLI, map[string]string{"redis-addr": mr.Addr()})
	require.NoError(t, err)
	defer closeFn()
	require.NoError(t, s.PutState("degree1", []byte("v")))
	assert.True(t, mr.Exists(DefaultPrefix+"degree1"))

	_, _, err = registry.Open("redis", registry.UsageCLI, map[string]string{"redis-addr": mr.Addr(), "redis-db": "x"})
	assert.Error(t, err)
}

func TestEscapeGlob(t *testing.T) {
	assert.Equal(t, `a\*b\?c\[d\]\\`, escapeGlob(`a*b?c[d]\`))
}
