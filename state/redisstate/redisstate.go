// Package redisstate is a world state kept in Redis, one string key per record.
package redisstate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"xdao.co/degreeledger/state"
)

// DefaultPrefix namespaces ledger keys inside a shared Redis database.
const DefaultPrefix = "degreeledger:state:"

var _ state.Iterable = (*Store)(nil)

type Options struct {
	Addr        string
	Password    string
	DB          int
	Prefix      string
	DialTimeout time.Duration
	// Timeout bounds every individual command.
	Timeout time.Duration
}

type Store struct {
	rdb     *goredis.Client
	prefix  string
	timeout time.Duration
}

// Open connects and pings the server.
func Open(o Options) (*Store, error) {
	addr := strings.TrimSpace(o.Addr)
	if addr == "" {
		return nil, fmt.Errorf("redisstate: missing address")
	}
	if o.DialTimeout <= 0 {
		o.DialTimeout = 5 * time.Second
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    o.Password,
		DB:          o.DB,
		DialTimeout: o.DialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), o.DialTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	s := New(rdb, o.Prefix)
	if o.Timeout > 0 {
		s.timeout = o.Timeout
	}
	return s, nil
}

// New wraps an existing client. An empty prefix selects DefaultPrefix.
func New(rdb *goredis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{rdb: rdb, prefix: prefix, timeout: 5 * time.Second}
}

func (s *Store) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

func (s *Store) GetState(key string) ([]byte, error) {
	if key == "" {
		return nil, state.ErrEmptyKey
	}
	ctx, cancel := s.ctx()
	defer cancel()
	v, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, mapErr(err)
	}
	return v, nil
}

func (s *Store) PutState(key string, value []byte) error {
	if err := state.CheckPut(key, value); err != nil {
		return err
	}
	ctx, cancel := s.ctx()
	defer cancel()
	return mapErr(s.rdb.Set(ctx, s.prefix+key, value, 0).Err())
}

// Keys scans the prefix and returns the unprefixed keys in byte order.
func (s *Store) Keys() ([]string, error) {
	ctx, cancel := s.ctx()
	defer cancel()

	var out []string
	it := s.rdb.Scan(ctx, 0, escapeGlob(s.prefix)+"*", 256).Iterator()
	for it.Next(ctx) {
		k := it.Val()
		if !strings.HasPrefix(k, s.prefix) {
			continue
		}
		out = append(out, strings.TrimPrefix(k, s.prefix))
	}
	if err := it.Err(); err != nil {
		return nil, mapErr(err)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

func mapErr(err error) error {
	if errors.Is(err, goredis.ErrClosed) {
		return state.ErrClosed
	}
	return err
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
