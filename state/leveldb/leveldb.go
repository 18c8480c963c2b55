// Package leveldb is a persistent world state on goleveldb.
package leveldb

import (
	"errors"

	goleveldb "github.com/syndtr/goleveldb/leveldb"
	dberrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"xdao.co/degreeledger/internal/log"
	"xdao.co/degreeledger/state"
)

const (
	// minCache is the minimum amount of memory in megabytes to allocate to leveldb
	// read and write caching, split half and half.
	minCache = 16

	// minHandles is the minimum number of file handles for the database files.
	minHandles = 16
)

var _ state.Iterable = (*Store)(nil)

// Options tunes the underlying database.
type Options struct {
	CacheMB  int
	Handles  int
	ReadOnly bool
}

// Store is a world state persisted in a LevelDB directory. Keys iterate in
// byte order, which is the order state.Root expects.
type Store struct {
	path string
	db   *goleveldb.DB
}

// Open opens (or creates) the database at path, recovering it if the
// manifest is corrupted.
func Open(path string, o Options) (*Store, error) {
	if path == "" {
		return nil, errors.New("leveldb: path is required")
	}
	if o.CacheMB < minCache {
		o.CacheMB = minCache
	}
	if o.Handles < minHandles {
		o.Handles = minHandles
	}
	options := &opt.Options{
		Filter:                 filter.NewBloomFilter(10),
		DisableSeeksCompaction: true,
		OpenFilesCacheCapacity: o.Handles,
		BlockCacheCapacity:     o.CacheMB / 2 * opt.MiB,
		WriteBuffer:            o.CacheMB / 4 * opt.MiB,
		ReadOnly:               o.ReadOnly,
	}
	log.Debug("Opening world state database", "path", path, "cacheMB", o.CacheMB, "handles", o.Handles, "readonly", o.ReadOnly)

	db, err := goleveldb.OpenFile(path, options)
	if dberrors.IsCorrupted(err) {
		log.Warn("Recovering corrupted world state database", "path", path, "err", err)
		db, err = goleveldb.RecoverFile(path, nil)
	}
	if err != nil {
		return nil, err
	}
	return &Store{path: path, db: db}, nil
}

func (s *Store) GetState(key string) ([]byte, error) {
	if key == "" {
		return nil, state.ErrEmptyKey
	}
	v, err := s.db.Get([]byte(key), nil)
	if errors.Is(err, goleveldb.ErrNotFound) {
		return nil, nil
	}
	if errors.Is(err, goleveldb.ErrClosed) {
		return nil, state.ErrClosed
	}
	return v, err
}

func (s *Store) PutState(key string, value []byte) error {
	if err := state.CheckPut(key, value); err != nil {
		return err
	}
	err := s.db.Put([]byte(key), value, nil)
	if errors.Is(err, goleveldb.ErrClosed) {
		return state.ErrClosed
	}
	return err
}

func (s *Store) Keys() ([]string, error) {
	it := s.db.NewIterator(nil, nil)
	defer it.Release()
	var out []string
	for it.Next() {
		out = append(out, string(it.Key()))
	}
	if err := it.Error(); err != nil {
		return nil, err
	}
	return out, nil
}

// Path returns the database directory.
func (s *Store) Path() string { return s.path }

// Close flushes pending writes and releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}
