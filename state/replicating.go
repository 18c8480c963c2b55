package state

import (
	"bytes"
	"fmt"
)

// Named associates a Store with a stable backend name.
type Named struct {
	Name  string
	Store Store
}

// Replicating writes every value to all backends, in order.
//
// Reads are served by the first backend that answers without error; an
// absent key on a healthy backend is an answer. Verify compares backends
// byte for byte, which is how replicas detect serialization drift.
type Replicating struct {
	Backends []Named
}

var _ Iterable = Replicating{}

func (r Replicating) PutState(key string, value []byte) error {
	if err := CheckPut(key, value); err != nil {
		return err
	}
	if len(r.Backends) == 0 {
		return fmt.Errorf("state: Replicating has no backends")
	}
	for _, b := range r.Backends {
		if b.Store == nil {
			return fmt.Errorf("state: nil store for backend %q", b.Name)
		}
		if err := b.Store.PutState(key, value); err != nil {
			return fmt.Errorf("state: backend %q: %w", b.Name, err)
		}
	}
	return nil
}

func (r Replicating) GetState(key string) ([]byte, error) {
	var firstErr error
	for _, b := range r.Backends {
		if b.Store == nil {
			continue
		}
		v, err := b.Store.GetState(key)
		if err == nil {
			return v, nil
		}
		if firstErr == nil {
			firstErr = fmt.Errorf("state: backend %q: %w", b.Name, err)
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return nil, fmt.Errorf("state: Replicating has no backends")
}

// Keys lists keys from the first iterable backend.
func (r Replicating) Keys() ([]string, error) {
	for _, b := range r.Backends {
		if it, ok := b.Store.(Iterable); ok {
			return it.Keys()
		}
	}
	return nil, fmt.Errorf("state: no iterable backend")
}

// Verify reads key from every backend and returns the names of backends whose
// value differs from the first backend's. A non-empty result is reported
// together with ErrDiverged.
func (r Replicating) Verify(key string) ([]string, error) {
	if len(r.Backends) == 0 {
		return nil, fmt.Errorf("state: Replicating has no backends")
	}
	var (
		want     []byte
		diverged []string
	)
	for i, b := range r.Backends {
		if b.Store == nil {
			return nil, fmt.Errorf("state: nil store for backend %q", b.Name)
		}
		got, err := b.Store.GetState(key)
		if err != nil {
			return nil, fmt.Errorf("state: backend %q: %w", b.Name, err)
		}
		if i == 0 {
			want = got
			continue
		}
		if !bytes.Equal(got, want) {
			diverged = append(diverged, b.Name)
		}
	}
	if len(diverged) > 0 {
		return diverged, ErrDiverged
	}
	return nil, nil
}
