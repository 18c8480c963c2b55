// Package state defines the world state store the ledger reads and writes.
//
// The contract is deliberately small:
//   - GetState returns (nil, nil) when the key is absent.
//   - PutState overwrites the key. Empty values are rejected, so a key is either
//     absent or holds a non-empty value; there is no tombstone state.
//   - Neither call retains or exposes the caller's slices.
//
// Fabric's shim.ChaincodeStubInterface satisfies Store.
package state

import "errors"

var (
	ErrEmptyKey   = errors.New("state: empty key")
	ErrEmptyValue = errors.New("state: empty value")
	ErrClosed     = errors.New("state: store closed")
	ErrDiverged   = errors.New("state: replicas diverged")
)

// Store is a key-value world state.
type Store interface {
	GetState(key string) ([]byte, error)
	PutState(key string, value []byte) error
}

// Iterable is a Store that can enumerate its keys in byte order.
type Iterable interface {
	Store
	Keys() ([]string, error)
}

// CheckPut validates a write against the Store contract.
func CheckPut(key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	if len(value) == 0 {
		return ErrEmptyValue
	}
	return nil
}
