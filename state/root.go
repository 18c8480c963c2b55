package state

import (
	"encoding/json"
	"fmt"

	"xdao.co/degreeledger/cidutil"
)

// Entry pairs a key with the CID of its value.
type Entry struct {
	Key string `json:"key"`
	CID string `json:"cid"`
}

// Listing returns one Entry per key, in key order.
func Listing(s Iterable) ([]Entry, error) {
	keys, err := s.Keys()
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(keys))
	for _, k := range keys {
		v, err := s.GetState(k)
		if err != nil {
			return nil, err
		}
		if len(v) == 0 {
			return nil, fmt.Errorf("state: key %q listed but absent", k)
		}
		id, err := cidutil.Sum(v)
		if err != nil {
			return nil, err
		}
		out = append(out, Entry{Key: k, CID: id.String()})
	}
	return out, nil
}

// RootOf computes the world-state root of a listing: the CID of its JSON
// encoding. Entries must already be in key order.
func RootOf(entries []Entry) (string, error) {
	if entries == nil {
		entries = []Entry{}
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Key >= entries[i].Key {
			return "", fmt.Errorf("state: listing not in strict key order at %q", entries[i].Key)
		}
	}
	// []Entry has a fixed field order, so encoding/json output is deterministic.
	b, err := json.Marshal(entries)
	if err != nil {
		return "", err
	}
	id, err := cidutil.Sum(b)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Root returns the world-state root of s. Two stores holding byte-identical
// values under the same keys have the same root.
func Root(s Iterable) (string, error) {
	entries, err := Listing(s)
	if err != nil {
		return "", err
	}
	return RootOf(entries)
}
