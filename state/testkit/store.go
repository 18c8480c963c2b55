// Package testkit holds the conformance suite every world state backend runs.
package testkit

import (
	"bytes"
	"fmt"
	"testing"

	"xdao.co/degreeledger/state"
)

// NewStore constructs a fresh, empty Store for a test.
// The returned Store MUST be isolated from other tests.
type NewStore func(t *testing.T) state.Store

func RunStoreConformance(t *testing.T, newStore NewStore) {
	t.Helper()

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		s := newStore(t)
		want := []byte(`{"ID":"degree1"}`)
		if err := s.PutState("degree1", want); err != nil {
			t.Fatalf("PutState: %v", err)
		}
		got, err := s.GetState("degree1")
		if err != nil {
			t.Fatalf("GetState: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("GetState mismatch: got %q want %q", got, want)
		}
	})

	t.Run("AbsentIsNil", func(t *testing.T) {
		s := newStore(t)
		got, err := s.GetState("nope")
		if err != nil {
			t.Fatalf("GetState absent: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("expected empty value for absent key, got %q", got)
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		s := newStore(t)
		if err := s.PutState("k", []byte("one")); err != nil {
			t.Fatalf("PutState(1): %v", err)
		}
		if err := s.PutState("k", []byte("two")); err != nil {
			t.Fatalf("PutState(2): %v", err)
		}
		got, err := s.GetState("k")
		if err != nil {
			t.Fatalf("GetState: %v", err)
		}
		if string(got) != "two" {
			t.Fatalf("expected overwrite, got %q", got)
		}
	})

	t.Run("RejectEmptyKeyAndValue", func(t *testing.T) {
		s := newStore(t)
		if err := s.PutState("", []byte("v")); err == nil {
			t.Fatalf("PutState with empty key should fail")
		}
		if err := s.PutState("k", nil); err == nil {
			t.Fatalf("PutState with empty value should fail")
		}
		got, err := s.GetState("k")
		if err != nil {
			t.Fatalf("GetState: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("rejected write must not be stored")
		}
	})

	t.Run("NoAliasing", func(t *testing.T) {
		s := newStore(t)
		in := []byte("value")
		if err := s.PutState("k", in); err != nil {
			t.Fatalf("PutState: %v", err)
		}
		in[0] = 'X'
		got, err := s.GetState("k")
		if err != nil {
			t.Fatalf("GetState: %v", err)
		}
		if string(got) != "value" {
			t.Fatalf("store aliased the caller's value: %q", got)
		}
		got[0] = 'Y'
		again, err := s.GetState("k")
		if err != nil {
			t.Fatalf("GetState: %v", err)
		}
		if string(again) != "value" {
			t.Fatalf("store exposed its internal value: %q", again)
		}
	})

	t.Run("KeysSorted", func(t *testing.T) {
		s := newStore(t)
		it, ok := s.(state.Iterable)
		if !ok {
			t.Skip("store is not iterable")
		}
		for _, k := range []string{"degree2", "a", "degree10", "Z", "degree1"} {
			if err := s.PutState(k, []byte("v:"+k)); err != nil {
				t.Fatalf("PutState(%s): %v", k, err)
			}
		}
		keys, err := it.Keys()
		if err != nil {
			t.Fatalf("Keys: %v", err)
		}
		want := []string{"Z", "a", "degree1", "degree10", "degree2"}
		if fmt.Sprint(keys) != fmt.Sprint(want) {
			t.Fatalf("Keys: got %v want %v", keys, want)
		}
	})

	t.Run("RootMatchesMemory", func(t *testing.T) {
		s := newStore(t)
		it, ok := s.(state.Iterable)
		if !ok {
			t.Skip("store is not iterable")
		}
		ref := state.NewMemory()
		for _, k := range []string{"degree1", "degree2"} {
			v := []byte(`{"ID":"` + k + `"}`)
			if err := s.PutState(k, v); err != nil {
				t.Fatalf("PutState: %v", err)
			}
			if err := ref.PutState(k, v); err != nil {
				t.Fatalf("PutState(ref): %v", err)
			}
		}
		got, err := state.Root(it)
		if err != nil {
			t.Fatalf("Root: %v", err)
		}
		want, err := state.Root(ref)
		if err != nil {
			t.Fatalf("Root(ref): %v", err)
		}
		if got != want {
			t.Fatalf("root mismatch: got %s want %s", got, want)
		}
	})
}
