package cidutil

import (
	"strings"
	"testing"
)

func TestSumIsStable(t *testing.T) {
	a := String([]byte(`{"ID":"degree1"}`))
	b := String([]byte(`{"ID":"degree1"}`))
	if a == "" || a != b {
		t.Fatalf("expected stable non-empty cid, got %q and %q", a, b)
	}
	if !strings.HasPrefix(a, "bafkrei") {
		t.Fatalf("expected CIDv1 raw sha2-256 (bafkrei...), got %q", a)
	}
	if c := String([]byte(`{"ID":"degree2"}`)); c == a {
		t.Fatalf("different bytes produced the same cid")
	}
}

func TestVerify(t *testing.T) {
	data := []byte("hello")
	if err := Verify(data, String(data)); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if err := Verify([]byte("other"), String(data)); err == nil {
		t.Fatalf("expected mismatch")
	}
	if err := Verify(data, "not-a-cid"); err == nil {
		t.Fatalf("expected decode error")
	}
}
