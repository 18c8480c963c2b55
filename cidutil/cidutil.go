package cidutil

import (
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// Sum returns the CIDv1 (raw multicodec, sha2-256 multihash) of data.
//
// This is the hash replicas compare: two nodes agree on a record or a world-state
// root exactly when they agree on its CID.
func Sum(data []byte) (cid.Cid, error) {
	mh, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, mh), nil
}

// String is Sum rendered in its default multibase form.
func String(data []byte) string {
	id, err := Sum(data)
	if err != nil {
		// multihash.Sum only fails for unknown codes or bad lengths.
		return ""
	}
	return id.String()
}

// Verify reports whether data hashes to want.
func Verify(data []byte, want string) error {
	wantID, err := cid.Decode(want)
	if err != nil {
		return fmt.Errorf("cidutil: invalid cid %q: %w", want, err)
	}
	got, err := Sum(data)
	if err != nil {
		return err
	}
	if !got.Equals(wantID) {
		return fmt.Errorf("cidutil: cid mismatch: got %s want %s", got, wantID)
	}
	return nil
}
