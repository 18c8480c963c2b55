// Package snapshot exports and imports the world state as a deterministic TAR
// archive, optionally signed by a node key.
//
// Layout:
//
//	state/<path-escaped key>   raw value bytes, one entry per key, in key order
//	manifest.json              Manifest, always the last entry
package snapshot

import (
	"archive/tar"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"xdao.co/degreeledger/cidutil"
	"xdao.co/degreeledger/degree"
	"xdao.co/degreeledger/keys"
	"xdao.co/degreeledger/state"
)

// FormatVersion is the current manifest schema version.
const FormatVersion = 1

const (
	manifestName = "manifest.json"
	statePrefix  = "state/"
)

var (
	ErrNoManifest   = errors.New("snapshot: missing manifest.json")
	ErrRootMismatch = errors.New("snapshot: root does not match entries")
	ErrUnsigned     = errors.New("snapshot: signature required")
)

var epoch0 = time.Unix(0, 0).UTC()

// Manifest describes a snapshot. Root is state.RootOf(Entries).
type Manifest struct {
	Version   int             `json:"version"`
	CIDCodec  string          `json:"cidCodec"`
	Multihash string          `json:"multihash"`
	Root      string          `json:"root"`
	Entries   []state.Entry   `json:"entries"`
	Signature *keys.Signature `json:"signature,omitempty"`
}

// ExportOptions controls snapshot export behavior.
type ExportOptions struct {
	// Signer, when set, signs the manifest root.
	Signer *keys.Signer
	// Canonical requires every value to be a canonical degree record.
	Canonical bool
}

// Export writes a snapshot of s to w and returns its manifest.
//
// The archive bytes are deterministic: entry order follows key order and TAR
// headers are normalized. Two stores with the same root export identical
// unsigned archives.
func Export(w io.Writer, s state.Iterable, opts ExportOptions) (Manifest, error) {
	if s == nil {
		return Manifest{}, fmt.Errorf("snapshot: nil store")
	}
	keyList, err := s.Keys()
	if err != nil {
		return Manifest{}, err
	}

	tw := tar.NewWriter(w)
	entries := make([]state.Entry, 0, len(keyList))
	for _, k := range keyList {
		v, err := s.GetState(k)
		if err != nil {
			_ = tw.Close()
			return Manifest{}, err
		}
		if len(v) == 0 {
			_ = tw.Close()
			return Manifest{}, fmt.Errorf("snapshot: key %q listed but absent", k)
		}
		if opts.Canonical {
			if _, err := degree.Canonicalize(v); err != nil {
				_ = tw.Close()
				return Manifest{}, fmt.Errorf("snapshot: key %q: %w", k, err)
			}
		}
		if err := writeFile(tw, statePrefix+escapeKey(k), v); err != nil {
			_ = tw.Close()
			return Manifest{}, err
		}
		entries = append(entries, state.Entry{Key: k, CID: cidutil.String(v)})
	}

	root, err := state.RootOf(entries)
	if err != nil {
		_ = tw.Close()
		return Manifest{}, err
	}
	m := Manifest{
		Version:   FormatVersion,
		CIDCodec:  "raw",
		Multihash: "sha2-256",
		Root:      root,
		Entries:   entries,
	}
	if opts.Signer != nil {
		sig, err := opts.Signer.Sign([]byte(root))
		if err != nil {
			_ = tw.Close()
			return Manifest{}, err
		}
		m.Signature = &sig
	}

	b, err := marshalManifest(m)
	if err != nil {
		_ = tw.Close()
		return Manifest{}, err
	}
	if err := writeFile(tw, manifestName, b); err != nil {
		_ = tw.Close()
		return Manifest{}, err
	}
	return m, tw.Close()
}

// ImportOptions controls snapshot import behavior.
type ImportOptions struct {
	// IgnoreUnknown controls whether unknown TAR entries are ignored.
	//
	// Default (false) is fail-closed: unknown entries cause Import to return an error.
	IgnoreUnknown bool
	// TrustedKey, when set, requires a signature made by that key.
	TrustedKey string
	// Canonical requires every value to be a canonical degree record.
	Canonical bool
}

// Import reads a snapshot from r and writes its entries into dst.
//
// The whole archive is validated before the first write: every value must
// match its manifest CID, the manifest must list exactly the archived keys,
// and the root (and signature, if any) must verify.
func Import(r io.Reader, dst state.Store, opts ImportOptions) (Manifest, error) {
	if dst == nil {
		return Manifest{}, fmt.Errorf("snapshot: nil store")
	}

	tr := tar.NewReader(r)
	values := map[string][]byte{}
	var manifestBytes []byte

	for {
		h, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Manifest{}, err
		}
		name := cleanTarPath(h.Name)
		if name == "" {
			return Manifest{}, fmt.Errorf("snapshot: invalid entry path: %q", h.Name)
		}

		if h.Typeflag != tar.TypeReg {
			if opts.IgnoreUnknown {
				continue
			}
			return Manifest{}, fmt.Errorf("snapshot: unexpected tar entry type: %v (%s)", h.Typeflag, name)
		}

		switch {
		case name == manifestName:
			if manifestBytes != nil {
				return Manifest{}, fmt.Errorf("snapshot: duplicate manifest")
			}
			if manifestBytes, err = io.ReadAll(tr); err != nil {
				return Manifest{}, err
			}
		case strings.HasPrefix(name, statePrefix):
			key, err := url.PathUnescape(strings.TrimPrefix(name, statePrefix))
			if err != nil || key == "" {
				return Manifest{}, fmt.Errorf("snapshot: invalid key entry: %s", name)
			}
			if _, ok := values[key]; ok {
				return Manifest{}, fmt.Errorf("snapshot: duplicate key entry: %q", key)
			}
			payload, err := io.ReadAll(tr)
			if err != nil {
				return Manifest{}, err
			}
			values[key] = payload
		default:
			if opts.IgnoreUnknown {
				_, _ = io.Copy(io.Discard, tr)
				continue
			}
			return Manifest{}, fmt.Errorf("snapshot: unknown entry: %s", name)
		}
	}

	if manifestBytes == nil {
		return Manifest{}, ErrNoManifest
	}
	m, err := decodeManifest(manifestBytes)
	if err != nil {
		return Manifest{}, err
	}
	if err := verify(m, values, opts); err != nil {
		return Manifest{}, err
	}

	for _, e := range m.Entries {
		if err := dst.PutState(e.Key, values[e.Key]); err != nil {
			return Manifest{}, fmt.Errorf("snapshot: put %q: %w", e.Key, err)
		}
	}
	return m, nil
}

func verify(m Manifest, values map[string][]byte, opts ImportOptions) error {
	if m.Version != FormatVersion {
		return fmt.Errorf("snapshot: unsupported version %d", m.Version)
	}
	if len(m.Entries) != len(values) {
		return fmt.Errorf("snapshot: manifest lists %d entries, archive has %d", len(m.Entries), len(values))
	}
	for _, e := range m.Entries {
		v, ok := values[e.Key]
		if !ok {
			return fmt.Errorf("snapshot: manifest key %q missing from archive", e.Key)
		}
		if err := cidutil.Verify(v, e.CID); err != nil {
			return fmt.Errorf("snapshot: key %q: %w", e.Key, err)
		}
		if opts.Canonical {
			if _, err := degree.Canonicalize(v); err != nil {
				return fmt.Errorf("snapshot: key %q: %w", e.Key, err)
			}
		}
	}
	root, err := state.RootOf(m.Entries)
	if err != nil {
		return err
	}
	if root != m.Root {
		return ErrRootMismatch
	}

	if m.Signature == nil {
		if opts.TrustedKey != "" {
			return ErrUnsigned
		}
		return nil
	}
	return keys.Verify([]byte(m.Root), *m.Signature, opts.TrustedKey)
}

func marshalManifest(m Manifest) ([]byte, error) {
	// Manifest is composed only of structs + slices; encoding/json will be deterministic.
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func decodeManifest(b []byte) (Manifest, error) {
	var m Manifest
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return Manifest{}, fmt.Errorf("snapshot: decode manifest: %w", err)
	}
	return m, nil
}

// ReadManifest returns the manifest of a snapshot without importing it.
func ReadManifest(r io.Reader) (Manifest, error) {
	tr := tar.NewReader(r)
	for {
		h, err := tr.Next()
		if err == io.EOF {
			return Manifest{}, ErrNoManifest
		}
		if err != nil {
			return Manifest{}, err
		}
		if cleanTarPath(h.Name) != manifestName {
			continue
		}
		b, err := io.ReadAll(tr)
		if err != nil {
			return Manifest{}, err
		}
		return decodeManifest(b)
	}
}

func writeFile(tw *tar.Writer, name string, content []byte) error {
	hdr := &tar.Header{
		Name:     name,
		Mode:     0o644,
		Size:     int64(len(content)),
		ModTime:  epoch0,
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err := io.Copy(tw, bytes.NewReader(content))
	return err
}

// escapeKey maps a state key to a single path segment. Dots are escaped too so
// that keys such as "." and ".." survive cleanTarPath on import.
func escapeKey(k string) string {
	return strings.ReplaceAll(url.PathEscape(k), ".", "%2E")
}

func cleanTarPath(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimPrefix(name, "./")
	name = strings.TrimPrefix(name, "/")
	if name == "" {
		return ""
	}

	parts := strings.Split(name, "/")
	for _, part := range parts {
		if part == "" || part == "." || part == ".." {
			return ""
		}
	}
	return strings.Join(parts, "/")
}
