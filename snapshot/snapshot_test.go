package snapshot_test

import (
	"archive/tar"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xdao.co/degreeledger/degree"
	"xdao.co/degreeledger/keys"
	"xdao.co/degreeledger/snapshot"
	"xdao.co/degreeledger/state"
)

func seeded(t *testing.T, reverse bool) *state.Memory {
	t.Helper()
	recs := degree.Seed()
	if reverse {
		for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
			recs[i], recs[j] = recs[j], recs[i]
		}
	}
	m := state.NewMemory()
	for _, d := range recs {
		b, err := degree.Encode(d)
		require.NoError(t, err)
		require.NoError(t, m.PutState(d.ID, b))
	}
	return m
}

func signer(t *testing.T, b byte) *keys.Signer {
	t.Helper()
	seed := bytes.Repeat([]byte{b}, keys.SeedSize)
	s, err := keys.NewSigner(keys.AlgEd25519, "", seed)
	require.NoError(t, err)
	return s
}

type tarEntry struct {
	name string
	data []byte
}

func readEntries(t *testing.T, b []byte) []tarEntry {
	t.Helper()
	var out []tarEntry
	tr := tar.NewReader(bytes.NewReader(b))
	for {
		h, err := tr.Next()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		data, err := io.ReadAll(tr)
		require.NoError(t, err)
		out = append(out, tarEntry{name: h.Name, data: data})
	}
}

func writeEntries(t *testing.T, entries []tarEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, e := range entries {
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: e.name, Mode: 0o644, Size: int64(len(e.data)), Typeflag: tar.TypeReg}))
		_, err := tw.Write(e.data)
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	return buf.Bytes()
}

func TestExport_IsDeterministic(t *testing.T) {
	var a, b bytes.Buffer
	ma, err := snapshot.Export(&a, seeded(t, false), snapshot.ExportOptions{Canonical: true})
	require.NoError(t, err)
	mb, err := snapshot.Export(&b, seeded(t, true), snapshot.ExportOptions{Canonical: true})
	require.NoError(t, err)

	assert.Equal(t, a.Bytes(), b.Bytes())
	assert.Equal(t, ma.Root, mb.Root)

	root, err := state.Root(seeded(t, false))
	require.NoError(t, err)
	assert.Equal(t, root, ma.Root)

	entries := readEntries(t, a.Bytes())
	require.Len(t, entries, 7)
	assert.Equal(t, "state/degree1", entries[0].name)
	assert.Equal(t, "manifest.json", entries[6].name)
}

func TestExportImport_SignedRoundTrip(t *testing.T) {
	s := signer(t, 1)
	var buf bytes.Buffer
	m, err := snapshot.Export(&buf, seeded(t, false), snapshot.ExportOptions{Signer: s})
	require.NoError(t, err)
	require.NotNil(t, m.Signature)

	dst := state.NewMemory()
	got, err := snapshot.Import(bytes.NewReader(buf.Bytes()), dst, snapshot.ImportOptions{TrustedKey: s.PublicKey(), Canonical: true})
	require.NoError(t, err)
	assert.Equal(t, m.Root, got.Root)

	root, err := state.Root(dst)
	require.NoError(t, err)
	assert.Equal(t, m.Root, root)

	rm, err := snapshot.ReadManifest(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, m, rm)
}

func TestImport_UntrustedSignatureWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	_, err := snapshot.Export(&buf, seeded(t, false), snapshot.ExportOptions{Signer: signer(t, 1)})
	require.NoError(t, err)

	dst := state.NewMemory()
	_, err = snapshot.Import(bytes.NewReader(buf.Bytes()), dst, snapshot.ImportOptions{TrustedKey: signer(t, 2).PublicKey()})
	assert.ErrorIs(t, err, keys.ErrUntrustedKey)
	assert.Equal(t, 0, dst.Writes())
}

func TestImport_UnsignedWithTrustedKey(t *testing.T) {
	var buf bytes.Buffer
	_, err := snapshot.Export(&buf, seeded(t, false), snapshot.ExportOptions{})
	require.NoError(t, err)

	_, err = snapshot.Import(bytes.NewReader(buf.Bytes()), state.NewMemory(), snapshot.ImportOptions{TrustedKey: signer(t, 1).PublicKey()})
	assert.ErrorIs(t, err, snapshot.ErrUnsigned)
}

func TestImport_RejectsTamperedValue(t *testing.T) {
	var buf bytes.Buffer
	_, err := snapshot.Export(&buf, seeded(t, false), snapshot.ExportOptions{})
	require.NoError(t, err)

	entries := readEntries(t, buf.Bytes())
	entries[0].data = bytes.Replace(entries[0].data, []byte(`"Accreditation":true`), []byte(`"Accreditation":false`), 1)
	dst := state.NewMemory()
	_, err = snapshot.Import(bytes.NewReader(writeEntries(t, entries)), dst, snapshot.ImportOptions{})
	assert.Error(t, err)
	assert.Equal(t, 0, dst.Writes())
}

func TestImport_RejectsMissingAndExtraEntries(t *testing.T) {
	var buf bytes.Buffer
	_, err := snapshot.Export(&buf, seeded(t, false), snapshot.ExportOptions{})
	require.NoError(t, err)
	entries := readEntries(t, buf.Bytes())

	_, err = snapshot.Import(bytes.NewReader(writeEntries(t, entries[1:])), state.NewMemory(), snapshot.ImportOptions{})
	assert.Error(t, err, "dropped key")

	_, err = snapshot.Import(bytes.NewReader(writeEntries(t, entries[:6])), state.NewMemory(), snapshot.ImportOptions{})
	assert.ErrorIs(t, err, snapshot.ErrNoManifest)

	extra := append([]tarEntry{{name: "README", data: []byte("hi")}}, entries...)
	_, err = snapshot.Import(bytes.NewReader(writeEntries(t, extra)), state.NewMemory(), snapshot.ImportOptions{})
	assert.Error(t, err)
	_, err = snapshot.Import(bytes.NewReader(writeEntries(t, extra)), state.NewMemory(), snapshot.ImportOptions{IgnoreUnknown: true})
	assert.NoError(t, err)

	traversal := append([]tarEntry{{name: "../state/degree1", data: []byte("x")}}, entries...)
	_, err = snapshot.Import(bytes.NewReader(writeEntries(t, traversal)), state.NewMemory(), snapshot.ImportOptions{IgnoreUnknown: true})
	assert.Error(t, err)
}

func TestExport_CanonicalRejectsForeignValues(t *testing.T) {
	m := seeded(t, false)
	require.NoError(t, m.PutState("degree7", []byte(`{"ID": "degree7"}`)))

	_, err := snapshot.Export(io.Discard, m, snapshot.ExportOptions{Canonical: true})
	assert.True(t, degree.IsKind(err, degree.KindCanonical))

	_, err = snapshot.Export(io.Discard, m, snapshot.ExportOptions{})
	assert.NoError(t, err)
}

func TestExportImport_EscapedKeys(t *testing.T) {
	src := state.NewMemory()
	require.NoError(t, src.PutState("a/b c", []byte("v1")))
	require.NoError(t, src.PutState("ünï", []byte("v2")))
	require.NoError(t, src.PutState(".", []byte("dot")))
	require.NoError(t, src.PutState("..", []byte("dotdot")))
	require.NoError(t, src.PutState("a/../b", []byte("v3")))

	var buf bytes.Buffer
	_, err := snapshot.Export(&buf, src, snapshot.ExportOptions{})
	require.NoError(t, err)
	for _, e := range readEntries(t, buf.Bytes()) {
		assert.NotContains(t, e.name, "/.", e.name)
	}

	dst := state.NewMemory()
	_, err = snapshot.Import(bytes.NewReader(buf.Bytes()), dst, snapshot.ImportOptions{})
	require.NoError(t, err)
	v, err := dst.GetState("a/b c")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(v))
	v, err = dst.GetState("ünï")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(v))
	for k, want := range map[string]string{".": "dot", "..": "dotdot", "a/../b": "v3"} {
		v, err = dst.GetState(k)
		require.NoError(t, err)
		assert.Equal(t, want, string(v), k)
	}
}

func TestExportImport_DotKeysCanonical(t *testing.T) {
	src := state.NewMemory()
	for _, id := range []string{".", ".."} {
		d := degree.Seed()[0]
		d.ID = id
		b, err := degree.Encode(d)
		require.NoError(t, err)
		require.NoError(t, src.PutState(id, b))
	}

	var buf bytes.Buffer
	m, err := snapshot.Export(&buf, src, snapshot.ExportOptions{Canonical: true})
	require.NoError(t, err)

	got, err := snapshot.Import(bytes.NewReader(buf.Bytes()), state.NewMemory(), snapshot.ImportOptions{Canonical: true})
	require.NoError(t, err)
	assert.Equal(t, m.Root, got.Root)
}

func TestExportImport_Empty(t *testing.T) {
	var buf bytes.Buffer
	m, err := snapshot.Export(&buf, state.NewMemory(), snapshot.ExportOptions{})
	require.NoError(t, err)
	assert.Empty(t, m.Entries)

	got, err := snapshot.Import(bytes.NewReader(buf.Bytes()), state.NewMemory(), snapshot.ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, m.Root, got.Root)
}
