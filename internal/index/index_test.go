package index

import (
	"encoding/binary"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rich "github.com/wanglei-coder/richheader"
)

// testHeader builds a decoded-looking header by hand. A zero XOR key
// keeps the raw region in the clear, so headers with the same entries
// share a fingerprint.
func testHeader(source string, entries ...rich.Entry) *rich.Header {
	raw := append([]byte(nil), "DanS"...)
	raw = append(raw, make([]byte, 12)...)
	for _, e := range entries {
		var buf [8]byte
		binary.LittleEndian.PutUint32(buf[:4], uint32(e.ToolID)<<16|uint32(e.BuildVersion))
		binary.LittleEndian.PutUint32(buf[4:], e.UseCount)
		raw = append(raw, buf[:]...)
	}
	raw = append(raw, "Rich"...)
	raw = append(raw, 0, 0, 0, 0)

	return &rich.Header{
		Source:          source,
		Entries:         rich.NewEntrySet(entries...),
		ChecksumMatches: true,
		Raw:             raw,
	}
}

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = ix.Close() })
	return ix
}

func TestIndexPutAndLookup(t *testing.T) {
	ix := openTestIndex(t)

	linker := rich.Entry{ToolID: 0x0102, BuildVersion: 27412, UseCount: 1}
	compiler := rich.Entry{ToolID: 0x0104, BuildVersion: 27412, UseCount: 61}

	a := testHeader("bin/a.exe", linker, compiler)
	b := testHeader("bin/b.exe", linker, compiler)
	other := testHeader("bin/other.exe", rich.Entry{ToolID: 0x00E0, BuildVersion: 20806, UseCount: 4})

	require.NoError(t, ix.Put(a))
	require.NoError(t, ix.Put(b))
	require.NoError(t, ix.Put(other))
	require.Equal(t, a.Hash(), b.Hash())
	require.NotEqual(t, a.Hash(), other.Hash())

	records, err := ix.Lookup(a.Hash())
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Keys sort by hash then source, so lookups come back source-ordered.
	assert.Equal(t, "bin/a.exe", records[0].Source)
	assert.Equal(t, "bin/b.exe", records[1].Source)
	for _, rec := range records {
		assert.Equal(t, a.Hash(), rec.Hash)
		assert.Equal(t, 2, rec.Entries)
		assert.True(t, rec.ChecksumMatches)
		assert.False(t, rec.IndexedAt.IsZero())
	}
}

func TestIndexLookupNotIndexed(t *testing.T) {
	ix := openTestIndex(t)

	_, err := ix.Lookup("d4402332a00c5ffa64df7c83ee613640")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotIndexed))
}

func TestIndexPutOverwritesSameSource(t *testing.T) {
	ix := openTestIndex(t)

	h := testHeader("bin/a.exe", rich.Entry{ToolID: 0x0103, BuildVersion: 29395, UseCount: 8})
	require.NoError(t, ix.Put(h))
	require.NoError(t, ix.Put(h))

	records, err := ix.Lookup(h.Hash())
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestIndexPutRejectsHeaderWithoutRaw(t *testing.T) {
	ix := openTestIndex(t)

	err := ix.Put(&rich.Header{Source: "bin/a.exe"})
	require.Error(t, err)
}

func TestIndexAll(t *testing.T) {
	ix := openTestIndex(t)

	require.NoError(t, ix.Put(testHeader("x.exe", rich.Entry{ToolID: 1, BuildVersion: 2, UseCount: 3})))
	require.NoError(t, ix.Put(testHeader("y.exe", rich.Entry{ToolID: 4, BuildVersion: 5, UseCount: 6})))

	records, err := ix.All()
	require.NoError(t, err)
	require.Len(t, records, 2)

	sources := []string{records[0].Source, records[1].Source}
	assert.Contains(t, sources, "x.exe")
	assert.Contains(t, sources, "y.exe")
}

func TestIndexPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	ix, err := Open(dir)
	require.NoError(t, err)
	h := testHeader("bin/a.exe", rich.Entry{ToolID: 0x0105, BuildVersion: 26715, UseCount: 44})
	require.NoError(t, ix.Put(h))
	require.NoError(t, ix.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	records, err := reopened.Lookup(h.Hash())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "bin/a.exe", records[0].Source)
}
