package crtime_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/crtcopy/internal/crtime"
	"github.com/bamsammich/crtcopy/internal/xattr"
)

func TestReadCrtime(t *testing.T) {
	store := xattr.NewMemStore()
	want := crtime.Raw(132232032000000000)
	require.NoError(t, store.Set("/src/a", crtime.SourceAttr, want.Bytes()))

	raw, b, err := crtime.NewReader(store).ReadCrtime("/src/a")
	require.NoError(t, err)
	assert.Equal(t, want, raw)
	assert.Equal(t, want.Bytes(), b)
}

func TestReadCrtime_HexSource(t *testing.T) {
	store := xattr.NewMemStore()
	require.NoError(t, store.Set("/src/a", crtime.SourceAttr, []byte("0x01d5c8551f49c000")))

	raw, b, err := crtime.NewReader(store).ReadCrtime("/src/a")
	require.NoError(t, err)
	assert.Equal(t, crtime.Raw(132232032000000000), raw)
	assert.Len(t, b, crtime.RawSize)
}

func TestReadCrtime_Unavailable(t *testing.T) {
	store := xattr.NewMemStore()
	require.NoError(t, store.Set("/src/bad", crtime.SourceAttr, []byte{0xff}))

	r := crtime.NewReader(store)

	_, _, err := r.ReadCrtime("/src/missing")
	assert.ErrorIs(t, err, crtime.ErrMetadataUnavailable)
	assert.ErrorIs(t, err, xattr.ErrNoAttr)

	_, _, err = r.ReadCrtime("/src/bad")
	assert.ErrorIs(t, err, crtime.ErrMetadataUnavailable)
	assert.ErrorIs(t, err, crtime.ErrMalformed)
}

func TestWriteAttrs(t *testing.T) {
	store := xattr.NewMemStore()
	raw := crtime.Raw(132232032000000000)

	err := crtime.NewWriter(store).WriteAttrs("/dst/a", raw.Bytes(), "2020-01-11T08:00:00.0000000Z")
	require.NoError(t, err)

	got, err := store.Get("/dst/a", crtime.RawAttr)
	require.NoError(t, err)
	assert.Equal(t, raw.Bytes(), got)

	got, err = store.Get("/dst/a", crtime.ReadableAttr)
	require.NoError(t, err)
	assert.Equal(t, "2020-01-11T08:00:00.0000000Z", string(got))
}

func TestWriteAttrs_StoreFailure(t *testing.T) {
	store := xattr.NewMemStore()
	store.SetErr = func(string, string) error { return xattr.ErrNotSupported }

	err := crtime.NewWriter(store).WriteAttrs("/dst/a", crtime.Raw(1).Bytes(), "x")
	assert.ErrorIs(t, err, crtime.ErrMetadataWrite)
	assert.ErrorIs(t, err, xattr.ErrNotSupported)
}

func TestWriteAttrs_ReadableTooLong(t *testing.T) {
	store := xattr.NewMemStore()
	store.MaxValueLen = crtime.RawSize

	err := crtime.NewWriter(store).WriteAttrs("/dst/a", crtime.Raw(1).Bytes(), "2020-01-11T08:00:00.0000000Z")
	assert.ErrorIs(t, err, crtime.ErrMetadataWrite)

	// A rejected readable entry leaves the copy untagged.
	assert.Empty(t, store.Names("/dst/a"))
	s, err := crtime.Lookup(store, "/dst/a", nil)
	require.NoError(t, err)
	assert.Empty(t, s)
}

func TestWriteAttrs_BadInput(t *testing.T) {
	w := crtime.NewWriter(xattr.NewMemStore())
	assert.ErrorIs(t, w.WriteAttrs("/dst/a", []byte{1, 2}, "x"), crtime.ErrMetadataWrite)
	assert.ErrorIs(t, w.WriteAttrs("/dst/a", crtime.Raw(1).Bytes(), "\xff"), crtime.ErrMetadataWrite)
}

func TestLookup(t *testing.T) {
	raw := crtime.Raw(132232032000000000)

	t.Run("readable preferred", func(t *testing.T) {
		store := xattr.NewMemStore()
		require.NoError(t, store.Set("/f", crtime.ReadableAttr, []byte(" custom \n")))
		require.NoError(t, store.Set("/f", crtime.RawAttr, raw.Bytes()))

		s, err := crtime.Lookup(store, "/f", time.UTC)
		require.NoError(t, err)
		assert.Equal(t, "custom", s)
	})

	t.Run("raw fallback", func(t *testing.T) {
		store := xattr.NewMemStore()
		require.NoError(t, store.Set("/f", crtime.RawAttr, raw.Bytes()))

		s, err := crtime.Lookup(store, "/f", nil)
		require.NoError(t, err)
		assert.Equal(t, "2020-01-11T08:00:00.0000000Z", s)
	})

	t.Run("hex raw fallback in zone", func(t *testing.T) {
		store := xattr.NewMemStore()
		require.NoError(t, store.Set("/f", crtime.RawAttr, []byte("0x01d5c8551f49c000")))

		s, err := crtime.Lookup(store, "/f", time.FixedZone("X", -5*3600))
		require.NoError(t, err)
		assert.Equal(t, "2020-01-11T03:00:00.0000000-05:00", s)
	})

	t.Run("empty readable falls back", func(t *testing.T) {
		store := xattr.NewMemStore()
		require.NoError(t, store.Set("/f", crtime.ReadableAttr, []byte("   ")))
		require.NoError(t, store.Set("/f", crtime.RawAttr, raw.Bytes()))

		s, err := crtime.Lookup(store, "/f", time.UTC)
		require.NoError(t, err)
		assert.Equal(t, "2020-01-11T08:00:00.0000000Z", s)
	})

	t.Run("nothing", func(t *testing.T) {
		s, err := crtime.Lookup(xattr.NewMemStore(), "/f", time.UTC)
		require.NoError(t, err)
		assert.Empty(t, s)
	})

	t.Run("malformed raw", func(t *testing.T) {
		store := xattr.NewMemStore()
		require.NoError(t, store.Set("/f", crtime.RawAttr, []byte("zz")))

		_, err := crtime.Lookup(store, "/f", time.UTC)
		assert.True(t, errors.Is(err, crtime.ErrMalformed))
	})
}
