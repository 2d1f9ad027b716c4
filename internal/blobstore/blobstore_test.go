package blobstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netopscore/internal/database"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mgr, err := database.Open(context.Background(), "file::memory:?cache=shared&_test="+t.Name())
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })

	store, err := New(mgr.DB(), t.TempDir())
	require.NoError(t, err)
	return store
}

func TestPut_DeduplicatesIdenticalBytes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	h1, err := s.Put(ctx, []byte("hello"))
	require.NoError(t, err)
	h2, err := s.Put(ctx, []byte("hello"))
	require.NoError(t, err)

	assert.Equal(t, h1, h2)

	var refCount int
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT ref_count FROM blobs WHERE hash = ?`, h1).Scan(&refCount))
	assert.Equal(t, 2, refCount)
}

func TestPutGet_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	hash, err := s.Put(ctx, []byte("config dump contents"))
	require.NoError(t, err)

	data, err := s.Get(hash)
	require.NoError(t, err)
	assert.Equal(t, "config dump contents", string(data))
}

func TestGet_MissingHash(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get("deadbeef")
	assert.Error(t, err)
}

func TestUnrefThenGC_RemovesBlob(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	hash, err := s.Put(ctx, []byte("to be deleted"))
	require.NoError(t, err)
	require.NoError(t, s.Unref(ctx, hash))

	removed, err := s.GC(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = s.Get(hash)
	assert.Error(t, err)
}
