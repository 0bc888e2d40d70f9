package store

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_TokenLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	tok, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok, "empty store loads an empty token")

	require.NoError(t, m.Save(ctx, "tok-1"))
	tok, err = m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)

	require.NoError(t, m.Clear(ctx))
	tok, _ = m.Load(ctx)
	assert.Empty(t, tok)
	require.NoError(t, m.Clear(ctx), "clearing twice is fine")
}

func TestMemoryStore_Snapshot(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	snap, err := m.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap)

	in := Snapshot{User: json.RawMessage(`{"_id":"u1"}`), Count: 3, SavedAt: time.Now().UTC()}
	require.NoError(t, m.Put(ctx, in))

	out, err := m.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, 3, out.Count)
	assert.JSONEq(t, `{"_id":"u1"}`, string(out.User))
}

func TestFileStore_TokenLifecycle(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	tok, err := fs.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok, "missing token file is not an error")

	require.NoError(t, fs.Save(ctx, "persisted"))
	tok, err = fs.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "persisted", tok)

	require.NoError(t, fs.Clear(ctx))
	tok, _ = fs.Load(ctx)
	assert.Empty(t, tok)
	require.NoError(t, fs.Clear(ctx))
}

func TestFileStore_SnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	require.NoError(t, err)

	in := Snapshot{
		Items:   json.RawMessage(`[{"quantity":2}]`),
		Count:   2,
		SavedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, fs.Put(ctx, in))

	// A second store over the same directory sees the data.
	fs2, err := NewFileStore(dir)
	require.NoError(t, err)
	out, err := fs2.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, 2, out.Count)
	assert.True(t, in.SavedAt.Equal(out.SavedAt))
}

func TestFileStore_CorruptSnapshotIsNoCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, fs.Put(ctx, Snapshot{Count: 1}))
	// Corrupt the file behind the store's back.
	require.NoError(t, os.WriteFile(dir+"/state.json", []byte("{not json"), 0o600))

	out, err := fs.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, out, "corrupt cache reads as empty")
}
