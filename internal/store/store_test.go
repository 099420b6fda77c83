package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v0xg/streamchapters/internal/chapter"
	"github.com/v0xg/streamchapters/internal/logging"
)

func openTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	db, err := OpenSQLite(Config{Path: filepath.Join(t.TempDir(), "state.db")}, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testKV(t *testing.T, kv KV) {
	ctx := context.Background()

	var missing string
	found, err := kv.Get(ctx, "nope", &missing)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, kv.Set(ctx, "progress", chapter.Progress{Current: 1, Total: 3, CurrentTitle: "Intro"}))
	require.NoError(t, kv.Set(ctx, "progress", chapter.Progress{Current: 2, Total: 3}))

	var p chapter.Progress
	found, err = kv.Get(ctx, "progress", &p)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, chapter.Progress{Current: 2, Total: 3}, p)

	require.NoError(t, kv.Delete(ctx, "progress"))
	found, err = kv.Get(ctx, "progress", &p)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemory_KV(t *testing.T) {
	testKV(t, NewMemory())
}

func TestSQLite_KV(t *testing.T) {
	testKV(t, openTestSQLite(t))
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	ctx := context.Background()

	db, err := OpenSQLite(Config{Path: path}, logging.Discard())
	require.NoError(t, err)
	require.NoError(t, NewRunStore(db).SaveRunning(ctx, true))
	require.NoError(t, db.Close())

	db, err = OpenSQLite(Config{Path: path}, logging.Discard())
	require.NoError(t, err)
	defer db.Close()

	snap, err := NewRunStore(db).Snapshot(ctx)
	require.NoError(t, err)
	assert.True(t, snap.IsRunning)
}

func TestRunStore_Snapshot(t *testing.T) {
	ctx := context.Background()
	rs := NewRunStore(NewMemory())

	snap, err := rs.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, Snapshot{}, snap)

	settings := chapter.Settings{VideoSeekDelayMs: 10, ButtonClickDelayMs: 20, SaveDelayMs: 30}
	require.NoError(t, rs.SaveRunning(ctx, true))
	require.NoError(t, rs.SaveRunID(ctx, "run-1"))
	require.NoError(t, rs.SaveProgress(ctx, chapter.Progress{Current: 2, Total: 2}))
	require.NoError(t, rs.SaveInput(ctx, `[{"time":"00:00","title":"x"}]`, settings))

	snap, err = rs.Snapshot(ctx)
	require.NoError(t, err)
	assert.True(t, snap.IsRunning)
	assert.Equal(t, "run-1", snap.RunID)
	assert.Equal(t, chapter.Progress{Current: 2, Total: 2}, snap.Progress)
	require.NotNil(t, snap.Settings)
	assert.Equal(t, settings, *snap.Settings)
	assert.Contains(t, snap.JobData, "00:00")

	require.NoError(t, rs.ClearJobData(ctx))
	snap, err = rs.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.JobData)
}

func TestRunStore_RecoverStale(t *testing.T) {
	ctx := context.Background()
	rs := NewRunStore(openTestSQLite(t))

	cleared, err := rs.RecoverStale(ctx)
	require.NoError(t, err)
	assert.False(t, cleared)

	require.NoError(t, rs.SaveRunning(ctx, true))
	cleared, err = rs.RecoverStale(ctx)
	require.NoError(t, err)
	assert.True(t, cleared)

	snap, err := rs.Snapshot(ctx)
	require.NoError(t, err)
	assert.False(t, snap.IsRunning)
}
