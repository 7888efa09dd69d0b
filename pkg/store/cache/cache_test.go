package cache

import (
	"testing"
	"time"

	"github.com/ravensec/xssentinel/pkg/model"
	"github.com/stretchr/testify/require"
)

func TestPutGetRoundTrip(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	fp := model.TestFingerprint("abc123")
	want := model.CachedResult{Detected: true, Executed: true, CapturedAt: time.Now()}
	require.NoError(t, store.Put(fp, want))

	require.True(t, store.Exists(fp, 0))
	got, ok := store.Get(fp)
	require.True(t, ok)
	require.Equal(t, want.Detected, got.Detected)
	require.Equal(t, want.Executed, got.Executed)
}

func TestExpiryPrunesOnRead(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	fp := model.TestFingerprint("expiring")
	stale := model.CachedResult{Detected: false, CapturedAt: time.Now().Add(-time.Hour)}
	require.NoError(t, store.Put(fp, stale))

	require.False(t, store.Exists(fp, time.Minute))
	_, ok := store.Get(fp)
	require.False(t, ok)
}

func TestClearAll(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put(model.TestFingerprint("a"), model.CachedResult{CapturedAt: time.Now()}))
	require.NoError(t, store.Put(model.TestFingerprint("b"), model.CachedResult{CapturedAt: time.Now()}))

	stats, err := store.Stats()
	require.NoError(t, err)
	require.Equal(t, 2, stats.Count)

	require.NoError(t, store.Clear())
	stats, err = store.Stats()
	require.NoError(t, err)
	require.Equal(t, 0, stats.Count)
}
