package checkpoint

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return mr
}

func TestRedisStoreLoadMissingReturnsNilNil(t *testing.T) {
	mr := newMiniredis(t)
	store, err := OpenRedisStore(context.Background(), "job-1", RedisStoreConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	defer store.Close()

	cp, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, cp)
}

func TestRedisStoreSaveLoadRoundTrip(t *testing.T) {
	mr := newMiniredis(t)
	store, err := OpenRedisStore(context.Background(), "job-1", RedisStoreConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	defer store.Close()

	cp := NewCheckpoint("job-1", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), []json.RawMessage{[]byte(`{"n":1}`)})
	cp.Items[0].Status = StatusFailed
	cp.FailedCount = 1

	require.NoError(t, store.Save(context.Background(), cp))

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 1, loaded.FailedCount)
	assert.Equal(t, StatusFailed, loaded.Items[0].Status)
}

func TestRedisStoreSecondOpenFailsWithErrLocked(t *testing.T) {
	mr := newMiniredis(t)
	first, err := OpenRedisStore(context.Background(), "job-1", RedisStoreConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	defer first.Close()

	_, err = OpenRedisStore(context.Background(), "job-1", RedisStoreConfig{Addr: mr.Addr()})
	assert.ErrorIs(t, err, ErrLocked)
}

func TestRedisStoreCloseReleasesLockForSameJob(t *testing.T) {
	mr := newMiniredis(t)
	first, err := OpenRedisStore(context.Background(), "job-1", RedisStoreConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := OpenRedisStore(context.Background(), "job-1", RedisStoreConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	defer second.Close()
}

func TestRedisStoreDifferentJobsDoNotContendForTheSameLock(t *testing.T) {
	mr := newMiniredis(t)
	a, err := OpenRedisStore(context.Background(), "job-a", RedisStoreConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	defer a.Close()

	b, err := OpenRedisStore(context.Background(), "job-b", RedisStoreConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	defer b.Close()
}
