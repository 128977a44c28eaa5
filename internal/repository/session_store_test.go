package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingua_backend/internal/model"
)

func newRedisStore(t *testing.T) (*RedisSessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisSessionStore(rdb, time.Hour), mr
}

func exerciseSessionStore(t *testing.T, store SessionStore) {
	ctx := context.Background()

	st, err := store.Get(ctx, 1, 10, 100)
	require.NoError(t, err)
	assert.Equal(t, model.StatusUnattempted, st)

	require.NoError(t, store.Set(ctx, 1, 10, 100, model.StatusAttemptedOnce))
	require.NoError(t, store.Set(ctx, 1, 10, 101, model.StatusPerfect))
	require.NoError(t, store.Set(ctx, 2, 10, 100, model.StatusFailed))

	st, err = store.Get(ctx, 1, 10, 100)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAttemptedOnce, st)

	all, err := store.All(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, map[uint]model.ExerciseStatus{
		100: model.StatusAttemptedOnce,
		101: model.StatusPerfect,
	}, all)

	require.NoError(t, store.Clear(ctx, 1, 10))
	all, err = store.All(ctx, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, all)

	// 其他用户不受影响
	st, err = store.Get(ctx, 2, 10, 100)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, st)
}

func TestRedisSessionStore(t *testing.T) {
	store, _ := newRedisStore(t)
	exerciseSessionStore(t, store)
}

func TestMemorySessionStore(t *testing.T) {
	exerciseSessionStore(t, NewMemorySessionStore(time.Hour))
}

func TestRedisSessionStore_TTL(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, 1, 10, 100, model.StatusPerfect))
	assert.Equal(t, time.Hour, mr.TTL(sessionKey(1, 10)))

	mr.FastForward(2 * time.Hour)
	all, err := store.All(ctx, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestMemorySessionStore_TTL(t *testing.T) {
	store := NewMemorySessionStore(time.Minute)
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, 1, 10, 100, model.StatusCorrected))
	now = now.Add(2 * time.Minute)

	st, err := store.Get(ctx, 1, 10, 100)
	require.NoError(t, err)
	assert.Equal(t, model.StatusUnattempted, st)
}
