package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"urap-polar/internal/config"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisKV) {
	mr := miniredis.RunT(t)
	kv := NewRedisKV(NewRedisClient(config.RedisConfig{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = kv.Close() })
	return mr, kv
}

func TestRedisKV_GetSet(t *testing.T) {
	mr, kv := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, kv.Ping(ctx))

	_, err := kv.Get(ctx, "urap:recording:missing")
	require.ErrorIs(t, err, ErrMiss)

	require.NoError(t, kv.Set(ctx, "urap:recording:a", `{"id":"a"}`, time.Minute))
	val, err := kv.Get(ctx, "urap:recording:a")
	require.NoError(t, err)
	require.Equal(t, `{"id":"a"}`, val)

	mr.FastForward(2 * time.Minute)
	_, err = kv.Get(ctx, "urap:recording:a")
	require.ErrorIs(t, err, ErrMiss)
}

func TestRedisKV_ScanKeys(t *testing.T) {
	_, kv := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "urap:recording:a", "1", 0))
	require.NoError(t, kv.Set(ctx, "urap:recording:b", "2", 0))
	require.NoError(t, kv.Set(ctx, "other:c", "3", 0))

	keys, err := kv.ScanKeys(ctx, "urap:recording:*")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"urap:recording:a", "urap:recording:b"}, keys)
}

func TestRedisKV_Unreachable(t *testing.T) {
	mr, kv := setupTestRedis(t)
	mr.Close()

	err := kv.Ping(context.Background())
	require.Error(t, err)
}

func TestMemoryKV_TTL(t *testing.T) {
	kv := NewMemoryKV()
	now := time.Date(2024, 5, 15, 19, 30, 0, 0, time.UTC)
	kv.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "urap:recording:a", "a", time.Minute))
	require.NoError(t, kv.Set(ctx, "urap:recording:b", "b", 0))

	val, err := kv.Get(ctx, "urap:recording:a")
	require.NoError(t, err)
	require.Equal(t, "a", val)

	now = now.Add(2 * time.Minute)
	_, err = kv.Get(ctx, "urap:recording:a")
	require.ErrorIs(t, err, ErrMiss)

	keys, err := kv.ScanKeys(ctx, "urap:recording:*")
	require.NoError(t, err)
	require.Equal(t, []string{"urap:recording:b"}, keys)
}
