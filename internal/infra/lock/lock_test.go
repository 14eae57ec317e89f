//go:build unit

package lock_test

import (
	"context"
	"testing"
	"time"

	"pride-notify/internal/infra/lock"
	"pride-notify/internal/pkg/clock"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisLocker(t *testing.T) (*lock.RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := lock.Connect(context.Background(), &goredis.Options{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return lock.NewRedisLocker(client), mr
}

func TestRedisLocker_AcquireRelease(t *testing.T) {
	ctx := context.Background()
	l, mr := newRedisLocker(t)

	token, ok, err := l.Acquire(ctx, "notify:lock:loans_due", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, token)
	assert.Equal(t, time.Minute, mr.TTL("notify:lock:loans_due"))

	_, ok, err = l.Acquire(ctx, "notify:lock:loans_due", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second acquire must not succeed while held")

	_, ok, err = l.Acquire(ctx, "notify:lock:birthdays", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "categories lock independently")

	require.NoError(t, l.Release(ctx, "notify:lock:loans_due", token))
	assert.False(t, mr.Exists("notify:lock:loans_due"))

	_, ok, err = l.Acquire(ctx, "notify:lock:loans_due", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLocker_ReleaseWithStaleToken(t *testing.T) {
	ctx := context.Background()
	l, mr := newRedisLocker(t)

	stale, ok, err := l.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	fresh, ok, err := l.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.True(t, ok, "expired lock is reclaimable")

	require.NoError(t, l.Release(ctx, "k", stale))
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, fresh, got, "a stale holder must not release the new lock")
}

func TestRedisLocker_ServerDown(t *testing.T) {
	ctx := context.Background()
	l, mr := newRedisLocker(t)
	mr.Close()

	_, ok, err := l.Acquire(ctx, "k", time.Minute)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestConnect_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := lock.Connect(ctx, &goredis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	assert.Error(t, err)
}

func TestLocalLocker(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMockClock(time.Date(2024, 3, 1, 6, 50, 0, 0, time.UTC))
	l := lock.NewLocalLocker(clk)

	token, ok, err := l.Acquire(ctx, "k", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, _ = l.Acquire(ctx, "k", time.Hour)
	assert.False(t, ok)

	require.NoError(t, l.Release(ctx, "k", "not-the-token"))
	_, ok, _ = l.Acquire(ctx, "k", time.Hour)
	assert.False(t, ok, "wrong token leaves the lock in place")

	clk.Add(time.Hour + time.Second)
	second, ok, _ := l.Acquire(ctx, "k", time.Hour)
	assert.True(t, ok, "expired lock is reclaimable")
	assert.NotEqual(t, token, second)

	require.NoError(t, l.Release(ctx, "k", second))
	_, ok, _ = l.Acquire(ctx, "k", time.Hour)
	assert.True(t, ok)
}
