package gate

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRedis 默认使用 miniredis，设置 TEST_REDIS_ADDR 时改连真实实例。
func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = miniredis.RunT(t).Addr()
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, client.Ping(ctx).Err())
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisGateTransitions(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()
	f := RedisFactory{Client: client, KeySpace: "test:gate:", Lease: time.Minute}
	sid := uuid.NewString()
	t.Cleanup(func() { client.Del(ctx, "test:gate:"+sid) })

	g := f.New(sid)
	assert.Equal(t, Idle, mustState(t, g))

	ok, err := g.TryAcquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Pending, mustState(t, g))

	// 另一副本上同一会话的闸门也应看到 pending
	other := f.New(sid)
	ok, err = other.TryAcquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	// 非持有者释放不会生效
	require.NoError(t, other.Release(ctx))
	assert.Equal(t, Pending, mustState(t, g))

	require.NoError(t, g.Release(ctx))
	assert.Equal(t, Idle, mustState(t, g))
}

func TestRedisGateDoReleasesOnError(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()
	key := "test:gate:" + uuid.NewString()
	t.Cleanup(func() { client.Del(ctx, key) })

	g := NewRedis(client, key, time.Minute)
	err := Do(ctx, g, func(context.Context) error { return assert.AnError })
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, Idle, mustState(t, g))
}

func TestRedisGateRenewOnlyByHolder(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()

	g := NewRedis(client, "test:gate:renew", time.Second)
	other := NewRedis(client, "test:gate:renew", time.Second)

	held, err := g.Renew(ctx)
	require.NoError(t, err)
	assert.False(t, held, "renew without holding must not create the key")

	ok, err := g.TryAcquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(900 * time.Millisecond)
	held, err = g.Renew(ctx)
	require.NoError(t, err)
	assert.True(t, held)
	assert.Equal(t, time.Second, mr.TTL("test:gate:renew"))

	held, err = other.Renew(ctx)
	require.NoError(t, err)
	assert.False(t, held)

	mr.FastForward(2 * time.Second)
	held, err = g.Renew(ctx)
	require.NoError(t, err)
	assert.False(t, held, "expired lease cannot be renewed")
	assert.Equal(t, time.Second/3, g.RenewInterval())
}

// 外呼耗时远超租约时，闸门仍保持 pending，第二次提交被拒绝。
func TestRedisGateStaysPendingPastLease(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()

	f := RedisFactory{Client: client, KeySpace: "test:gate:", Lease: 90 * time.Millisecond}
	g := f.New("slow")
	started := make(chan struct{})
	finish := make(chan struct{})
	errCh := make(chan error, 1)
	var calls atomic.Int32

	go func() {
		errCh <- Do(ctx, g, func(context.Context) error {
			calls.Add(1)
			close(started)
			<-finish
			return nil
		})
	}()
	<-started

	// 累计推进 300ms，期间续期协程每 30ms 把过期时间重置为 90ms
	for i := 0; i < 5; i++ {
		time.Sleep(100 * time.Millisecond)
		mr.FastForward(60 * time.Millisecond)
		assert.Equal(t, Pending, mustState(t, g))
	}

	err := Do(ctx, f.New("slow"), func(context.Context) error {
		calls.Add(1)
		return nil
	})
	assert.ErrorIs(t, err, ErrBusy)

	close(finish)
	require.NoError(t, <-errCh)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, Idle, mustState(t, g))
}
