package lock

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/erp/storesync/internal/domain/integration"
	"github.com/erp/storesync/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func passKey(channelID uuid.UUID, scope string) integration.PassKey {
	return integration.PassKey{ChannelID: channelID, Scope: scope}
}

// contend has workers try the same key at once while every winner keeps
// holding it, and returns how many got the lock.
func contend(t *testing.T, locker integration.PassLocker, key integration.PassKey, workers int) int32 {
	t.Helper()
	var won int32
	var tried, done sync.WaitGroup
	start := make(chan struct{})
	hold := make(chan struct{})
	for i := 0; i < workers; i++ {
		tried.Add(1)
		done.Add(1)
		go func() {
			defer done.Done()
			<-start
			release, err := locker.Acquire(context.Background(), key)
			tried.Done()
			if err != nil {
				assert.ErrorIs(t, err, integration.ErrPassLocked)
				return
			}
			atomic.AddInt32(&won, 1)
			<-hold
			release()
		}()
	}
	close(start)
	tried.Wait()
	close(hold)
	done.Wait()
	return won
}

func TestMemoryPassLocker(t *testing.T) {
	channel := uuid.New()

	t.Run("one holder per key", func(t *testing.T) {
		locker := NewMemoryPassLocker()
		assert.Equal(t, int32(1), contend(t, locker, passKey(channel, "import"), 8))
	})

	t.Run("a held key is reported as locked", func(t *testing.T) {
		locker := NewMemoryPassLocker()
		key := passKey(channel, "import")
		release, err := locker.Acquire(context.Background(), key)
		require.NoError(t, err)

		_, err = locker.Acquire(context.Background(), key)
		assert.ErrorIs(t, err, integration.ErrPassLocked)

		release()
		release() // second call is a no-op

		again, err := locker.Acquire(context.Background(), key)
		require.NoError(t, err)
		again()
	})

	t.Run("import and export do not block each other", func(t *testing.T) {
		locker := NewMemoryPassLocker()
		releaseImport, err := locker.Acquire(context.Background(), passKey(channel, "import"))
		require.NoError(t, err)
		defer releaseImport()

		releaseExport, err := locker.Acquire(context.Background(), passKey(channel, "export"))
		require.NoError(t, err)
		releaseExport()

		releaseOther, err := locker.Acquire(context.Background(), passKey(uuid.New(), "import"))
		require.NoError(t, err)
		releaseOther()
	})

	t.Run("a canceled context takes nothing", func(t *testing.T) {
		locker := NewMemoryPassLocker()
		key := passKey(channel, "import")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := locker.Acquire(ctx, key)
		assert.ErrorIs(t, err, context.Canceled)

		release, err := locker.Acquire(context.Background(), key)
		require.NoError(t, err)
		release()
	})
}

func TestNew(t *testing.T) {
	cfg := &config.Config{Lock: config.LockConfig{Backend: "memory"}}
	locker, closeFn, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &MemoryPassLocker{}, locker)
	assert.NoError(t, closeFn())

	cfg = &config.Config{
		Lock:  config.LockConfig{Backend: "redis"},
		Redis: config.RedisConfig{Addr: "127.0.0.1:1"},
	}
	_, _, err = New(cfg, zap.NewNop())
	assert.Error(t, err)
}

// redisClient returns a client for STORESYNC_TEST_REDIS_ADDR or skips
func redisClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("STORESYNC_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("STORESYNC_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())
	return client
}

func TestRedisPassLocker(t *testing.T) {
	client := redisClient(t)
	prefix := "storesync:test:" + uuid.NewString() + ":"
	locker := NewRedisPassLocker(client, prefix, time.Minute, zap.NewNop())
	channel := uuid.New()

	t.Run("one holder per key", func(t *testing.T) {
		assert.Equal(t, int32(1), contend(t, locker, passKey(channel, "import"), 4))
	})

	t.Run("release only deletes its own token", func(t *testing.T) {
		key := passKey(channel, "export")
		release, err := locker.Acquire(context.Background(), key)
		require.NoError(t, err)

		redisKey := prefix + key.String()
		require.NoError(t, client.Set(context.Background(), redisKey, "someone-else", time.Minute).Err())
		release()

		value, err := client.Get(context.Background(), redisKey).Result()
		require.NoError(t, err)
		assert.Equal(t, "someone-else", value)
		require.NoError(t, client.Del(context.Background(), redisKey).Err())
	})

	t.Run("a held key is reported as locked", func(t *testing.T) {
		key := passKey(channel, "reference")
		release, err := locker.Acquire(context.Background(), key)
		require.NoError(t, err)

		_, err = locker.Acquire(context.Background(), key)
		assert.ErrorIs(t, err, integration.ErrPassLocked)

		release()
		again, err := locker.Acquire(context.Background(), key)
		require.NoError(t, err)
		again()
	})
}
