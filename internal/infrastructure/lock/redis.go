package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/erp/storesync/internal/domain/integration"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultKeyPrefix = "storesync:pass:"

// releaseScript deletes the lock only while it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisPassLocker serializes passes across processes sharing a Redis
// instance. A lock is a key set with NX and a TTL; the TTL bounds how long
// a crashed holder keeps other workers out.
type RedisPassLocker struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
	logger    *zap.Logger
}

var _ integration.PassLocker = (*RedisPassLocker)(nil)

// NewRedisPassLocker creates a locker on an existing client
func NewRedisPassLocker(client redis.UniversalClient, keyPrefix string, ttl time.Duration, logger *zap.Logger) *RedisPassLocker {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisPassLocker{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		logger:    logger,
	}
}

// Acquire sets the key with NX. A key already set by another holder fails
// with integration.ErrPassLocked.
func (l *RedisPassLocker) Acquire(ctx context.Context, key integration.PassKey) (func(), error) {
	redisKey := l.keyPrefix + key.String()
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("failed to acquire pass lock %s: %w", redisKey, err)
	}
	if !ok {
		l.logger.Debug("pass lock held elsewhere", zap.String("key", redisKey))
		return nil, integration.ErrPassLocked
	}
	return l.releaser(redisKey, token), nil
}

func (l *RedisPassLocker) releaser(redisKey, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			// the pass context may already be canceled
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			deleted, err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Int()
			if err != nil {
				l.logger.Error("failed to release pass lock", zap.String("key", redisKey), zap.Error(err))
				return
			}
			if deleted == 0 {
				l.logger.Warn("pass lock expired before release", zap.String("key", redisKey))
			}
		})
	}
}
