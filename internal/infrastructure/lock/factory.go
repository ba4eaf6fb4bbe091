package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/storesync/internal/domain/integration"
	"github.com/erp/storesync/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// New builds the configured pass locker. The returned close function
// releases the Redis connection, if any.
func New(cfg *config.Config, logger *zap.Logger) (integration.PassLocker, func() error, error) {
	switch cfg.Lock.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		return NewRedisPassLocker(client, cfg.Lock.Prefix, cfg.Lock.TTL, logger), client.Close, nil
	default:
		return NewMemoryPassLocker(), func() error { return nil }, nil
	}
}
