package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/storeline/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewRedisClient connects to Redis and verifies the connection with a ping
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr(), err)
	}
	return client, nil
}

// Backend picks the session store. Redis is used when enabled and reachable;
// otherwise sessions stay in memory and a warning is logged, since they are
// then not shared between instances.
func Backend(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) (Store, *redis.Client) {
	if !cfg.Enabled {
		log.Info("Redis disabled, using in-memory session store")
		return NewMemoryStore(), nil
	}
	client, err := NewRedisClient(ctx, cfg)
	if err != nil {
		log.Warn("Redis unavailable, falling back to in-memory session store", zap.Error(err))
		return NewMemoryStore(), nil
	}
	log.Info("Using Redis session store", zap.String("addr", cfg.Addr()))
	return NewRedisStore(client), client
}
