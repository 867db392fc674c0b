package redis

import (
	"context"
	"fmt"
	"time"

	"ad-funnel-gate/config"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

// NewClient connects and pings Redis, exiting the process when it is unreachable.
func NewClient(cfg config.RedisConfig) *redis.Client {
	rdb, err := Connect(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	return rdb
}

// Connect is NewClient without the fatal exit, for callers that report errors themselves.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	timeout := time.Duration(cfg.OperationTimeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", cfg.Address, err)
	}

	log.Info().Str("address", cfg.Address).Msg("Connected to Redis successfully")
	return rdb, nil
}
