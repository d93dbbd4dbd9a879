package database

import (
	"context"
	"fmt"
	"time"

	"classfinder/config"

	"github.com/go-redis/redis/v8"
)

// InitRedis connects to the cache database configured in AppConfig.
func InitRedis(ctx context.Context) (*redis.Client, error) {
	if config.AppConfig.RedisAddr == "" {
		return nil, fmt.Errorf("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis at %s: %w", config.AppConfig.RedisAddr, err)
	}
	return client, nil
}
