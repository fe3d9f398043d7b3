package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisNewClient = func(opt *redis.Options) *redis.Client {
	return redis.NewClient(opt)
}

// NewRedisClient connects and pings. The returned client serves both the
// product cache and the shared rate limiter.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redisNewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
