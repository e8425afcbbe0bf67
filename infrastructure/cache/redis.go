package cache

import (
	"context"
	"fmt"
	"time"

	"viewtube/infrastructure/configuration"

	"github.com/redis/go-redis/v9"
)

// NewCache opens a redis client from configuration.C.RedisClient and pings it.
func NewCache(ctx context.Context) (*redis.Client, error) {
	cfg := configuration.C.RedisClient
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
