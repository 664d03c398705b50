package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/deskgate/server/internal/shared/config"
)

// NewRedisClient creates the durable tier client. The connection is
// verified up front so the caller can decide to run volatile-only.
func NewRedisClient(cfg *config.RedisConfig) (redis.UniversalClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}
