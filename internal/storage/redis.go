package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// NewRedisClient - connects to redis at addr and checks it answers a PING.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	if addr == "" {
		return nil, ErrAddrNotFound
	}

	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}
