// Package redispkg sets up the Redis client used for publishing ledger events.
package redispkg

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Setup connects to Redis and verifies the connection.
func Setup(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}
