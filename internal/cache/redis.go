package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// ConnectRedis opens a Redis client and verifies the connection with a ping.
// The same client backs both the catalog cache and the asynq transport.
func ConnectRedis(addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s failed: %w", addr, err)
	}

	log.Printf("Connected to Redis at %s (db %d)", addr, db)
	return rdb, nil
}

// DisconnectRedis closes the client. Safe to call with nil.
func DisconnectRedis(client *redis.Client) error {
	if client == nil {
		return nil
	}
	if err := client.Close(); err != nil {
		return fmt.Errorf("closing redis connection: %w", err)
	}
	log.Println("Redis connection closed")
	return nil
}
