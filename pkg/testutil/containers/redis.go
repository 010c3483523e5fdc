//go:build integration

package containers

import (
	"context"
	"fmt"
	"testing"

	"github.com/redis/go-redis/v9"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

const redisImage = "redis:7-alpine"

// RedisContainer is a disposable Redis for kvstore.Redis tests.
type RedisContainer struct {
	Container *tcredis.RedisContainer
	URL       string
	Client    *redis.Client
}

// NewRedisContainer starts Redis and connects a client to it. Failures end
// the test.
func NewRedisContainer(t *testing.T) *RedisContainer {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, redisImage)
	if err != nil {
		t.Fatalf("start redis container: %v", err)
	}
	rc, err := connectRedis(ctx, container)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("%v", err)
	}
	// Shared through Manager; Ryuk reaps the container at exit.
	return rc
}

func connectRedis(ctx context.Context, container *tcredis.RedisContainer) (*RedisContainer, error) {
	url, err := container.ConnectionString(ctx)
	if err != nil {
		return nil, fmt.Errorf("redis connection string: %w", err)
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisContainer{Container: container, URL: url, Client: client}, nil
}

// Reset deletes every key under namespace so each suite starts empty
// without flushing keys other suites may own.
func (r *RedisContainer) Reset(ctx context.Context, namespace string) error {
	iter := r.Client.Scan(ctx, 0, namespace+"*", 500).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan %s: %w", namespace, err)
	}
	if len(keys) == 0 {
		return nil
	}
	return r.Client.Del(ctx, keys...).Err()
}
