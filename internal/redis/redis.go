package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// dialTimeout bounds the startup ping; a gateway should fail fast at
// boot rather than hang on an unreachable cache.
const dialTimeout = 2 * time.Second

type Client struct {
	*goredis.Client
}

// New connects and verifies the connection within the caller's
// lifecycle context.
func New(ctx context.Context, addr, password string) (*Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Client{Client: client}, nil
}
