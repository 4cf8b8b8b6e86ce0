package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const pingTimeout = 3 * time.Second

// Open parses url and returns a client. An unreachable server is logged and
// tolerated: callers run degraded until it comes back.
func Open(ctx context.Context, url string, logger *zap.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil && logger != nil {
		logger.Warn("redis unreachable, running degraded", zap.String("addr", opts.Addr), zap.Error(err))
	}

	return client, nil
}
