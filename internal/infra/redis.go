package infra

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// NewRedis connects the client that backs the audit and email job queues,
// their DLQs and the parked-job list. The connection is pinged once so a bad
// REDIS_URL fails the process at startup instead of at the first enqueue.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return rdb, nil
}
