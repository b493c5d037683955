package scheduler

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sauti-platform/sauti/src/api/data"
)

// RedisLocker backs the single-flight guarantee with redis SET NX EX.
type RedisLocker struct {
	rdb *redis.Client
}

func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{rdb: rdb}
}

func (l *RedisLocker) Acquire(ctx context.Context, name string, ttl time.Duration) (string, bool, error) {
	return data.AcquireLock(ctx, l.rdb, name, ttl)
}

func (l *RedisLocker) Release(ctx context.Context, name, token string) error {
	return data.ReleaseLock(ctx, l.rdb, name, token)
}
