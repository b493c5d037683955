package data

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	lockPrefix   = "lock:"
	streamEvents = "sauti.bill-events"
)

func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}

// releaseScript deletes the lock only when the caller still holds it.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// AcquireLock takes a cluster-wide lock for name. It returns a holder token
// and true on success; the TTL bounds a crashed holder.
func AcquireLock(ctx context.Context, rdb *redis.Client, name string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := rdb.SetNX(ctx, lockPrefix+name, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

// ReleaseLock frees the lock if token still owns it.
func ReleaseLock(ctx context.Context, rdb *redis.Client, name, token string) error {
	return releaseScript.Run(ctx, rdb, []string{lockPrefix + name}, token).Err()
}

// PublishBillEvent appends a bill event to the shared stream for external
// consumers (dashboards, audit).
func PublishBillEvent(ctx context.Context, rdb *redis.Client, payload map[string]interface{}) error {
	_, err := rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamEvents,
		Values: payload,
	}).Result()
	return err
}
