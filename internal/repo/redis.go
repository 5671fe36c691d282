package repo

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

type Redis struct{ C *redis.Client }

func NewRedis(addr string) *Redis {
	return &Redis{C: redis.NewClient(&redis.Options{Addr: addr})}
}

func (r *Redis) Ping(ctx context.Context) error { return r.C.Ping(ctx).Err() }
func (r *Redis) Close() error                   { return r.C.Close() }

// Allow implements a fixed-window counter: first INCR in the window sets the
// expiry, anything past limit within the window is rejected. Fails open on
// Redis errors so auth does not depend on the limiter being up.
func (r *Redis) Allow(ctx context.Context, key string, limit int, window time.Duration) bool {
	count, err := r.C.Incr(ctx, key).Result()
	if err != nil {
		return true
	}
	if count == 1 {
		r.C.Expire(ctx, key, window)
	}
	return count <= int64(limit)
}
