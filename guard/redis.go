package guard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"attendance_backend/logger"
)

var ErrLockLost = errors.New("lock expired before release")

// releaseScript deletes the key only if this holder still owns it.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a Guard shared by every instance talking to the same Redis.
// Locks expire after ttl so a crashed holder cannot wedge a key.
type Redis struct {
	log   *logger.Logger
	rdb   goredis.UniversalClient
	ttl   time.Duration
	retry time.Duration
}

func NewRedis(log *logger.Logger, rdb goredis.UniversalClient, ttl time.Duration) (*Redis, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("lock ttl must be positive")
	}
	return &Redis{
		log:   log.With("service", "RedisGuard"),
		rdb:   rdb,
		ttl:   ttl,
		retry: 25 * time.Millisecond,
	}, nil
}

func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	wait := r.retry
	for {
		ok, err := r.rdb.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis lock %s: %w", key, err)
		}
		if ok {
			break
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		if wait < 250*time.Millisecond {
			wait *= 2
		}
	}

	return func() {
		// The caller's ctx may already be done; release on a fresh one.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		n, err := releaseScript.Run(releaseCtx, r.rdb, []string{key}, token).Int()
		if err != nil {
			r.log.Warn("redis unlock failed", "key", key, "error", err)
			return
		}
		if n == 0 {
			r.log.Warn("redis unlock skipped", "key", key, "error", ErrLockLost)
		}
	}, nil
}
