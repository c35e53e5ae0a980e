package middleware

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// WindowCounter increments the counter for key in the current window and
// returns the new value.
type WindowCounter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

type redisCounter struct {
	rdb redis.Cmdable
}

// Incr runs INCR and EXPIRE in one MULTI so a crashed client never leaves a
// counter without a TTL.
func (r redisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, key)
		p.Expire(ctx, key, window)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// RedisLimiter is a fixed-window limiter shared by every instance that points
// at the same Redis. When Redis is unreachable requests are let through and a
// warning is logged.
type RedisLimiter struct {
	Counter WindowCounter
	Limit   int64
	Window  time.Duration
	Prefix  string
	keyFn   keyFunc
	now     func() time.Time
}

// NewRedisLimiter allows limit requests per window per key. rdb is usually a
// *redis.Client.
func NewRedisLimiter(rdb redis.Cmdable, limit int, window time.Duration, keyFn keyFunc) *RedisLimiter {
	if limit < 1 {
		limit = 1
	}
	if window <= 0 {
		window = time.Second
	}
	return &RedisLimiter{
		Counter: redisCounter{rdb: rdb},
		Limit:   int64(limit),
		Window:  window,
		Prefix:  "ratelimit:",
		keyFn:   keyFn,
		now:     time.Now,
	}
}

// WindowLimit converts a token-bucket setting into a per-second window
// allowance: the larger of burst and rps rounded up.
func WindowLimit(rps float64, burst int) int {
	n := int(math.Ceil(rps))
	if burst > n {
		n = burst
	}
	if n < 1 {
		n = 1
	}
	return n
}

func (rl *RedisLimiter) bucketKey(id string, at time.Time) string {
	slot := at.UnixNano() / int64(rl.Window)
	return rl.Prefix + id + ":" + strconv.FormatInt(slot, 10)
}

// Handler enforces the shared limit.
func (rl *RedisLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) {
			c.Next()
			return
		}
		n, err := rl.Counter.Incr(c.Request.Context(), rl.bucketKey(rl.keyFn(c), rl.now()), rl.Window)
		if err != nil {
			LoggerFrom(c).Warn().Err(err).Msg("rate limiter unavailable, allowing request")
			c.Next()
			return
		}
		if n > rl.Limit {
			retry := int(math.Ceil(rl.Window.Seconds()))
			if retry < 1 {
				retry = 1
			}
			abortRateLimited(c, retry)
			return
		}
		c.Next()
	}
}
