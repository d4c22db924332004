package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"event-ticketing/pkg/observability"
	"event-ticketing/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimiter is a fixed window counter per key kept in Redis.
type RateLimiter struct {
	rdb    redis.Cmdable
	max    int
	window time.Duration
	log    *zap.Logger
}

func NewRateLimiter(rdb redis.Cmdable, cfg utils.RateLimitConfig, log *zap.Logger) *RateLimiter {
	return &RateLimiter{
		rdb:    rdb,
		max:    cfg.Max,
		window: cfg.Window,
		log:    log.With(zap.String("middleware", "ratelimit")),
	}
}

// Allow counts one hit for key and reports whether it is within the limit.
// The TTL is set in the same round-trip so a key never outlives its window.
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	fullKey := "rl:" + key

	var incr *redis.IntCmd
	_, err := rl.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, fullKey)
		pipe.ExpireNX(ctx, fullKey, rl.window)
		return nil
	})
	if err != nil {
		return false, err
	}

	return incr.Val() <= int64(rl.max), nil
}

// RateLimit applies rl per client IP. Redis errors let the request through.
func RateLimit(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if rl == nil || rl.rdb == nil || rl.max <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := rl.Allow(r.Context(), "ip:"+clientIP(r))
			if err != nil {
				rl.log.Warn("Rate limiter unavailable", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				observability.RateLimitExceeded.Inc()
				w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
				utils.ResponseTooManyRequests(w, "Too many requests, please try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
