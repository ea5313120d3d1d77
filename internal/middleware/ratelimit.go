package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrKriegler/go-warranty/pkg/problem"
)

// Limiter decides whether another request for key fits in the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// MemoryLimiter is a fixed-window counter per key, local to one process.
type MemoryLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	counts map[string]windowCount
	clock  func() time.Time
}

type windowCount struct {
	start time.Time
	n     int
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:  limit,
		window: window,
		counts: make(map[string]windowCount),
		clock:  time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := l.clock()
	start := now.Truncate(l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	c := l.counts[key]
	if !c.start.Equal(start) {
		c = windowCount{start: start}
		// drop keys from older windows while we hold the lock
		for k, v := range l.counts {
			if v.start.Before(start) {
				delete(l.counts, k)
			}
		}
	}
	if c.n >= l.limit {
		l.counts[key] = c
		return false, nil
	}
	c.n++
	l.counts[key] = c
	return true, nil
}

// RedisLimiter shares the fixed window across instances with INCR + EXPIRE.
type RedisLimiter struct {
	client goredis.UniversalClient
	limit  int
	window time.Duration
	clock  func() time.Time
}

func NewRedisLimiter(client goredis.UniversalClient, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, window: window, clock: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := l.clock().Truncate(l.window).Unix()
	k := fmt.Sprintf("warranty:ratelimit:%s:%d", key, bucket)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= int64(l.limit), nil
}

// RateLimit rejects clients over the limit with 429. It keys on RemoteAddr,
// so it must run after chi's RealIP middleware. Limiter errors fail open.
func RateLimit(l Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.RemoteAddr
			if host, _, err := net.SplitHostPort(ip); err == nil {
				ip = host
			}

			ok, err := l.Allow(r.Context(), ip)
			if err != nil {
				log.WarnContext(r.Context(), "rate limiter unavailable", "err", err)
				ok = true
			}
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(60))
				problem.Write(w, http.StatusTooManyRequests, "Rate Limit Exceeded",
					"Too many requests. Please try again later.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
