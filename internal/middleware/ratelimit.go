package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fruitctl/fruitctl/internal/apperr"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimitMiddleware is a fixed-window limiter per client ip shared through Redis.
func RateLimitMiddleware(rdb *redis.Client, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := fmt.Sprintf("rl:%s", c.IP())

		ctx := context.Background()
		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			return c.Next() // fail open
		}

		if count == 1 {
			rdb.Expire(ctx, key, window)
		}

		if count > int64(limit) {
			return apperr.RateLimited()
		}

		return c.Next()
	}
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// LocalRateLimitMiddleware is a token bucket per client ip held in process.
// Used when Redis is not configured.
func LocalRateLimitMiddleware(ctx context.Context, perMinute int) fiber.Handler {
	var (
		mu      sync.Mutex
		buckets = make(map[string]*bucket)
		ttl     = 5 * time.Minute
	)

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				mu.Lock()
				for ip, b := range buckets {
					if now.Sub(b.seen) > ttl {
						delete(buckets, ip)
					}
				}
				mu.Unlock()
			}
		}
	}()

	every := rate.Every(time.Minute / time.Duration(max(perMinute, 1)))
	return func(c *fiber.Ctx) error {
		ip := c.IP()
		mu.Lock()
		b, ok := buckets[ip]
		if !ok {
			b = &bucket{lim: rate.NewLimiter(every, max(perMinute, 1))}
			buckets[ip] = b
		}
		b.seen = time.Now()
		allowed := b.lim.Allow()
		mu.Unlock()

		if !allowed {
			return apperr.RateLimited()
		}
		return c.Next()
	}
}
