package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/oldtraffrod/tiktok-videogenerator/pkg/response"
)

// RateLimiter applies fixed-window per-session limits backed by Redis.
// With a nil client every limit is a no-op, matching the memory-only
// deployment where sessions are single-user anyway.
type RateLimiter struct {
	redis *redis.Client
}

func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{redis: redisClient}
}

// Limit creates a rate limiting middleware
func (rl *RateLimiter) Limit(keyPrefix string, maxRequests int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rl.redis == nil {
			return c.Next()
		}

		sessionID := GetSessionID(c)
		if sessionID == "" {
			return c.Next() // auth middleware rejects these before us
		}

		key := fmt.Sprintf("ratelimit:%s:%s", keyPrefix, sessionID)
		ctx := context.Background()

		// Increment counter
		count, err := rl.redis.Incr(ctx, key).Result()
		if err != nil {
			// If Redis fails, allow the request
			return c.Next()
		}

		// Set expiration on first request
		if count == 1 {
			rl.redis.Expire(ctx, key, window)
		}

		if count > int64(maxRequests) {
			ttl, _ := rl.redis.TTL(ctx, key).Result()
			c.Set("Retry-After", fmt.Sprintf("%d", int(ttl.Seconds())))
			return response.RateLimited(c)
		}

		c.Set("X-RateLimit-Limit", fmt.Sprintf("%d", maxRequests))
		c.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", maxRequests-int(count)))

		return c.Next()
	}
}

// SearchLimit returns a rate limiter for media search (per minute)
func (rl *RateLimiter) SearchLimit(maxPerMin int) fiber.Handler {
	return rl.Limit("search", maxPerMin, time.Minute)
}

// RenderLimit returns a rate limiter for render requests (per hour)
func (rl *RateLimiter) RenderLimit(maxPerHour int) fiber.Handler {
	return rl.Limit("render", maxPerHour, time.Hour)
}
