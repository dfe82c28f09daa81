package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"carmarket/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy defines the behavior when Redis is unavailable.
type FailPolicy int

const (
	// FailOpen lets the request through.
	FailOpen FailPolicy = iota
	// FailClosed answers 503.
	FailClosed
)

var errNoRedis = errors.New("redis client is nil")

// CheckRateLimit counts one hit of id against resource in a fixed window and
// reports whether it is still within limit. Limits are not enforced when
// APP_ENV is test or development.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	switch os.Getenv("APP_ENV") {
	case "", "test", "development":
		return true, nil
	}
	if rdb == nil {
		return false, errNoRedis
	}

	key := fmt.Sprintf("rl:%s:%s", resource, id)
	cnt, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if cnt == 1 {
		rdb.Expire(ctx, key, window)
	}
	return cnt <= int64(limit), nil
}

// RateLimit enforces limit requests per window, keyed by the authenticated
// user when known and by remote IP otherwise. Redis failures fail open.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, name string) fiber.Handler {
	return RateLimitWithPolicy(rdb, limit, window, FailOpen, name)
}

// RateLimitWithPolicy is RateLimit with an explicit failure policy.
func RateLimitWithPolicy(rdb *redis.Client, limit int, window time.Duration, policy FailPolicy, name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := "ip:" + c.IP()
		if uid, ok := c.Locals(LocalUserID).(string); ok {
			id = "user:" + uid
		}

		allowed, err := CheckRateLimit(c.UserContext(), rdb, name, id, limit, window)
		if err != nil {
			if policy == FailClosed {
				observability.Logger.WarnContext(c.UserContext(), "rate limit unavailable, failing closed",
					slog.String("resource", name),
					slog.String("error", err.Error()),
				)
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"error": "rate limit unavailable",
				})
			}
			return c.Next()
		}
		if !allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded",
			})
		}
		return c.Next()
	}
}
