package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"workshophub/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy defines the behavior when the rate limit store (Redis) is unavailable.
type FailPolicy int

const (
	// FailOpen allows the request to proceed if Redis is unavailable.
	FailOpen FailPolicy = iota
	// FailClosed blocks the request (503 Service Unavailable) if Redis is unavailable.
	FailClosed
)

// Rule is a fixed-window limit for one named resource.
type Rule struct {
	Name     string
	Requests int
	Window   time.Duration
	Policy   FailPolicy
}

// Per-endpoint limits. Password reset endpoints fail closed.
var (
	RegisterRule     = Rule{Name: "register", Requests: 5, Window: 10 * time.Minute}
	LoginRule        = Rule{Name: "login", Requests: 10, Window: 5 * time.Minute}
	ResetRequestRule = Rule{Name: "password_reset_request", Requests: 5, Window: 15 * time.Minute, Policy: FailClosed}
	ResetRule        = Rule{Name: "password_reset", Requests: 10, Window: 15 * time.Minute, Policy: FailClosed}
	EnrollRule       = Rule{Name: "enroll", Requests: 20, Window: time.Minute}
	ReviewRule       = Rule{Name: "create_review", Requests: 10, Window: time.Minute}
)

var errNoRateLimitStore = errors.New("rate limit store unavailable")

// rateLimitDisabled reports whether the current environment skips rate limiting.
// "test" and "development" are never throttled.
func rateLimitDisabled() bool {
	switch os.Getenv("APP_ENV") {
	case "", "test", "development":
		return true
	}
	return false
}

// window is the outcome of counting one request.
type window struct {
	count     int64
	remaining time.Duration
}

// countRequest increments the counter of key, starting its window on the first hit.
func countRequest(ctx context.Context, rdb *redis.Client, key string, period time.Duration) (window, error) {
	if rdb == nil {
		return window{}, errNoRateLimitStore
	}

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, period)
		ttl = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil {
		return window{}, err
	}

	remaining := ttl.Val()
	if remaining <= 0 {
		remaining = period
	}
	return window{count: incr.Val(), remaining: remaining}, nil
}

func rateLimitKey(rule Rule, id string) string {
	return fmt.Sprintf("rl:%s:%s", rule.Name, id)
}

// RateLimit returns a Fiber middleware enforcing rule. Authenticated requests are
// counted per user, anonymous ones per client IP. Rejections carry Retry-After.
func RateLimit(rdb *redis.Client, rule Rule) fiber.Handler {
	return rateLimitHandler(rdb, rule, rateLimitDisabled)
}

func rateLimitHandler(rdb *redis.Client, rule Rule, disabled func() bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if disabled() {
			return c.Next()
		}

		id := "ip:" + c.IP()
		if uid, ok := c.Locals("userID").(uint); ok && uid != 0 {
			id = "user:" + strconv.FormatUint(uint64(uid), 10)
		}

		w, err := countRequest(c.UserContext(), rdb, rateLimitKey(rule, id), rule.Window)
		if err != nil {
			if rule.Policy == FailClosed {
				Logger.WarnContext(c.UserContext(), "rate limit store unavailable, failing closed",
					slog.String("resource", rule.Name),
					slog.String("error", err.Error()),
				)
				return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
					Error: "Service temporarily unavailable, please try again later.",
				})
			}
			return c.Next()
		}

		if w.count > int64(rule.Requests) {
			RateLimited.WithLabelValues(rule.Name).Inc()
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(w.remaining.Round(time.Second).Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
			})
		}
		return c.Next()
	}
}
