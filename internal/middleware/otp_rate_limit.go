package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/e-ration/eration/internal/directory"
)

const otpRateLimitPrefix = "rl:otp:"

// OTPRateLimit caps OTP requests per phone, or per client IP when the body
// carries no phone, using a fixed one-minute window in Redis. It fails open
// when Redis is unavailable.
func OTPRateLimit(cache *redis.Client, maxPerMin int, logger *zap.Logger) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 5
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}
		var req struct {
			Phone string `json:"phone"`
		}
		_ = c.BodyParser(&req)
		subject := directory.NationalNumber(req.Phone)
		if subject == "" {
			subject = c.IP()
		}

		key := otpRateLimitPrefix + subject
		cnt, err := cache.Incr(c.UserContext(), key).Result()
		if err != nil {
			logger.Warn("otp rate limit unavailable", zap.Error(err))
			return c.Next()
		}
		if cnt == 1 {
			cache.Expire(c.UserContext(), key, time.Minute)
		}
		if cnt > int64(maxPerMin) {
			return fiber.NewError(fiber.StatusTooManyRequests, "too many OTP requests, try again later")
		}
		return c.Next()
	}
}
