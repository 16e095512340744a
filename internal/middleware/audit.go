package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Audit emits one structured log line per request. Errors are rendered through
// the app's ErrorHandler first so the logged status is the one sent.
func Audit(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		chainErr := c.Next()
		if chainErr != nil {
			if err := c.App().Config().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
		}
		if id := RequestIDFrom(c); id != "" {
			fields = append(fields, zap.String("request_id", id))
		}
		if device := DeviceID(c); device != "" {
			fields = append(fields, zap.String("device_id", device))
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			logger.Error("request completed", append(fields, zap.Error(chainErr))...)
		case chainErr != nil:
			logger.Info("request completed", append(fields, zap.String("error", chainErr.Error()))...)
		default:
			logger.Info("request completed", fields...)
		}
		return nil
	}
}
