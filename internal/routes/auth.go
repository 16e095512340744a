package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/e-ration/eration/internal/auth"
	"github.com/e-ration/eration/internal/device"
	"github.com/e-ration/eration/internal/middleware"
)

// RegisterAuthRoutes wires the OTP login endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, devices *device.Manager, session, optionalSession, rateLimiter fiber.Handler) {
	group := r.Group("/auth")
	group.Post("/lookup", h.Lookup)
	if rateLimiter != nil {
		group.Post("/otp", rateLimiter, h.RequestOTP)
	} else {
		group.Post("/otp", h.RequestOTP)
	}
	group.Post("/verify", optionalSession, h.Verify)
	group.Post("/logout", session, func(c *fiber.Ctx) error {
		if err := h.Logout(c); err != nil {
			return err
		}
		devices.Forget(middleware.DeviceID(c))
		return nil
	})
}
