package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	deviceIDLocal = "device_id"
	bearerPrefix  = "bearer "
)

// Authenticator resolves a bearer token to the device that owns it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

// Session rejects requests without a valid device session token.
func Session(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}
		return bindDevice(c, auth)
	}
}

// OptionalSession lets anonymous requests through with no device bound. A
// supplied Authorization header must still carry a valid session token.
func OptionalSession(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "" {
			return c.Next()
		}
		return bindDevice(c, auth)
	}
}

func bindDevice(c *fiber.Ctx, auth Authenticator) error {
	authz := c.Get(fiber.HeaderAuthorization)
	if len(authz) < len(bearerPrefix) || !strings.EqualFold(authz[:len(bearerPrefix)], bearerPrefix) {
		return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
	}
	token := strings.TrimSpace(authz[len(bearerPrefix):])
	deviceID, err := auth.Authenticate(c.UserContext(), token)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	}
	c.Locals(deviceIDLocal, deviceID)
	return c.Next()
}

// DeviceID returns the device bound by Session or OptionalSession, or "" for
// anonymous requests.
func DeviceID(c *fiber.Ctx) string {
	id, _ := c.Locals(deviceIDLocal).(string)
	return id
}
