// Package apperror translates domain errors into HTTP responses.
package apperror

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/e-ration/eration/internal/application"
	"github.com/e-ration/eration/internal/auth"
	"github.com/e-ration/eration/internal/directory"
	"github.com/e-ration/eration/internal/entitlement"
	"github.com/e-ration/eration/internal/notification"
	"github.com/e-ration/eration/internal/otp"
	"github.com/e-ration/eration/internal/profile"
	"github.com/e-ration/eration/internal/rationcard"
	"github.com/e-ration/eration/internal/storage"
)

type mapping struct {
	target error
	status int
}

var table = []mapping{
	{directory.ErrNotFound, fiber.StatusNotFound},

	{otp.ErrInvalidInput, fiber.StatusBadRequest},
	{otp.ErrNoPendingChallenge, fiber.StatusConflict},
	{otp.ErrCodeMismatch, fiber.StatusUnauthorized},
	{otp.ErrTooManyAttempts, fiber.StatusTooManyRequests},

	{profile.ErrNoActiveSession, fiber.StatusUnauthorized},
	{profile.ErrUnknownIdentity, fiber.StatusNotFound},
	{profile.ErrDuplicateIdentity, fiber.StatusConflict},
	{profile.ErrCannotRemovePrimary, fiber.StatusConflict},
	{profile.ErrInvalidInput, fiber.StatusBadRequest},
	{profile.ErrNotActiveIdentity, fiber.StatusForbidden},

	{auth.ErrTokenExpired, fiber.StatusUnauthorized},
	{auth.ErrTokenInvalid, fiber.StatusUnauthorized},

	{entitlement.ErrNotEntitled, fiber.StatusForbidden},

	{rationcard.ErrNotFound, fiber.StatusNotFound},
	{rationcard.ErrMemberNotFound, fiber.StatusNotFound},
	{rationcard.ErrDuplicateMember, fiber.StatusConflict},
	{rationcard.ErrCannotRemoveHead, fiber.StatusConflict},
	{rationcard.ErrInvalidMember, fiber.StatusBadRequest},
	{rationcard.ErrInvalidCard, fiber.StatusBadRequest},

	{application.ErrNotFound, fiber.StatusNotFound},
	{application.ErrInvalidStatus, fiber.StatusBadRequest},
	{application.ErrInvalidType, fiber.StatusBadRequest},

	{notification.ErrNotFound, fiber.StatusNotFound},

	{storage.ErrPersistence, fiber.StatusServiceUnavailable},
}

// Status returns the HTTP status and client message for err.
func Status(err error) (int, string) {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fe.Message
	}
	for _, m := range table {
		if errors.Is(err, m.target) {
			if m.status == fiber.StatusServiceUnavailable {
				return m.status, "service temporarily unavailable"
			}
			return m.status, m.target.Error()
		}
	}
	return fiber.StatusInternalServerError, "internal server error"
}

// From converts err into a *fiber.Error.
func From(err error) error {
	if err == nil {
		return nil
	}
	status, msg := Status(err)
	return fiber.NewError(status, msg)
}

// Handler is the fiber ErrorHandler writing {"error": message}.
func Handler(c *fiber.Ctx, err error) error {
	status, msg := Status(err)
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
