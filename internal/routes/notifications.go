package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/e-ration/eration/internal/device"
)

// RegisterNotificationRoutes wires the in-app notification feed.
func RegisterNotificationRoutes(r fiber.Router, devices *device.Manager) {
	group := r.Group("/notifications")

	group.Get("/", func(c *fiber.Ctx) error {
		feed := workspace(c, devices).Notifications
		return c.JSON(fiber.Map{
			"notifications": feed.List(c.UserContext()),
			"unread":        feed.UnreadCount(c.UserContext()),
		})
	})

	group.Post("/read-all", func(c *fiber.Ctx) error {
		if err := workspace(c, devices).Notifications.MarkAllRead(c.UserContext()); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	group.Post("/:id/read", func(c *fiber.Ctx) error {
		if err := workspace(c, devices).Notifications.MarkRead(c.UserContext(), c.Params("id")); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
