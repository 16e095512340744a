package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/e-ration/eration/internal/device"
	"github.com/e-ration/eration/internal/entitlement"
)

// RegisterInternetRoutes wires the premium internet access panel.
func RegisterInternetRoutes(r fiber.Router, devices *device.Manager) {
	group := r.Group("/internet")

	group.Get("/", func(c *fiber.Ctx) error {
		ws := workspace(c, devices)
		active, err := ws.Profile.Active(c.UserContext())
		if err != nil {
			return err
		}
		ent := entitlement.ForTier(active.Tier)
		return c.JSON(fiber.Map{
			"entitlement": ent,
			"usage":       ws.Internet.Usage(c.UserContext(), active.NationalID, ent),
		})
	})

	group.Post("/", func(c *fiber.Ctx) error {
		ws := workspace(c, devices)
		active, err := ws.Profile.Active(c.UserContext())
		if err != nil {
			return err
		}
		if err := ws.Internet.Enable(c.UserContext(), active.NationalID, entitlement.ForTier(active.Tier)); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"enabled": true})
	})

	group.Delete("/", func(c *fiber.Ctx) error {
		ws := workspace(c, devices)
		active, err := ws.Profile.Active(c.UserContext())
		if err != nil {
			return err
		}
		if err := ws.Internet.Disable(c.UserContext(), active.NationalID); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"enabled": false})
	})
}
