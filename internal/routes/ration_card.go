package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/e-ration/eration/internal/device"
	"github.com/e-ration/eration/internal/rationcard"
)

// RegisterRationCardRoutes exposes the active identity's ration card and the
// family member editor.
func RegisterRationCardRoutes(r fiber.Router, devices *device.Manager) {
	group := r.Group("/ration-card")

	group.Get("/", func(c *fiber.Ctx) error {
		ws := workspace(c, devices)
		active, err := ws.Profile.Active(c.UserContext())
		if err != nil {
			return err
		}
		card, err := ws.RationCards.ForNationalID(c.UserContext(), active.NationalID)
		if err != nil {
			return err
		}
		return c.JSON(card)
	})

	group.Post("/members", func(c *fiber.Ctx) error {
		var req rationcard.FamilyMember
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		ws := workspace(c, devices)
		active, err := ws.Profile.Active(c.UserContext())
		if err != nil {
			return err
		}
		member, err := ws.RationCards.AddFamilyMember(c.UserContext(), active.NationalID, req)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(member)
	})

	group.Delete("/members/:id", func(c *fiber.Ctx) error {
		ws := workspace(c, devices)
		active, err := ws.Profile.Active(c.UserContext())
		if err != nil {
			return err
		}
		if err := ws.RationCards.RemoveFamilyMember(c.UserContext(), active.NationalID, c.Params("id")); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
