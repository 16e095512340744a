package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/e-ration/eration/internal/application"
	"github.com/e-ration/eration/internal/device"
)

// RegisterApplicationRoutes wires service request submission and tracking.
func RegisterApplicationRoutes(r fiber.Router, devices *device.Manager) {
	group := r.Group("/applications")

	group.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(workspace(c, devices).Applications.List(c.UserContext()))
	})

	group.Post("/", func(c *fiber.Ctx) error {
		var req struct {
			Type     string `json:"type"`
			Comments string `json:"comments"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		app, err := workspace(c, devices).Applications.Submit(c.UserContext(), req.Type, req.Comments)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(app)
	})

	group.Patch("/:id", func(c *fiber.Ctx) error {
		var req struct {
			Status   application.Status `json:"status"`
			Comments string             `json:"comments"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		app, err := workspace(c, devices).Applications.UpdateStatus(c.UserContext(), c.Params("id"), req.Status, req.Comments)
		if err != nil {
			return err
		}
		return c.JSON(app)
	})
}
