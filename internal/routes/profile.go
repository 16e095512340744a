package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/e-ration/eration/internal/auth"
	"github.com/e-ration/eration/internal/profile"
)

// RegisterProfileRoutes wires the multi-identity profile endpoints.
func RegisterProfileRoutes(r fiber.Router, h *profile.Handler, authHandler *auth.Handler) {
	group := r.Group("/profile")
	group.Get("/", h.Get)
	group.Patch("/active", h.UpdateActive)
	group.Post("/switch", h.Switch)
	group.Post("/identities", authHandler.Link)
	group.Delete("/identities/:id", h.Remove)
}
