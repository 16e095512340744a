package profile

import (
	"github.com/gofiber/fiber/v2"

	"github.com/e-ration/eration/internal/entitlement"
	"github.com/e-ration/eration/internal/metrics"
	"github.com/e-ration/eration/internal/middleware"
)

// Handler exposes the profile of the calling device.
type Handler struct {
	registry *Registry
	metrics  *metrics.Metrics
}

func NewHandler(registry *Registry, m *metrics.Metrics) *Handler {
	return &Handler{registry: registry, metrics: m}
}

type profileResponse struct {
	Profile     Profile                 `json:"profile"`
	Active      Identity                `json:"active"`
	Entitlement entitlement.Entitlement `json:"entitlement"`
}

func (h *Handler) store(c *fiber.Ctx) *Store {
	return h.registry.For(middleware.DeviceID(c))
}

// Get returns the profile with its active identity and entitlement.
func (h *Handler) Get(c *fiber.Ctx) error {
	p, ok := h.store(c).Profile(c.UserContext())
	if !ok {
		return ErrNoActiveSession
	}
	active := p.Active()
	return c.JSON(profileResponse{Profile: p, Active: active, Entitlement: entitlementOf(active)})
}

// UpdateActive edits the active identity's name and address.
func (h *Handler) UpdateActive(c *fiber.Ctx) error {
	var req struct {
		DisplayName   string `json:"display_name"`
		PostalAddress string `json:"postal_address"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	s := h.store(c)
	active, err := s.Active(c.UserContext())
	if err != nil {
		return err
	}
	updated, err := s.UpdateDetails(c.UserContext(), active.ID, req.DisplayName, req.PostalAddress)
	if err != nil {
		return err
	}
	h.metrics.ObserveProfileMutation("update_details")
	return c.JSON(updated)
}

// Switch makes another member active.
func (h *Handler) Switch(c *fiber.Ctx) error {
	var req struct {
		IdentityID string `json:"identity_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	res, err := h.store(c).SwitchActive(c.UserContext(), req.IdentityID)
	if err != nil {
		return err
	}
	h.metrics.ObserveProfileMutation("switch")
	return c.JSON(res)
}

// Remove unlinks an identity.
func (h *Handler) Remove(c *fiber.Ctx) error {
	res, err := h.store(c).RemoveIdentity(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	h.metrics.ObserveProfileMutation("remove")
	return c.JSON(res)
}
