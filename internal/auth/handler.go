package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/e-ration/eration/internal/middleware"
)

// Handler exposes the login endpoints.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type phoneRequest struct {
	Phone string `json:"phone"`
}

type verifyRequest struct {
	Phone         string `json:"phone"`
	Code          string `json:"code"`
	TransactionID string `json:"transaction_id"`
}

type linkRequest struct {
	NationalID string `json:"national_id"`
	Code       string `json:"code"`
}

// Lookup previews the identity linked to a phone.
func (h *Handler) Lookup(c *fiber.Ctx) error {
	var req phoneRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	preview, err := h.svc.Lookup(c.UserContext(), req.Phone)
	if err != nil {
		return err
	}
	return c.JSON(preview)
}

// RequestOTP issues a login challenge.
func (h *Handler) RequestOTP(c *fiber.Ctx) error {
	var req phoneRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	ch, err := h.svc.StartLogin(c.UserContext(), req.Phone)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(ch)
}

// Verify completes the login and returns a session token. A caller already
// holding a session logs into the same device; anyone else gets a new one.
func (h *Handler) Verify(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	session, err := h.svc.CompleteLogin(c.UserContext(), CompleteInput{
		DeviceID:      middleware.DeviceID(c),
		Phone:         req.Phone,
		Code:          req.Code,
		TransactionID: req.TransactionID,
	})
	if err != nil {
		return err
	}
	return c.JSON(session)
}

// Link adds another national ID to the caller's profile.
func (h *Handler) Link(c *fiber.Ctx) error {
	var req linkRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	id, err := h.svc.AddLinked(c.UserContext(), middleware.DeviceID(c), req.NationalID, req.Code)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(id)
}

// Logout clears the caller's device.
func (h *Handler) Logout(c *fiber.Ctx) error {
	if err := h.svc.Logout(c.UserContext(), middleware.DeviceID(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "logged_out"})
}
