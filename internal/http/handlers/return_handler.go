package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "swiftkart/internal/log"
	"swiftkart/internal/services"
	"swiftkart/internal/validate"
)

type ReturnHandler struct {
	Returns *services.ReturnService
}

// Eligibility is a read-only check; ineligible orders answer 200 with a
// reason, not an error status.
func (h *ReturnHandler) Eligibility(c *fiber.Ctx) error {
	oid, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}
	el, err := h.Returns.CheckEligibility(oid)
	if err != nil {
		return fail(c, "return.eligibility", err)
	}
	return c.JSON(el)
}

type createReturnReq struct {
	Items        []services.ReturnLine `json:"items"`
	Reason       string                `json:"reason"`
	ReturnType   string                `json:"return_type"`
	RefundMethod string                `json:"refund_method"`
	Evidence     []string              `json:"evidence"`
}

func (h *ReturnHandler) Create(c *fiber.Ctx) error {
	oid, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}
	var req createReturnReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	reason, ok := validate.Reason(req.Reason)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "reason"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "reason is required (max 500 chars)"})
	}
	retType, ok := validate.ReturnType(req.ReturnType)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid return type"})
	}
	refundMethod, ok := validate.RefundMethod(req.RefundMethod)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid refund method"})
	}

	p := principalFrom(c)
	if p == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "login required"})
	}

	rr, err := h.Returns.CreateReturn(services.CreateReturnInput{
		OrderID:      oid,
		Caller:       *p,
		Lines:        req.Items,
		Reason:       reason,
		ReturnType:   retType,
		RefundMethod: refundMethod,
		Evidence:     req.Evidence,
	})
	if err != nil {
		return fail(c, "return.create.fail", err)
	}

	applog.Audit(c, "return.create", map[string]any{
		"return_id":     rr.ID,
		"order_id":      oid,
		"refund_amount": rr.RefundAmount,
	})
	return c.Status(fiber.StatusCreated).JSON(rr)
}
