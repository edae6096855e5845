package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"swiftkart/internal/domain"
	applog "swiftkart/internal/log"
	"swiftkart/internal/services"
)

// fail maps lifecycle error kinds onto HTTP statuses and logs the denial.
// Internal errors get a friendly body with no detail leakage.
func fail(c *fiber.Ctx, action string, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		applog.Error(c, action, err, nil)
		return c.Status(status).JSON(fiber.Map{"error": "something went wrong, please try again"})
	}
	applog.Security(c, action, map[string]any{"error": err.Error()})
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrReturnNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrNotOwner):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrOrderNotDelivered):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidStateTransition):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrBadCreds):
		return fiber.StatusUnauthorized
	}
	return fiber.StatusInternalServerError
}

// principalFrom returns the typed principal the auth middleware attached,
// or nil for anonymous requests.
func principalFrom(c *fiber.Ctx) *domain.Principal {
	u, ok := c.Locals("user").(*domain.User)
	if !ok || u == nil {
		return nil
	}
	p := u.Principal()
	return &p
}
