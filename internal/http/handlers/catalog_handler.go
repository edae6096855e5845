package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "swiftkart/internal/log"
	"swiftkart/internal/services"
	"swiftkart/internal/validate"
)

type CatalogHandler struct {
	Catalog *services.CatalogService
}

func (h *CatalogHandler) Categories(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories()
	if err != nil {
		return fail(c, "catalog.categories", err)
	}
	return c.JSON(fiber.Map{"categories": cats})
}

func (h *CatalogHandler) Products(c *fiber.Ctx) error {
	q := strings.ToLower(strings.TrimSpace(c.Query("q")))
	category := strings.TrimSpace(c.Query("category"))
	if category != "" {
		if _, ok := validate.ID(category); !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "category"})
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid category"})
		}
	}
	page := c.QueryInt("page", 1)
	products, err := h.Catalog.ListProducts(q, category, page, 12)
	if err != nil {
		return fail(c, "catalog.products", err)
	}
	return c.JSON(fiber.Map{"products": products, "page": page})
}

func (h *CatalogHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}
	p, err := h.Catalog.GetProduct(id)
	if err != nil {
		return fail(c, "catalog.detail", err)
	}
	return c.JSON(p)
}

func (h *CatalogHandler) Availability(c *fiber.Ctx) error {
	productID := strings.TrimSpace(c.Query("productId"))
	if _, ok := validate.ID(productID); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing or invalid productId"})
	}
	avail, err := h.Catalog.CheckAvailability(productID)
	if err != nil {
		return fail(c, "catalog.availability", err)
	}
	return c.JSON(avail)
}
