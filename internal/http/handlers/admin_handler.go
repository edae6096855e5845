package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "swiftkart/internal/log"
	"swiftkart/internal/repos"
	"swiftkart/internal/services"
	"swiftkart/internal/validate"
)

type AdminHandler struct {
	Lifecycle  *services.LifecycleService
	Returns    *services.ReturnService
	ReturnRepo *repos.ReturnRepo
	OrderRepo  *repos.OrderRepo
	Products   *repos.ProductRepo
	Settings   *repos.SettingsRepo
}

// GET /admin/orders
func (h *AdminHandler) Orders(c *fiber.Ctx) error {
	ords, err := h.OrderRepo.ListLatest(100)
	if err != nil {
		return fail(c, "admin.orders.list.fail", err)
	}
	return c.JSON(fiber.Map{"orders": ords})
}

type statusReq struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

// POST /admin/orders/:id/status — permissive forward transition (manual
// override); cancellation is rejected here and must use the cancel flow.
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	oid, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}
	var req statusReq
	if err := c.BodyParser(&req); err != nil || req.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing status"})
	}

	p := principalFrom(c)
	res, err := h.Lifecycle.UpdateStatus(oid, req.Status, *p, req.Note)
	if err != nil {
		return fail(c, "admin.orders.update.fail", err)
	}
	if res.CourierFailed {
		applog.Error(c, "admin.orders.courier", nil, map[string]any{"order_id": oid})
	}
	applog.Audit(c, "admin.orders.update", map[string]any{"order_id": oid, "status": req.Status})
	return c.JSON(res)
}

// GET /admin/inventory
func (h *AdminHandler) Inventory(c *fiber.Ctx) error {
	rows, err := h.Products.ListStock()
	if err != nil {
		return fail(c, "admin.inventory.list.fail", err)
	}
	return c.JSON(fiber.Map{"stock": rows})
}

type stockReq struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

// POST /admin/inventory
func (h *AdminHandler) UpdateInventory(c *fiber.Ctx) error {
	var req stockReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	pid, okID := validate.ID(req.ProductID)
	if !okID || req.Qty < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	if err := h.Products.UpsertStock(pid, req.Qty); err != nil {
		return fail(c, "admin.inventory.save.fail", err)
	}
	applog.Audit(c, "admin.inventory.save", map[string]any{"product": pid, "qty": req.Qty})
	return c.JSON(fiber.Map{"ok": true})
}

// GET /admin/returns
func (h *AdminHandler) ReturnsList(c *fiber.Ctx) error {
	status := c.Query("status")
	rows, err := h.ReturnRepo.ListByStatus(status, 100)
	if err != nil {
		return fail(c, "admin.returns.list.fail", err)
	}
	return c.JSON(fiber.Map{"returns": rows})
}

type reviewReq struct {
	Approve bool `json:"approve"`
	Restock bool `json:"restock"`
}

// POST /admin/returns/:id/review
func (h *AdminHandler) ReviewReturn(c *fiber.Ctx) error {
	rid, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid return id"})
	}
	var req reviewReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	p := principalFrom(c)
	rr, err := h.Returns.Review(rid, req.Approve, req.Restock, *p)
	if err != nil {
		return fail(c, "admin.returns.review.fail", err)
	}
	applog.Audit(c, "admin.returns.review", map[string]any{
		"return_id": rid, "status": rr.Status, "restock": req.Restock,
	})
	return c.JSON(rr)
}

// GET /admin/settings
func (h *AdminHandler) GetSettings(c *fiber.Ctx) error {
	s, err := h.Settings.Load()
	if err != nil {
		return fail(c, "admin.settings.load.fail", err)
	}
	return c.JSON(s)
}

type settingsReq struct {
	StoreName    string `json:"store_name"`
	Currency     string `json:"currency"`
	GSTByDefault bool   `json:"gst_by_default"`
	SupportEmail string `json:"support_email"`
}

// POST /admin/settings
func (h *AdminHandler) SaveSettings(c *fiber.Ctx) error {
	var req settingsReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	name, ok := validate.Name(req.StoreName)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid store name"})
	}
	if req.SupportEmail != "" {
		if _, ok := validate.Email(req.SupportEmail); !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid support email"})
		}
	}

	s, err := h.Settings.Load()
	if err != nil {
		return fail(c, "admin.settings.load.fail", err)
	}
	// Explicit per-field application; no generic key/value patching.
	s.StoreName = name
	s.GSTByDefault = req.GSTByDefault
	s.SupportEmail = req.SupportEmail
	if req.Currency != "" {
		s.Currency = req.Currency
	}
	if err := h.Settings.Save(s); err != nil {
		return fail(c, "admin.settings.save.fail", err)
	}
	applog.Audit(c, "admin.settings.save", map[string]any{"store_name": s.StoreName})
	return c.JSON(s)
}
