package handlers

import (
	"github.com/gofiber/fiber/v2"

	"swiftkart/internal/domain"
	applog "swiftkart/internal/log"
	"swiftkart/internal/repos"
	"swiftkart/internal/services"
	"swiftkart/internal/validate"
)

type OrderHandler struct {
	Order     *services.OrderService
	Lifecycle *services.LifecycleService
	Orders    *repos.OrderRepo
	Settings  *repos.SettingsRepo
}

type placeOrderReq struct {
	Items           []services.OrderLine `json:"items"`
	ShippingAddress string               `json:"shipping_address"`
	PaymentMethod   string               `json:"payment_method"`
	DiscountPct     float64              `json:"discount_pct"`
	DiscountFlat    float64              `json:"discount_flat"`
	ApplyGST        *bool                `json:"apply_gst"` // nil = store default
	IsOffline       bool                 `json:"is_offline"`
}

// Place creates an order for the logged-in buyer, or a guest order when no
// session is present. Offline sales are admin-recorded.
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	var req placeOrderReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	addr, ok := validate.Address(req.ShippingAddress)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "shipping_address"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "shipping address must be 10-500 characters"})
	}
	pay, ok := validate.PaymentMethod(req.PaymentMethod)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "payment_method"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payment method"})
	}
	if !validate.Pct(req.DiscountPct) || req.DiscountFlat < 0 {
		applog.Security(c, "validation.fail", map[string]any{"field": "discount"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid discount"})
	}

	buyer := principalFrom(c)
	if req.IsOffline && (buyer == nil || !buyer.IsAdmin()) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "offline sales are admin only"})
	}

	settings, err := h.Settings.Load()
	if err != nil {
		return fail(c, "order.place.settings", err)
	}
	applyGST := settings.GSTByDefault
	if req.ApplyGST != nil {
		applyGST = *req.ApplyGST
	}

	in := services.PlaceInput{
		Buyer:           buyer,
		Lines:           req.Items,
		ShippingAddress: addr,
		PaymentMethod:   pay,
		DiscountPct:     req.DiscountPct,
		DiscountFlat:    req.DiscountFlat,
		ApplyGST:        applyGST,
		IsOffline:       req.IsOffline,
	}
	if req.IsOffline {
		in.Buyer = nil // offline sales carry no buyer account
	}

	o, items, err := h.Order.Place(in)
	if err != nil {
		return fail(c, "order.place.fail", err)
	}

	applog.Audit(c, "order.place", map[string]any{
		"order_id":     o.ID,
		"order_number": o.OrderNumber,
		"grand_total":  o.GrandTotal,
		"lines":        len(items),
	})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"order": o, "items": items})
}

func (h *OrderHandler) View(c *fiber.Ctx) error {
	oid, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}

	o, items, err := h.Orders.Get(oid)
	if err != nil {
		return fail(c, "order.view", err)
	}

	// Owner or admin; deny with 404 so order ids cannot be probed.
	p := principalFrom(c)
	if p == nil || (!p.IsAdmin() && p.ID != o.UserID) {
		applog.Security(c, "access.denied.order", map[string]any{"order_id": oid})
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
	}

	tracking, err := h.Orders.Tracking(oid)
	if err != nil {
		return fail(c, "order.view.tracking", err)
	}
	return c.JSON(fiber.Map{"order": o, "items": items, "tracking_history": tracking})
}

// History lists orders for the current logged-in user.
func (h *OrderHandler) History(c *fiber.Ctx) error {
	p := principalFrom(c)
	if p == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "login required"})
	}
	orders, err := h.Orders.ListByUser(p.ID)
	if err != nil {
		return fail(c, "orders.history.fail", err)
	}
	return c.JSON(fiber.Map{"orders": orders})
}

type cancelReq struct {
	Reason string `json:"reason"`
}

func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	oid, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}
	var req cancelReq
	_ = c.BodyParser(&req)
	reason, ok := validate.Reason(req.Reason)
	if !ok {
		reason = "cancelled by customer"
	}

	p := principalFrom(c)
	if p == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "login required"})
	}

	res, err := h.Lifecycle.Cancel(oid, *p, reason)
	if err != nil {
		return fail(c, "order.cancel.fail", err)
	}
	if res.NotifyFailed {
		applog.Error(c, "order.cancel.notify", nil, map[string]any{"order_id": oid})
	}
	applog.Audit(c, "order.cancel", map[string]any{
		"order_id":           oid,
		"refund_amount":      res.RefundAmount,
		"shipment_cancelled": res.ShipmentCancelled,
	})
	return c.JSON(fiber.Map{"status": domain.StatusCancelled, "refund_amount": res.RefundAmount, "shipment_cancelled": res.ShipmentCancelled})
}
