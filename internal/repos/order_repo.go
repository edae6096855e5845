package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"swiftkart/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// CreateWithItems persists the order header, its line items and the opening
// tracking event, and decrements stock for every line, all in one
// transaction. The conditional decrement rejects the whole order when any
// line would drive stock negative.
func (r *OrderRepo) CreateWithItems(o domain.Order, items []domain.OrderItem) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, it := range items {
		if err := decrementStock(tx, it.ProductID, it.Qty); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(`
	  INSERT INTO orders
	    (id, order_number, user_id, subtotal, gst_total, discount_amount, grand_total,
	     shipping_address, payment_method, payment_status, status, is_offline,
	     created_at, updated_at)
	  VALUES (?,?,?,?,?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP,CURRENT_TIMESTAMP)
	`, o.ID, o.OrderNumber, o.UserID, o.Subtotal, o.GSTTotal, o.DiscountAmount, o.GrandTotal,
		o.ShippingAddress, o.PaymentMethod, o.PaymentStatus, o.Status, o.IsOffline); err != nil {
		return err
	}

	for i, it := range items {
		if _, err := tx.Exec(`
		  INSERT INTO order_items(order_id, product_id, sku, title, qty, unit_price, gst_amount, line_total, seq)
		  VALUES(?,?,?,?,?,?,?,?,?)
		`, o.ID, it.ProductID, it.SKU, it.Title, it.Qty, it.UnitPrice, it.GSTAmount, it.LineTotal, i); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(`
	  INSERT INTO order_tracking(order_id, status, note, actor) VALUES(?,?,?,?)
	`, o.ID, o.Status, "order placed", o.UserID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *OrderRepo) Get(orderID string) (domain.Order, []domain.OrderItem, error) {
	var o domain.Order
	if err := r.db.Get(&o, `
		SELECT id, order_number, COALESCE(user_id,'') AS user_id, subtotal, gst_total,
		       discount_amount, grand_total, shipping_address, payment_method,
		       payment_status, status, is_offline, courier_name, tracking_number,
		       created_at, updated_at
		FROM orders WHERE id = ?
	`, orderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, nil, domain.ErrOrderNotFound
		}
		return domain.Order{}, nil, err
	}

	var items []domain.OrderItem
	if err := r.db.Select(&items, `
		SELECT order_id, product_id, sku, title, qty, unit_price, gst_amount, line_total
		FROM order_items
		WHERE order_id = ?
		ORDER BY seq
	`, orderID); err != nil {
		return domain.Order{}, nil, err
	}

	return o, items, nil
}

func (r *OrderRepo) Tracking(orderID string) ([]domain.TrackingEvent, error) {
	var out []domain.TrackingEvent
	err := r.db.Select(&out, `
		SELECT order_id, status, note, actor, at
		FROM order_tracking
		WHERE order_id = ?
		ORDER BY rowid
	`, orderID)
	return out, err
}

func (r *OrderRepo) UpdateStatus(orderID, status string) error {
	_, err := r.db.Exec(`
		UPDATE orders SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, status, orderID)
	return err
}

func (r *OrderRepo) AppendTracking(orderID, status, note, actor string) error {
	_, err := r.db.Exec(`
		INSERT INTO order_tracking(order_id, status, note, actor) VALUES(?,?,?,?)
	`, orderID, status, note, actor)
	return err
}

// SetShipment records the courier assignment once a shipment is created.
func (r *OrderRepo) SetShipment(orderID, courierName, awb string) error {
	_, err := r.db.Exec(`
		UPDATE orders SET courier_name = ?, tracking_number = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, courierName, awb, orderID)
	return err
}

func (r *OrderRepo) SetPaymentStatus(orderID, status string) error {
	_, err := r.db.Exec(`
		UPDATE orders SET payment_status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, status, orderID)
	return err
}

// ---------- List summaries ----------

type OrderSummary struct {
	ID          string  `db:"id" json:"id"`
	OrderNumber string  `db:"order_number" json:"order_number"`
	UserID      string  `db:"user_id" json:"user_id,omitempty"`
	GrandTotal  float64 `db:"grand_total" json:"grand_total"`
	Status      string  `db:"status" json:"status"`
	CreatedAt   string  `db:"created_at" json:"created_at"`
}

func (r *OrderRepo) ListLatest(limit int) ([]OrderSummary, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []OrderSummary
	err := r.db.Select(&out, `
		SELECT id, order_number, COALESCE(user_id,'') AS user_id, grand_total, status, created_at
		FROM orders
		ORDER BY datetime(created_at) DESC
		LIMIT ?
	`, limit)
	return out, err
}

func (r *OrderRepo) ListByUser(userID string) ([]OrderSummary, error) {
	var out []OrderSummary
	err := r.db.Select(&out, `
		SELECT id, order_number, COALESCE(user_id,'') AS user_id, grand_total, status, created_at
		FROM orders
		WHERE user_id = ?
		ORDER BY datetime(created_at) DESC
	`, userID)
	return out, err
}
