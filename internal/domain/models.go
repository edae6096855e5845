package domain

type Category struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	CreatedAt string `db:"created_at" json:"created_at"`
	UpdatedAt string `db:"updated_at" json:"updated_at,omitempty"`
}

type Product struct {
	ID                string  `db:"id" json:"id"`
	CategoryID        string  `db:"category_id" json:"category_id"`
	SKU               string  `db:"sku" json:"sku"`
	Title             string  `db:"title" json:"title"`
	Description       string  `db:"description" json:"description,omitempty"`
	SellingPrice      float64 `db:"selling_price" json:"selling_price"`
	WholesalePrice    float64 `db:"wholesale_price" json:"wholesale_price,omitempty"` // 0 = not offered
	WholesaleMinQty   int     `db:"wholesale_min_qty" json:"wholesale_min_qty,omitempty"`
	CostPrice         float64 `db:"cost_price" json:"-"`
	StockQty          int     `db:"stock_qty" json:"stock_qty"`
	LowStockThreshold int     `db:"low_stock_threshold" json:"low_stock_threshold"`
	GSTRate           float64 `db:"gst_rate" json:"gst_rate"`
	Active            bool    `db:"active" json:"active"`
	CreatedAt         string  `db:"created_at" json:"created_at"`
	UpdatedAt         string  `db:"updated_at" json:"updated_at,omitempty"`
}

type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Qty    int    `json:"qty"`
}

type Order struct {
	ID              string  `db:"id" json:"id"`
	OrderNumber     string  `db:"order_number" json:"order_number"`
	UserID          string  `db:"user_id" json:"user_id,omitempty"` // empty for guest/offline sales
	Subtotal        float64 `db:"subtotal" json:"subtotal"`
	GSTTotal        float64 `db:"gst_total" json:"gst_total"`
	DiscountAmount  float64 `db:"discount_amount" json:"discount_amount"`
	GrandTotal      float64 `db:"grand_total" json:"grand_total"`
	ShippingAddress string  `db:"shipping_address" json:"shipping_address"`
	PaymentMethod   string  `db:"payment_method" json:"payment_method"`
	PaymentStatus   string  `db:"payment_status" json:"payment_status"`
	Status          string  `db:"status" json:"status"`
	IsOffline       bool    `db:"is_offline" json:"is_offline"`
	CourierName     string  `db:"courier_name" json:"courier_name,omitempty"`
	TrackingNumber  string  `db:"tracking_number" json:"tracking_number,omitempty"` // courier AWB
	CreatedAt       string  `db:"created_at" json:"created_at"`
	UpdatedAt       string  `db:"updated_at" json:"updated_at"`
}

// OrderItem carries the price frozen at purchase time; it is never re-read
// from the catalog after the order is placed.
type OrderItem struct {
	OrderID   string  `db:"order_id" json:"-"`
	ProductID string  `db:"product_id" json:"product_id"`
	SKU       string  `db:"sku" json:"sku"`
	Title     string  `db:"title" json:"title"`
	Qty       int     `db:"qty" json:"qty"`
	UnitPrice float64 `db:"unit_price" json:"unit_price"`
	GSTAmount float64 `db:"gst_amount" json:"gst_amount"`
	LineTotal float64 `db:"line_total" json:"line_total"`
}

// TrackingEvent is one entry in an order's append-only tracking history.
type TrackingEvent struct {
	OrderID string `db:"order_id" json:"-"`
	Status  string `db:"status" json:"status"`
	Note    string `db:"note" json:"note,omitempty"`
	Actor   string `db:"actor" json:"actor,omitempty"`
	At      string `db:"at" json:"at"`
}

type ReturnRequest struct {
	ID           string  `db:"id" json:"id"`
	OrderID      string  `db:"order_id" json:"order_id"`
	UserID       string  `db:"user_id" json:"user_id"`
	Reason       string  `db:"reason" json:"reason"`
	ReturnType   string  `db:"return_type" json:"return_type"` // return | exchange
	RefundMethod string  `db:"refund_method" json:"refund_method"`
	RefundAmount float64 `db:"refund_amount" json:"refund_amount"`
	Status       string  `db:"status" json:"status"` // pending | approved | rejected
	EvidenceJSON string  `db:"evidence_json" json:"-"`
	CreatedAt    string  `db:"created_at" json:"created_at"`
}

type ReturnItem struct {
	ReturnID  string  `db:"return_id" json:"-"`
	ProductID string  `db:"product_id" json:"product_id"`
	Qty       int     `db:"qty" json:"qty"`
	UnitPrice float64 `db:"unit_price" json:"unit_price"`
}

// OrderCancellation is an append-only audit record of a cancellation event.
type OrderCancellation struct {
	ID                string  `db:"id" json:"id"`
	OrderID           string  `db:"order_id" json:"order_id"`
	Reason            string  `db:"reason" json:"reason"`
	CancelledBy       string  `db:"cancelled_by" json:"cancelled_by"`
	RefundAmount      float64 `db:"refund_amount" json:"refund_amount"`
	RefundStatus      string  `db:"refund_status" json:"refund_status"`
	ShipmentCancelled bool    `db:"shipment_cancelled" json:"shipment_cancelled"`
	CreatedAt         string  `db:"created_at" json:"created_at"`
}

// Settings is the per-store business configuration. Loaded per request and
// passed as a value, never held as a process-wide singleton.
type Settings struct {
	StoreName    string `db:"store_name" json:"store_name"`
	Currency     string `db:"currency" json:"currency"`
	GSTByDefault bool   `db:"gst_by_default" json:"gst_by_default"`
	SupportEmail string `db:"support_email" json:"support_email"`
}
