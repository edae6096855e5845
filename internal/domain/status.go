package domain

import "time"

// Order statuses. Forward progression is not validated (an admin may move an
// order straight from pending to delivered); only cancellation and returns
// enforce preconditions.
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
	StatusReturned   = "returned"
)

const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

const (
	ReturnPending  = "pending"
	ReturnApproved = "approved"
	ReturnRejected = "rejected"
)

// ReturnWindow is how long after delivery a return may be requested.
// Exactly at the boundary is still eligible.
const ReturnWindow = 5 * 24 * time.Hour

var knownStatuses = map[string]bool{
	StatusPending:    true,
	StatusConfirmed:  true,
	StatusProcessing: true,
	StatusShipped:    true,
	StatusDelivered:  true,
	StatusCancelled:  true,
	StatusReturned:   true,
}

var cancellableFrom = map[string]bool{
	StatusPending:    true,
	StatusConfirmed:  true,
	StatusProcessing: true,
}

func KnownStatus(s string) bool { return knownStatuses[s] }

// Cancellable reports whether an order in the given status may still be
// cancelled. Delivered, cancelled and returned are terminal for this path.
func Cancellable(status string) bool { return cancellableFrom[status] }
