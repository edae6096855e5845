package repos

import (
	"github.com/jmoiron/sqlx"

	"swiftkart/internal/domain"
)

type CancellationRepo struct{ db *sqlx.DB }

func NewCancellationRepo(db *sqlx.DB) *CancellationRepo { return &CancellationRepo{db: db} }

// Insert appends a cancellation audit record; rows are never updated.
func (r *CancellationRepo) Insert(c domain.OrderCancellation) error {
	_, err := r.db.Exec(`
	  INSERT INTO order_cancellations
	    (id, order_id, reason, cancelled_by, refund_amount, refund_status, shipment_cancelled, created_at)
	  VALUES(?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
	`, c.ID, c.OrderID, c.Reason, c.CancelledBy, c.RefundAmount, c.RefundStatus, c.ShipmentCancelled)
	return err
}

func (r *CancellationRepo) ByOrder(orderID string) ([]domain.OrderCancellation, error) {
	var out []domain.OrderCancellation
	err := r.db.Select(&out, `
		SELECT id, order_id, reason, cancelled_by, refund_amount, refund_status,
		       shipment_cancelled, created_at
		FROM order_cancellations
		WHERE order_id = ?
		ORDER BY datetime(created_at)
	`, orderID)
	return out, err
}
