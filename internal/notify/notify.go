// Package notify is the outbound email/SMS collaborator boundary. Real
// delivery happens elsewhere; the log sink keeps an auditable trail and can
// never fail a lifecycle operation.
package notify

import (
	"encoding/json"
	"log"

	"swiftkart/internal/domain"
)

// LogNotifier writes notification intents as JSON log lines.
type LogNotifier struct{}

func (LogNotifier) OrderCancelled(o domain.Order, reason string) error {
	emit("order.cancelled", map[string]any{
		"order_number": o.OrderNumber,
		"user_id":      o.UserID,
		"refund":       o.GrandTotal,
		"reason":       reason,
	})
	return nil
}

func (LogNotifier) ReturnRequested(rr domain.ReturnRequest) error {
	emit("return.requested", map[string]any{
		"return_id": rr.ID,
		"order_id":  rr.OrderID,
		"user_id":   rr.UserID,
		"refund":    rr.RefundAmount,
	})
	return nil
}

func emit(event string, fields map[string]any) {
	b, _ := json.Marshal(map[string]any{"notify": event, "fields": fields})
	log.Println(string(b))
}
