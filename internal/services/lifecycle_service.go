package services

import (
	"fmt"

	"github.com/google/uuid"

	"swiftkart/internal/domain"
	"swiftkart/internal/repos"
)

// CourierGateway is the shipping collaborator. Both calls are best-effort:
// a failure never rolls back the order status that triggered it.
type CourierGateway interface {
	CreateShipment(o domain.Order, items []domain.OrderItem) (awb, courierName string, err error)
	CancelShipment(awb string) error
}

// Notifier informs buyers of lifecycle events. Failures must never fail the
// lifecycle operation itself.
type Notifier interface {
	OrderCancelled(o domain.Order, reason string) error
	ReturnRequested(rr domain.ReturnRequest) error
}

type LifecycleService struct {
	Orders        *repos.OrderRepo
	Products      *repos.ProductRepo
	Cancellations *repos.CancellationRepo
	Courier       CourierGateway
	Notify        Notifier
}

func NewLifecycleService(orders *repos.OrderRepo, products *repos.ProductRepo,
	cancels *repos.CancellationRepo, courier CourierGateway, notify Notifier) *LifecycleService {
	return &LifecycleService{Orders: orders, Products: products, Cancellations: cancels, Courier: courier, Notify: notify}
}

type CancelResult struct {
	RefundAmount      float64 `json:"refund_amount"`
	ShipmentCancelled bool    `json:"shipment_cancelled"`
	NotifyFailed      bool    `json:"-"`
}

// Cancel transitions a cancellable order to cancelled, restores stock for
// every line, and appends the audit record. Courier and notification calls
// are advisory; their failures are reported in the result, not as errors.
func (s *LifecycleService) Cancel(orderID string, actor domain.Principal, reason string) (CancelResult, error) {
	o, items, err := s.Orders.Get(orderID)
	if err != nil {
		return CancelResult{}, err
	}
	if !actor.IsAdmin() && o.UserID != actor.ID {
		return CancelResult{}, domain.ErrNotOwner
	}
	if !domain.Cancellable(o.Status) {
		return CancelResult{}, fmt.Errorf("%w: cannot cancel from %q", domain.ErrInvalidStateTransition, o.Status)
	}

	if err := s.Orders.UpdateStatus(orderID, domain.StatusCancelled); err != nil {
		return CancelResult{}, err
	}
	if err := s.Orders.AppendTracking(orderID, domain.StatusCancelled, reason, actor.ID); err != nil {
		return CancelResult{}, err
	}

	// Restore stock line by line; a product deleted since purchase is
	// skipped silently.
	for _, it := range items {
		if _, err := s.Products.IncrementStock(it.ProductID, it.Qty); err != nil {
			return CancelResult{}, err
		}
	}

	res := CancelResult{RefundAmount: o.GrandTotal}

	if s.Courier != nil && o.TrackingNumber != "" {
		if err := s.Courier.CancelShipment(o.TrackingNumber); err == nil {
			res.ShipmentCancelled = true
		}
	}

	if err := s.Cancellations.Insert(domain.OrderCancellation{
		ID:                uuid.NewString(),
		OrderID:           orderID,
		Reason:            reason,
		CancelledBy:       actor.ID,
		RefundAmount:      o.GrandTotal,
		RefundStatus:      domain.PaymentPending,
		ShipmentCancelled: res.ShipmentCancelled,
	}); err != nil {
		return CancelResult{}, err
	}

	if s.Notify != nil {
		if err := s.Notify.OrderCancelled(o, reason); err != nil {
			res.NotifyFailed = true
		}
	}

	return res, nil
}

type StatusResult struct {
	Status         string `json:"status"`
	TrackingNumber string `json:"tracking_number,omitempty"`
	CourierName    string `json:"courier_name,omitempty"`
	CourierFailed  bool   `json:"-"`
}

// UpdateStatus moves an order to any known status without validating the
// forward progression (pending straight to delivered is allowed; admins use
// it as a manual override). Cancellation must go through Cancel so the
// stock-restore and audit path cannot be bypassed.
func (s *LifecycleService) UpdateStatus(orderID, status string, actor domain.Principal, note string) (StatusResult, error) {
	if !domain.KnownStatus(status) {
		return StatusResult{}, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}
	if status == domain.StatusCancelled {
		return StatusResult{}, fmt.Errorf("%w: use the cancel operation", domain.ErrInvalidStateTransition)
	}

	o, items, err := s.Orders.Get(orderID)
	if err != nil {
		return StatusResult{}, err
	}

	if err := s.Orders.UpdateStatus(orderID, status); err != nil {
		return StatusResult{}, err
	}
	if err := s.Orders.AppendTracking(orderID, status, note, actor.ID); err != nil {
		return StatusResult{}, err
	}

	res := StatusResult{Status: status}

	// Shipping creates the courier shipment; the order stays shipped even
	// when the courier call fails.
	if status == domain.StatusShipped && s.Courier != nil && o.TrackingNumber == "" {
		awb, name, err := s.Courier.CreateShipment(o, items)
		if err != nil {
			res.CourierFailed = true
		} else {
			if err := s.Orders.SetShipment(orderID, name, awb); err != nil {
				return StatusResult{}, err
			}
			res.TrackingNumber = awb
			res.CourierName = name
		}
	}

	return res, nil
}
