package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"swiftkart/internal/domain"
	"swiftkart/internal/repos"
)

type ReturnService struct {
	Orders   *repos.OrderRepo
	Returns  *repos.ReturnRepo
	Products *repos.ProductRepo
	Notify   Notifier
}

func NewReturnService(orders *repos.OrderRepo, returns *repos.ReturnRepo, products *repos.ProductRepo, notify Notifier) *ReturnService {
	return &ReturnService{Orders: orders, Returns: returns, Products: products, Notify: notify}
}

type Eligibility struct {
	CanReturn bool   `json:"can_return"`
	Reason    string `json:"reason,omitempty"`
}

// CheckEligibility is a query, not a mutation: an ineligible order yields a
// descriptive reason, never an error. Eligible iff delivered and within the
// return window since the last update (exactly at the boundary still counts).
func (s *ReturnService) CheckEligibility(orderID string) (Eligibility, error) {
	o, _, err := s.Orders.Get(orderID)
	if err != nil {
		return Eligibility{}, err
	}
	if o.Status != domain.StatusDelivered {
		return Eligibility{Reason: fmt.Sprintf("order is %s, not delivered", o.Status)}, nil
	}
	updated, err := parseDBTime(o.UpdatedAt)
	if err != nil {
		return Eligibility{}, err
	}
	if time.Since(updated) > domain.ReturnWindow {
		return Eligibility{Reason: "return window of 5 days has passed"}, nil
	}
	return Eligibility{CanReturn: true}, nil
}

// ReturnLine is one requested (product, quantity) pair of a return.
type ReturnLine struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

type CreateReturnInput struct {
	OrderID      string
	Caller       domain.Principal
	Lines        []ReturnLine
	Reason       string
	ReturnType   string
	RefundMethod string
	Evidence     []string // attachment URLs; uploads happen elsewhere
}

// CreateReturn computes the refund from the order's frozen line prices and
// persists a pending request. Stock is NOT restored here; that decision
// belongs to the admin review.
func (s *ReturnService) CreateReturn(in CreateReturnInput) (domain.ReturnRequest, error) {
	if len(in.Lines) == 0 {
		return domain.ReturnRequest{}, fmt.Errorf("%w: no items to return", domain.ErrValidation)
	}

	o, items, err := s.Orders.Get(in.OrderID)
	if err != nil {
		return domain.ReturnRequest{}, err
	}
	if o.UserID == "" || o.UserID != in.Caller.ID {
		return domain.ReturnRequest{}, domain.ErrNotOwner
	}
	if o.Status != domain.StatusDelivered {
		return domain.ReturnRequest{}, domain.ErrOrderNotDelivered
	}

	var (
		refund   float64
		retItems []domain.ReturnItem
	)
	for _, ln := range in.Lines {
		if ln.Qty < 1 {
			return domain.ReturnRequest{}, fmt.Errorf("%w: qty must be >= 1 for %s", domain.ErrValidation, ln.ProductID)
		}
		// First matching order line wins, in source order.
		var matched *domain.OrderItem
		for i := range items {
			if items[i].ProductID == ln.ProductID {
				matched = &items[i]
				break
			}
		}
		if matched == nil {
			return domain.ReturnRequest{}, fmt.Errorf("%w: %s not in order", domain.ErrProductNotFound, ln.ProductID)
		}
		refund += matched.UnitPrice * float64(ln.Qty)
		retItems = append(retItems, domain.ReturnItem{
			ProductID: ln.ProductID,
			Qty:       ln.Qty,
			UnitPrice: matched.UnitPrice,
		})
	}

	evidence, _ := json.Marshal(in.Evidence)
	rr := domain.ReturnRequest{
		ID:           uuid.NewString(),
		OrderID:      in.OrderID,
		UserID:       in.Caller.ID,
		Reason:       in.Reason,
		ReturnType:   in.ReturnType,
		RefundMethod: in.RefundMethod,
		RefundAmount: refund,
		Status:       domain.ReturnPending,
		EvidenceJSON: string(evidence),
	}
	if err := s.Returns.CreateWithItems(rr, retItems); err != nil {
		return domain.ReturnRequest{}, err
	}

	if s.Notify != nil {
		_ = s.Notify.ReturnRequested(rr) // best-effort
	}

	return rr, nil
}

// Review approves or rejects a pending return. Approval may restore stock
// and moves the order to its returned terminal state.
func (s *ReturnService) Review(returnID string, approve, restock bool, actor domain.Principal) (domain.ReturnRequest, error) {
	rr, items, err := s.Returns.Get(returnID)
	if err != nil {
		return domain.ReturnRequest{}, err
	}
	if rr.Status != domain.ReturnPending {
		return domain.ReturnRequest{}, fmt.Errorf("%w: return already %s", domain.ErrInvalidStateTransition, rr.Status)
	}

	status := domain.ReturnRejected
	if approve {
		status = domain.ReturnApproved
	}
	if err := s.Returns.UpdateStatus(returnID, status); err != nil {
		return domain.ReturnRequest{}, err
	}
	rr.Status = status

	if approve {
		if restock {
			for _, it := range items {
				if _, err := s.Products.IncrementStock(it.ProductID, it.Qty); err != nil {
					return domain.ReturnRequest{}, err
				}
			}
		}
		if err := s.Orders.UpdateStatus(rr.OrderID, domain.StatusReturned); err != nil {
			return domain.ReturnRequest{}, err
		}
		if err := s.Orders.AppendTracking(rr.OrderID, domain.StatusReturned, "return approved", actor.ID); err != nil {
			return domain.ReturnRequest{}, err
		}
	}

	return rr, nil
}

// parseDBTime accepts both RFC3339 and SQLite's CURRENT_TIMESTAMP format.
func parseDBTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", s)
}
