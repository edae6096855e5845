package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"swiftkart/internal/domain"
	"swiftkart/internal/repos"
)

// OrderLine is one requested (product, quantity) pair.
type OrderLine struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

// PlaceInput carries everything order creation needs. Buyer is nil for
// guest and offline sales.
type PlaceInput struct {
	Buyer           *domain.Principal
	Lines           []OrderLine
	ShippingAddress string
	PaymentMethod   string
	DiscountPct     float64
	DiscountFlat    float64
	ApplyGST        bool
	IsOffline       bool
}

type OrderService struct {
	Products *repos.ProductRepo
	Orders   *repos.OrderRepo
}

func NewOrderService(products *repos.ProductRepo, orders *repos.OrderRepo) *OrderService {
	return &OrderService{Products: products, Orders: orders}
}

// Place validates the cart against the catalog, freezes per-line prices,
// computes GST and discount, decrements stock and persists the order as one
// unit of work. Line-item prices are never re-read from the catalog after
// this point.
func (s *OrderService) Place(in PlaceInput) (domain.Order, []domain.OrderItem, error) {
	if len(in.Lines) == 0 {
		return domain.Order{}, nil, fmt.Errorf("%w: empty cart", domain.ErrValidation)
	}

	wholesale := in.Buyer != nil && in.Buyer.IsWholesale

	var (
		items    []domain.OrderItem
		subtotal float64
		gstTotal float64
	)
	for _, ln := range in.Lines {
		if ln.Qty < 1 {
			return domain.Order{}, nil, fmt.Errorf("%w: qty must be >= 1 for %s", domain.ErrValidation, ln.ProductID)
		}
		p, err := s.Products.Get(ln.ProductID)
		if err != nil {
			return domain.Order{}, nil, err
		}
		// Delisted products stay visible on old orders but cannot be
		// bought again.
		if !p.Active {
			return domain.Order{}, nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, ln.ProductID)
		}
		if ln.Qty > p.StockQty {
			return domain.Order{}, nil, fmt.Errorf("%w: %s (need %d, have %d)",
				domain.ErrInsufficientStock, p.SKU, ln.Qty, p.StockQty)
		}

		// Wholesale price applies per line, independently across lines.
		unit := p.SellingPrice
		if wholesale && p.WholesalePrice > 0 && ln.Qty >= p.WholesaleMinQty {
			unit = p.WholesalePrice
		}

		lineTotal := unit * float64(ln.Qty)
		lineGST := 0.0
		if in.ApplyGST {
			lineGST = lineTotal * p.GSTRate / 100
		}
		subtotal += lineTotal
		gstTotal += lineGST

		items = append(items, domain.OrderItem{
			ProductID: p.ID,
			SKU:       p.SKU,
			Title:     p.Title,
			Qty:       ln.Qty,
			UnitPrice: unit,
			GSTAmount: lineGST,
			LineTotal: lineTotal,
		})
	}

	// Percentage discount wins when supplied; flat applies otherwise.
	discount := in.DiscountFlat
	if in.DiscountPct > 0 {
		discount = subtotal * in.DiscountPct / 100
	}
	// An over-sized discount may push the grand total negative; that is
	// left to manual admin override rather than clamped here.
	grand := subtotal + gstTotal - discount

	o := domain.Order{
		ID:              uuid.NewString(),
		OrderNumber:     newOrderNumber(),
		Subtotal:        subtotal,
		GSTTotal:        gstTotal,
		DiscountAmount:  discount,
		GrandTotal:      grand,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		PaymentStatus:   domain.PaymentPending,
		Status:          domain.StatusPending,
		IsOffline:       in.IsOffline,
	}
	if in.Buyer != nil {
		o.UserID = in.Buyer.ID
	}

	if err := s.Orders.CreateWithItems(o, items); err != nil {
		return domain.Order{}, nil, err
	}

	placed, placedItems, err := s.Orders.Get(o.ID)
	if err != nil {
		return domain.Order{}, nil, err
	}
	return placed, placedItems, nil
}

// newOrderNumber builds a date-prefixed human-readable number. Collisions
// are treated as acceptably rare and are not probed for; the UNIQUE column
// surfaces one as an insert error.
func newOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("ORD-%s-%s", time.Now().Format("20060102"), suffix)
}
