package services_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"swiftkart/internal/domain"
	"swiftkart/internal/repos"
	"swiftkart/internal/services"
)

type returnFixture struct {
	db       *sqlx.DB
	orders   *repos.OrderRepo
	returns  *repos.ReturnRepo
	products *repos.ProductRepo
	notify   *fakeNotifier
	svc      *services.ReturnService
}

func newReturnFixture(t *testing.T) *returnFixture {
	t.Helper()
	db := memdb(t)
	f := &returnFixture{
		db:       db,
		orders:   repos.NewOrderRepo(db),
		returns:  repos.NewReturnRepo(db),
		products: repos.NewProductRepo(db),
		notify:   &fakeNotifier{},
	}
	f.svc = services.NewReturnService(f.orders, f.returns, f.products, f.notify)
	return f
}

// deliveredOrder inserts an order for u-asha with the given line items and
// marks it delivered as of now.
func (f *returnFixture) deliveredOrder(t *testing.T, id string, items []domain.OrderItem) domain.Order {
	t.Helper()
	o := domain.Order{
		ID:            id,
		OrderNumber:   "ORD-TEST-" + id,
		UserID:        "u-asha",
		PaymentMethod: "cod",
		PaymentStatus: domain.PaymentPending,
		Status:        domain.StatusDelivered,
	}
	for _, it := range items {
		o.Subtotal += it.LineTotal
	}
	o.GrandTotal = o.Subtotal
	if err := f.orders.CreateWithItems(o, items); err != nil {
		t.Fatal(err)
	}
	return o
}

// ageOrder backdates the order's last update.
func (f *returnFixture) ageOrder(t *testing.T, orderID string, age time.Duration) {
	t.Helper()
	at := time.Now().Add(-age).UTC().Format(time.RFC3339)
	if _, err := f.db.Exec(`UPDATE orders SET updated_at = ? WHERE id = ?`, at, orderID); err != nil {
		t.Fatal(err)
	}
}

func mugLine(qty int) domain.OrderItem {
	return domain.OrderItem{
		ProductID: "t-mug", SKU: "MUG-001", Title: "Steel Mug",
		Qty: qty, UnitPrice: 100, LineTotal: 100 * float64(qty),
	}
}

func TestEligibility_NotDelivered(t *testing.T) {
	f := newReturnFixture(t)
	o := f.deliveredOrder(t, "o-el-1", []domain.OrderItem{mugLine(1)})
	if err := f.orders.UpdateStatus(o.ID, domain.StatusShipped); err != nil {
		t.Fatal(err)
	}

	el, err := f.svc.CheckEligibility(o.ID)
	if err != nil {
		t.Fatal(err)
	}
	if el.CanReturn {
		t.Fatal("a shipped order must not be returnable")
	}
	if !strings.Contains(el.Reason, "shipped") {
		t.Fatalf("reason should name the current status, got %q", el.Reason)
	}
}

func TestEligibility_Window(t *testing.T) {
	cases := []struct {
		name string
		age  time.Duration
		want bool
	}{
		{"fresh delivery", time.Hour, true},
		{"day four", 4 * 24 * time.Hour, true},
		{"just inside the window", 5*24*time.Hour - time.Hour, true},
		{"just past the window", 5*24*time.Hour + time.Hour, false},
		{"day six", 6 * 24 * time.Hour, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newReturnFixture(t)
			o := f.deliveredOrder(t, "o-win-1", []domain.OrderItem{mugLine(1)})
			f.ageOrder(t, o.ID, tc.age)

			el, err := f.svc.CheckEligibility(o.ID)
			if err != nil {
				t.Fatal(err)
			}
			if el.CanReturn != tc.want {
				t.Fatalf("age %v: want can_return=%v, got %+v", tc.age, tc.want, el)
			}
			if !tc.want && !strings.Contains(el.Reason, "window") {
				t.Fatalf("expired window should say so, got %q", el.Reason)
			}
		})
	}
}

func TestEligibility_OrderNotFound(t *testing.T) {
	f := newReturnFixture(t)
	_, err := f.svc.CheckEligibility("nope")
	if !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("want ErrOrderNotFound, got %v", err)
	}
}

func TestCreateReturn_RefundFromFrozenPrices(t *testing.T) {
	f := newReturnFixture(t)
	o := f.deliveredOrder(t, "o-ret-1", []domain.OrderItem{mugLine(2)})

	rr, err := f.svc.CreateReturn(services.CreateReturnInput{
		OrderID: o.ID,
		Caller:  domain.Principal{ID: "u-asha", Role: "USER"},
		Lines:   []services.ReturnLine{{ProductID: "t-mug", Qty: 1}},
		Reason:  "arrived dented",
	})
	if err != nil {
		t.Fatal(err)
	}
	if rr.RefundAmount != 100 {
		t.Fatalf("refund for 1 of 2 units @100: want 100, got %v", rr.RefundAmount)
	}
	if rr.Status != domain.ReturnPending {
		t.Fatalf("want pending, got %s", rr.Status)
	}

	// Stock is not restored at request time.
	p, _ := f.products.Get("t-mug")
	if p.StockQty != 8 {
		t.Fatalf("stock must stay decremented until review, got %d", p.StockQty)
	}

	if f.notify.returnReqs != 1 {
		t.Fatalf("one notification expected, got %d", f.notify.returnReqs)
	}
}

func TestCreateReturn_FirstMatchingLineWins(t *testing.T) {
	f := newReturnFixture(t)

	// Same product twice at different frozen prices; the earlier line sets
	// the refund.
	o := f.deliveredOrder(t, "o-ret-2", []domain.OrderItem{
		{ProductID: "t-mug", SKU: "MUG-001", Title: "Steel Mug", Qty: 2, UnitPrice: 150, LineTotal: 300},
		{ProductID: "t-mug", SKU: "MUG-001", Title: "Steel Mug", Qty: 1, UnitPrice: 120, LineTotal: 120},
	})

	rr, err := f.svc.CreateReturn(services.CreateReturnInput{
		OrderID: o.ID,
		Caller:  domain.Principal{ID: "u-asha", Role: "USER"},
		Lines:   []services.ReturnLine{{ProductID: "t-mug", Qty: 1}},
		Reason:  "wrong colour",
	})
	if err != nil {
		t.Fatal(err)
	}
	if rr.RefundAmount != 150 {
		t.Fatalf("want 150 from the first matching line, got %v", rr.RefundAmount)
	}
}

func TestCreateReturn_Guards(t *testing.T) {
	f := newReturnFixture(t)
	o := f.deliveredOrder(t, "o-ret-3", []domain.OrderItem{mugLine(2)})
	owner := domain.Principal{ID: "u-asha", Role: "USER"}

	// Someone else's order.
	_, err := f.svc.CreateReturn(services.CreateReturnInput{
		OrderID: o.ID,
		Caller:  domain.Principal{ID: "u-ravi", Role: "USER"},
		Lines:   []services.ReturnLine{{ProductID: "t-mug", Qty: 1}},
		Reason:  "x",
	})
	if !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("want ErrNotOwner, got %v", err)
	}

	// Product not in the order.
	_, err = f.svc.CreateReturn(services.CreateReturnInput{
		OrderID: o.ID,
		Caller:  owner,
		Lines:   []services.ReturnLine{{ProductID: "t-pan", Qty: 1}},
		Reason:  "x",
	})
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("want ErrProductNotFound, got %v", err)
	}

	// Empty request.
	_, err = f.svc.CreateReturn(services.CreateReturnInput{OrderID: o.ID, Caller: owner, Reason: "x"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}

	// Not delivered yet.
	if err := f.orders.UpdateStatus(o.ID, domain.StatusShipped); err != nil {
		t.Fatal(err)
	}
	_, err = f.svc.CreateReturn(services.CreateReturnInput{
		OrderID: o.ID,
		Caller:  owner,
		Lines:   []services.ReturnLine{{ProductID: "t-mug", Qty: 1}},
		Reason:  "x",
	})
	if !errors.Is(err, domain.ErrOrderNotDelivered) {
		t.Fatalf("want ErrOrderNotDelivered, got %v", err)
	}
}

func TestCreateReturn_GuestOrdersNotReturnable(t *testing.T) {
	f := newReturnFixture(t)
	o := domain.Order{
		ID: "o-guest", OrderNumber: "ORD-TEST-guest",
		PaymentMethod: "cod", PaymentStatus: domain.PaymentPending,
		Status: domain.StatusDelivered,
	}
	if err := f.orders.CreateWithItems(o, []domain.OrderItem{mugLine(1)}); err != nil {
		t.Fatal(err)
	}

	_, err := f.svc.CreateReturn(services.CreateReturnInput{
		OrderID: o.ID,
		Caller:  domain.Principal{ID: "u-asha", Role: "USER"},
		Lines:   []services.ReturnLine{{ProductID: "t-mug", Qty: 1}},
		Reason:  "x",
	})
	if !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("want ErrNotOwner for guest orders, got %v", err)
	}
}

func TestReview_ApproveWithRestock(t *testing.T) {
	f := newReturnFixture(t)
	o := f.deliveredOrder(t, "o-rev-1", []domain.OrderItem{mugLine(2)})

	rr, err := f.svc.CreateReturn(services.CreateReturnInput{
		OrderID: o.ID,
		Caller:  domain.Principal{ID: "u-asha", Role: "USER"},
		Lines:   []services.ReturnLine{{ProductID: "t-mug", Qty: 1}},
		Reason:  "arrived dented",
	})
	if err != nil {
		t.Fatal(err)
	}

	admin := domain.Principal{ID: "u-admin", Role: "ADMIN"}
	got, err := f.svc.Review(rr.ID, true, true, admin)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.ReturnApproved {
		t.Fatalf("want approved, got %s", got.Status)
	}

	p, _ := f.products.Get("t-mug")
	if p.StockQty != 9 {
		t.Fatalf("restock of 1 unit: want 9, got %d", p.StockQty)
	}
	ord, _, _ := f.orders.Get(o.ID)
	if ord.Status != domain.StatusReturned {
		t.Fatalf("order should be returned, got %s", ord.Status)
	}

	// A decided return cannot be reviewed again.
	if _, err := f.svc.Review(rr.ID, false, false, admin); !errors.Is(err, domain.ErrInvalidStateTransition) {
		t.Fatalf("want ErrInvalidStateTransition on double review, got %v", err)
	}
}

func TestReview_Reject(t *testing.T) {
	f := newReturnFixture(t)
	o := f.deliveredOrder(t, "o-rev-2", []domain.OrderItem{mugLine(2)})

	rr, err := f.svc.CreateReturn(services.CreateReturnInput{
		OrderID: o.ID,
		Caller:  domain.Principal{ID: "u-asha", Role: "USER"},
		Lines:   []services.ReturnLine{{ProductID: "t-mug", Qty: 2}},
		Reason:  "no longer needed",
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := f.svc.Review(rr.ID, false, false, domain.Principal{ID: "u-admin", Role: "ADMIN"})
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.ReturnRejected {
		t.Fatalf("want rejected, got %s", got.Status)
	}

	p, _ := f.products.Get("t-mug")
	if p.StockQty != 8 {
		t.Fatalf("rejection must not restock, got %d", p.StockQty)
	}
	ord, _, _ := f.orders.Get(o.ID)
	if ord.Status != domain.StatusDelivered {
		t.Fatalf("order should stay delivered, got %s", ord.Status)
	}
}
