package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"

	"swiftkart/internal/config"
	"swiftkart/internal/domain"
	"swiftkart/internal/http/handlers"
	"swiftkart/internal/repos"
	"swiftkart/internal/services"
)

// newTestApp wires the API the way main does, minus rate limiting, over a
// fresh in-memory store with round-number test products.
func newTestApp(t *testing.T) (*fiber.App, *sqlx.DB, *repos.UserRepo) {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	_, err = db.Exec(`INSERT INTO products
	  (id,category_id,sku,title,selling_price,wholesale_price,wholesale_min_qty,stock_qty,low_stock_threshold,gst_rate) VALUES
	  ('t-mug','home-kitchen','MUG-001','Steel Mug',100,80,5,10,3,18)`)
	if err != nil {
		t.Fatalf("seed test products: %v", err)
	}

	userRepo := repos.NewUserRepo(db)
	authSvc := &services.AuthService{Users: userRepo}
	authH := &handlers.AuthHandler{Auth: authSvc}

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := authSvc.CurrentUser(sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	})

	deps := handlers.NewDeps(db, config.Config{}, authSvc)

	api := app.Group("/api/v1")
	api.Get("/availability", deps.CatalogHandler.Availability)
	api.Post("/orders", deps.OrderHandler.Place)
	api.Get("/orders/:id", deps.OrderHandler.View)
	api.Post("/orders/:id/cancel", handlers.RequireUser(authSvc), deps.OrderHandler.Cancel)
	api.Get("/orders/:id/return-eligibility", handlers.RequireUser(authSvc), deps.ReturnHandler.Eligibility)
	api.Post("/orders/:id/returns", handlers.RequireUser(authSvc), deps.ReturnHandler.Create)
	api.Post("/login", authH.Login)
	api.Get("/me", authH.Me)

	admin := app.Group("/admin", handlers.RequireAdmin(authSvc))
	admin.Get("/orders", deps.AdminHandler.Orders)
	admin.Post("/orders/:id/status", deps.AdminHandler.UpdateOrderStatus)
	admin.Post("/inventory", deps.AdminHandler.UpdateInventory)
	admin.Post("/returns/:id/review", deps.AdminHandler.ReviewReturn)

	return app, db, userRepo
}

func jsonReq(method, target, body, sid string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	return req
}

type orderResp struct {
	Order domain.Order       `json:"order"`
	Items []domain.OrderItem `json:"items"`
}

func TestPlaceOrder_GuestTotals(t *testing.T) {
	app, db, _ := newTestApp(t)

	body := `{"items":[{"product_id":"t-mug","qty":2}],
	  "shipping_address":"12 MG Road, Bengaluru 560001",
	  "payment_method":"cod","apply_gst":true}`
	resp, err := app.Test(jsonReq("POST", "/api/v1/orders", body, ""))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("want 201, got %d", resp.StatusCode)
	}

	var got orderResp
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Order.Subtotal != 200 || got.Order.GSTTotal != 36 || got.Order.GrandTotal != 236 {
		t.Fatalf("want 200/36/236, got %+v", got.Order)
	}
	if got.Order.UserID != "" {
		t.Fatalf("guest order must carry no user, got %q", got.Order.UserID)
	}

	var stock int
	if err := db.Get(&stock, `SELECT stock_qty FROM products WHERE id='t-mug'`); err != nil {
		t.Fatal(err)
	}
	if stock != 8 {
		t.Fatalf("want stock 8, got %d", stock)
	}
}

func TestPlaceOrder_StoreDefaultGST(t *testing.T) {
	app, _, _ := newTestApp(t)

	// apply_gst omitted: the seeded settings default GST on.
	body := `{"items":[{"product_id":"t-mug","qty":1}],
	  "shipping_address":"12 MG Road, Bengaluru 560001",
	  "payment_method":"upi"}`
	resp, err := app.Test(jsonReq("POST", "/api/v1/orders", body, ""))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("want 201, got %d", resp.StatusCode)
	}
	var got orderResp
	_ = json.NewDecoder(resp.Body).Decode(&got)
	if got.Order.GSTTotal != 18 {
		t.Fatalf("store default should apply GST: want 18, got %v", got.Order.GSTTotal)
	}
}

func TestPlaceOrder_Rejections(t *testing.T) {
	app, _, _ := newTestApp(t)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"short address",
			`{"items":[{"product_id":"t-mug","qty":1}],"shipping_address":"short","payment_method":"cod"}`,
			http.StatusBadRequest},
		{"bad payment method",
			`{"items":[{"product_id":"t-mug","qty":1}],"shipping_address":"12 MG Road, Bengaluru 560001","payment_method":"barter"}`,
			http.StatusBadRequest},
		{"insufficient stock",
			`{"items":[{"product_id":"t-mug","qty":99}],"shipping_address":"12 MG Road, Bengaluru 560001","payment_method":"cod"}`,
			http.StatusBadRequest},
		{"unknown product",
			`{"items":[{"product_id":"ghost","qty":1}],"shipping_address":"12 MG Road, Bengaluru 560001","payment_method":"cod"}`,
			http.StatusNotFound},
		{"offline sale without admin",
			`{"items":[{"product_id":"t-mug","qty":1}],"shipping_address":"12 MG Road, Bengaluru 560001","payment_method":"cod","is_offline":true}`,
			http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := app.Test(jsonReq("POST", "/api/v1/orders", tc.body, ""))
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tc.want {
				t.Fatalf("want %d, got %d", tc.want, resp.StatusCode)
			}
		})
	}
}

// placeAs places a 1-mug order with the given session cookie and returns the
// created order id.
func placeAs(t *testing.T, app *fiber.App, sid string) string {
	t.Helper()
	body := `{"items":[{"product_id":"t-mug","qty":1}],
	  "shipping_address":"12 MG Road, Bengaluru 560001","payment_method":"cod"}`
	resp, err := app.Test(jsonReq("POST", "/api/v1/orders", body, sid))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("place failed with %d", resp.StatusCode)
	}
	var got orderResp
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	return got.Order.ID
}

func TestOrderView_OwnerOnly(t *testing.T) {
	app, _, userRepo := newTestApp(t)
	_ = userRepo.BindSession("sid-asha", "u-asha")
	_ = userRepo.BindSession("sid-ravi", "u-ravi")
	_ = userRepo.BindSession("sid-admin", "u-admin")

	oid := placeAs(t, app, "sid-asha")

	get := func(sid string) int {
		req := httptest.NewRequest("GET", "/api/v1/orders/"+oid, nil)
		if sid != "" {
			req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		return resp.StatusCode
	}

	if got := get("sid-asha"); got != http.StatusOK {
		t.Fatalf("owner should see the order, got %d", got)
	}
	if got := get("sid-admin"); got != http.StatusOK {
		t.Fatalf("admin should see the order, got %d", got)
	}
	// Strangers and anonymous callers get 404, not 403, so ids cannot be
	// probed.
	if got := get("sid-ravi"); got != http.StatusNotFound {
		t.Fatalf("stranger should get 404, got %d", got)
	}
	if got := get(""); got != http.StatusNotFound {
		t.Fatalf("anonymous should get 404, got %d", got)
	}
}

func TestCancel_API(t *testing.T) {
	app, db, userRepo := newTestApp(t)
	_ = userRepo.BindSession("sid-asha", "u-asha")

	oid := placeAs(t, app, "sid-asha")

	// Login required.
	resp, err := app.Test(jsonReq("POST", "/api/v1/orders/"+oid+"/cancel", `{}`, ""))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("want 401 without session, got %d", resp.StatusCode)
	}

	resp, err = app.Test(jsonReq("POST", "/api/v1/orders/"+oid+"/cancel", `{"reason":"ordered twice"}`, "sid-asha"))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	var got struct {
		Status       string  `json:"status"`
		RefundAmount float64 `json:"refund_amount"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&got)
	if got.Status != "cancelled" {
		t.Fatalf("want cancelled, got %+v", got)
	}

	var stock int
	_ = db.Get(&stock, `SELECT stock_qty FROM products WHERE id='t-mug'`)
	if stock != 10 {
		t.Fatalf("cancel should restore stock to 10, got %d", stock)
	}

	// Cancelling again hits the terminal state.
	resp, err = app.Test(jsonReq("POST", "/api/v1/orders/"+oid+"/cancel", `{}`, "sid-asha"))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("want 409 for a second cancel, got %d", resp.StatusCode)
	}
}

func TestReturnFlow_API(t *testing.T) {
	app, db, userRepo := newTestApp(t)
	_ = userRepo.BindSession("sid-asha", "u-asha")
	_ = userRepo.BindSession("sid-admin", "u-admin")

	oid := placeAs(t, app, "sid-asha")

	// Not yet delivered.
	resp, err := app.Test(jsonReq("GET", "/api/v1/orders/"+oid+"/return-eligibility", "", "sid-asha"))
	if err != nil {
		t.Fatal(err)
	}
	var el struct {
		CanReturn bool   `json:"can_return"`
		Reason    string `json:"reason"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&el)
	if el.CanReturn {
		t.Fatal("pending order must not be returnable")
	}

	// Deliver it, then request a return.
	resp, err = app.Test(jsonReq("POST", "/admin/orders/"+oid+"/status", `{"status":"delivered"}`, "sid-admin"))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("deliver failed with %d", resp.StatusCode)
	}

	body := `{"items":[{"product_id":"t-mug","qty":1}],"reason":"arrived dented"}`
	resp, err = app.Test(jsonReq("POST", "/api/v1/orders/"+oid+"/returns", body, "sid-asha"))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("want 201, got %d", resp.StatusCode)
	}
	var rr domain.ReturnRequest
	_ = json.NewDecoder(resp.Body).Decode(&rr)
	if rr.RefundAmount != 100 || rr.Status != "pending" {
		t.Fatalf("bad return: %+v", rr)
	}

	// Approve with restock.
	resp, err = app.Test(jsonReq("POST", "/admin/returns/"+rr.ID+"/review", `{"approve":true,"restock":true}`, "sid-admin"))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("review failed with %d", resp.StatusCode)
	}

	var stock int
	_ = db.Get(&stock, `SELECT stock_qty FROM products WHERE id='t-mug'`)
	if stock != 10 {
		t.Fatalf("restock should bring stock back to 10, got %d", stock)
	}
	var status string
	_ = db.Get(&status, `SELECT status FROM orders WHERE id=?`, oid)
	if status != "returned" {
		t.Fatalf("order should be returned, got %s", status)
	}
}
