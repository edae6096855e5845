package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"swiftkart/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `
  id, category_id, sku, title, COALESCE(description,'') AS description,
  selling_price, wholesale_price, wholesale_min_qty, cost_price,
  stock_qty, low_stock_threshold, gst_rate, active,
  created_at, COALESCE(updated_at,'') AS updated_at`

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `SELECT `+productCols+` FROM products WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, err
}

func (r *ProductRepo) GetBySKU(sku string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `SELECT `+productCols+` FROM products WHERE sku = ?`, sku)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, err
}

func (r *ProductRepo) ListByCategory(catID string, limit, offset int) ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.Select(&out, `
	  SELECT `+productCols+`
	  FROM products
	  WHERE category_id = ? AND active = 1
	  ORDER BY created_at DESC
	  LIMIT ? OFFSET ?
	`, catID, limit, offset)
	return out, err
}

func (r *ProductRepo) Search(q, catID string, limit, offset int) ([]domain.Product, error) {
	where := `active = 1`
	args := []any{}
	if q != "" {
		where += ` AND (LOWER(title) LIKE ? OR LOWER(sku) LIKE ?)`
		args = append(args, "%"+q+"%", "%"+q+"%")
	}
	if catID != "" {
		where += ` AND category_id = ?`
		args = append(args, catID)
	}
	args = append(args, limit, offset)

	var out []domain.Product
	err := r.db.Select(&out, `
	  SELECT `+productCols+`
	  FROM products
	  WHERE `+where+`
	  ORDER BY created_at DESC
	  LIMIT ? OFFSET ?`, args...)
	return out, err
}

// DecrementStock atomically subtracts qty if enough stock exists; the guard
// keeps stock_qty from ever going negative under concurrent orders.
func (r *ProductRepo) DecrementStock(productID string, qty int) error {
	return decrementStock(r.db, productID, qty)
}

func decrementStock(e sqlx.Execer, productID string, qty int) error {
	res, err := e.Exec(`
		UPDATE products
		SET stock_qty = stock_qty - ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND stock_qty >= ?
	`, qty, productID, qty)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrInsufficientStock
	}
	return nil
}

// IncrementStock adds qty back (cancellation restore). A missing product is
// reported via rows affected so callers can skip it silently.
func (r *ProductRepo) IncrementStock(productID string, qty int) (bool, error) {
	res, err := r.db.Exec(`
		UPDATE products
		SET stock_qty = stock_qty + ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, qty, productID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// UpsertStock sets the absolute stock level (admin inventory page).
func (r *ProductRepo) UpsertStock(productID string, qty int) error {
	res, err := r.db.Exec(`
		UPDATE products SET stock_qty = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, qty, productID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// Row used by admin inventory pages
type StockRow struct {
	ProductID string `db:"id"`
	SKU       string `db:"sku"`
	Title     string `db:"title"`
	StockQty  int    `db:"stock_qty"`
	Threshold int    `db:"low_stock_threshold"`
}

func (r *ProductRepo) ListStock() ([]StockRow, error) {
	var rows []StockRow
	err := r.db.Select(&rows, `
		SELECT id, sku, title, stock_qty, low_stock_threshold
		FROM products
		ORDER BY title
	`)
	return rows, err
}
