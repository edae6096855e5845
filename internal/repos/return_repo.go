package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"swiftkart/internal/domain"
)

type ReturnRepo struct{ db *sqlx.DB }

func NewReturnRepo(db *sqlx.DB) *ReturnRepo { return &ReturnRepo{db: db} }

func (r *ReturnRepo) CreateWithItems(rr domain.ReturnRequest, items []domain.ReturnItem) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
	  INSERT INTO return_requests
	    (id, order_id, user_id, reason, return_type, refund_method, refund_amount, status, evidence_json, created_at)
	  VALUES(?,?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
	`, rr.ID, rr.OrderID, rr.UserID, rr.Reason, rr.ReturnType, rr.RefundMethod,
		rr.RefundAmount, rr.Status, rr.EvidenceJSON); err != nil {
		return err
	}

	for _, it := range items {
		if _, err := tx.Exec(`
		  INSERT INTO return_items(return_id, product_id, qty, unit_price) VALUES(?,?,?,?)
		`, rr.ID, it.ProductID, it.Qty, it.UnitPrice); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *ReturnRepo) Get(id string) (domain.ReturnRequest, []domain.ReturnItem, error) {
	var rr domain.ReturnRequest
	if err := r.db.Get(&rr, `
		SELECT id, order_id, user_id, reason, return_type, refund_method,
		       refund_amount, status, evidence_json, created_at
		FROM return_requests WHERE id = ?
	`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ReturnRequest{}, nil, domain.ErrReturnNotFound
		}
		return domain.ReturnRequest{}, nil, err
	}

	var items []domain.ReturnItem
	if err := r.db.Select(&items, `
		SELECT return_id, product_id, qty, unit_price
		FROM return_items WHERE return_id = ?
		ORDER BY rowid
	`, id); err != nil {
		return domain.ReturnRequest{}, nil, err
	}

	return rr, items, nil
}

func (r *ReturnRepo) UpdateStatus(id, status string) error {
	_, err := r.db.Exec(`UPDATE return_requests SET status = ? WHERE id = ?`, status, id)
	return err
}

func (r *ReturnRepo) ListByStatus(status string, limit int) ([]domain.ReturnRequest, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []domain.ReturnRequest
	err := r.db.Select(&out, `
		SELECT id, order_id, user_id, reason, return_type, refund_method,
		       refund_amount, status, evidence_json, created_at
		FROM return_requests
		WHERE (? = '' OR status = ?)
		ORDER BY datetime(created_at) DESC
		LIMIT ?
	`, status, status, limit)
	return out, err
}
