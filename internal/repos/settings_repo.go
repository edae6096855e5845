package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"swiftkart/internal/domain"
)

type SettingsRepo struct{ db *sqlx.DB }

func NewSettingsRepo(db *sqlx.DB) *SettingsRepo { return &SettingsRepo{db: db} }

// Load reads the single settings row. Callers receive a value and pass it
// down explicitly; there is no cached process-wide copy.
func (r *SettingsRepo) Load() (domain.Settings, error) {
	var s domain.Settings
	err := r.db.Get(&s, `
		SELECT store_name, currency, gst_by_default, support_email
		FROM settings WHERE id = 1
	`)
	if errors.Is(err, sql.ErrNoRows) {
		// Fresh database without a seed row; fall back to defaults.
		return domain.Settings{StoreName: "Swiftkart", Currency: "INR", GSTByDefault: true}, nil
	}
	return s, err
}

func (r *SettingsRepo) Save(s domain.Settings) error {
	_, err := r.db.Exec(`
		INSERT INTO settings(id, store_name, currency, gst_by_default, support_email)
		VALUES(1,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
		  store_name=excluded.store_name,
		  currency=excluded.currency,
		  gst_by_default=excluded.gst_by_default,
		  support_email=excluded.support_email
	`, s.StoreName, s.Currency, s.GSTByDefault, s.SupportEmail)
	return err
}
