package repos

import (
	"log"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One writer keeps SQLite happy under load and keeps :memory: databases
	// from splitting across pooled connections.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed baseline data if DB is empty (idempotent; safe to run every start)
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	if err := seedUsers(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Categories
CREATE TABLE IF NOT EXISTS categories(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name_nocase ON categories(LOWER(name));

-- Products
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE RESTRICT,
  sku TEXT NOT NULL UNIQUE,
  title TEXT NOT NULL,
  description TEXT,
  selling_price NUMERIC NOT NULL CHECK (selling_price >= 0),
  wholesale_price NUMERIC NOT NULL DEFAULT 0 CHECK (wholesale_price >= 0),
  wholesale_min_qty INTEGER NOT NULL DEFAULT 0,
  cost_price NUMERIC NOT NULL DEFAULT 0,
  stock_qty INTEGER NOT NULL DEFAULT 0 CHECK (stock_qty >= 0),
  low_stock_threshold INTEGER NOT NULL DEFAULT 5,
  gst_rate NUMERIC NOT NULL DEFAULT 0,
  active INTEGER NOT NULL DEFAULT 1,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id);
CREATE INDEX IF NOT EXISTS idx_products_title    ON products(LOWER(title));

-- Orders
CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  user_id TEXT,
  subtotal NUMERIC NOT NULL,
  gst_total NUMERIC NOT NULL DEFAULT 0,
  discount_amount NUMERIC NOT NULL DEFAULT 0,
  grand_total NUMERIC NOT NULL,
  shipping_address TEXT NOT NULL DEFAULT '',
  payment_method TEXT NOT NULL DEFAULT 'cod',
  payment_status TEXT NOT NULL DEFAULT 'pending',
  status TEXT NOT NULL DEFAULT 'pending',
  is_offline INTEGER NOT NULL DEFAULT 0,
  courier_name TEXT NOT NULL DEFAULT '',
  tracking_number TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_orders_user       ON orders(user_id);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);

CREATE TABLE IF NOT EXISTS order_items(
  order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL,
  sku TEXT NOT NULL,
  title TEXT NOT NULL,
  qty INTEGER NOT NULL CHECK (qty >= 1),
  unit_price NUMERIC NOT NULL,
  gst_amount NUMERIC NOT NULL DEFAULT 0,
  line_total NUMERIC NOT NULL,
  seq INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);

-- Append-only tracking history
CREATE TABLE IF NOT EXISTS order_tracking(
  order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  status TEXT NOT NULL,
  note TEXT NOT NULL DEFAULT '',
  actor TEXT NOT NULL DEFAULT '',
  at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_order_tracking_order ON order_tracking(order_id);

-- Return requests
CREATE TABLE IF NOT EXISTS return_requests(
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL REFERENCES orders(id),
  user_id TEXT NOT NULL DEFAULT '',
  reason TEXT NOT NULL,
  return_type TEXT NOT NULL DEFAULT 'return',
  refund_method TEXT NOT NULL DEFAULT 'original',
  refund_amount NUMERIC NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'pending',
  evidence_json TEXT NOT NULL DEFAULT '[]',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_returns_order ON return_requests(order_id);

CREATE TABLE IF NOT EXISTS return_items(
  return_id TEXT NOT NULL REFERENCES return_requests(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL,
  qty INTEGER NOT NULL CHECK (qty >= 1),
  unit_price NUMERIC NOT NULL
);

-- Cancellation audit (append-only)
CREATE TABLE IF NOT EXISTS order_cancellations(
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL REFERENCES orders(id),
  reason TEXT NOT NULL,
  cancelled_by TEXT NOT NULL DEFAULT '',
  refund_amount NUMERIC NOT NULL DEFAULT 0,
  refund_status TEXT NOT NULL DEFAULT 'pending',
  shipment_cancelled INTEGER NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

-- Users & Sessions
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('USER','ADMIN')),
  is_wholesale INTEGER NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

-- Store settings (single row, id=1)
CREATE TABLE IF NOT EXISTS settings(
  id INTEGER PRIMARY KEY CHECK (id = 1),
  store_name TEXT NOT NULL DEFAULT 'Swiftkart',
  currency TEXT NOT NULL DEFAULT 'INR',
  gst_by_default INTEGER NOT NULL DEFAULT 1,
  support_email TEXT NOT NULL DEFAULT ''
);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM categories`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo categories/products/settings")

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO categories(id,name) VALUES
	  ('apparel','Apparel'),
	  ('electronics','Electronics'),
	  ('home-kitchen','Home & Kitchen')`)

	tx.MustExec(`INSERT INTO products
	  (id,category_id,sku,title,description,selling_price,wholesale_price,wholesale_min_qty,cost_price,stock_qty,low_stock_threshold,gst_rate) VALUES
	  ('p-tshirt','apparel','TSH-001','Cotton T-Shirt','Plain crew neck tee',499,399,10,250,120,10,5),
	  ('p-kurta','apparel','KUR-001','Block Print Kurta','Hand block printed kurta',1299,999,5,600,40,5,12),
	  ('p-kettle','home-kitchen','KET-001','Electric Kettle 1.5L','Auto cut-off kettle',1499,0,0,900,25,5,18),
	  ('p-earbuds','electronics','EAR-001','Wireless Earbuds','Bluetooth 5.3 earbuds',2999,2499,20,1800,60,10,18)`)

	tx.MustExec(`INSERT INTO settings(id,store_name,currency,gst_by_default,support_email)
	  VALUES(1,'Swiftkart','INR',1,'support@swiftkart.test')`)

	return tx.Commit()
}

// seedUsers ensures demo accounts exist (idempotent; safe to run every start).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Role, Hash string
		Wholesale                   bool
	}
	mk := func(id, email, name, role, raw string, wholesale bool) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), 12)
		return u{ID: id, Email: email, Name: name, Role: role, Hash: string(h), Wholesale: wholesale}
	}

	users := []u{
		mk("u-asha", "asha@swiftkart.test", "Asha", "USER", "Passw0rd!", false),
		mk("u-ravi", "ravi@swiftkart.test", "Ravi", "USER", "Passw0rd!", true),
		mk("u-admin", "admin@swiftkart.test", "Admin", "ADMIN", "Passw0rd!", false),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(id,email,name,password_hash,role,is_wholesale)
			VALUES(?,?,?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, x.ID, x.Email, x.Name, x.Hash, x.Role, x.Wholesale); err != nil {
			return err
		}
	}

	return tx.Commit()
}
