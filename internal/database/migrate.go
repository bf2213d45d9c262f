package database

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// Migration is one versioned schema step. Exactly one of Stmts or Apply is
// set. Apply is used when a step must inspect the live schema first.
type Migration struct {
	Version int
	Name    string
	Stmts   []string
	Apply   func(ctx context.Context, tx *sql.Tx) error
}

// Migrations lists every schema step in order. Versions are never reused.
var Migrations = []Migration{
	{Version: 1, Name: "catalogue", Stmts: []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(120) NOT NULL,
			email VARCHAR(190) NOT NULL UNIQUE,
			role VARCHAR(20) NOT NULL DEFAULT 'USER',
			push_token VARCHAR(255) NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS locations (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(150) NOT NULL,
			address VARCHAR(255) NOT NULL DEFAULT '',
			city VARCHAR(100) NOT NULL DEFAULT '',
			description TEXT NULL,
			price_per_hour DECIMAL(12,2) NOT NULL DEFAULT 0,
			image_url VARCHAR(255) NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS location_spots (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			id_location BIGINT UNSIGNED NOT NULL,
			spot_name VARCHAR(20) NOT NULL,
			UNIQUE KEY uq_location_spot (id_location, spot_name),
			CONSTRAINT fk_spot_location FOREIGN KEY (id_location) REFERENCES locations(id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS location_images (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			id_location BIGINT UNSIGNED NOT NULL,
			image_url VARCHAR(255) NOT NULL,
			CONSTRAINT fk_image_location FOREIGN KEY (id_location) REFERENCES locations(id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS products (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(150) NOT NULL,
			description TEXT NULL,
			category VARCHAR(60) NOT NULL DEFAULT '',
			price_rent DECIMAL(12,2) NOT NULL DEFAULT 0,
			price_sale DECIMAL(12,2) NOT NULL DEFAULT 0,
			stock INT NOT NULL DEFAULT 0,
			image_url VARCHAR(255) NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}},
	{Version: 2, Name: "bookings", Stmts: []string{
		`CREATE TABLE IF NOT EXISTS bookings (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			id_user BIGINT UNSIGNED NOT NULL,
			id_location BIGINT UNSIGNED NOT NULL,
			booking_date DATE NOT NULL,
			booking_start DATETIME NOT NULL,
			duration INT NOT NULL,
			spot_number VARCHAR(20) NOT NULL,
			total_price DECIMAL(12,2) NOT NULL DEFAULT 0,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			payment_status VARCHAR(20) NOT NULL DEFAULT 'unpaid',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			KEY idx_booking_location_date (id_location, booking_date),
			KEY idx_booking_user (id_user)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}},
	{Version: 3, Name: "commerce", Stmts: []string{
		`CREATE TABLE IF NOT EXISTS shopping_cart (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			id_user BIGINT UNSIGNED NOT NULL,
			id_product BIGINT UNSIGNED NOT NULL,
			quantity INT NOT NULL,
			transaction_type VARCHAR(10) NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uq_cart_line (id_user, id_product, transaction_type),
			KEY idx_cart_user (id_user)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS discounts (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			code VARCHAR(50) NOT NULL UNIQUE,
			title VARCHAR(150) NOT NULL DEFAULT '',
			discount_value VARCHAR(20) NOT NULL,
			used_count INT NOT NULL DEFAULT 0,
			max_usage INT NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS orders (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			id_user BIGINT UNSIGNED NOT NULL,
			order_number VARCHAR(40) NOT NULL UNIQUE,
			total_amount DECIMAL(12,2) NOT NULL,
			shipping_cost DECIMAL(12,2) NOT NULL DEFAULT 0,
			tax_amount DECIMAL(12,2) NOT NULL DEFAULT 0,
			discount_amount DECIMAL(12,2) NOT NULL DEFAULT 0,
			shipping_address VARCHAR(255) NOT NULL,
			payment_method VARCHAR(40) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			payment_status VARCHAR(20) NOT NULL DEFAULT 'unpaid',
			notes TEXT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			KEY idx_order_user (id_user)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			id_order BIGINT UNSIGNED NOT NULL,
			id_product BIGINT UNSIGNED NOT NULL,
			quantity INT NOT NULL,
			unit_price DECIMAL(12,2) NOT NULL,
			subtotal DECIMAL(12,2) NOT NULL,
			transaction_type VARCHAR(10) NOT NULL,
			CONSTRAINT fk_item_order FOREIGN KEY (id_order) REFERENCES orders(id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}},
	{Version: 4, Name: "community", Stmts: []string{
		`CREATE TABLE IF NOT EXISTS community_posts (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			id_user BIGINT UNSIGNED NOT NULL,
			title VARCHAR(200) NOT NULL,
			content TEXT NOT NULL,
			image_url VARCHAR(255) NULL,
			views_count INT NOT NULL DEFAULT 0,
			likes_count INT NOT NULL DEFAULT 0,
			reply_count INT NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS community_comments (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			id_post BIGINT UNSIGNED NOT NULL,
			id_user BIGINT UNSIGNED NOT NULL,
			content TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			KEY idx_comment_post (id_post)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS community_likes (
			id_post BIGINT UNSIGNED NOT NULL,
			id_user BIGINT UNSIGNED NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (id_post, id_user)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS reviews (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			id_user BIGINT UNSIGNED NOT NULL,
			id_location BIGINT UNSIGNED NOT NULL,
			rating TINYINT NOT NULL,
			comment TEXT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			KEY idx_review_location (id_location)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}},
	{Version: 5, Name: "comment_parent_id", Apply: addColumnIfMissing(
		"community_comments", "parent_id",
		`ALTER TABLE community_comments ADD COLUMN parent_id BIGINT UNSIGNED NULL AFTER id_user`,
	)},
	{Version: 6, Name: "notifications", Stmts: []string{
		`CREATE TABLE IF NOT EXISTS notifications (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			id_user BIGINT UNSIGNED NOT NULL,
			title VARCHAR(200) NOT NULL,
			body TEXT NOT NULL,
			type VARCHAR(30) NOT NULL,
			ref_id BIGINT UNSIGNED NULL,
			is_read TINYINT(1) NOT NULL DEFAULT 0,
			attempts INT NOT NULL DEFAULT 0,
			published_at DATETIME NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			KEY idx_notification_user (id_user),
			KEY idx_notification_outbox (published_at, attempts)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}},
	{Version: 7, Name: "cart_line_unique", Apply: addIndexIfMissing(
		"shopping_cart", "uq_cart_line",
		// fold duplicate lines into the oldest row before the key can exist
		`UPDATE shopping_cart k
		 JOIN (SELECT MIN(id) AS id, SUM(quantity) AS total FROM shopping_cart
		       GROUP BY id_user, id_product, transaction_type HAVING COUNT(*) > 1) d ON d.id = k.id
		 SET k.quantity = d.total`,
		`DELETE c FROM shopping_cart c
		 JOIN shopping_cart k ON k.id_user = c.id_user AND k.id_product = c.id_product
		      AND k.transaction_type = c.transaction_type AND k.id < c.id`,
		`ALTER TABLE shopping_cart ADD UNIQUE KEY uq_cart_line (id_user, id_product, transaction_type)`,
	)},
}

const createMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version INT PRIMARY KEY,
	name VARCHAR(100) NOT NULL,
	applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
) ENGINE=InnoDB`

// Migrate applies every migration whose version is not yet recorded in
// schema_migrations. Each step runs in its own transaction together with
// the bookkeeping insert. MySQL commits DDL implicitly, so a failure after a
// CREATE leaves the table in place; every statement is therefore written to
// be safe to re-run.
func Migrate(ctx context.Context, db *sql.DB, migrations []Migration, logger *zap.Logger) error {
	if _, err := db.ExecContext(ctx, createMigrationsTable); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if err := applyOne(ctx, db, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
		logger.Info("migration applied", zap.Int("version", m.Version), zap.String("name", m.Name))
	}
	return nil
}

func appliedVersions(ctx context.Context, db *sql.DB) (map[int]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("load applied migrations: %w", err)
	}
	defer rows.Close()
	out := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out[v] = true
	}
	return out, rows.Err()
}

func applyOne(ctx context.Context, db *sql.DB, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if m.Apply != nil {
		if err := m.Apply(ctx, tx); err != nil {
			return err
		}
	}
	for _, stmt := range m.Stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version, name) VALUES (?, ?)`, m.Version, m.Name); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// HasColumn reports whether table.column exists in the current schema.
func HasColumn(ctx context.Context, q interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}, table, column string) (bool, error) {
	const query = `SELECT COUNT(*) FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND COLUMN_NAME = ?`
	var n int
	if err := q.QueryRowContext(ctx, query, table, column).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// addColumnIfMissing is for databases created before the column became part
// of the schema, some of which already carry it.
func addColumnIfMissing(table, column, ddl string) func(ctx context.Context, tx *sql.Tx) error {
	return func(ctx context.Context, tx *sql.Tx) error {
		ok, err := HasColumn(ctx, tx, table, column)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		_, err = tx.ExecContext(ctx, ddl)
		return err
	}
}

// HasIndex reports whether table carries an index with the given name.
func HasIndex(ctx context.Context, q interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}, table, index string) (bool, error) {
	const query = `SELECT COUNT(*) FROM information_schema.STATISTICS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND INDEX_NAME = ?`
	var n int
	if err := q.QueryRowContext(ctx, query, table, index).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// addIndexIfMissing runs stmts in order unless the index already exists.
func addIndexIfMissing(table, index string, stmts ...string) func(ctx context.Context, tx *sql.Tx) error {
	return func(ctx context.Context, tx *sql.Tx) error {
		ok, err := HasIndex(ctx, tx, table, index)
		if err != nil || ok {
			return err
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	}
}
