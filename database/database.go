// database/database.go
package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log"
	"sync"

	"github.com/mattn/go-sqlite3"
	"golang.org/x/text/cases"
)

//go:embed schema.sql
var schemaSQL string

// DriverName is the sqlite3 driver registered with the casefold() SQL function.
const DriverName = "sqlite3_storefront"

// Schema version tracking:
// 0 - empty database
// 1 - initial storefront schema
// 2 - shopping_cart.quantity capped at 10000
const currentSchemaVersion = 2

// cartQuantityCap rebuilds shopping_cart with the quantity cap. SQLite cannot
// add a CHECK to an existing table.
const cartQuantityCap = `
CREATE TABLE shopping_cart_v2 (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  quantity INTEGER NOT NULL CHECK (quantity > 0 AND quantity <= 10000),
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE (user_id, product_id)
);
INSERT INTO shopping_cart_v2 (id, user_id, product_id, quantity, created_at, updated_at)
  SELECT id, user_id, product_id, CAST(MIN(quantity, 10000) AS INTEGER), created_at, updated_at
  FROM shopping_cart;
DROP TABLE shopping_cart;
ALTER TABLE shopping_cart_v2 RENAME TO shopping_cart;
CREATE INDEX IF NOT EXISTS idx_cart_user ON shopping_cart(user_id);
`

var registerOnce sync.Once

func registerDriver() {
	registerOnce.Do(func() {
		sql.Register(DriverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				return conn.RegisterFunc("casefold", casefold, true)
			},
		})
	})
}

// casefold lowers a TEXT value with full Unicode case folding so LIKE
// comparisons are case-insensitive beyond ASCII. NULL folds to "".
func casefold(v any) string {
	switch s := v.(type) {
	case string:
		return cases.Fold().String(s)
	case []byte:
		return cases.Fold().String(string(s))
	default:
		return ""
	}
}

// Fold applies the same folding as the casefold() SQL function.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// Open creates or opens the SQLite database at path, applies pragmas and the
// schema. Safe to call on an existing database.
func Open(path string) (*sql.DB, error) {
	registerDriver()

	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows one writer; a single connection also keeps the
	// per-connection pragmas (foreign_keys) in force for every statement.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := Migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}

	log.Printf("Database ready at %s", path)
	return db, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Migrate applies the schema and records the schema version.
func Migrate(ctx context.Context, db *sql.DB) error {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if version == 1 {
		err := WithTx(ctx, db, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, cartQuantityCap)
			return err
		})
		if err != nil {
			return fmt.Errorf("migrate shopping_cart: %w", err)
		}
	}

	if version < currentSchemaVersion {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
		log.Printf("Schema migrated from version %d to %d", version, currentSchemaVersion)
	}
	return nil
}

// SchemaVersion reports the recorded schema version.
func SchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("get user_version: %w", err)
	}
	return version, nil
}

// WithTx runs fn inside a transaction, committing on success.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return Classify(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}
