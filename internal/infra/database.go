package infra

import (
	"fmt"
	"strings"

	"stockhub/internal/config"
	"stockhub/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DBOptions tunes the connection pool.
type DBOptions struct {
	MaxOpenConns int
	MaxIdleConns int
	LogQueries   bool
}

// DBOptionsFromConfig extracts pool settings from the runtime config.
func DBOptionsFromConfig(cfg *config.Config) DBOptions {
	return DBOptions{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
		LogQueries:   cfg.Env == "debug",
	}
}

// NewDatabase opens a GORM connection. DSNs starting with "sqlite:" or "file:"
// use the pure-Go sqlite driver (local development and tests); anything else is
// handed to the postgres driver.
//
// TranslateError is always on so unique and foreign-key violations surface as
// gorm.ErrDuplicatedKey / gorm.ErrForeignKeyViolated regardless of the driver.
func NewDatabase(dsn string, opts DBOptions) (*gorm.DB, error) {
	mode := logger.Silent
	if opts.LogQueries {
		mode = logger.Info
	}
	db, err := gorm.Open(dialector(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(mode),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	return db, nil
}

func dialector(dsn string) gorm.Dialector {
	switch {
	case strings.HasPrefix(dsn, "sqlite:"):
		return sqlite.Open(strings.TrimPrefix(dsn, "sqlite:"))
	case strings.HasPrefix(dsn, "file:"):
		return sqlite.Open(dsn)
	default:
		return postgres.Open(dsn)
	}
}

// RunMigrations creates / updates every table, then applies the constraints
// AutoMigrate cannot express. Patches are postgres-only; sqlite relies on the
// model hooks for the same guarantees.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL. Each statement is guarded so
// re-running on an already-patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"stocks quantity non-negative", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_stocks_quantity_non_negative') THEN
    ALTER TABLE stocks ADD CONSTRAINT chk_stocks_quantity_non_negative CHECK (quantity >= 0);
  END IF;
END $$`},
		{"stocks exactly one owner", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_stocks_single_owner') THEN
    ALTER TABLE stocks ADD CONSTRAINT chk_stocks_single_owner
      CHECK ((product_id IS NULL) <> (product_variant_id IS NULL));
  END IF;
END $$`},
		{"purchase_items exactly one target", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_purchase_items_single_target') THEN
    ALTER TABLE purchase_items ADD CONSTRAINT chk_purchase_items_single_target
      CHECK ((product_id IS NULL) <> (product_variant_id IS NULL));
  END IF;
END $$`},
		{"purchase_items positive quantity and price", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_purchase_items_positive') THEN
    ALTER TABLE purchase_items ADD CONSTRAINT chk_purchase_items_positive
      CHECK (quantity > 0 AND price > 0);
  END IF;
END $$`},
		{"stock_histories append-only function", `
CREATE OR REPLACE FUNCTION stock_histories_append_only() RETURNS trigger AS $$
BEGIN
  RAISE EXCEPTION 'stock_histories is append-only';
END;
$$ LANGUAGE plpgsql`},
		{"stock_histories append-only trigger", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_stock_histories_append_only') THEN
    CREATE TRIGGER trg_stock_histories_append_only
      BEFORE UPDATE OR DELETE ON stock_histories
      FOR EACH ROW EXECUTE FUNCTION stock_histories_append_only();
  END IF;
END $$`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
