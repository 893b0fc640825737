package infra

import (
	"fmt"

	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate
// for the tables this engine owns, then applies the idempotent SQL patches
// AutoMigrate cannot express (partial indexes, check constraints).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations creates/updates the engine-owned tables plus the read-only
// collaborator tables (sales, products, payment method directory) so a fresh
// development database is usable without the upstream services.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Drawer{},
		&model.LedgerEntry{},
		&model.PaymentMethod{},
		&model.PaymentRecord{},
		&model.AuditEntry{},
		&model.Sale{},
		&model.SaleItem{},
		&model.Product{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot handle.
// Every statement is guarded so re-running on a patched schema is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// At most one open drawer per operator, enforced at the database as
		// well as in the service layer.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_drawers_operator_open') THEN
		    CREATE UNIQUE INDEX idx_drawers_operator_open
		        ON drawers (operator_id)
		        WHERE status = 'open';
		  END IF;
		END $$`,
		// Ledger chain lookups are always per drawer in creation order.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_ledger_entries_drawer_created') THEN
		    CREATE INDEX idx_ledger_entries_drawer_created
		        ON ledger_entries (drawer_id, created_at);
		  END IF;
		END $$`,
		// Entry arithmetic is also checked by the database.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_ledger_balance_chain') THEN
		    ALTER TABLE ledger_entries
		      ADD CONSTRAINT chk_ledger_balance_chain
		      CHECK (balance_after = balance_before + amount);
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
