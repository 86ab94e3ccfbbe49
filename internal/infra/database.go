package infra

import (
	"fmt"

	"kraisys/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that
// GORM cannot express (partial unique indexes, jsonb GIN indexes).
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

// RunMigrations applies the schema. Exposed separately so integration tests
// can run it against their own database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Model{},
		&model.Specification{},
		&model.PerforationType{},
		&model.LiningType{},
		&model.LastingType{},
		&model.CuttingPartTemplate{},
		&model.Material{},
		&model.MaterialPriceHistory{},
		&model.User{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that GORM AutoMigrate cannot express.
// Safe to re-run on an already-patched database.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// At most one active base specification per model.
		{"partial unique index on base specifications", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uniq_base_spec_per_model') THEN
    CREATE UNIQUE INDEX uniq_base_spec_per_model
        ON specifications (model_id)
        WHERE is_default AND is_active;
  END IF;
END $$`},
		// The recost worker queries cutting_parts with jsonb containment.
		{"gin index on cutting_parts", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_specifications_cutting_parts') THEN
    CREATE INDEX idx_specifications_cutting_parts
        ON specifications USING gin (cutting_parts jsonb_path_ops);
  END IF;
END $$`},
		{"index on variant listings", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_specifications_model_variants') THEN
    CREATE INDEX idx_specifications_model_variants
        ON specifications (model_id)
        WHERE NOT is_default;
  END IF;
END $$`},
		{"index on price history lookups", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_material_price_history_material') THEN
    CREATE INDEX idx_material_price_history_material
        ON material_price_history (material_id, created_at DESC);
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
