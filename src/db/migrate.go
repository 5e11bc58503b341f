package db

import (
	"context"

	"github.com/shelfwise/shelfwise-backend/src/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MigrateOptions struct {
	CreateChecks bool // CHECK constraints on dimensions and counts
	CreateFKs    bool // cascade FKs re-declared through SQL
}

func DefaultMigrateOptions() MigrateOptions {
	return MigrateOptions{CreateChecks: true, CreateFKs: true}
}

var checks = []struct {
	name string
	sql  string
}{
	{"chk_products_dimensions", `
ALTER TABLE product_models
	DROP CONSTRAINT IF EXISTS chk_products_dimensions,
	ADD CONSTRAINT chk_products_dimensions
	CHECK (width >= 0.1 AND height >= 0.1 AND depth >= 0.1 AND price >= 0);`},
	{"chk_shelves_dimensions", `
ALTER TABLE shelf_models
	DROP CONSTRAINT IF EXISTS chk_shelves_dimensions,
	ADD CONSTRAINT chk_shelves_dimensions
	CHECK (width >= 10 AND depth >= 10 AND total_height >= 10);`},
	{"chk_segments_geometry", `
ALTER TABLE segment_models
	DROP CONSTRAINT IF EXISTS chk_segments_geometry,
	ADD CONSTRAINT chk_segments_geometry
	CHECK (level >= 1 AND height >= 5 AND y_position >= 0);`},
	{"chk_placements_geometry", `
ALTER TABLE placement_models
	DROP CONSTRAINT IF EXISTS chk_placements_geometry,
	ADD CONSTRAINT chk_placements_geometry
	CHECK (x_position >= 0 AND face_count >= 1 AND occupied_width >= 0.1);`},
}

var foreignKeys = []struct {
	name string
	sql  string
}{
	{"fk_segments_shelf", `
ALTER TABLE segment_models
	DROP CONSTRAINT IF EXISTS fk_segments_shelf,
	ADD CONSTRAINT fk_segments_shelf
		FOREIGN KEY (shelf_id) REFERENCES shelf_models(id) ON DELETE CASCADE;`},
	{"fk_placements_shelf", `
ALTER TABLE placement_models
	DROP CONSTRAINT IF EXISTS fk_placements_shelf,
	ADD CONSTRAINT fk_placements_shelf
		FOREIGN KEY (shelf_id) REFERENCES shelf_models(id) ON DELETE CASCADE;`},
	{"fk_placements_segment", `
ALTER TABLE placement_models
	DROP CONSTRAINT IF EXISTS fk_placements_segment,
	ADD CONSTRAINT fk_placements_segment
		FOREIGN KEY (segment_id) REFERENCES segment_models(id) ON DELETE CASCADE;`},
	{"fk_placements_product", `
ALTER TABLE placement_models
	DROP CONSTRAINT IF EXISTS fk_placements_product,
	ADD CONSTRAINT fk_placements_product
		FOREIGN KEY (product_id) REFERENCES product_models(id) ON DELETE CASCADE;`},
}

// Migrate creates the planogram schema. It is safe to run repeatedly.
func Migrate(ctx context.Context, db *gorm.DB, log *zap.Logger, opt MigrateOptions) error {
	db = db.WithContext(ctx)
	log.Info("migrating planogram schema")

	if err := db.AutoMigrate(
		&models.UserModel{},
		&models.ProductModel{},
		&models.ShelfModel{},
		&models.SegmentModel{},
		&models.PlacementModel{},
		&models.ShelfTemplateModel{},
	); err != nil {
		log.Error("AutoMigrate error", zap.Error(err))
		return err
	}

	if opt.CreateChecks {
		for _, c := range checks {
			if err := db.Exec(c.sql).Error; err != nil {
				log.Error("check constraint error", zap.String("constraint", c.name), zap.Error(err))
				return err
			}
		}
	}

	if opt.CreateFKs {
		for _, fk := range foreignKeys {
			if err := db.Exec(fk.sql).Error; err != nil {
				log.Error("foreign key error", zap.String("constraint", fk.name), zap.Error(err))
				return err
			}
		}
	}

	log.Info("planogram schema migrated")
	return nil
}
