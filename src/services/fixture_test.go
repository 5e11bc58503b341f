package services_test

import (
	"context"
	"testing"

	"github.com/shelfwise/shelfwise-backend/src/cache"
	"github.com/shelfwise/shelfwise-backend/src/config"
	"github.com/shelfwise/shelfwise-backend/src/models"
	"github.com/shelfwise/shelfwise-backend/src/planogram"
	"github.com/shelfwise/shelfwise-backend/src/services"
	"github.com/shelfwise/shelfwise-backend/src/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type fixture struct {
	ctx         context.Context
	db          *gorm.DB
	rules       config.Rules
	store       *cache.Cache
	products    *services.ProductService
	shelves     *services.ShelfService
	placements  *services.PlacementService
	maintenance *services.MaintenanceService
	users       *services.UserService
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithRules(t, config.DefaultRules())
}

func newFixtureWithRules(t *testing.T, rules config.Rules) *fixture {
	t.Helper()
	db := testutil.SetupTestPostgres(t)
	store := cache.New()
	t.Cleanup(store.Close)
	log := zap.NewNop()
	return &fixture{
		ctx:         context.Background(),
		db:          db,
		rules:       rules,
		store:       store,
		products:    services.NewProductService(db, rules, store, log),
		shelves:     services.NewShelfService(db, rules, store, log),
		placements:  services.NewPlacementService(db, rules, store, log),
		maintenance: services.NewMaintenanceService(db, rules, store, log),
		users:       services.NewUserService(db, "test-secret", log),
	}
}

// shelf creates a shelf of width cm, 180cm tall, with one segment per height.
func (f *fixture) shelf(t *testing.T, width float64, heights ...float64) *models.ShelfModel {
	t.Helper()
	shelf, err := f.shelves.CreateShelf(f.ctx, &models.ShelfModel{
		Name:        "test shelf",
		Width:       width,
		Depth:       45,
		TotalHeight: 180,
	}, heights)
	require.NoError(t, err)
	return shelf
}

func (f *fixture) product(t *testing.T, name string, width, height float64) *models.ProductModel {
	t.Helper()
	p, err := f.products.CreateProduct(f.ctx, &models.ProductModel{
		Name:   name,
		Maker:  "test",
		Width:  width,
		Height: height,
		Depth:  5,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) place(t *testing.T, segment models.SegmentModel, product *models.ProductModel, x float64, faces int) *models.PlacementModel {
	t.Helper()
	p, violations, err := f.placements.Place(f.ctx, services.PlaceRequest{
		SegmentID: segment.ID,
		ProductID: product.ID,
		XPosition: x,
		FaceCount: faces,
	})
	require.NoError(t, err)
	require.Empty(t, violations)
	return p
}

// force stores a placement without validation, the way drifted legacy data looks.
func (f *fixture) force(t *testing.T, segment models.SegmentModel, product *models.ProductModel, x, occupied float64) models.PlacementModel {
	t.Helper()
	p := models.PlacementModel{
		ShelfID:       segment.ShelfID,
		SegmentID:     segment.ID,
		ProductID:     product.ID,
		XPosition:     x,
		FaceCount:     1,
		OccupiedWidth: occupied,
	}
	require.NoError(t, f.db.Omit(clause.Associations).Create(&p).Error)
	return p
}

func (f *fixture) reload(t *testing.T, id int) models.PlacementModel {
	t.Helper()
	var p models.PlacementModel
	require.NoError(t, f.db.First(&p, id).Error)
	return p
}

func (f *fixture) count(t *testing.T, segmentID int) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.PlacementModel{}).Where("segment_id = ?", segmentID).Count(&n).Error)
	return n
}

// assertNoOverlaps checks the committed placements of a segment pairwise.
func (f *fixture) assertNoOverlaps(t *testing.T, segmentID int) {
	t.Helper()
	placements, err := f.placements.ListBySegment(f.ctx, segmentID)
	require.NoError(t, err)
	require.Empty(t, planogram.FindOverlaps(placements, f.rules.OverlapTolerance))
}
