// Package seed loads the admin account and the sample drinks shelf.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/shelfwise/shelfwise-backend/src/models"
	"github.com/shelfwise/shelfwise-backend/src/services"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	SampleShelfName  = "Sample shelf (drinks corner)"
	sampleNamePrefix = "Sample"
	sampleJanPrefix  = "SAMPLE"
)

var sampleSegmentHeights = []float64{40, 35, 35, 40}

type sampleProduct struct {
	name, maker          string
	width, height, depth float64
	price                int64
}

var sampleProducts = []sampleProduct{
	{"Coca-Cola 500ml", "Coca-Cola", 6.5, 20.5, 6.5, 150},
	{"Pepsi 500ml", "Suntory", 6.5, 20.5, 6.5, 140},
	{"I LOHAS 555ml", "Coca-Cola", 6.0, 21.0, 6.0, 110},
	{"Pocari Sweat 500ml", "Otsuka", 6.8, 19.5, 6.8, 160},
	{"Potato Chips Lightly Salted", "Calbee", 18.0, 23.0, 8.0, 158},
	{"KitKat Mini", "Nestle", 10.5, 15.0, 3.5, 298},
}

// Result reports what Sample created.
type Result struct {
	Shelf      *models.ShelfModel
	Products   int
	Placements int
	// Existing is set when the sample shelf was already there and left untouched.
	Existing bool
}

type Seeder struct {
	db         *gorm.DB
	products   *services.ProductService
	shelves    *services.ShelfService
	placements *services.PlacementService
	users      *services.UserService
	log        *zap.Logger
}

func New(db *gorm.DB, products *services.ProductService, shelves *services.ShelfService,
	placements *services.PlacementService, users *services.UserService, log *zap.Logger) *Seeder {
	return &Seeder{db: db, products: products, shelves: shelves, placements: placements, users: users, log: log}
}

// Admin creates the login account unless it exists.
func (s *Seeder) Admin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return errors.New("admin username and password are required")
	}
	if err := s.users.EnsureUser(ctx, username, password); err != nil {
		return fmt.Errorf("ensure admin user: %w", err)
	}
	return nil
}

// Sample creates six products and a four level shelf with drinks on the bottom
// segment and snacks on the one above. Every placement goes through the validator.
func (s *Seeder) Sample(ctx context.Context) (*Result, error) {
	products, err := s.ensureProducts(ctx)
	if err != nil {
		return nil, err
	}

	var existing models.ShelfModel
	err = s.db.WithContext(ctx).Where("name = ?", SampleShelfName).First(&existing).Error
	if err == nil {
		s.log.Info("sample shelf already present", zap.Int("shelf_id", existing.ID))
		return &Result{Shelf: &existing, Products: len(products), Existing: true}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	shelf, err := s.shelves.CreateShelf(ctx, &models.ShelfModel{
		Name:        SampleShelfName,
		Width:       120,
		Depth:       45,
		TotalHeight: 180,
		Description: "Drinks and snacks sample planogram",
	}, sampleSegmentHeights)
	if err != nil {
		return nil, err
	}

	res := &Result{Shelf: shelf, Products: len(products)}
	// drinks: 3 faces each, 2cm apart
	n, err := s.row(ctx, shelf, shelf.Segments[0], products[:4], 5, 3, 2)
	res.Placements += n
	if err != nil {
		return res, err
	}
	// snacks: 2 faces each, 3cm apart
	n, err = s.row(ctx, shelf, shelf.Segments[1], products[4:], 10, 2, 3)
	res.Placements += n
	if err != nil {
		return res, err
	}

	s.log.Info("sample data created",
		zap.Int("shelf_id", shelf.ID),
		zap.Int("products", res.Products),
		zap.Int("placements", res.Placements))
	return res, nil
}

func (s *Seeder) row(ctx context.Context, shelf *models.ShelfModel, segment models.SegmentModel,
	products []models.ProductModel, x float64, faces int, spacing float64) (int, error) {
	placed := 0
	for _, p := range products {
		_, violations, err := s.placements.Place(ctx, services.PlaceRequest{
			ShelfID:   shelf.ID,
			SegmentID: segment.ID,
			ProductID: p.ID,
			XPosition: x,
			FaceCount: faces,
		})
		if err != nil {
			return placed, err
		}
		if len(violations) > 0 {
			return placed, fmt.Errorf("sample placement of %s rejected: %s", p.Name, violations.Error())
		}
		placed++
		x += p.Width*float64(faces) + spacing
	}
	return placed, nil
}

func (s *Seeder) ensureProducts(ctx context.Context) ([]models.ProductModel, error) {
	out := make([]models.ProductModel, 0, len(sampleProducts))
	for i, sp := range sampleProducts {
		jan := fmt.Sprintf("%s%06d", sampleJanPrefix, i+1)

		var product models.ProductModel
		err := s.db.WithContext(ctx).Where("name = ?", sp.name).First(&product).Error
		if err == nil {
			out = append(out, product)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		created, err := s.products.CreateProduct(ctx, &models.ProductModel{
			Name:    sp.name,
			Maker:   sp.maker,
			JanCode: &jan,
			Width:   sp.width,
			Height:  sp.height,
			Depth:   sp.depth,
			Price:   decimal.NewFromInt(sp.price),
		})
		if err != nil {
			return nil, fmt.Errorf("create sample product %s: %w", sp.name, err)
		}
		out = append(out, *created)
	}
	return out, nil
}

// Clear removes the sample shelves and products along with their placements.
func (s *Seeder) Clear(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var shelfIDs []int
		if err := tx.Model(&models.ShelfModel{}).Where("name LIKE ?", sampleNamePrefix+"%").Pluck("id", &shelfIDs).Error; err != nil {
			return err
		}
		var productIDs []int
		if err := tx.Model(&models.ProductModel{}).Where("jan_code LIKE ?", sampleJanPrefix+"%").Pluck("id", &productIDs).Error; err != nil {
			return err
		}
		if len(shelfIDs) > 0 {
			if err := tx.Where("shelf_id IN ?", shelfIDs).Delete(&models.PlacementModel{}).Error; err != nil {
				return err
			}
			if err := tx.Where("shelf_id IN ?", shelfIDs).Delete(&models.SegmentModel{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.ShelfModel{}, shelfIDs).Error; err != nil {
				return err
			}
		}
		if len(productIDs) > 0 {
			if err := tx.Where("product_id IN ?", productIDs).Delete(&models.PlacementModel{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.ProductModel{}, productIDs).Error; err != nil {
				return err
			}
		}
		s.log.Info("sample data cleared",
			zap.Int("shelves", len(shelfIDs)),
			zap.Int("products", len(productIDs)))
		return nil
	})
}
