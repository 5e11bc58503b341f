package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shelfwise/shelfwise-backend/src/cache"
	"github.com/shelfwise/shelfwise-backend/src/config"
	"github.com/shelfwise/shelfwise-backend/src/models"
	"github.com/shelfwise/shelfwise-backend/src/planogram"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PlaceRequest struct {
	// ShelfID is optional; when set the segment must belong to it.
	ShelfID   int
	SegmentID int
	ProductID int
	XPosition float64
	FaceCount int
}

// MoveRequest changes an existing placement. Nil fields keep their current value.
// FaceCount wins over FaceCountChange when both are set.
type MoveRequest struct {
	PlacementID     int
	XPosition       *float64
	FaceCount       *int
	FaceCountChange *int
	SegmentID       *int
}

type PlacementService struct {
	db        *gorm.DB
	rules     config.Rules
	validator *planogram.Validator
	cache     *cache.Cache
	log       *zap.Logger
}

func NewPlacementService(db *gorm.DB, rules config.Rules, store *cache.Cache, log *zap.Logger) *PlacementService {
	return &PlacementService{
		db:        db,
		rules:     rules,
		validator: planogram.NewValidator(rules),
		cache:     store,
		log:       log,
	}
}

// Place validates and inserts a new placement in one transaction.
// A rejected candidate returns its violations and a nil error; nothing is written.
func (s *PlacementService) Place(ctx context.Context, req PlaceRequest) (*models.PlacementModel, planogram.Violations, error) {
	var placement *models.PlacementModel
	var violations planogram.Violations

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		segment, err := loadSegment(tx, req.SegmentID, s.rules.LockSegments)
		if err != nil {
			return err
		}
		if req.ShelfID != 0 && segment.ShelfID != req.ShelfID {
			return ErrSegmentNotFound
		}
		product, err := loadProduct(tx, req.ProductID)
		if err != nil {
			return err
		}
		existing, err := segmentPlacements(tx, segment.ID)
		if err != nil {
			return err
		}

		violations = s.validator.Validate(planogram.Candidate{
			Shelf:     segment.Shelf,
			Segment:   segment,
			Product:   product,
			XPosition: req.XPosition,
			FaceCount: req.FaceCount,
			Existing:  existing,
		})
		if len(violations) > 0 {
			return errRejected
		}

		order, err := nextPlacementOrder(tx, segment.ID)
		if err != nil {
			return err
		}
		p := &models.PlacementModel{
			ShelfID:        segment.ShelfID,
			SegmentID:      segment.ID,
			ProductID:      product.ID,
			XPosition:      req.XPosition,
			FaceCount:      req.FaceCount,
			PlacementOrder: order,
		}
		planogram.Normalize(p, *product)
		if err := tx.Omit(clause.Associations).Create(p).Error; err != nil {
			return fmt.Errorf("insert placement: %w", err)
		}
		p.Product = product
		placement = p
		return nil
	})
	if errors.Is(err, errRejected) {
		s.log.Info("placement rejected",
			zap.Int("segment_id", req.SegmentID),
			zap.Int("product_id", req.ProductID),
			zap.Strings("violations", violations.Strings()))
		return nil, violations, nil
	}
	if err != nil {
		return nil, nil, err
	}

	s.invalidate(placement.ShelfID)
	s.log.Info("product placed",
		zap.Int("placement_id", placement.ID),
		zap.Int("segment_id", placement.SegmentID),
		zap.String("product", placement.ProductName()),
		zap.Float64("x_position", placement.XPosition),
		zap.Int("face_count", placement.FaceCount))
	return placement, nil, nil
}

// Move validates the changed placement against its target segment before touching it.
// The placement is updated in place, keeping its id.
func (s *PlacementService) Move(ctx context.Context, req MoveRequest) (*models.PlacementModel, planogram.Violations, error) {
	var placement *models.PlacementModel
	var violations planogram.Violations

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.PlacementModel
		if err := tx.First(&current, req.PlacementID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPlacementNotFound
			}
			return fmt.Errorf("load placement %d: %w", req.PlacementID, err)
		}

		targetID := current.SegmentID
		if req.SegmentID != nil {
			targetID = *req.SegmentID
		}
		segment, err := loadSegment(tx, targetID, s.rules.LockSegments)
		if err != nil {
			return err
		}
		if segment.ShelfID != current.ShelfID {
			return ErrSegmentNotFound
		}
		product, err := loadProduct(tx, current.ProductID)
		if err != nil {
			return err
		}
		existing, err := segmentPlacements(tx, segment.ID)
		if err != nil {
			return err
		}

		next := current
		if req.XPosition != nil {
			next.XPosition = *req.XPosition
		}
		switch {
		case req.FaceCount != nil:
			next.FaceCount = *req.FaceCount
		case req.FaceCountChange != nil:
			next.FaceCount = current.FaceCount + *req.FaceCountChange
		}

		violations = s.validator.Validate(planogram.Candidate{
			Shelf:     segment.Shelf,
			Segment:   segment,
			Product:   product,
			XPosition: next.XPosition,
			FaceCount: next.FaceCount,
			Existing:  existing,
			ExcludeID: current.ID,
		})
		if len(violations) > 0 {
			return errRejected
		}

		if segment.ID != current.SegmentID {
			order, err := nextPlacementOrder(tx, segment.ID)
			if err != nil {
				return err
			}
			next.SegmentID = segment.ID
			next.PlacementOrder = order
		}
		planogram.Normalize(&next, *product)

		err = tx.Model(&current).
			Select("segment_id", "x_position", "face_count", "occupied_width", "placement_order", "updated_at").
			Updates(&next).Error
		if err != nil {
			return fmt.Errorf("update placement %d: %w", current.ID, err)
		}
		next.Product = product
		placement = &next
		return nil
	})
	if errors.Is(err, errRejected) {
		s.log.Info("placement update rejected",
			zap.Int("placement_id", req.PlacementID),
			zap.Strings("violations", violations.Strings()))
		return nil, violations, nil
	}
	if err != nil {
		return nil, nil, err
	}

	s.invalidate(placement.ShelfID)
	s.log.Info("placement updated",
		zap.Int("placement_id", placement.ID),
		zap.Int("segment_id", placement.SegmentID),
		zap.Float64("x_position", placement.XPosition),
		zap.Int("face_count", placement.FaceCount))
	return placement, nil, nil
}

// Delete removes one placement and returns it as it was.
func (s *PlacementService) Delete(ctx context.Context, id int) (*models.PlacementModel, error) {
	var placement models.PlacementModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Product").First(&placement, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPlacementNotFound
			}
			return fmt.Errorf("load placement %d: %w", id, err)
		}
		if err := tx.Delete(&models.PlacementModel{}, id).Error; err != nil {
			return fmt.Errorf("delete placement %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(placement.ShelfID)
	s.log.Info("placement deleted", zap.Int("placement_id", id), zap.String("product", placement.ProductName()))
	return &placement, nil
}

// ClearAll removes every placement on a shelf and reports how many went.
func (s *PlacementService) ClearAll(ctx context.Context, shelfID int) (int64, error) {
	var removed int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := shelfExists(tx, shelfID); err != nil {
			return err
		}
		result := tx.Where("shelf_id = ?", shelfID).Delete(&models.PlacementModel{})
		if result.Error != nil {
			return fmt.Errorf("clear shelf %d: %w", shelfID, result.Error)
		}
		removed = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.invalidate(shelfID)
	s.log.Info("shelf cleared", zap.Int("shelf_id", shelfID), zap.Int64("removed", removed))
	return removed, nil
}

func (s *PlacementService) Get(ctx context.Context, id int) (*models.PlacementModel, error) {
	var placement models.PlacementModel
	if err := s.db.WithContext(ctx).Preload("Product").First(&placement, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlacementNotFound
		}
		return nil, err
	}
	return &placement, nil
}

// ListBySegment returns the placements of a segment ordered by x position.
func (s *PlacementService) ListBySegment(ctx context.Context, segmentID int) ([]models.PlacementModel, error) {
	return segmentPlacements(s.db.WithContext(ctx), segmentID)
}

func (s *PlacementService) invalidate(shelfID int) {
	invalidateShelf(s.cache, shelfID)
}

// loadSegment reads a segment and its shelf, locking the segment row when asked to.
func loadSegment(tx *gorm.DB, id int, lock bool) (*models.SegmentModel, error) {
	q := tx
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var segment models.SegmentModel
	if err := q.First(&segment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSegmentNotFound
		}
		return nil, fmt.Errorf("load segment %d: %w", id, err)
	}
	var shelf models.ShelfModel
	if err := tx.First(&shelf, segment.ShelfID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShelfNotFound
		}
		return nil, fmt.Errorf("load shelf %d: %w", segment.ShelfID, err)
	}
	segment.Shelf = &shelf
	return &segment, nil
}

func loadProduct(tx *gorm.DB, id int) (*models.ProductModel, error) {
	var product models.ProductModel
	if err := tx.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("load product %d: %w", id, err)
	}
	return &product, nil
}

func segmentPlacements(tx *gorm.DB, segmentID int) ([]models.PlacementModel, error) {
	var placements []models.PlacementModel
	err := tx.Preload("Product").
		Where("segment_id = ?", segmentID).
		Order("x_position ASC, id ASC").
		Find(&placements).Error
	if err != nil {
		return nil, fmt.Errorf("load placements of segment %d: %w", segmentID, err)
	}
	return placements, nil
}

func nextPlacementOrder(tx *gorm.DB, segmentID int) (int, error) {
	var order int
	err := tx.Model(&models.PlacementModel{}).
		Where("segment_id = ?", segmentID).
		Select("COALESCE(MAX(placement_order), 0) + 1").
		Scan(&order).Error
	if err != nil {
		return 0, fmt.Errorf("next placement order: %w", err)
	}
	return order, nil
}

func shelfExists(tx *gorm.DB, shelfID int) error {
	var count int64
	if err := tx.Model(&models.ShelfModel{}).Where("id = ?", shelfID).Count(&count).Error; err != nil {
		return fmt.Errorf("load shelf %d: %w", shelfID, err)
	}
	if count == 0 {
		return ErrShelfNotFound
	}
	return nil
}

func invalidateShelf(store *cache.Cache, shelfID int) {
	if store == nil {
		return
	}
	store.Invalidate(shelfKeyPrefix(shelfID))
}

func shelfKeyPrefix(shelfID int) string {
	return fmt.Sprintf("shelf:%d:", shelfID)
}
