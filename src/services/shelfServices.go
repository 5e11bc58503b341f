package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shelfwise/shelfwise-backend/src/cache"
	"github.com/shelfwise/shelfwise-backend/src/config"
	"github.com/shelfwise/shelfwise-backend/src/models"
	"github.com/shelfwise/shelfwise-backend/src/planogram"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultSegmentHeights is used when a shelf is created without explicit levels.
var DefaultSegmentHeights = []float64{30, 35, 35, 40}

const (
	minShelfWidth  = 30.0
	maxShelfWidth  = 300.0
	minShelfHeight = 80.0
	maxShelfHeight = 250.0
)

const layoutTTL = 30 * time.Second

// ShelfPatch carries the editable shelf attributes. Nil fields are left alone.
type ShelfPatch struct {
	Name        *string
	Description *string
	Width       *float64
	Depth       *float64
	TotalHeight *float64
	IsActive    *bool
}

type ProductFaces struct {
	Name           string `json:"name"`
	Maker          string `json:"maker"`
	TotalFaces     int    `json:"totalFaces"`
	PlacementCount int    `json:"placementCount"`
}

type ShelfStatistics struct {
	ShelfID          int            `json:"shelfId"`
	TotalPlacements  int            `json:"totalPlacements"`
	TotalFaceCount   int            `json:"totalFaceCount"`
	UniqueProducts   int            `json:"uniqueProducts"`
	SegmentsUsed     int            `json:"segmentsUsed"`
	AverageFaceCount float64        `json:"averageFaceCount"`
	MostPlaced       []ProductFaces `json:"mostPlaced"`
}

type ShelfService struct {
	db    *gorm.DB
	rules config.Rules
	cache *cache.Cache
	log   *zap.Logger
}

// NewShelfService creates a new instance of ShelfService
func NewShelfService(db *gorm.DB, rules config.Rules, store *cache.Cache, log *zap.Logger) *ShelfService {
	return &ShelfService{db: db, rules: rules, cache: store, log: log}
}

// ListShelves returns the active shelves with their segments
func (s *ShelfService) ListShelves(ctx context.Context) ([]models.ShelfModel, error) {
	var shelves []models.ShelfModel
	err := s.db.WithContext(ctx).
		Preload("Segments", func(db *gorm.DB) *gorm.DB { return db.Order("level ASC") }).
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&shelves).Error
	if err != nil {
		return nil, err
	}
	return shelves, nil
}

// GetShelf loads a shelf with its segments, placements and products
func (s *ShelfService) GetShelf(ctx context.Context, id int) (*models.ShelfModel, error) {
	return loadShelfTree(s.db.WithContext(ctx), id)
}

// GetLayout is GetShelf served from the layout cache.
func (s *ShelfService) GetLayout(ctx context.Context, id int) (*models.ShelfModel, error) {
	key := shelfKeyPrefix(id) + "layout"
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			return cached.(*models.ShelfModel), nil
		}
	}
	shelf, err := s.GetShelf(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(key, shelf, layoutTTL)
	}
	return shelf, nil
}

// CreateShelf stores shelf with one segment per entry of heights, bottom level first.
func (s *ShelfService) CreateShelf(ctx context.Context, shelf *models.ShelfModel, heights []float64) (*models.ShelfModel, error) {
	if len(heights) == 0 {
		heights = DefaultSegmentHeights
	}
	if err := s.checkShelf(shelf.Width, shelf.Depth, shelf.TotalHeight, heights); err != nil {
		return nil, err
	}

	shelf.ID = 0
	shelf.IsActive = true
	shelf.Segments = planogram.RecomputeYPositions(buildSegments(heights))

	if err := s.db.WithContext(ctx).Create(shelf).Error; err != nil {
		return nil, fmt.Errorf("create shelf: %w", err)
	}
	s.log.Info("shelf created",
		zap.Int("shelf_id", shelf.ID),
		zap.String("name", shelf.Name),
		zap.Int("segments", len(shelf.Segments)))
	return shelf, nil
}

// CreateShelfFromTemplate stamps out a shelf using a stored template's dimensions and levels.
func (s *ShelfService) CreateShelfFromTemplate(ctx context.Context, templateID int, name string) (*models.ShelfModel, error) {
	var tpl models.ShelfTemplateModel
	if err := s.db.WithContext(ctx).First(&tpl, templateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	if name == "" {
		name = tpl.Name
	}
	return s.CreateShelf(ctx, &models.ShelfModel{
		Name:        name,
		Width:       tpl.ShelfWidth,
		Depth:       tpl.ShelfDepth,
		TotalHeight: tpl.TotalHeight,
		Description: tpl.Description,
	}, tpl.SegmentHeights)
}

// UpdateShelf applies patch. Narrowing is refused while a placement would end past the new width.
func (s *ShelfService) UpdateShelf(ctx context.Context, id int, patch ShelfPatch) (*models.ShelfModel, error) {
	var shelf models.ShelfModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Segments").First(&shelf, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrShelfNotFound
			}
			return err
		}

		updates := map[string]any{}
		if patch.Name != nil {
			updates["name"] = *patch.Name
		}
		if patch.Description != nil {
			updates["description"] = *patch.Description
		}
		if patch.IsActive != nil {
			updates["is_active"] = *patch.IsActive
		}
		width, depth, total := shelf.Width, shelf.Depth, shelf.TotalHeight
		if patch.Width != nil {
			width = *patch.Width
			updates["width"] = width
		}
		if patch.Depth != nil {
			depth = *patch.Depth
			updates["depth"] = depth
		}
		if patch.TotalHeight != nil {
			total = *patch.TotalHeight
			updates["total_height"] = total
		}

		heights := make([]float64, 0, len(shelf.Segments))
		for _, seg := range shelf.Segments {
			heights = append(heights, seg.Height)
		}
		if err := s.checkShelf(width, depth, total, heights); err != nil {
			return err
		}

		if width < shelf.Width {
			var widest float64
			err := tx.Model(&models.PlacementModel{}).
				Where("shelf_id = ?", id).
				Select("COALESCE(MAX(x_position + occupied_width), 0)").
				Scan(&widest).Error
			if err != nil {
				return err
			}
			if planogram.RoundCM(widest) > width {
				return fmt.Errorf("%w: placements reach %.1fcm", ErrShelfTooNarrow, widest)
			}
		}

		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&shelf).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	invalidateShelf(s.cache, id)
	s.log.Info("shelf updated", zap.Int("shelf_id", id))
	return &shelf, nil
}

// DeleteShelf removes a shelf; segments and placements go with it
func (s *ShelfService) DeleteShelf(ctx context.Context, id int) error {
	result := s.db.WithContext(ctx).Delete(&models.ShelfModel{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrShelfNotFound
	}
	invalidateShelf(s.cache, id)
	s.log.Info("shelf deleted", zap.Int("shelf_id", id))
	return nil
}

// UpdateSegmentHeights changes several segment heights at once and recomputes every y position.
// Either all changes apply or none do.
func (s *ShelfService) UpdateSegmentHeights(ctx context.Context, shelfID int, heights map[int]float64) ([]models.SegmentModel, error) {
	var segments []models.SegmentModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		shelf, err := loadShelfTree(tx, shelfID)
		if err != nil {
			return err
		}

		byID := make(map[int]int, len(shelf.Segments))
		for i, seg := range shelf.Segments {
			byID[seg.ID] = i
		}

		var reasons []string
		for segID, height := range heights {
			i, ok := byID[segID]
			if !ok {
				return fmt.Errorf("%w: %d on shelf %d", ErrSegmentNotFound, segID, shelfID)
			}
			seg := shelf.Segments[i]
			if reason := planogram.CheckSegmentHeight(s.rules, seg, seg.Placements, height); reason != "" {
				reasons = append(reasons, reason)
				continue
			}
			shelf.Segments[i].Height = height
		}
		if len(reasons) > 0 {
			return &SegmentHeightError{Reasons: reasons}
		}

		segments = planogram.RecomputeYPositions(shelf.Segments)
		for _, seg := range segments {
			err := tx.Model(&models.SegmentModel{}).
				Where("id = ?", seg.ID).
				Updates(map[string]any{"height": seg.Height, "y_position": seg.YPosition}).Error
			if err != nil {
				return fmt.Errorf("update segment %d: %w", seg.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidateShelf(s.cache, shelfID)
	s.log.Info("segment heights updated", zap.Int("shelf_id", shelfID), zap.Int("changed", len(heights)))
	return segments, nil
}

func (s *ShelfService) GetUtilization(ctx context.Context, id int) (*planogram.Utilization, error) {
	shelf, err := s.GetShelf(ctx, id)
	if err != nil {
		return nil, err
	}
	active := make([]models.SegmentModel, 0, len(shelf.Segments))
	for _, seg := range shelf.Segments {
		if seg.IsActive {
			active = append(active, seg)
		}
	}
	u := planogram.ComputeUtilization(*shelf, active)
	return &u, nil
}

// GetStatistics summarises the placements of a shelf.
func (s *ShelfService) GetStatistics(ctx context.Context, id int) (*ShelfStatistics, error) {
	db := s.db.WithContext(ctx)
	if err := shelfExists(db, id); err != nil {
		return nil, err
	}

	var totals struct {
		Placements     int
		Faces          int
		UniqueProducts int
		SegmentsUsed   int
	}
	err := db.Model(&models.PlacementModel{}).
		Select("COUNT(*) AS placements, COALESCE(SUM(face_count), 0) AS faces, "+
			"COUNT(DISTINCT product_id) AS unique_products, COUNT(DISTINCT segment_id) AS segments_used").
		Where("shelf_id = ?", id).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}

	top := []ProductFaces{}
	err = db.Table("placement_models AS pl").
		Select("p.name AS name, p.maker AS maker, SUM(pl.face_count) AS total_faces, COUNT(pl.id) AS placement_count").
		Joins("JOIN product_models AS p ON p.id = pl.product_id").
		Where("pl.shelf_id = ?", id).
		Group("p.id, p.name, p.maker").
		Order("total_faces DESC, p.name ASC").
		Limit(5).
		Scan(&top).Error
	if err != nil {
		return nil, err
	}

	stats := &ShelfStatistics{
		ShelfID:         id,
		TotalPlacements: totals.Placements,
		TotalFaceCount:  totals.Faces,
		UniqueProducts:  totals.UniqueProducts,
		SegmentsUsed:    totals.SegmentsUsed,
		MostPlaced:      top,
	}
	if totals.Placements > 0 {
		stats.AverageFaceCount = planogram.RoundCM(float64(totals.Faces) / float64(totals.Placements))
	}
	return stats, nil
}

// ListTemplates returns every stored shelf template
func (s *ShelfService) ListTemplates(ctx context.Context) ([]models.ShelfTemplateModel, error) {
	var templates []models.ShelfTemplateModel
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

func (s *ShelfService) CreateTemplate(ctx context.Context, tpl *models.ShelfTemplateModel) (*models.ShelfTemplateModel, error) {
	if len(tpl.SegmentHeights) == 0 {
		tpl.SegmentHeights = DefaultSegmentHeights
	}
	if err := s.checkShelf(tpl.ShelfWidth, tpl.ShelfDepth, tpl.TotalHeight, tpl.SegmentHeights); err != nil {
		return nil, err
	}
	tpl.ID = 0
	if err := s.db.WithContext(ctx).Create(tpl).Error; err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	return tpl, nil
}

// checkShelf rejects out of range dimensions and segment heights,
// and levels that do not fit in the total height.
func (s *ShelfService) checkShelf(width, depth, totalHeight float64, heights []float64) error {
	if width < minShelfWidth || width > maxShelfWidth {
		return fmt.Errorf("%w: width must be between %.0fcm and %.0fcm", ErrInvalidShelf, minShelfWidth, maxShelfWidth)
	}
	if totalHeight < minShelfHeight || totalHeight > maxShelfHeight {
		return fmt.Errorf("%w: total height must be between %.0fcm and %.0fcm", ErrInvalidShelf, minShelfHeight, maxShelfHeight)
	}
	if depth <= 0 {
		return fmt.Errorf("%w: depth must be positive", ErrInvalidShelf)
	}
	for i, h := range heights {
		if h < s.rules.MinSegmentHeight || h > s.rules.MaxSegmentHeight {
			return fmt.Errorf("%w: segment %d height %.1fcm outside %.1f-%.1fcm",
				ErrInvalidShelf, i+1, h, s.rules.MinSegmentHeight, s.rules.MaxSegmentHeight)
		}
	}
	if sum := planogram.SumCM(heights...); sum > totalHeight {
		return fmt.Errorf("%w: segments need %.1fcm but the shelf is %.1fcm tall", ErrInvalidShelf, sum, totalHeight)
	}
	return nil
}

func buildSegments(heights []float64) []models.SegmentModel {
	segments := make([]models.SegmentModel, 0, len(heights))
	for i, h := range heights {
		segments = append(segments, models.SegmentModel{Level: i + 1, Height: h, IsActive: true})
	}
	return segments
}

func loadShelfTree(db *gorm.DB, id int) (*models.ShelfModel, error) {
	var shelf models.ShelfModel
	err := db.
		Preload("Segments", func(db *gorm.DB) *gorm.DB { return db.Order("level ASC") }).
		Preload("Segments.Placements", func(db *gorm.DB) *gorm.DB { return db.Order("x_position ASC, id ASC") }).
		Preload("Segments.Placements.Product").
		First(&shelf, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShelfNotFound
		}
		return nil, err
	}
	return &shelf, nil
}
