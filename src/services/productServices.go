package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shelfwise/shelfwise-backend/src/cache"
	"github.com/shelfwise/shelfwise-backend/src/config"
	"github.com/shelfwise/shelfwise-backend/src/models"
	"github.com/shelfwise/shelfwise-backend/src/planogram"
	"github.com/shopspring/decimal"
	excelize "github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	minSearchLength = 2
	searchLimit     = 20
)

// ProductPatch carries the editable product attributes. Nil fields are left alone.
type ProductPatch struct {
	Name      *string
	Maker     *string
	JanCode   *string
	Width     *float64
	Height    *float64
	Depth     *float64
	Price     *decimal.Decimal
	ImagePath *string
	IsActive  *bool
}

type ImportResult struct {
	Imported int      `json:"imported"`
	Updated  int      `json:"updated"`
	Errors   []string `json:"errors"`
}

type ProductService struct {
	db    *gorm.DB
	rules config.Rules
	cache *cache.Cache
	log   *zap.Logger
}

func NewProductService(db *gorm.DB, rules config.Rules, store *cache.Cache, log *zap.Logger) *ProductService {
	return &ProductService{db: db, rules: rules, cache: store, log: log}
}

// ListProducts returns active products. A query of at least two characters
// searches name, maker and JAN code and caps the result.
func (s *ProductService) ListProducts(ctx context.Context, query string) ([]models.ProductModel, error) {
	q := s.db.WithContext(ctx).Where("is_active = ?", true)
	query = strings.TrimSpace(query)
	if len(query) >= minSearchLength {
		like := "%" + query + "%"
		q = q.Where("name ILIKE ? OR maker ILIKE ? OR jan_code LIKE ?", like, like, like).Limit(searchLimit)
	}
	var products []models.ProductModel
	if err := q.Order("name ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id int) (*models.ProductModel, error) {
	return loadProduct(s.db.WithContext(ctx), id)
}

func (s *ProductService) CreateProduct(ctx context.Context, product *models.ProductModel) (*models.ProductModel, error) {
	if err := checkProduct(product); err != nil {
		return nil, err
	}
	product.ID = 0
	product.IsActive = true
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := janCodeFree(tx, product.JanCode, 0); err != nil {
			return err
		}
		return tx.Create(product).Error
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("product created", zap.Int("product_id", product.ID), zap.String("name", product.Name))
	return product, nil
}

// UpdateProduct applies patch and recomputes the occupied width of every placement of the product.
// If the new dimensions would make any of those placements illegal nothing is written
// and the violations are returned.
func (s *ProductService) UpdateProduct(ctx context.Context, id int, patch ProductPatch) (*models.ProductModel, planogram.Violations, error) {
	var product *models.ProductModel
	var violations planogram.Violations
	var touched []int

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := loadProduct(tx, id)
		if err != nil {
			return err
		}
		next := *current
		applyProductPatch(&next, patch)
		if err := checkProduct(&next); err != nil {
			return err
		}
		if patch.JanCode != nil {
			if err := janCodeFree(tx, next.JanCode, id); err != nil {
				return err
			}
		}

		if next.Width != current.Width || next.Height != current.Height {
			touched, violations, err = s.replace(tx, next)
			if err != nil {
				return err
			}
			if len(violations) > 0 {
				return errRejected
			}
		}

		err = tx.Model(current).
			Select("name", "maker", "jan_code", "width", "height", "depth", "price", "image_path", "is_active", "updated_at").
			Updates(&next).Error
		if err != nil {
			return fmt.Errorf("update product %d: %w", id, err)
		}
		product = &next
		return nil
	})
	if errors.Is(err, errRejected) {
		s.log.Info("product update rejected", zap.Int("product_id", id), zap.Strings("violations", violations.Strings()))
		return nil, violations, nil
	}
	if err != nil {
		return nil, nil, err
	}

	for _, shelfID := range touched {
		invalidateShelf(s.cache, shelfID)
	}
	s.log.Info("product updated", zap.Int("product_id", id), zap.Int("shelves_touched", len(touched)))
	return product, nil, nil
}

// replace re-validates every placement of product with its new dimensions
// and rewrites their occupied widths. It returns the shelves it touched.
func (s *ProductService) replace(tx *gorm.DB, product models.ProductModel) ([]int, planogram.Violations, error) {
	var segmentIDs []int
	err := tx.Model(&models.PlacementModel{}).
		Where("product_id = ?", product.ID).
		Distinct("segment_id").
		Pluck("segment_id", &segmentIDs).Error
	if err != nil {
		return nil, nil, err
	}

	validator := planogram.NewValidator(s.rules)
	var shelves []int
	var out planogram.Violations
	for _, segID := range segmentIDs {
		var segment models.SegmentModel
		if err := tx.Preload("Shelf").First(&segment, segID).Error; err != nil {
			return nil, nil, fmt.Errorf("load segment %d: %w", segID, err)
		}
		placements, err := segmentPlacements(tx, segID)
		if err != nil {
			return nil, nil, err
		}
		for i := range placements {
			if placements[i].ProductID == product.ID {
				placements[i].Product = &product
				planogram.Normalize(&placements[i], product)
			}
		}
		for _, p := range placements {
			if p.ProductID != product.ID {
				continue
			}
			v := validator.Validate(planogram.Candidate{
				Shelf:     segment.Shelf,
				Segment:   &segment,
				Product:   &product,
				XPosition: p.XPosition,
				FaceCount: p.FaceCount,
				Existing:  placements,
				ExcludeID: p.ID,
			})
			for _, item := range v {
				item.Message = fmt.Sprintf("placement %d on segment %d: %s", p.ID, segment.Level, item.Message)
				out = append(out, item)
			}
			err := tx.Model(&models.PlacementModel{}).
				Where("id = ?", p.ID).
				Update("occupied_width", p.OccupiedWidth).Error
			if err != nil {
				return nil, nil, err
			}
		}
		shelves = append(shelves, segment.ShelfID)
	}
	return shelves, out, nil
}

// DeleteProduct removes a product along with its placements.
func (s *ProductService) DeleteProduct(ctx context.Context, id int) error {
	var shelves []int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.PlacementModel{}).
			Where("product_id = ?", id).
			Distinct("shelf_id").
			Pluck("shelf_id", &shelves).Error
		if err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.PlacementModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.ProductModel{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrProductNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, shelfID := range shelves {
		invalidateShelf(s.cache, shelfID)
	}
	s.log.Info("product deleted", zap.Int("product_id", id), zap.Int("placements_on_shelves", len(shelves)))
	return nil
}

// importColumns is the expected header of a product workbook.
var importColumns = []string{"name", "maker", "jan_code", "width", "height", "depth", "price"}

// ImportFromExcel upserts products from a workbook, matching rows on JAN code.
// sheet defaults to the first sheet. Bad rows are reported and skipped.
func (s *ProductService) ImportFromExcel(ctx context.Context, r io.Reader, sheet string) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("invalid excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	result := &ImportResult{Errors: []string{}}
	if len(rows) == 0 {
		return result, nil
	}
	index, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	for i, row := range rows[1:] {
		line := i + 2
		product, err := productFromRow(row, index)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", line, err))
			continue
		}
		if product == nil {
			continue
		}

		if product.JanCode != nil {
			var existing models.ProductModel
			err := db.Where("jan_code = ?", *product.JanCode).First(&existing).Error
			if err == nil {
				patch := ProductPatch{
					Name: &product.Name, Maker: &product.Maker,
					Width: &product.Width, Height: &product.Height, Depth: &product.Depth,
					Price: &product.Price,
				}
				_, violations, err := s.UpdateProduct(ctx, existing.ID, patch)
				switch {
				case err != nil:
					result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", line, err))
				case len(violations) > 0:
					result.Errors = append(result.Errors, fmt.Sprintf("row %d: %s", line, violations.Error()))
				default:
					result.Updated++
				}
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", line, err))
				continue
			}
		}

		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(product).Error; err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", line, err))
			continue
		}
		result.Imported++
	}

	s.log.Info("products imported",
		zap.String("sheet", sheet),
		zap.Int("imported", result.Imported),
		zap.Int("updated", result.Updated),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}

func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, cell := range header {
		index[strings.ToLower(strings.TrimSpace(cell))] = i
	}
	for _, col := range []string{"name", "width", "height", "depth"} {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing column %q (expected %s)", col, strings.Join(importColumns, ", "))
		}
	}
	return index, nil
}

// productFromRow returns nil for blank rows.
func productFromRow(row []string, index map[string]int) (*models.ProductModel, error) {
	cell := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	name := cell("name")
	if name == "" {
		return nil, nil
	}

	product := &models.ProductModel{Name: name, Maker: cell("maker"), IsActive: true}
	if jan := cell("jan_code"); jan != "" {
		product.JanCode = &jan
	}
	dims := map[string]*float64{"width": &product.Width, "height": &product.Height, "depth": &product.Depth}
	for _, col := range []string{"width", "height", "depth"} {
		v, err := strconv.ParseFloat(cell(col), 64)
		if err != nil {
			return nil, fmt.Errorf("%s %q is not a number", col, cell(col))
		}
		*dims[col] = v
	}
	if raw := cell("price"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("price %q is not a number", raw)
		}
		product.Price = price
	}
	if err := checkProduct(product); err != nil {
		return nil, err
	}
	return product, nil
}

func applyProductPatch(p *models.ProductModel, patch ProductPatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Maker != nil {
		p.Maker = *patch.Maker
	}
	if patch.JanCode != nil {
		if *patch.JanCode == "" {
			p.JanCode = nil
		} else {
			jan := *patch.JanCode
			p.JanCode = &jan
		}
	}
	if patch.Width != nil {
		p.Width = *patch.Width
	}
	if patch.Height != nil {
		p.Height = *patch.Height
	}
	if patch.Depth != nil {
		p.Depth = *patch.Depth
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.ImagePath != nil {
		p.ImagePath = patch.ImagePath
	}
	if patch.IsActive != nil {
		p.IsActive = *patch.IsActive
	}
}

func checkProduct(p *models.ProductModel) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if p.Width <= 0 || p.Height <= 0 || p.Depth <= 0 {
		return fmt.Errorf("%w: width, height and depth must be positive", ErrInvalidProduct)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}
	if p.JanCode != nil && len(*p.JanCode) > 13 {
		return fmt.Errorf("%w: jan code is at most 13 characters", ErrInvalidProduct)
	}
	return nil
}

func janCodeFree(tx *gorm.DB, jan *string, selfID int) error {
	if jan == nil {
		return nil
	}
	var count int64
	err := tx.Model(&models.ProductModel{}).
		Where("jan_code = ? AND id <> ?", *jan, selfID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %s", ErrJanCodeExists, *jan)
	}
	return nil
}
