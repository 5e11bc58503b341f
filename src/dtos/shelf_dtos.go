package dtos

import (
	"github.com/shelfwise/shelfwise-backend/src/models"
	"github.com/shelfwise/shelfwise-backend/src/planogram"
)

type CreateShelfRequest struct {
	Name           string    `json:"name" binding:"required"`
	Description    string    `json:"description"`
	Width          float64   `json:"width"`
	Depth          float64   `json:"depth"`
	TotalHeight    float64   `json:"totalHeight"`
	SegmentHeights []float64 `json:"segment_heights"`
	// TemplateID stamps the shelf out of a template; dimensions above are ignored.
	TemplateID *int `json:"template_id"`
}

type UpdateShelfRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Width       *float64 `json:"width"`
	Depth       *float64 `json:"depth"`
	TotalHeight *float64 `json:"totalHeight"`
	IsActive    *bool    `json:"isActive"`
}

type SegmentHeight struct {
	SegmentID int     `json:"segment_id" binding:"required"`
	Height    float64 `json:"height" binding:"required"`
}

type SegmentHeightsRequest struct {
	Segments []SegmentHeight `json:"segments" binding:"required,min=1,dive"`
}

type ValidateShelfRequest struct {
	Fix      bool   `json:"fix"`
	Strategy string `json:"strategy"`
}

type ResolveShelfRequest struct {
	Strategy string `json:"strategy" binding:"required"`
	DryRun   bool   `json:"dry_run"`
}

// LayoutPlacement is a placement positioned for drawing. Pixel values are cm times the display scale.
type LayoutPlacement struct {
	ID            int     `json:"id"`
	ProductID     int     `json:"productId"`
	ProductName   string  `json:"productName"`
	Maker         string  `json:"maker"`
	XPosition     float64 `json:"xPosition"`
	EndPosition   float64 `json:"endPosition"`
	FaceCount     int     `json:"faceCount"`
	OccupiedWidth float64 `json:"occupiedWidth"`
	Height        float64 `json:"height"`
	PixelX        float64 `json:"pixelX"`
	PixelWidth    float64 `json:"pixelWidth"`
	PixelHeight   float64 `json:"pixelHeight"`
}

type LayoutSegment struct {
	ID             int               `json:"id"`
	Level          int               `json:"level"`
	Height         float64           `json:"height"`
	YPosition      float64           `json:"yPosition"`
	PixelY         float64           `json:"pixelY"`
	PixelHeight    float64           `json:"pixelHeight"`
	AvailableWidth float64           `json:"availableWidth"`
	Placements     []LayoutPlacement `json:"placements"`
}

type ShelfLayout struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Width       float64         `json:"width"`
	Depth       float64         `json:"depth"`
	TotalHeight float64         `json:"totalHeight"`
	Scale       float64         `json:"scale"`
	PixelWidth  float64         `json:"pixelWidth"`
	PixelHeight float64         `json:"pixelHeight"`
	Segments    []LayoutSegment `json:"segments"`
}

// NewShelfLayout flattens a fully loaded shelf into drawing coordinates.
// Inactive segments are left out.
func NewShelfLayout(shelf *models.ShelfModel, scale float64) ShelfLayout {
	px := func(cm float64) float64 { return planogram.RoundCM(cm * scale) }

	out := ShelfLayout{
		ID:          shelf.ID,
		Name:        shelf.Name,
		Width:       shelf.Width,
		Depth:       shelf.Depth,
		TotalHeight: shelf.TotalHeight,
		Scale:       scale,
		PixelWidth:  px(shelf.Width),
		PixelHeight: px(shelf.TotalHeight),
		Segments:    []LayoutSegment{},
	}
	for _, seg := range shelf.Segments {
		if !seg.IsActive {
			continue
		}
		ls := LayoutSegment{
			ID:             seg.ID,
			Level:          seg.Level,
			Height:         seg.Height,
			YPosition:      seg.YPosition,
			PixelY:         px(seg.YPosition),
			PixelHeight:    px(seg.Height),
			AvailableWidth: planogram.AvailableWidth(shelf.Width, seg.Placements),
			Placements:     []LayoutPlacement{},
		}
		for _, p := range seg.Placements {
			lp := LayoutPlacement{
				ID:            p.ID,
				ProductID:     p.ProductID,
				ProductName:   p.ProductName(),
				XPosition:     p.XPosition,
				EndPosition:   planogram.PlacementInterval(p).End,
				FaceCount:     p.FaceCount,
				OccupiedWidth: p.OccupiedWidth,
				PixelX:        px(p.XPosition),
				PixelWidth:    px(p.OccupiedWidth),
			}
			if p.Product != nil {
				lp.Maker = p.Product.Maker
				lp.Height = p.Product.Height
				lp.PixelHeight = px(p.Product.Height)
			}
			ls.Placements = append(ls.Placements, lp)
		}
		out.Segments = append(out.Segments, ls)
	}
	return out
}
