package models

import (
	"strconv"
	"time"
)

type PlacementModel struct {
	ID             int           `json:"id" gorm:"primaryKey;autoIncrement"`
	ShelfID        int           `json:"shelfId" gorm:"column:shelf_id;not null;index"`
	SegmentID      int           `json:"segmentId" gorm:"column:segment_id;not null;index"`
	Segment        *SegmentModel `json:"-" gorm:"foreignKey:SegmentID;references:ID"`
	ProductID      int           `json:"productId" gorm:"column:product_id;not null;index"`
	Product        *ProductModel `json:"product,omitempty" gorm:"foreignKey:ProductID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	XPosition      float64       `json:"xPosition" gorm:"column:x_position;not null"`
	FaceCount      int           `json:"faceCount" gorm:"column:face_count;not null;default:1"`
	OccupiedWidth  float64       `json:"occupiedWidth" gorm:"column:occupied_width;not null"`
	PlacementOrder int           `json:"placementOrder" gorm:"column:placement_order;not null;default:0"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// ProductName tolerates placements loaded without their product.
func (p PlacementModel) ProductName() string {
	if p.Product == nil {
		return "product #" + strconv.Itoa(p.ProductID)
	}
	return p.Product.Name
}
