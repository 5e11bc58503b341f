package models

import "time"

type ShelfModel struct {
	ID          int              `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string           `json:"name" gorm:"type:varchar(100);not null"`
	Width       float64          `json:"width" gorm:"not null"`
	Depth       float64          `json:"depth" gorm:"not null"`
	TotalHeight float64          `json:"totalHeight" gorm:"column:total_height;not null"`
	Description string           `json:"description" gorm:"type:text"`
	IsActive    bool             `json:"isActive" gorm:"not null;default:true"`
	Segments    []SegmentModel   `json:"segments,omitempty" gorm:"foreignKey:ShelfID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Placements  []PlacementModel `json:"-" gorm:"foreignKey:ShelfID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// SegmentModel is one horizontal level of a shelf.
type SegmentModel struct {
	ID         int              `json:"id" gorm:"primaryKey;autoIncrement"`
	ShelfID    int              `json:"shelfId" gorm:"column:shelf_id;not null;uniqueIndex:ux_segments_shelf_level"`
	Shelf      *ShelfModel      `json:"-" gorm:"foreignKey:ShelfID;references:ID"`
	Level      int              `json:"level" gorm:"not null;uniqueIndex:ux_segments_shelf_level"`
	Height     float64          `json:"height" gorm:"not null"`
	YPosition  float64          `json:"yPosition" gorm:"column:y_position;not null;default:0"`
	IsActive   bool             `json:"isActive" gorm:"not null;default:true"`
	Placements []PlacementModel `json:"placements,omitempty" gorm:"foreignKey:SegmentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// ShelfTemplateModel stamps out shelves with a fixed segment layout.
type ShelfTemplateModel struct {
	ID             int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Name           string    `json:"name" gorm:"type:varchar(100);not null"`
	Description    string    `json:"description" gorm:"type:text"`
	ShelfWidth     float64   `json:"shelfWidth" gorm:"column:shelf_width;not null"`
	ShelfDepth     float64   `json:"shelfDepth" gorm:"column:shelf_depth;not null"`
	TotalHeight    float64   `json:"totalHeight" gorm:"column:total_height;not null"`
	SegmentHeights []float64 `json:"segmentHeights" gorm:"column:segment_heights;type:jsonb;serializer:json"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
