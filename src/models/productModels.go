package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductModel struct {
	ID        int             `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string          `json:"name" gorm:"type:varchar(100);not null;index"`
	Maker     string          `json:"maker" gorm:"type:varchar(50)"`
	JanCode   *string         `json:"janCode" gorm:"column:jan_code;type:varchar(13);uniqueIndex"`
	Width     float64         `json:"width" gorm:"not null"`
	Height    float64         `json:"height" gorm:"not null"`
	Depth     float64         `json:"depth" gorm:"not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(8,2);not null;default:0"`
	ImagePath *string         `json:"imagePath" gorm:"column:image_path;type:varchar(255)"`
	IsActive  bool            `json:"isActive" gorm:"not null;default:true"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// OccupiedWidth is the width taken by faceCount side-by-side facings, rounded to 0.1cm.
func (p ProductModel) OccupiedWidth(faceCount int) float64 {
	return decimal.NewFromFloat(p.Width).
		Mul(decimal.NewFromInt(int64(faceCount))).
		Round(1).
		InexactFloat64()
}

func (p ProductModel) String() string {
	if p.Maker != "" {
		return p.Name + " (" + p.Maker + ")"
	}
	return p.Name
}
