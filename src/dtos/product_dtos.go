package dtos

import "github.com/shopspring/decimal"

type ProductRequest struct {
	Name      string           `json:"name" binding:"required"`
	Maker     string           `json:"maker"`
	JanCode   *string          `json:"janCode"`
	Width     float64          `json:"width" binding:"required,gt=0"`
	Height    float64          `json:"height" binding:"required,gt=0"`
	Depth     float64          `json:"depth" binding:"required,gt=0"`
	Price     *decimal.Decimal `json:"price"`
	ImagePath *string          `json:"imagePath"`
}

type UpdateProductRequest struct {
	Name      *string          `json:"name"`
	Maker     *string          `json:"maker"`
	JanCode   *string          `json:"janCode"`
	Width     *float64         `json:"width"`
	Height    *float64         `json:"height"`
	Depth     *float64         `json:"depth"`
	Price     *decimal.Decimal `json:"price"`
	ImagePath *string          `json:"imagePath"`
	IsActive  *bool            `json:"isActive"`
}
