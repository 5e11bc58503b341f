package dtos

import (
	"testing"

	"github.com/shelfwise/shelfwise-backend/src/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShelfLayout(t *testing.T) {
	shelf := &models.ShelfModel{
		ID: 1, Name: "Drinks", Width: 120, Depth: 45, TotalHeight: 180,
		Segments: []models.SegmentModel{
			{ID: 10, Level: 0, Height: 40, YPosition: 0, IsActive: true, Placements: []models.PlacementModel{
				{ID: 100, ProductID: 7, XPosition: 5, FaceCount: 3, OccupiedWidth: 19.5,
					Product: &models.ProductModel{Name: "Cola", Maker: "Coca-Cola", Height: 20.5}},
				{ID: 101, ProductID: 8, XPosition: 26.5, FaceCount: 1, OccupiedWidth: 6.5},
			}},
			{ID: 11, Level: 1, Height: 35, YPosition: 40, IsActive: false},
			{ID: 12, Level: 2, Height: 35, YPosition: 75, IsActive: true},
		},
	}

	layout := NewShelfLayout(shelf, 2.5)

	assert.Equal(t, 300.0, layout.PixelWidth)
	assert.Equal(t, 450.0, layout.PixelHeight)
	require.Len(t, layout.Segments, 2)
	assert.Equal(t, 12, layout.Segments[1].ID)
	assert.Equal(t, 187.5, layout.Segments[1].PixelY)
	assert.Empty(t, layout.Segments[1].Placements)
	assert.Equal(t, 120.0, layout.Segments[1].AvailableWidth)

	bottom := layout.Segments[0]
	assert.Equal(t, 94.0, bottom.AvailableWidth)
	require.Len(t, bottom.Placements, 2)
	cola := bottom.Placements[0]
	assert.Equal(t, "Coca-Cola", cola.Maker)
	assert.Equal(t, 24.5, cola.EndPosition)
	assert.Equal(t, 12.5, cola.PixelX)
	assert.Equal(t, 48.8, cola.PixelWidth)
	assert.Equal(t, 51.3, cola.PixelHeight)
	// no product loaded, so no height to draw
	assert.Zero(t, bottom.Placements[1].PixelHeight)
}

func TestPlaceProductRequest_Faces(t *testing.T) {
	assert.Equal(t, 1, PlaceProductRequest{}.Faces())
	three := 3
	assert.Equal(t, 3, PlaceProductRequest{FaceCount: &three}.Faces())
}
