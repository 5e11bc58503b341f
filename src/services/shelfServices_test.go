package services_test

import (
	"errors"
	"testing"

	"github.com/shelfwise/shelfwise-backend/src/models"
	"github.com/shelfwise/shelfwise-backend/src/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func yPositions(segments []models.SegmentModel) []float64 {
	out := make([]float64, 0, len(segments))
	for _, s := range segments {
		out = append(out, s.YPosition)
	}
	return out
}

func TestCreateShelf_DefaultSegments(t *testing.T) {
	f := newFixture(t)
	shelf := f.shelf(t, 120)

	loaded, err := f.shelves.GetShelf(f.ctx, shelf.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Segments, 4)
	assert.Equal(t, []float64{0, 30, 65, 100}, yPositions(loaded.Segments))
	for i, seg := range loaded.Segments {
		assert.Equal(t, i+1, seg.Level)
	}
}

func TestCreateShelf_Rejects(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		name    string
		shelf   models.ShelfModel
		heights []float64
	}{
		{"too narrow", models.ShelfModel{Name: "a", Width: 20, Depth: 45, TotalHeight: 180}, nil},
		{"too wide", models.ShelfModel{Name: "a", Width: 301, Depth: 45, TotalHeight: 180}, nil},
		{"too short", models.ShelfModel{Name: "a", Width: 120, Depth: 45, TotalHeight: 70}, nil},
		{"no depth", models.ShelfModel{Name: "a", Width: 120, TotalHeight: 180}, nil},
		{"segment too low", models.ShelfModel{Name: "a", Width: 120, Depth: 45, TotalHeight: 180}, []float64{10}},
		{"segment too high", models.ShelfModel{Name: "a", Width: 120, Depth: 45, TotalHeight: 180}, []float64{61}},
		{"levels taller than shelf", models.ShelfModel{Name: "a", Width: 120, Depth: 45, TotalHeight: 100}, []float64{60, 60}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			shelf := tc.shelf
			_, err := f.shelves.CreateShelf(f.ctx, &shelf, tc.heights)
			assert.ErrorIs(t, err, services.ErrInvalidShelf)
		})
	}
}

func TestCreateShelfFromTemplate(t *testing.T) {
	f := newFixture(t)
	tpl, err := f.shelves.CreateTemplate(f.ctx, &models.ShelfTemplateModel{
		Name:           "Gondola 90",
		ShelfWidth:     90,
		ShelfDepth:     40,
		TotalHeight:    150,
		SegmentHeights: []float64{40, 35, 35},
	})
	require.NoError(t, err)

	shelf, err := f.shelves.CreateShelfFromTemplate(f.ctx, tpl.ID, "Aisle 3")
	require.NoError(t, err)
	assert.Equal(t, "Aisle 3", shelf.Name)
	assert.Equal(t, 90.0, shelf.Width)
	assert.Equal(t, []float64{0, 40, 75}, yPositions(shelf.Segments))

	templates, err := f.shelves.ListTemplates(f.ctx)
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, []float64{40, 35, 35}, templates[0].SegmentHeights)

	_, err = f.shelves.CreateShelfFromTemplate(f.ctx, 9999, "")
	assert.ErrorIs(t, err, services.ErrTemplateNotFound)
}

func TestUpdateSegmentHeights(t *testing.T) {
	f := newFixture(t)
	shelf := f.shelf(t, 120, 30, 35, 35, 40)
	cola := f.product(t, "Cola", 6.5, 20.5)
	f.place(t, shelf.Segments[0], cola, 0, 2)

	segments, err := f.shelves.UpdateSegmentHeights(f.ctx, shelf.ID, map[int]float64{
		shelf.Segments[0].ID: 25,
		shelf.Segments[2].ID: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 25, 60, 80}, yPositions(segments))

	loaded, err := f.shelves.GetShelf(f.ctx, shelf.ID)
	require.NoError(t, err)
	assert.Equal(t, 25.0, loaded.Segments[0].Height)
	assert.Equal(t, []float64{0, 25, 60, 80}, yPositions(loaded.Segments))
}

func TestUpdateSegmentHeights_AllOrNothing(t *testing.T) {
	f := newFixture(t)
	shelf := f.shelf(t, 120, 30, 35)
	cola := f.product(t, "Cola", 6.5, 20.5)
	f.place(t, shelf.Segments[0], cola, 0, 2)

	_, err := f.shelves.UpdateSegmentHeights(f.ctx, shelf.ID, map[int]float64{
		shelf.Segments[0].ID: 18,
		shelf.Segments[1].ID: 40,
	})

	var heightErr *services.SegmentHeightError
	require.True(t, errors.As(err, &heightErr))
	assert.ErrorIs(t, err, services.ErrSegmentHeight)
	require.Len(t, heightErr.Reasons, 1)
	assert.Contains(t, heightErr.Reasons[0], "20.5cm tall")

	loaded, err := f.shelves.GetShelf(f.ctx, shelf.ID)
	require.NoError(t, err)
	assert.Equal(t, 30.0, loaded.Segments[0].Height)
	assert.Equal(t, 35.0, loaded.Segments[1].Height)

	_, err = f.shelves.UpdateSegmentHeights(f.ctx, shelf.ID, map[int]float64{9999: 30})
	assert.ErrorIs(t, err, services.ErrSegmentNotFound)
}

func TestUpdateShelf_NarrowingGuard(t *testing.T) {
	f := newFixture(t)
	shelf := f.shelf(t, 120, 30)
	box := f.product(t, "Box", 20, 10)
	f.place(t, shelf.Segments[0], box, 80, 1)

	_, err := f.shelves.UpdateShelf(f.ctx, shelf.ID, services.ShelfPatch{Width: ptr(90.0)})
	assert.ErrorIs(t, err, services.ErrShelfTooNarrow)

	updated, err := f.shelves.UpdateShelf(f.ctx, shelf.ID, services.ShelfPatch{Width: ptr(100.0), Name: ptr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, 100.0, updated.Width)
	assert.Equal(t, "Renamed", updated.Name)

	_, err = f.shelves.UpdateShelf(f.ctx, 9999, services.ShelfPatch{Name: ptr("x")})
	assert.ErrorIs(t, err, services.ErrShelfNotFound)
}

func TestDeleteShelf_Cascades(t *testing.T) {
	f := newFixture(t)
	shelf := f.shelf(t, 120, 30)
	cola := f.product(t, "Cola", 6.5, 20.5)
	p := f.place(t, shelf.Segments[0], cola, 0, 1)

	require.NoError(t, f.shelves.DeleteShelf(f.ctx, shelf.ID))

	var n int64
	require.NoError(t, f.db.Model(&models.PlacementModel{}).Where("id = ?", p.ID).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, f.db.Model(&models.SegmentModel{}).Where("shelf_id = ?", shelf.ID).Count(&n).Error)
	assert.Zero(t, n)

	assert.ErrorIs(t, f.shelves.DeleteShelf(f.ctx, shelf.ID), services.ErrShelfNotFound)
}

func TestGetUtilizationAndStatistics(t *testing.T) {
	f := newFixture(t)
	shelf := f.shelf(t, 100, 30, 35)
	cola := f.product(t, "Cola", 6.5, 20.5)
	chips := f.product(t, "Chips", 18, 23)
	f.place(t, shelf.Segments[0], cola, 0, 4)
	f.place(t, shelf.Segments[0], cola, 30, 2)
	f.place(t, shelf.Segments[1], chips, 0, 2)

	u, err := f.shelves.GetUtilization(f.ctx, shelf.ID)
	require.NoError(t, err)
	require.Len(t, u.Segments, 2)
	assert.InDelta(t, 39.0, u.Segments[0].Utilization, 0.001)
	assert.InDelta(t, 36.0, u.Segments[1].Utilization, 0.001)
	assert.Equal(t, 61.0, u.Segments[0].AvailableWidth)

	stats, err := f.shelves.GetStatistics(f.ctx, shelf.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalPlacements)
	assert.Equal(t, 8, stats.TotalFaceCount)
	assert.Equal(t, 2, stats.UniqueProducts)
	assert.Equal(t, 2, stats.SegmentsUsed)
	assert.Equal(t, 2.7, stats.AverageFaceCount)
	require.Len(t, stats.MostPlaced, 2)
	assert.Equal(t, "Cola", stats.MostPlaced[0].Name)
	assert.Equal(t, 6, stats.MostPlaced[0].TotalFaces)
	assert.Equal(t, 2, stats.MostPlaced[0].PlacementCount)

	_, err = f.shelves.GetStatistics(f.ctx, 9999)
	assert.ErrorIs(t, err, services.ErrShelfNotFound)
}
