package services_test

import (
	"sync"
	"testing"

	"github.com/shelfwise/shelfwise-backend/src/config"
	"github.com/shelfwise/shelfwise-backend/src/planogram"
	"github.com/shelfwise/shelfwise-backend/src/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestPlace_ScenarioA(t *testing.T) {
	f := newFixture(t)
	shelf := f.shelf(t, 120, 30)
	cola := f.product(t, "Cola", 6.5, 20.5)

	p := f.place(t, shelf.Segments[0], cola, 5.0, 3)

	assert.Equal(t, 19.5, p.OccupiedWidth)
	assert.Equal(t, 24.5, planogram.PlacementInterval(*p).End)
	assert.Equal(t, 1, p.PlacementOrder)
	assert.Equal(t, shelf.ID, p.ShelfID)

	stored := f.reload(t, p.ID)
	assert.Equal(t, 5.0, stored.XPosition)
	assert.Equal(t, 19.5, stored.OccupiedWidth)
}

func TestPlace_ScenarioB_OverlapRejected(t *testing.T) {
	f := newFixture(t)
	shelf := f.shelf(t, 120, 30)
	seg := shelf.Segments[0]
	cola := f.product(t, "Cola", 6.5, 20.5)
	water := f.product(t, "Water", 6.0, 21.0)
	first := f.place(t, seg, cola, 5.0, 3)

	p, violations, err := f.placements.Place(f.ctx, services.PlaceRequest{
		SegmentID: seg.ID, ProductID: water.ID, XPosition: 20.0, FaceCount: 2,
	})

	require.NoError(t, err)
	assert.Nil(t, p)
	require.True(t, violations.Has(planogram.CodeOverlap))
	assert.Contains(t, violations.Error(), "Cola")
	assert.Equal(t, first.ID, violations[0].ConflictID)
	assert.EqualValues(t, 1, f.count(t, seg.ID))
}

func TestPlace_ScenarioC_TooTall(t *testing.T) {
	f := newFixture(t)
	shelf := f.shelf(t, 120, 25)
	tall := f.product(t, "Tall bottle", 8, 30)

	for _, x := range []float64{0, 40, 90} {
		_, violations, err := f.placements.Place(f.ctx, services.PlaceRequest{
			SegmentID: shelf.Segments[0].ID, ProductID: tall.ID, XPosition: x, FaceCount: 1,
		})
		require.NoError(t, err)
		assert.True(t, violations.Has(planogram.CodeHeightExceedsSegment))
	}
	assert.EqualValues(t, 0, f.count(t, shelf.Segments[0].ID))
}

func TestPlace_WidthBoundary(t *testing.T) {
	f := newFixture(t)
	shelf := f.shelf(t, 120, 30)
	seg := shelf.Segments[0]
	box := f.product(t, "Box", 20, 10)

	_, violations, err := f.placements.Place(f.ctx, services.PlaceRequest{
		SegmentID: seg.ID, ProductID: box.ID, XPosition: 100.01, FaceCount: 1,
	})
	require.NoError(t, err)
	assert.True(t, violations.Has(planogram.CodeExceedsShelfWidth))

	p := f.place(t, seg, box, 100, 1)
	assert.Equal(t, 120.0, planogram.PlacementInterval(*p).End)
}

func TestPlace_NotFound(t *testing.T) {
	f := newFixture(t)
	shelf := f.shelf(t, 120, 30)
	other := f.shelf(t, 120, 30)
	cola := f.product(t, "Cola", 6.5, 20.5)

	_, _, err := f.placements.Place(f.ctx, services.PlaceRequest{SegmentID: 9999, ProductID: cola.ID, XPosition: 0, FaceCount: 1})
	assert.ErrorIs(t, err, services.ErrSegmentNotFound)

	_, _, err = f.placements.Place(f.ctx, services.PlaceRequest{SegmentID: shelf.Segments[0].ID, ProductID: 9999, XPosition: 0, FaceCount: 1})
	assert.ErrorIs(t, err, services.ErrProductNotFound)

	_, _, err = f.placements.Place(f.ctx, services.PlaceRequest{
		ShelfID: other.ID, SegmentID: shelf.Segments[0].ID, ProductID: cola.ID, XPosition: 0, FaceCount: 1,
	})
	assert.ErrorIs(t, err, services.ErrSegmentNotFound)
}

func TestPlace_NormalizesPosition(t *testing.T) {
	f := newFixture(t)
	shelf := f.shelf(t, 120, 30)
	cola := f.product(t, "Cola", 6.5, 20.5)

	p := f.place(t, shelf.Segments[0], cola, 12.345, 2)

	assert.Equal(t, 12.3, p.XPosition)
	assert.Equal(t, 13.0, p.OccupiedWidth)
}

func TestPlace_OrderIncrements(t *testing.T) {
	f := newFixture(t)
	shelf := f.shelf(t, 120, 30)
	cola := f.product(t, "Cola", 6.5, 20.5)
	seg := shelf.Segments[0]

	a := f.place(t, seg, cola, 0, 1)
	b := f.place(t, seg, cola, 10, 1)
	c := f.place(t, seg, cola, 20, 1)

	assert.Equal(t, []int{1, 2, 3}, []int{a.PlacementOrder, b.PlacementOrder, c.PlacementOrder})
}

func TestMove_RoundTrip(t *testing.T) {
	f := newFixture(t)
	shelf := f.shelf(t, 120, 30)
	cola := f.product(t, "Cola", 6.5, 20.5)
	p := f.place(t, shelf.Segments[0], cola, 5.0, 3)
	before := planogram.PlacementInterval(*p)

	moved, violations, err := f.placements.Move(f.ctx, services.MoveRequest{PlacementID: p.ID, XPosition: ptr(60.0)})
	require.NoError(t, err)
	require.Empty(t, violations)
	assert.Equal(t, 60.0, moved.XPosition)

	back, violations, err := f.placements.Move(f.ctx, services.MoveRequest{PlacementID: p.ID, XPosition: ptr(5.0)})
	require.NoError(t, err)
	require.Empty(t, violations)

	after := planogram.PlacementInterval(*back)
	assert.InDelta(t, before.Start, after.Start, 0.05)
	assert.InDelta(t, before.End, after.End, 0.05)
	assert.Equal(t, p.ID, back.ID)
}

func TestMove_IgnoresItsOwnFootprint(t *testing.T) {
	f := newFixture(t)
	shelf := f.shelf(t, 120, 30)
	cola := f.product(t, "Cola", 6.5, 20.5)
	p := f.place(t, shelf.Segments[0], cola, 5.0, 3)

	moved, violations, err := f.placements.Move(f.ctx, services.MoveRequest{PlacementID: p.ID, XPosition: ptr(6.0)})

	require.NoError(t, err)
	assert.Empty(t, violations)
	assert.Equal(t, 6.0, moved.XPosition)
}

func TestMove_RejectedLeavesPlacementUntouched(t *testing.T) {
	f := newFixture(t)
	shelf := f.shelf(t, 120, 30)
	seg := shelf.Segments[0]
	cola := f.product(t, "Cola", 6.5, 20.5)
	a := f.place(t, seg, cola, 5.0, 3)
	b := f.place(t, seg, cola, 50.0, 2)

	moved, violations, err := f.placements.Move(f.ctx, services.MoveRequest{
		PlacementID: b.ID, XPosition: ptr(10.0), FaceCount: ptr(25),
	})

	require.NoError(t, err)
	assert.Nil(t, moved)
	assert.True(t, violations.Has(planogram.CodeOverlap))
	assert.True(t, violations.Has(planogram.CodeFaceCountOutOfRange))
	assert.Equal(t, a.ID, violations[len(violations)-1].ConflictID)

	stored := f.reload(t, b.ID)
	assert.Equal(t, 50.0, stored.XPosition)
	assert.Equal(t, 2, stored.FaceCount)
	assert.Equal(t, 13.0, stored.OccupiedWidth)
}

func TestMove_FaceCountChange(t *testing.T) {
	f := newFixture(t)
	shelf := f.shelf(t, 120, 30)
	cola := f.product(t, "Cola", 6.5, 20.5)
	p := f.place(t, shelf.Segments[0], cola, 5.0, 3)

	grown, violations, err := f.placements.Move(f.ctx, services.MoveRequest{PlacementID: p.ID, FaceCountChange: ptr(2)})
	require.NoError(t, err)
	require.Empty(t, violations)
	assert.Equal(t, 5, grown.FaceCount)
	assert.Equal(t, 32.5, grown.OccupiedWidth)

	_, violations, err = f.placements.Move(f.ctx, services.MoveRequest{PlacementID: p.ID, FaceCountChange: ptr(-5)})
	require.NoError(t, err)
	assert.True(t, violations.Has(planogram.CodeFaceCountOutOfRange))
}

func TestMove_AcrossSegments(t *testing.T) {
	f := newFixture(t)
	shelf := f.shelf(t, 120, 30, 35)
	other := f.shelf(t, 120, 30)
	cola := f.product(t, "Cola", 6.5, 20.5)
	p := f.place(t, shelf.Segments[0], cola, 5.0, 3)

	moved, violations, err := f.placements.Move(f.ctx, services.MoveRequest{PlacementID: p.ID, SegmentID: ptr(shelf.Segments[1].ID)})
	require.NoError(t, err)
	require.Empty(t, violations)
	assert.Equal(t, shelf.Segments[1].ID, moved.SegmentID)
	assert.EqualValues(t, 0, f.count(t, shelf.Segments[0].ID))
	assert.EqualValues(t, 1, f.count(t, shelf.Segments[1].ID))

	_, _, err = f.placements.Move(f.ctx, services.MoveRequest{PlacementID: p.ID, SegmentID: ptr(other.Segments[0].ID)})
	assert.ErrorIs(t, err, services.ErrSegmentNotFound)
}

func TestMove_UnknownPlacement(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.placements.Move(f.ctx, services.MoveRequest{PlacementID: 42, XPosition: ptr(1.0)})
	assert.ErrorIs(t, err, services.ErrPlacementNotFound)
}

func TestDeleteAndClear(t *testing.T) {
	f := newFixture(t)
	shelf := f.shelf(t, 120, 30, 35)
	cola := f.product(t, "Cola", 6.5, 20.5)
	a := f.place(t, shelf.Segments[0], cola, 0, 1)
	f.place(t, shelf.Segments[0], cola, 10, 1)
	f.place(t, shelf.Segments[1], cola, 0, 2)

	deleted, err := f.placements.Delete(f.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cola", deleted.ProductName())

	_, err = f.placements.Delete(f.ctx, a.ID)
	assert.ErrorIs(t, err, services.ErrPlacementNotFound)

	removed, err := f.placements.ClearAll(f.ctx, shelf.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)

	_, err = f.placements.ClearAll(f.ctx, 9999)
	assert.ErrorIs(t, err, services.ErrShelfNotFound)
}

func TestPlace_InvalidatesLayout(t *testing.T) {
	f := newFixture(t)
	shelf := f.shelf(t, 120, 30)
	cola := f.product(t, "Cola", 6.5, 20.5)

	layout, err := f.shelves.GetLayout(f.ctx, shelf.ID)
	require.NoError(t, err)
	require.Empty(t, layout.Segments[0].Placements)

	f.place(t, shelf.Segments[0], cola, 0, 1)

	layout, err = f.shelves.GetLayout(f.ctx, shelf.ID)
	require.NoError(t, err)
	assert.Len(t, layout.Segments[0].Placements, 1)
}

func TestPlace_LockedSegmentsSerializeWriters(t *testing.T) {
	rules := config.DefaultRules()
	rules.LockSegments = true
	f := newFixtureWithRules(t, rules)
	shelf := f.shelf(t, 120, 30)
	seg := shelf.Segments[0]
	cola := f.product(t, "Cola", 6.5, 20.5)

	const writers = 8
	var wg sync.WaitGroup
	results := make(chan bool, writers)
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, _, err := f.placements.Place(f.ctx, services.PlaceRequest{
				SegmentID: seg.ID, ProductID: cola.ID, XPosition: 10, FaceCount: 2,
			})
			results <- err == nil && p != nil
		}()
	}
	wg.Wait()
	close(results)

	placed := 0
	for ok := range results {
		if ok {
			placed++
		}
	}
	assert.Equal(t, 1, placed)
	f.assertNoOverlaps(t, seg.ID)
}
