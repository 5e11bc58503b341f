package planogram

import "github.com/shelfwise/shelfwise-backend/src/models"

// Interval is the half-open span [Start, End) a placement occupies on its segment.
type Interval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func NewInterval(x, occupiedWidth float64) Interval {
	start := RoundCM(x)
	return Interval{Start: start, End: RoundCM(start + occupiedWidth)}
}

// PlacementInterval uses the stored occupied width of p.
func PlacementInterval(p models.PlacementModel) Interval {
	return NewInterval(p.XPosition, p.OccupiedWidth)
}

func (i Interval) Width() float64 {
	return RoundCM(i.End - i.Start)
}

// Overlaps reports whether i and o share more than tol of their span.
// Intervals that only touch never overlap.
func (i Interval) Overlaps(o Interval, tol float64) bool {
	if i.End == o.Start || o.End == i.Start {
		return false
	}
	return i.End > o.Start+tol && i.Start < o.End-tol
}

// Intersection returns the common span of i and o; ok is false when they are disjoint.
func (i Interval) Intersection(o Interval) (Interval, bool) {
	start := max(i.Start, o.Start)
	end := min(i.End, o.End)
	if end <= start {
		return Interval{}, false
	}
	return Interval{Start: start, End: end}, true
}
