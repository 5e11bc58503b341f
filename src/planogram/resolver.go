package planogram

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/shelfwise/shelfwise-backend/src/models"
)

type Strategy string

const (
	StrategyCompact          Strategy = "compact"
	StrategySpread           Strategy = "spread"
	StrategyDeleteDuplicates Strategy = "delete_duplicates"
)

var ErrCapacityExceeded = errors.New("total occupied width exceeds shelf width")

func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyCompact, StrategySpread, StrategyDeleteDuplicates:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("unknown strategy %q (want compact, spread or delete_duplicates)", s)
}

// Overlap is a pair of placements on one segment whose spans collide.
type Overlap struct {
	First  models.PlacementModel `json:"first"`
	Second models.PlacementModel `json:"second"`
	Span   Interval              `json:"span"`
}

// FindOverlaps compares every pair of placements. Segments hold tens of
// placements, so the quadratic sweep is fine.
func FindOverlaps(placements []models.PlacementModel, tol float64) []Overlap {
	var out []Overlap
	for i := 0; i < len(placements); i++ {
		a := PlacementInterval(placements[i])
		for j := i + 1; j < len(placements); j++ {
			b := PlacementInterval(placements[j])
			if !a.Overlaps(b, tol) {
				continue
			}
			span, _ := a.Intersection(b)
			out = append(out, Overlap{First: placements[i], Second: placements[j], Span: span})
		}
	}
	return out
}

type Move struct {
	PlacementID int     `json:"placementId"`
	From        float64 `json:"from"`
	To          float64 `json:"to"`
}

// Resolution is the plan produced for one segment. Nothing is applied by this package.
type Resolution struct {
	Strategy         Strategy `json:"strategy"`
	Moves            []Move   `json:"moves"`
	Deletions        []int    `json:"deletions"`
	Overflowing      []int    `json:"overflowing,omitempty"`
	CapacityExceeded bool     `json:"capacityExceeded"`
}

func (r *Resolution) Changed() int {
	return len(r.Moves) + len(r.Deletions)
}

// Positions returns the planned x position of every placement that moves.
func (r *Resolution) Positions() map[int]float64 {
	out := make(map[int]float64, len(r.Moves))
	for _, m := range r.Moves {
		out[m.PlacementID] = m.To
	}
	return out
}

// Resolve computes an overlap-free arrangement of placements on a segment of shelfWidth.
func Resolve(strategy Strategy, shelfWidth float64, placements []models.PlacementModel, tol float64) (*Resolution, error) {
	switch strategy {
	case StrategyCompact:
		return compact(shelfWidth, placements), nil
	case StrategySpread:
		return spread(shelfWidth, placements)
	case StrategyDeleteDuplicates:
		return deleteDuplicates(placements, tol), nil
	}
	return nil, fmt.Errorf("unknown strategy %q", strategy)
}

func byPosition(placements []models.PlacementModel) []models.PlacementModel {
	sorted := make([]models.PlacementModel, len(placements))
	copy(sorted, placements)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].XPosition < sorted[j].XPosition
	})
	return sorted
}

// moved treats shifts of one rounding step or less as noise.
func moved(from, to float64) bool {
	return math.Abs(RoundCM(to-from)) > Gap
}

func compact(shelfWidth float64, placements []models.PlacementModel) *Resolution {
	res := &Resolution{Strategy: StrategyCompact}
	cursor, prevEnd := 0.0, 0.0
	for _, p := range byPosition(placements) {
		x := res.place(p, RoundCM(max(cursor, 0)), prevEnd)
		if !FitsWithin(x, p.OccupiedWidth, shelfWidth) {
			res.Overflowing = append(res.Overflowing, p.ID)
		}
		prevEnd = RoundCM(SumCM(x, p.OccupiedWidth))
		cursor = RoundCM(SumCM(prevEnd, Gap))
	}
	res.CapacityExceeded = len(res.Overflowing) > 0
	return res
}

// place records the move of p to x and returns where p ends up. A placement
// within one rounding step of its target stays put unless that would put it
// on top of its left neighbour.
func (r *Resolution) place(p models.PlacementModel, x, prevEnd float64) float64 {
	x = max(x, prevEnd)
	if !moved(p.XPosition, x) && p.XPosition >= prevEnd {
		return p.XPosition
	}
	if p.XPosition != x {
		r.Moves = append(r.Moves, Move{PlacementID: p.ID, From: p.XPosition, To: x})
	}
	return x
}

func spread(shelfWidth float64, placements []models.PlacementModel) (*Resolution, error) {
	res := &Resolution{Strategy: StrategySpread}
	if len(placements) == 0 {
		return res, nil
	}

	widths := make([]float64, 0, len(placements))
	for _, p := range placements {
		widths = append(widths, p.OccupiedWidth)
	}
	total := SumCM(widths...)
	if total > shelfWidth {
		return nil, fmt.Errorf("%w: %.1fcm needed, %.1fcm available", ErrCapacityExceeded, total, shelfWidth)
	}

	gap := (shelfWidth - total) / float64(len(placements))
	cursor, prevEnd := gap/2, 0.0
	for _, p := range byPosition(placements) {
		// every placement goes to its slot; the rounded slot may not start
		// before the previous end or run past the shelf edge
		x := max(RoundCM(cursor), prevEnd)
		if !FitsWithin(x, p.OccupiedWidth, shelfWidth) {
			x = max(floorCM(SumCM(shelfWidth, -p.OccupiedWidth)), prevEnd)
		}
		if !FitsWithin(x, p.OccupiedWidth, shelfWidth) {
			res.Overflowing = append(res.Overflowing, p.ID)
		}
		if p.XPosition != x {
			res.Moves = append(res.Moves, Move{PlacementID: p.ID, From: p.XPosition, To: x})
		}
		prevEnd = RoundCM(SumCM(x, p.OccupiedWidth))
		cursor += p.OccupiedWidth + gap
	}
	res.CapacityExceeded = len(res.Overflowing) > 0
	return res, nil
}

// deleteDuplicates keeps the left-most placement of every overlapping pair.
func deleteDuplicates(placements []models.PlacementModel, tol float64) *Resolution {
	res := &Resolution{Strategy: StrategyDeleteDuplicates}
	marked := map[int]bool{}
	for _, o := range FindOverlaps(byPosition(placements), tol) {
		victim := o.Second
		if o.First.XPosition > o.Second.XPosition {
			victim = o.First
		}
		if marked[victim.ID] {
			continue
		}
		marked[victim.ID] = true
		res.Deletions = append(res.Deletions, victim.ID)
	}
	return res
}
