package planogram

import (
	"fmt"

	"github.com/shelfwise/shelfwise-backend/src/config"
	"github.com/shelfwise/shelfwise-backend/src/models"
)

// Candidate is a proposed placement of Product at XPosition on Segment.
type Candidate struct {
	Shelf     *models.ShelfModel
	Segment   *models.SegmentModel
	Product   *models.ProductModel
	XPosition float64
	FaceCount int
	// Existing are the placements currently on Segment.
	Existing []models.PlacementModel
	// ExcludeID skips the placement being moved.
	ExcludeID int
}

type Validator struct {
	rules config.Rules
}

func NewValidator(rules config.Rules) *Validator {
	return &Validator{rules: rules}
}

func (v *Validator) Rules() config.Rules {
	return v.rules
}

// Validate returns every rule c breaks; an empty result means the placement is legal.
func (v *Validator) Validate(c Candidate) Violations {
	var out Violations

	if c.FaceCount < 1 || c.FaceCount > v.rules.MaxFaceCount {
		out = append(out, Violation{
			Code:    CodeFaceCountOutOfRange,
			Message: fmt.Sprintf("face count must be between 1 and %d, got %d", v.rules.MaxFaceCount, c.FaceCount),
		})
	}

	if c.XPosition < 0 {
		out = append(out, Violation{
			Code:    CodeNegativePosition,
			Message: fmt.Sprintf("x position must be >= 0, got %.1fcm", c.XPosition),
		})
	}

	if c.Product.Height > c.Segment.Height {
		out = append(out, Violation{
			Code:    CodeHeightExceedsSegment,
			Message: fmt.Sprintf("product height (%.1fcm) exceeds segment height (%.1fcm)", c.Product.Height, c.Segment.Height),
		})
	}

	// width and overlap are checked at the stored position
	x := RoundCM(c.XPosition)
	occupied := c.Product.OccupiedWidth(c.FaceCount)
	if !FitsWithin(x, occupied, c.Shelf.Width) {
		maxX := max(0, floorCM(SumCM(c.Shelf.Width, -occupied)))
		out = append(out, Violation{
			Code: CodeExceedsShelfWidth,
			Message: fmt.Sprintf("placement exceeds shelf width (needs %.1fcm, shelf is %.1fcm, max x position %.1fcm)",
				occupied, c.Shelf.Width, maxX),
		})
	}

	if conflict := v.firstOverlap(NewInterval(x, occupied), c.Existing, c.ExcludeID); conflict != nil {
		out = append(out, Violation{
			Code:       CodeOverlap,
			Message:    fmt.Sprintf("overlaps with %q", conflict.ProductName()),
			ConflictID: conflict.ID,
		})
	}

	return out
}

// Legal is Validate for callers that only need a yes or no.
func (v *Validator) Legal(c Candidate) bool {
	return len(v.Validate(c)) == 0
}

func (v *Validator) firstOverlap(span Interval, existing []models.PlacementModel, excludeID int) *models.PlacementModel {
	for i := range existing {
		other := &existing[i]
		if excludeID != 0 && other.ID == excludeID {
			continue
		}
		if span.Overlaps(PlacementInterval(*other), v.rules.OverlapTolerance) {
			return other
		}
	}
	return nil
}

// Normalize rewrites the derived fields of p before it is persisted:
// the position is rounded and the occupied width recomputed from product.
func Normalize(p *models.PlacementModel, product models.ProductModel) *models.PlacementModel {
	p.XPosition = RoundCM(p.XPosition)
	p.OccupiedWidth = product.OccupiedWidth(p.FaceCount)
	return p
}
