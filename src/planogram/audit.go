package planogram

import (
	"fmt"
	"math"

	"github.com/shelfwise/shelfwise-backend/src/config"
	"github.com/shelfwise/shelfwise-backend/src/models"
)

type FindingKind string

const (
	FindingWidthMismatch        FindingKind = "width_mismatch"
	FindingHeightExceedsSegment FindingKind = "height_exceeds_segment"
	FindingExceedsShelfWidth    FindingKind = "exceeds_shelf_width"
	FindingOverlap              FindingKind = "overlap"
)

// widthMismatchSlack is how far a stored occupied width may drift before it is reported.
const widthMismatchSlack = 0.1

// Finding is one broken invariant discovered on stored data.
type Finding struct {
	Kind        FindingKind `json:"kind"`
	SegmentID   int         `json:"segmentId"`
	Level       int         `json:"level"`
	PlacementID int         `json:"placementId"`
	OtherID     int         `json:"otherId,omitempty"`
	Message     string      `json:"message"`
	Stored      float64     `json:"stored,omitempty"`
	Recomputed  float64     `json:"recomputed,omitempty"`
	Correctable bool        `json:"correctable"`
}

// AuditSegment reports every invariant that the stored placements of segment break.
// Placements must have their Product loaded.
func AuditSegment(rules config.Rules, shelf models.ShelfModel, segment models.SegmentModel, placements []models.PlacementModel) []Finding {
	sorted := byPosition(placements)
	var out []Finding

	for _, p := range sorted {
		if p.Product == nil {
			continue
		}
		recomputed := p.Product.OccupiedWidth(p.FaceCount)
		if math.Abs(recomputed-p.OccupiedWidth) > widthMismatchSlack {
			out = append(out, Finding{
				Kind: FindingWidthMismatch, SegmentID: segment.ID, Level: segment.Level, PlacementID: p.ID,
				Message: fmt.Sprintf("segment %d: %s width mismatch (recomputed %.1fcm, stored %.1fcm)",
					segment.Level, p.Product.Name, recomputed, p.OccupiedWidth),
				Stored: p.OccupiedWidth, Recomputed: recomputed, Correctable: true,
			})
		}
		if p.Product.Height > segment.Height {
			out = append(out, Finding{
				Kind: FindingHeightExceedsSegment, SegmentID: segment.ID, Level: segment.Level, PlacementID: p.ID,
				Message: fmt.Sprintf("segment %d: %s too tall (product %.1fcm > segment %.1fcm)",
					segment.Level, p.Product.Name, p.Product.Height, segment.Height),
			})
		}
		if !FitsWithin(p.XPosition, p.OccupiedWidth, shelf.Width) {
			out = append(out, Finding{
				Kind: FindingExceedsShelfWidth, SegmentID: segment.ID, Level: segment.Level, PlacementID: p.ID,
				Message: fmt.Sprintf("segment %d: %s exceeds shelf width (ends at %.1fcm > %.1fcm)",
					segment.Level, p.Product.Name, SumCM(p.XPosition, p.OccupiedWidth), shelf.Width),
			})
		}
	}

	for _, o := range FindOverlaps(sorted, rules.OverlapTolerance) {
		out = append(out, Finding{
			Kind: FindingOverlap, SegmentID: segment.ID, Level: segment.Level,
			PlacementID: o.First.ID, OtherID: o.Second.ID,
			Message: fmt.Sprintf("segment %d: %s overlaps %s at %.1f-%.1fcm",
				segment.Level, o.First.ProductName(), o.Second.ProductName(), o.Span.Start, o.Span.End),
		})
	}

	return out
}

// CountKind counts findings of one kind.
func CountKind(findings []Finding, kind FindingKind) int {
	n := 0
	for _, f := range findings {
		if f.Kind == kind {
			n++
		}
	}
	return n
}
