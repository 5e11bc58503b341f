package planogram

import (
	"fmt"
	"sort"

	"github.com/shelfwise/shelfwise-backend/src/config"
	"github.com/shelfwise/shelfwise-backend/src/models"
)

// UsedWidth is the sum of the occupied widths on a segment.
func UsedWidth(placements []models.PlacementModel) float64 {
	widths := make([]float64, 0, len(placements))
	for _, p := range placements {
		widths = append(widths, p.OccupiedWidth)
	}
	return SumCM(widths...)
}

// AvailableWidth never goes below zero, even on an overfilled segment.
func AvailableWidth(shelfWidth float64, placements []models.PlacementModel) float64 {
	return max(0, RoundCM(shelfWidth-UsedWidth(placements)))
}

// CanFit is the quick capacity test shown to users before they pick a position.
func CanFit(shelfWidth float64, segment models.SegmentModel, placements []models.PlacementModel, product models.ProductModel, faceCount int) bool {
	return product.Height <= segment.Height &&
		product.OccupiedWidth(faceCount) <= AvailableWidth(shelfWidth, placements)
}

// RecomputeYPositions sorts segments by level and stacks them from the floor up.
func RecomputeYPositions(segments []models.SegmentModel) []models.SegmentModel {
	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].Level < segments[j].Level
	})
	y := 0.0
	for i := range segments {
		segments[i].YPosition = RoundCM(y)
		y = SumCM(y, segments[i].Height)
	}
	return segments
}

// TallestProduct returns the height of the tallest product placed on a segment.
// Placements without a loaded product are ignored.
func TallestProduct(placements []models.PlacementModel) float64 {
	tallest := 0.0
	for _, p := range placements {
		if p.Product != nil && p.Product.Height > tallest {
			tallest = p.Product.Height
		}
	}
	return tallest
}

// CheckSegmentHeight returns the reason newHeight cannot be applied to segment, or "".
func CheckSegmentHeight(rules config.Rules, segment models.SegmentModel, placements []models.PlacementModel, newHeight float64) string {
	if newHeight < rules.MinSegmentHeight || newHeight > rules.MaxSegmentHeight {
		return fmt.Sprintf("segment %d: height must be between %.1fcm and %.1fcm, got %.1fcm",
			segment.Level, rules.MinSegmentHeight, rules.MaxSegmentHeight, newHeight)
	}
	if tallest := TallestProduct(placements); newHeight < tallest {
		return fmt.Sprintf("segment %d holds a product %.1fcm tall and cannot be lowered to %.1fcm",
			segment.Level, tallest, newHeight)
	}
	return ""
}

// SegmentUsage is the width utilisation of one segment.
type SegmentUsage struct {
	SegmentID      int     `json:"segmentId"`
	Level          int     `json:"level"`
	TotalArea      float64 `json:"totalArea"`
	UsedArea       float64 `json:"usedArea"`
	Utilization    float64 `json:"utilization"`
	ProductCount   int     `json:"productCount"`
	AvailableWidth float64 `json:"availableWidth"`
}

type Utilization struct {
	TotalArea float64        `json:"totalArea"`
	Segments  []SegmentUsage `json:"segments"`
	Overall   float64        `json:"overall"`
}

// ComputeUtilization works on the shelf footprint (width x depth) per segment.
// Segments must carry their placements.
func ComputeUtilization(shelf models.ShelfModel, segments []models.SegmentModel) Utilization {
	area := shelf.Width * shelf.Depth
	out := Utilization{TotalArea: area, Segments: []SegmentUsage{}}

	var used, available float64
	for _, seg := range segments {
		usedArea := UsedWidth(seg.Placements) * shelf.Depth
		rate := 0.0
		if area > 0 {
			rate = usedArea / area * 100
		}
		out.Segments = append(out.Segments, SegmentUsage{
			SegmentID:      seg.ID,
			Level:          seg.Level,
			TotalArea:      area,
			UsedArea:       usedArea,
			Utilization:    rate,
			ProductCount:   len(seg.Placements),
			AvailableWidth: AvailableWidth(shelf.Width, seg.Placements),
		})
		used += usedArea
		available += area
	}
	if available > 0 {
		out.Overall = used / available * 100
	}
	return out
}
