// Package planogram is the placement engine: rounding, interval arithmetic,
// placement validation, overlap resolution and the consistency audit.
//
// Everything in this package is pure. Callers load the shelf, segment and
// placements, ask the engine for a decision or a plan, and persist the result
// themselves.
package planogram

import "github.com/shopspring/decimal"

// Gap is the spacing left between neighbours when the compact strategy repacks a segment.
const Gap = 0.1

// RoundCM rounds v to one decimal place, halves away from zero.
func RoundCM(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}

func floorCM(v float64) float64 {
	return decimal.NewFromFloat(v).RoundFloor(1).InexactFloat64()
}

// SumCM adds values in decimal so that 0.1-cm steps do not drift.
func SumCM(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.InexactFloat64()
}

// FitsWithin reports whether start+length <= limit, compared exactly.
func FitsWithin(start, length, limit float64) bool {
	end := decimal.NewFromFloat(start).Add(decimal.NewFromFloat(length))
	return end.LessThanOrEqual(decimal.NewFromFloat(limit))
}
