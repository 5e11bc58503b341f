package maintenance

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shelfwise/shelfwise-backend/src/planogram"
	"github.com/shelfwise/shelfwise-backend/src/services"
	"github.com/stretchr/testify/assert"
)

func sampleReport() *services.ShelfReport {
	return &services.ShelfReport{
		ShelfID: 1, ShelfName: "Drinks", Placements: 3, Findings: 2, Fixed: 1,
		Segments: []services.SegmentReport{
			{Level: 0, Placements: 3, Fixed: 1, Findings: []planogram.Finding{
				{Kind: planogram.FindingWidthMismatch, Message: "segment 0: Cola width mismatch", Correctable: true},
				{Kind: planogram.FindingOverlap, Message: "segment 0: Cola overlaps Pepsi"},
			}},
			{Level: 1, Findings: []planogram.Finding{}},
		},
		Utilization: planogram.Utilization{Overall: 12.5},
	}
}

func TestWriteReport(t *testing.T) {
	var quiet bytes.Buffer
	WriteReport(&quiet, sampleReport(), false)
	assert.Equal(t, "shelf 1 \"Drinks\": 3 placements, 2 findings, 1 fixed\n"+
		"  segment 0: 3 placements, 2 findings\n", quiet.String())

	var loud bytes.Buffer
	WriteReport(&loud, sampleReport(), true)
	out := loud.String()
	assert.Contains(t, out, "    * segment 0: Cola width mismatch\n")
	assert.Contains(t, out, "    - segment 0: Cola overlaps Pepsi\n")
	assert.Contains(t, out, "  segment 1: 0 placements, 0 findings\n")
	assert.Contains(t, out, "utilization 12.5%")
}

func TestWriteResolution(t *testing.T) {
	var buf bytes.Buffer
	WriteResolution(&buf, &services.ShelfResolution{
		ShelfID: 4, Strategy: planogram.StrategyCompact, DryRun: true, Moved: 1, Deleted: 1,
		Segments: []services.SegmentResolution{
			{Level: 0, Plan: &planogram.Resolution{
				Moves:     []planogram.Move{{PlacementID: 7, From: 5, To: 10.1}},
				Deletions: []int{8},
			}},
			{Level: 1, Error: "segment 1: total occupied width exceeds shelf width"},
			{Level: 2, Skipped: "no overlaps"},
		},
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"shelf 4: would resolve with compact, 1 moved, 1 deleted",
		"  segment 0: placement 7 5.0 -> 10.1cm",
		"  segment 0: placement 8 deleted",
		"  segment 1: segment 1: total occupied width exceeds shelf width",
	}, lines)
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes ", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"sure\n", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		assert.Equal(t, tt.want, Confirm(strings.NewReader(tt.input), &out, "Remove?"), "%q", tt.input)
		assert.Equal(t, "Remove? [y/N]: ", out.String())
	}
}
