package maintenance

import (
	"fmt"
	"io"

	"github.com/shelfwise/shelfwise-backend/src/services"
)

// WriteReport prints a shelf audit. verbose lists every finding, otherwise only counts per segment.
func WriteReport(w io.Writer, r *services.ShelfReport, verbose bool) {
	fmt.Fprintf(w, "shelf %d %q: %d placements, %d findings", r.ShelfID, r.ShelfName, r.Placements, r.Findings)
	if r.Fixed > 0 {
		fmt.Fprintf(w, ", %d fixed", r.Fixed)
	}
	fmt.Fprintln(w)

	for _, seg := range r.Segments {
		if len(seg.Findings) == 0 && !verbose {
			continue
		}
		fmt.Fprintf(w, "  segment %d: %d placements, %d findings\n", seg.Level, seg.Placements, len(seg.Findings))
		if !verbose {
			continue
		}
		for _, f := range seg.Findings {
			mark := "-"
			if f.Correctable {
				mark = "*"
			}
			fmt.Fprintf(w, "    %s %s\n", mark, f.Message)
		}
	}

	if verbose {
		fmt.Fprintf(w, "  utilization %.1f%%\n", r.Utilization.Overall)
	}
	if r.Resolution != nil {
		WriteResolution(w, r.Resolution)
	}
}

// WriteResolution prints what an overlap resolution did, or would do on a dry run.
func WriteResolution(w io.Writer, r *services.ShelfResolution) {
	verb := "resolved"
	if r.DryRun {
		verb = "would resolve"
	}
	fmt.Fprintf(w, "shelf %d: %s with %s, %d moved, %d deleted\n", r.ShelfID, verb, r.Strategy, r.Moved, r.Deleted)
	for _, seg := range r.Segments {
		switch {
		case seg.Error != "":
			fmt.Fprintf(w, "  segment %d: %s\n", seg.Level, seg.Error)
		case seg.Plan != nil:
			for _, m := range seg.Plan.Moves {
				fmt.Fprintf(w, "  segment %d: placement %d %.1f -> %.1fcm\n", seg.Level, m.PlacementID, m.From, m.To)
			}
			for _, id := range seg.Plan.Deletions {
				fmt.Fprintf(w, "  segment %d: placement %d deleted\n", seg.Level, id)
			}
		}
	}
}
