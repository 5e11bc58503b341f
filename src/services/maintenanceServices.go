package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shelfwise/shelfwise-backend/src/cache"
	"github.com/shelfwise/shelfwise-backend/src/config"
	"github.com/shelfwise/shelfwise-backend/src/models"
	"github.com/shelfwise/shelfwise-backend/src/planogram"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ValidateOptions controls what a sweep may change. The zero value only reports.
type ValidateOptions struct {
	// Fix rewrites stored occupied widths that drifted from the product width.
	Fix bool
	// Strategy, when set, resolves overlaps after the audit.
	Strategy planogram.Strategy
}

type SegmentReport struct {
	SegmentID  int                 `json:"segmentId"`
	Level      int                 `json:"level"`
	Placements int                 `json:"placements"`
	Findings   []planogram.Finding `json:"findings"`
	Fixed      int                 `json:"fixed"`
}

type ShelfReport struct {
	ShelfID     int                   `json:"shelfId"`
	ShelfName   string                `json:"shelfName"`
	Placements  int                   `json:"placements"`
	Findings    int                   `json:"findings"`
	Fixed       int                   `json:"fixed"`
	Segments    []SegmentReport       `json:"segments"`
	Utilization planogram.Utilization `json:"utilization"`
	Resolution  *ShelfResolution      `json:"resolution,omitempty"`
}

// Healthy reports whether the audit found nothing left unfixed.
func (r *ShelfReport) Healthy() bool {
	return r.Findings == r.Fixed
}

type SegmentResolution struct {
	SegmentID int                   `json:"segmentId"`
	Level     int                   `json:"level"`
	Skipped   string                `json:"skipped,omitempty"`
	Plan      *planogram.Resolution `json:"plan,omitempty"`
	Error     string                `json:"error,omitempty"`
}

type ShelfResolution struct {
	ShelfID  int                 `json:"shelfId"`
	Strategy planogram.Strategy  `json:"strategy"`
	DryRun   bool                `json:"dryRun"`
	Moved    int                 `json:"moved"`
	Deleted  int                 `json:"deleted"`
	Segments []SegmentResolution `json:"segments"`
}

type MaintenanceService struct {
	db    *gorm.DB
	rules config.Rules
	cache *cache.Cache
	log   *zap.Logger
}

func NewMaintenanceService(db *gorm.DB, rules config.Rules, store *cache.Cache, log *zap.Logger) *MaintenanceService {
	return &MaintenanceService{db: db, rules: rules, cache: store, log: log}
}

// ValidateShelf audits every segment of a shelf against the placement invariants.
func (s *MaintenanceService) ValidateShelf(ctx context.Context, shelfID int, opts ValidateOptions) (*ShelfReport, error) {
	db := s.db.WithContext(ctx)
	shelf, err := loadShelfTree(db, shelfID)
	if err != nil {
		return nil, err
	}

	report := &ShelfReport{ShelfID: shelf.ID, ShelfName: shelf.Name, Segments: []SegmentReport{}}
	var fixes []planogram.Finding
	for _, seg := range shelf.Segments {
		findings := planogram.AuditSegment(s.rules, *shelf, seg, seg.Placements)
		segReport := SegmentReport{
			SegmentID:  seg.ID,
			Level:      seg.Level,
			Placements: len(seg.Placements),
			Findings:   findings,
		}
		if segReport.Findings == nil {
			segReport.Findings = []planogram.Finding{}
		}
		if opts.Fix {
			for _, f := range findings {
				if f.Correctable {
					fixes = append(fixes, f)
					segReport.Fixed++
				}
			}
		}
		report.Placements += len(seg.Placements)
		report.Findings += len(findings)
		report.Fixed += segReport.Fixed
		report.Segments = append(report.Segments, segReport)
	}

	if len(fixes) > 0 {
		err := db.Transaction(func(tx *gorm.DB) error {
			for _, f := range fixes {
				err := tx.Model(&models.PlacementModel{}).
					Where("id = ?", f.PlacementID).
					Update("occupied_width", f.Recomputed).Error
				if err != nil {
					return fmt.Errorf("fix placement %d: %w", f.PlacementID, err)
				}
			}
			return nil
		})
		if err != nil {
			s.log.Error("width fix failed", zap.Int("shelf_id", shelfID), zap.Error(err))
			return nil, err
		}
		invalidateShelf(s.cache, shelfID)
		s.log.Info("occupied widths fixed", zap.Int("shelf_id", shelfID), zap.Int("fixed", len(fixes)))
	}

	if opts.Strategy != "" {
		res, err := s.ResolveShelf(ctx, shelfID, opts.Strategy, false)
		if err != nil {
			return nil, err
		}
		report.Resolution = res
	}

	if len(fixes) > 0 || report.Resolution != nil {
		if shelf, err = loadShelfTree(db, shelfID); err != nil {
			return nil, err
		}
	}
	report.Utilization = planogram.ComputeUtilization(*shelf, shelf.Segments)

	s.log.Info("shelf validated",
		zap.Int("shelf_id", shelfID),
		zap.Int("placements", report.Placements),
		zap.Int("findings", report.Findings),
		zap.Int("fixed", report.Fixed))
	return report, nil
}

// ValidateAll sweeps every active shelf in id order.
func (s *MaintenanceService) ValidateAll(ctx context.Context, opts ValidateOptions) ([]ShelfReport, error) {
	var ids []int
	err := s.db.WithContext(ctx).Model(&models.ShelfModel{}).
		Where("is_active = ?", true).
		Order("id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}

	reports := make([]ShelfReport, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		report, err := s.ValidateShelf(ctx, id, opts)
		if err != nil {
			return reports, fmt.Errorf("validate shelf %d: %w", id, err)
		}
		reports = append(reports, *report)
	}
	return reports, nil
}

// ResolveShelf runs ResolveSegment over every segment of a shelf, bottom level first.
// A segment that cannot be resolved for lack of room is reported and left as it was.
func (s *MaintenanceService) ResolveShelf(ctx context.Context, shelfID int, strategy planogram.Strategy, dryRun bool) (*ShelfResolution, error) {
	if _, err := planogram.ParseStrategy(string(strategy)); err != nil {
		return nil, err
	}
	var segments []models.SegmentModel
	db := s.db.WithContext(ctx)
	if err := shelfExists(db, shelfID); err != nil {
		return nil, err
	}
	if err := db.Where("shelf_id = ?", shelfID).Order("level ASC").Find(&segments).Error; err != nil {
		return nil, err
	}

	out := &ShelfResolution{ShelfID: shelfID, Strategy: strategy, DryRun: dryRun, Segments: []SegmentResolution{}}
	for _, seg := range segments {
		res, err := s.ResolveSegment(ctx, seg.ID, strategy, dryRun)
		if errors.Is(err, ErrCapacityExceeded) {
			out.Segments = append(out.Segments, SegmentResolution{SegmentID: seg.ID, Level: seg.Level, Error: err.Error()})
			continue
		}
		if err != nil {
			return nil, err
		}
		if res.Plan != nil {
			out.Moved += len(res.Plan.Moves)
			out.Deleted += len(res.Plan.Deletions)
		}
		out.Segments = append(out.Segments, *res)
	}
	return out, nil
}

// ResolveSegment plans an overlap-free layout for one segment and, unless dryRun, applies it
// in a single transaction. Segments with fewer than two placements or no overlaps are skipped.
func (s *MaintenanceService) ResolveSegment(ctx context.Context, segmentID int, strategy planogram.Strategy, dryRun bool) (*SegmentResolution, error) {
	var out *SegmentResolution
	var shelfID int

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		segment, err := loadSegment(tx, segmentID, s.rules.LockSegments)
		if err != nil {
			return err
		}
		shelfID = segment.ShelfID
		out = &SegmentResolution{SegmentID: segment.ID, Level: segment.Level}

		placements, err := segmentPlacements(tx, segment.ID)
		if err != nil {
			return err
		}
		if len(placements) < 2 {
			out.Skipped = "fewer than two placements"
			return nil
		}
		if len(planogram.FindOverlaps(placements, s.rules.OverlapTolerance)) == 0 {
			out.Skipped = "no overlaps"
			return nil
		}

		plan, err := planogram.Resolve(strategy, segment.Shelf.Width, placements, s.rules.OverlapTolerance)
		if err != nil {
			return fmt.Errorf("segment %d: %w", segment.Level, err)
		}
		if plan.CapacityExceeded {
			return fmt.Errorf("segment %d: %w: %d placements would end past %.1fcm",
				segment.Level, ErrCapacityExceeded, len(plan.Overflowing), segment.Shelf.Width)
		}
		out.Plan = plan
		if dryRun {
			return nil
		}

		for _, m := range plan.Moves {
			err := tx.Model(&models.PlacementModel{}).
				Where("id = ?", m.PlacementID).
				Update("x_position", planogram.RoundCM(m.To)).Error
			if err != nil {
				return fmt.Errorf("move placement %d: %w", m.PlacementID, err)
			}
		}
		if len(plan.Deletions) > 0 {
			if err := tx.Delete(&models.PlacementModel{}, plan.Deletions).Error; err != nil {
				return fmt.Errorf("delete duplicates: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrCapacityExceeded) {
			s.log.Error("overlap resolution failed", zap.Int("segment_id", segmentID), zap.Error(err))
		}
		return nil, err
	}

	if out.Plan != nil && !dryRun && out.Plan.Changed() > 0 {
		invalidateShelf(s.cache, shelfID)
		s.log.Info("overlaps resolved",
			zap.Int("shelf_id", shelfID),
			zap.Int("segment_id", segmentID),
			zap.String("strategy", string(strategy)),
			zap.Int("moved", len(out.Plan.Moves)),
			zap.Int("deleted", len(out.Plan.Deletions)))
	}
	return out, nil
}
