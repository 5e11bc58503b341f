package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shelfwise/shelfwise-backend/src/dtos"
	"github.com/shelfwise/shelfwise-backend/src/models"
	"github.com/shelfwise/shelfwise-backend/src/planogram"
	"github.com/shelfwise/shelfwise-backend/src/services"
	"go.uber.org/zap"
)

type ShelfManager interface {
	ListShelves(ctx context.Context) ([]models.ShelfModel, error)
	GetShelf(ctx context.Context, id int) (*models.ShelfModel, error)
	GetLayout(ctx context.Context, id int) (*models.ShelfModel, error)
	CreateShelf(ctx context.Context, shelf *models.ShelfModel, heights []float64) (*models.ShelfModel, error)
	CreateShelfFromTemplate(ctx context.Context, templateID int, name string) (*models.ShelfModel, error)
	UpdateShelf(ctx context.Context, id int, patch services.ShelfPatch) (*models.ShelfModel, error)
	DeleteShelf(ctx context.Context, id int) error
	UpdateSegmentHeights(ctx context.Context, shelfID int, heights map[int]float64) ([]models.SegmentModel, error)
	GetUtilization(ctx context.Context, id int) (*planogram.Utilization, error)
	GetStatistics(ctx context.Context, id int) (*services.ShelfStatistics, error)
}

type ShelfMaintainer interface {
	ValidateShelf(ctx context.Context, shelfID int, opts services.ValidateOptions) (*services.ShelfReport, error)
	ResolveShelf(ctx context.Context, shelfID int, strategy planogram.Strategy, dryRun bool) (*services.ShelfResolution, error)
}

type ShelfController struct {
	service     ShelfManager
	maintenance ShelfMaintainer
	scale       float64
	log         *zap.Logger
}

// NewShelfController serves layouts at scale pixels per centimetre.
func NewShelfController(service ShelfManager, maintenance ShelfMaintainer, scale float64, log *zap.Logger) *ShelfController {
	return &ShelfController{service: service, maintenance: maintenance, scale: scale, log: log}
}

// GetAllShelves handles GET requests to retrieve all active shelves
func (c *ShelfController) GetAllShelves(ctx *gin.Context) {
	shelves, err := c.service.ListShelves(ctx.Request.Context())
	if err != nil {
		respondError(ctx, c.log, err)
		return
	}
	ctx.JSON(http.StatusOK, shelves)
}

// GetShelfByID handles GET requests to retrieve a shelf with its segments and placements
func (c *ShelfController) GetShelfByID(ctx *gin.Context) {
	id, ok := paramID(ctx, "shelf")
	if !ok {
		return
	}
	shelf, err := c.service.GetShelf(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, c.log, err)
		return
	}
	ctx.JSON(http.StatusOK, shelf)
}

// CreateShelf handles POST requests to create a shelf, from explicit levels or a template
func (c *ShelfController) CreateShelf(ctx *gin.Context) {
	var req dtos.CreateShelfRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var shelf *models.ShelfModel
	var err error
	if req.TemplateID != nil {
		shelf, err = c.service.CreateShelfFromTemplate(ctx.Request.Context(), *req.TemplateID, req.Name)
	} else {
		shelf, err = c.service.CreateShelf(ctx.Request.Context(), &models.ShelfModel{
			Name:        req.Name,
			Description: req.Description,
			Width:       req.Width,
			Depth:       req.Depth,
			TotalHeight: req.TotalHeight,
		}, req.SegmentHeights)
	}
	if err != nil {
		respondError(ctx, c.log, err)
		return
	}
	ctx.JSON(http.StatusCreated, shelf)
}

// UpdateShelf handles PUT requests to update an existing shelf
func (c *ShelfController) UpdateShelf(ctx *gin.Context) {
	id, ok := paramID(ctx, "shelf")
	if !ok {
		return
	}
	var req dtos.UpdateShelfRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shelf, err := c.service.UpdateShelf(ctx.Request.Context(), id, services.ShelfPatch{
		Name:        req.Name,
		Description: req.Description,
		Width:       req.Width,
		Depth:       req.Depth,
		TotalHeight: req.TotalHeight,
		IsActive:    req.IsActive,
	})
	if err != nil {
		respondError(ctx, c.log, err)
		return
	}
	ctx.JSON(http.StatusOK, shelf)
}

// DeleteShelf handles DELETE requests to remove a shelf and everything on it
func (c *ShelfController) DeleteShelf(ctx *gin.Context) {
	id, ok := paramID(ctx, "shelf")
	if !ok {
		return
	}
	if err := c.service.DeleteShelf(ctx.Request.Context(), id); err != nil {
		respondError(ctx, c.log, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (c *ShelfController) GetLayout(ctx *gin.Context) {
	id, ok := paramID(ctx, "shelf")
	if !ok {
		return
	}
	shelf, err := c.service.GetLayout(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, c.log, err)
		return
	}
	ctx.JSON(http.StatusOK, dtos.NewShelfLayout(shelf, c.scale))
}

func (c *ShelfController) GetUtilization(ctx *gin.Context) {
	id, ok := paramID(ctx, "shelf")
	if !ok {
		return
	}
	u, err := c.service.GetUtilization(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, c.log, err)
		return
	}
	ctx.JSON(http.StatusOK, u)
}

func (c *ShelfController) GetStatistics(ctx *gin.Context) {
	id, ok := paramID(ctx, "shelf")
	if !ok {
		return
	}
	stats, err := c.service.GetStatistics(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, c.log, err)
		return
	}
	ctx.JSON(http.StatusOK, stats)
}

// UpdateSegmentHeights applies all requested heights or none of them
func (c *ShelfController) UpdateSegmentHeights(ctx *gin.Context) {
	id, ok := paramID(ctx, "shelf")
	if !ok {
		return
	}
	var req dtos.SegmentHeightsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	heights := make(map[int]float64, len(req.Segments))
	for _, s := range req.Segments {
		heights[s.SegmentID] = s.Height
	}
	segments, err := c.service.UpdateSegmentHeights(ctx.Request.Context(), id, heights)
	if err != nil {
		respondError(ctx, c.log, err)
		return
	}
	ctx.JSON(http.StatusOK, segments)
}

// ValidateShelf audits a shelf; fix rewrites drifted widths, strategy resolves overlaps
func (c *ShelfController) ValidateShelf(ctx *gin.Context) {
	id, ok := paramID(ctx, "shelf")
	if !ok {
		return
	}
	var req dtos.ValidateShelfRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	opts := services.ValidateOptions{Fix: req.Fix}
	if req.Strategy != "" {
		strategy, err := planogram.ParseStrategy(req.Strategy)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		opts.Strategy = strategy
	}

	report, err := c.maintenance.ValidateShelf(ctx.Request.Context(), id, opts)
	if err != nil {
		respondError(ctx, c.log, err)
		return
	}
	ctx.JSON(http.StatusOK, report)
}

func (c *ShelfController) ResolveOverlaps(ctx *gin.Context) {
	id, ok := paramID(ctx, "shelf")
	if !ok {
		return
	}
	var req dtos.ResolveShelfRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	strategy, err := planogram.ParseStrategy(req.Strategy)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := c.maintenance.ResolveShelf(ctx.Request.Context(), id, strategy, req.DryRun)
	if err != nil {
		respondError(ctx, c.log, err)
		return
	}
	ctx.JSON(http.StatusOK, res)
}
