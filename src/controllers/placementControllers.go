package controllers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shelfwise/shelfwise-backend/src/dtos"
	"github.com/shelfwise/shelfwise-backend/src/models"
	"github.com/shelfwise/shelfwise-backend/src/planogram"
	"github.com/shelfwise/shelfwise-backend/src/services"
	"go.uber.org/zap"
)

// PlacementManager is what the placement endpoints need from the service layer.
type PlacementManager interface {
	Place(ctx context.Context, req services.PlaceRequest) (*models.PlacementModel, planogram.Violations, error)
	Move(ctx context.Context, req services.MoveRequest) (*models.PlacementModel, planogram.Violations, error)
	Delete(ctx context.Context, id int) (*models.PlacementModel, error)
	ClearAll(ctx context.Context, shelfID int) (int64, error)
	Get(ctx context.Context, id int) (*models.PlacementModel, error)
}

type PlacementController struct {
	service PlacementManager
	log     *zap.Logger
}

func NewPlacementController(service PlacementManager, log *zap.Logger) *PlacementController {
	return &PlacementController{service: service, log: log}
}

// PlaceProduct godoc
// @Summary Place a product on a segment
// @Tags placements
// @Accept json
// @Produce json
// @Param request body dtos.PlaceProductRequest true "Placement"
// @Success 200 {object} dtos.PlacementResult
// @Failure 404 {object} dtos.PlacementResult
// @Failure 422 {object} dtos.PlacementResult "Rejected, errors lists every violation"
// @Router /placements/place [post]
func (c *PlacementController) PlaceProduct(ctx *gin.Context) {
	var req dtos.PlaceProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dtos.Failed(err.Error()))
		return
	}

	placement, violations, err := c.service.Place(ctx.Request.Context(), services.PlaceRequest{
		ShelfID:   req.ShelfID,
		SegmentID: req.SegmentID,
		ProductID: req.ProductID,
		XPosition: *req.XPosition,
		FaceCount: req.Faces(),
	})
	if err != nil {
		c.fail(ctx, err)
		return
	}
	if len(violations) > 0 {
		ctx.JSON(http.StatusUnprocessableEntity, dtos.Rejected(violations))
		return
	}

	ctx.JSON(http.StatusOK, success(placement, fmt.Sprintf("placed %s at %.1fcm (%d faces, %.1fcm wide)",
		placement.ProductName(), placement.XPosition, placement.FaceCount, placement.OccupiedWidth)))
}

// UpdatePlacement godoc
// @Summary Move or resize a placement
// @Tags placements
// @Accept json
// @Produce json
// @Param request body dtos.UpdatePlacementRequest true "Changes"
// @Success 200 {object} dtos.PlacementResult
// @Failure 404 {object} dtos.PlacementResult
// @Failure 422 {object} dtos.PlacementResult
// @Router /placements/update [post]
func (c *PlacementController) UpdatePlacement(ctx *gin.Context) {
	var req dtos.UpdatePlacementRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dtos.Failed(err.Error()))
		return
	}

	placement, violations, err := c.service.Move(ctx.Request.Context(), services.MoveRequest{
		PlacementID:     req.PlacementID,
		XPosition:       req.XPosition,
		FaceCount:       req.FaceCount,
		FaceCountChange: req.FaceCountChange,
		SegmentID:       req.SegmentID,
	})
	if err != nil {
		c.fail(ctx, err)
		return
	}
	if len(violations) > 0 {
		ctx.JSON(http.StatusUnprocessableEntity, dtos.Rejected(violations))
		return
	}

	ctx.JSON(http.StatusOK, success(placement, fmt.Sprintf("placement %d now at %.1fcm (%d faces)",
		placement.ID, placement.XPosition, placement.FaceCount)))
}

// DeletePlacement godoc
// @Summary Remove a placement
// @Tags placements
// @Accept json
// @Produce json
// @Param request body dtos.DeletePlacementRequest true "Placement"
// @Success 200 {object} dtos.PlacementResult
// @Failure 404 {object} dtos.PlacementResult
// @Router /placements/delete [post]
func (c *PlacementController) DeletePlacement(ctx *gin.Context) {
	var req dtos.DeletePlacementRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dtos.Failed(err.Error()))
		return
	}

	placement, err := c.service.Delete(ctx.Request.Context(), req.PlacementID)
	if err != nil {
		c.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dtos.PlacementResult{
		Success:     true,
		Message:     fmt.Sprintf("removed %s", placement.ProductName()),
		PlacementID: placement.ID,
	})
}

// ClearShelf godoc
// @Summary Remove every placement on a shelf
// @Tags placements
// @Accept json
// @Produce json
// @Param request body dtos.ClearShelfRequest true "Shelf"
// @Success 200 {object} dtos.PlacementResult
// @Failure 404 {object} dtos.PlacementResult
// @Router /placements/clear [post]
func (c *PlacementController) ClearShelf(ctx *gin.Context) {
	var req dtos.ClearShelfRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dtos.Failed(err.Error()))
		return
	}

	removed, err := c.service.ClearAll(ctx.Request.Context(), req.ShelfID)
	if err != nil {
		c.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dtos.PlacementResult{
		Success: true,
		Message: fmt.Sprintf("removed %d placements", removed),
		Removed: &removed,
	})
}

// GetPlacement handles GET requests for one placement
func (c *PlacementController) GetPlacement(ctx *gin.Context) {
	id, ok := paramID(ctx, "placement")
	if !ok {
		return
	}
	placement, err := c.service.Get(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, c.log, err)
		return
	}
	ctx.JSON(http.StatusOK, placement)
}

func (c *PlacementController) fail(ctx *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		c.log.Error("placement command failed", zap.String("path", ctx.FullPath()), zap.Error(err))
		_ = ctx.Error(err)
	}
	ctx.JSON(status, dtos.Failed(errorMessage(status, err)))
}

func success(p *models.PlacementModel, msg string) dtos.PlacementResult {
	x, width := p.XPosition, p.OccupiedWidth
	return dtos.PlacementResult{
		Success:       true,
		Message:       msg,
		PlacementID:   p.ID,
		XPosition:     &x,
		OccupiedWidth: &width,
		FaceCount:     p.FaceCount,
	}
}
