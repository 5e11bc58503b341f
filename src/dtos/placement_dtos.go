package dtos

import "github.com/shelfwise/shelfwise-backend/src/planogram"

type PlaceProductRequest struct {
	ShelfID   int      `json:"shelf_id"`
	SegmentID int      `json:"segment_id" binding:"required"`
	ProductID int      `json:"product_id" binding:"required"`
	XPosition *float64 `json:"x_position" binding:"required"`
	// FaceCount defaults to 1.
	FaceCount *int `json:"face_count"`
}

func (r PlaceProductRequest) Faces() int {
	if r.FaceCount == nil {
		return 1
	}
	return *r.FaceCount
}

type UpdatePlacementRequest struct {
	PlacementID     int      `json:"placement_id" binding:"required"`
	XPosition       *float64 `json:"x_position"`
	FaceCount       *int     `json:"face_count"`
	FaceCountChange *int     `json:"face_count_change"`
	SegmentID       *int     `json:"segment_id"`
}

type DeletePlacementRequest struct {
	PlacementID int `json:"placement_id" binding:"required"`
}

type ClearShelfRequest struct {
	ShelfID int `json:"shelf_id" binding:"required"`
}

// PlacementResult is the reply to every placement command.
type PlacementResult struct {
	Success       bool                 `json:"success"`
	Message       string               `json:"message,omitempty"`
	Error         string               `json:"error,omitempty"`
	PlacementID   int                  `json:"placement_id,omitempty"`
	XPosition     *float64             `json:"x_position,omitempty"`
	OccupiedWidth *float64             `json:"occupied_width,omitempty"`
	FaceCount     int                  `json:"face_count,omitempty"`
	Removed       *int64               `json:"removed,omitempty"`
	Errors        planogram.Violations `json:"errors,omitempty"`
}

func Rejected(violations planogram.Violations) PlacementResult {
	return PlacementResult{
		Success: false,
		Error:   violations.Error(),
		Errors:  violations,
	}
}

func Failed(msg string) PlacementResult {
	return PlacementResult{Success: false, Error: msg}
}
