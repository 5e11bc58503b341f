package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shelfwise/shelfwise-backend/src/services"
	"go.uber.org/zap"
)

// statusFor maps service errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case services.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, services.ErrCapacityExceeded),
		errors.Is(err, services.ErrJanCodeExists),
		errors.Is(err, services.ErrShelfTooNarrow):
		return http.StatusConflict
	case errors.Is(err, services.ErrSegmentHeight):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrInvalidShelf),
		errors.Is(err, services.ErrInvalidProduct):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// errorMessage hides storage faults from clients.
func errorMessage(status int, err error) string {
	if status == http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}

func respondError(ctx *gin.Context, log *zap.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed", zap.String("path", ctx.FullPath()), zap.Error(err))
		_ = ctx.Error(err)
	}

	body := gin.H{"error": errorMessage(status, err)}
	var heightErr *services.SegmentHeightError
	if errors.As(err, &heightErr) {
		body["errors"] = heightErr.Reasons
	}
	ctx.JSON(status, body)
}

func paramID(ctx *gin.Context, what string) (int, bool) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + what + " ID"})
		return 0, false
	}
	return id, true
}
