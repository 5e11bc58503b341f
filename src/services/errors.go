package services

import (
	"errors"
	"strings"

	"github.com/shelfwise/shelfwise-backend/src/planogram"
)

var (
	ErrShelfNotFound     = errors.New("shelf not found")
	ErrSegmentNotFound   = errors.New("segment not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrPlacementNotFound = errors.New("placement not found")
	ErrTemplateNotFound  = errors.New("shelf template not found")

	ErrInvalidShelf     = errors.New("invalid shelf")
	ErrInvalidProduct   = errors.New("invalid product")
	ErrShelfTooNarrow   = errors.New("shelf width is smaller than its placements")
	ErrJanCodeExists    = errors.New("jan code already exists")
	ErrSegmentHeight    = errors.New("segment height rejected")
	ErrCapacityExceeded = planogram.ErrCapacityExceeded

	ErrInvalidCredentials = errors.New("invalid username or password")
)

// errRejected aborts a transaction whose candidate failed validation.
// It never leaves this package.
var errRejected = errors.New("placement rejected")

// IsNotFound reports whether err names a missing shelf, segment, product, placement or template.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrShelfNotFound) ||
		errors.Is(err, ErrSegmentNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrPlacementNotFound) ||
		errors.Is(err, ErrTemplateNotFound)
}

// SegmentHeightError lists why a batch of segment height changes was refused.
type SegmentHeightError struct {
	Reasons []string
}

func (e *SegmentHeightError) Error() string {
	return ErrSegmentHeight.Error() + ": " + strings.Join(e.Reasons, "; ")
}

func (e *SegmentHeightError) Unwrap() error {
	return ErrSegmentHeight
}
