package planogram

import "strings"

type ViolationCode string

const (
	CodeFaceCountOutOfRange  ViolationCode = "face_count_out_of_range"
	CodeNegativePosition     ViolationCode = "negative_position"
	CodeHeightExceedsSegment ViolationCode = "height_exceeds_segment"
	CodeExceedsShelfWidth    ViolationCode = "exceeds_shelf_width"
	CodeOverlap              ViolationCode = "overlap"
)

// Violation is one reason a placement is not legal.
type Violation struct {
	Code    ViolationCode `json:"code"`
	Message string        `json:"message"`
	// ConflictID is the placement this one collides with, set for CodeOverlap only.
	ConflictID int `json:"conflictId,omitempty"`
}

type Violations []Violation

func (v Violations) Strings() []string {
	out := make([]string, 0, len(v))
	for _, item := range v {
		out = append(out, item.Message)
	}
	return out
}

// Error joins the messages so a violation list can be logged or wrapped like an error.
func (v Violations) Error() string {
	return strings.Join(v.Strings(), "; ")
}

func (v Violations) Has(code ViolationCode) bool {
	for _, item := range v {
		if item.Code == code {
			return true
		}
	}
	return false
}
