package plan

import (
	"fmt"

	"cuelang.org/go/cue/token"
)

// LoadErrorCode categorizes plan loading errors.
type LoadErrorCode string

const (
	// ErrCodeNotFound indicates the plan directory does not exist or holds
	// no CUE files.
	ErrCodeNotFound LoadErrorCode = "PLAN_NOT_FOUND"

	// ErrCodeBuildFailed indicates the CUE instance failed to load or
	// evaluate.
	ErrCodeBuildFailed LoadErrorCode = "PLAN_BUILD_FAILED"

	// ErrCodeInvalidPlan indicates the evaluated plan is missing a
	// required top-level field or has one of the wrong type.
	ErrCodeInvalidPlan LoadErrorCode = "PLAN_INVALID"

	// ErrCodeInvalidUnit indicates a unit entry is malformed.
	ErrCodeInvalidUnit LoadErrorCode = "UNIT_INVALID"
)

// LoadError is a structured plan loading error, carrying the CUE source
// position when one is available.
type LoadError struct {
	Code    LoadErrorCode
	Message string
	Unit    string    // offending unit name or index, if unit-scoped
	Pos     token.Pos // CUE position, if available
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	if e.Unit != "" {
		return fmt.Sprintf("%s: %s (unit=%s)", e.Code, e.Message, e.Unit)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func indexLabel(i int) string {
	return fmt.Sprintf("#%d", i)
}
