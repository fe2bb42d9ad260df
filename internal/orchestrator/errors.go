package orchestrator

import (
	"errors"
	"fmt"
)

// ErrCodeUnitDeploymentFailed is the code carried by UnitError. There is
// exactly one orchestrator-level error category: everything from resolution
// propagates with its own code, untouched.
const ErrCodeUnitDeploymentFailed = "UNIT_DEPLOYMENT_FAILED"

// UnitError wraps a unit invocation failure. The underlying reason is an
// opaque passthrough from the invoked unit; the orchestrator neither
// interprets nor rewrites it.
type UnitError struct {
	// Unit is the plan name of the failed unit.
	Unit string

	// Err is the unit's raw failure, unmodified.
	Err error
}

// Error implements the error interface.
func (e *UnitError) Error() string {
	return fmt.Sprintf("%s: unit %s failed: %v", ErrCodeUnitDeploymentFailed, e.Unit, e.Err)
}

// Unwrap returns the raw unit failure.
func (e *UnitError) Unwrap() error {
	return e.Err
}

// IsUnitError returns true if the error is a unit deployment failure.
// Uses errors.As to handle wrapped errors.
func IsUnitError(err error) bool {
	var ue *UnitError
	return errors.As(err, &ue)
}
