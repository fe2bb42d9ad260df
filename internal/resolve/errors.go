package resolve

import (
	"errors"
	"fmt"
)

// DependencyErrorCode categorizes dependency derivation errors.
type DependencyErrorCode string

const (
	// ErrCodeChainIDMismatch indicates the record's chain ID differs from
	// the chain the current run is targeting.
	ErrCodeChainIDMismatch DependencyErrorCode = "CHAIN_ID_MISMATCH"

	// ErrCodeZeroAddress indicates a required address resolved to the zero
	// address.
	ErrCodeZeroAddress DependencyErrorCode = "ZERO_ADDRESS"

	// ErrCodeCollaboratorCallFailed indicates a read-call against the
	// deployed factory failed, or returned zero where a non-zero value is
	// required.
	ErrCodeCollaboratorCallFailed DependencyErrorCode = "COLLABORATOR_CALL_FAILED"
)

// DependencyError is a structured error from dependency derivation.
type DependencyError struct {
	// Code identifies the error category.
	Code DependencyErrorCode

	// Message is a human-readable description.
	Message string

	// WantChainID and GotChainID describe a chain mismatch.
	WantChainID uint64
	GotChainID  uint64

	// Field names the dependency slot involved (for zero-address and
	// collaborator errors), e.g. "primary" or "sharedReference[oracle]".
	Field string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *DependencyError) Error() string {
	if e.Code == ErrCodeChainIDMismatch {
		return fmt.Sprintf("%s: %s (want chain %d, record is for chain %d)", e.Code, e.Message, e.WantChainID, e.GotChainID)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field=%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *DependencyError) Unwrap() error {
	return e.Err
}

// IsChainIDMismatch returns true if the error is a CHAIN_ID_MISMATCH error.
// Uses errors.As to handle wrapped errors.
func IsChainIDMismatch(err error) bool {
	return hasCode(err, ErrCodeChainIDMismatch)
}

// IsZeroAddress returns true if the error is a ZERO_ADDRESS error.
func IsZeroAddress(err error) bool {
	return hasCode(err, ErrCodeZeroAddress)
}

// IsCollaboratorCallFailed returns true if the error is a
// COLLABORATOR_CALL_FAILED error.
func IsCollaboratorCallFailed(err error) bool {
	return hasCode(err, ErrCodeCollaboratorCallFailed)
}

func hasCode(err error, code DependencyErrorCode) bool {
	var de *DependencyError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}
