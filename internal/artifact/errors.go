package artifact

import (
	"errors"
	"fmt"
)

// ResolveErrorCode categorizes artifact resolution errors.
type ResolveErrorCode string

const (
	// ErrCodeStoreUnavailable indicates the broadcast tree could not be
	// probed at the I/O level. Absence of a record is NOT this error.
	ErrCodeStoreUnavailable ResolveErrorCode = "STORE_UNAVAILABLE"

	// ErrCodeArtifactNotFound indicates no record exists in either
	// provenance mode for the requested key.
	ErrCodeArtifactNotFound ResolveErrorCode = "ARTIFACT_NOT_FOUND"

	// ErrCodeModeConflict indicates records exist in BOTH provenance modes
	// for the requested key. Resolution refuses to pick one.
	ErrCodeModeConflict ResolveErrorCode = "MODE_CONFLICT"

	// ErrCodeSchemaError indicates a record exists but is structurally
	// invalid (missing fields, wrong types, unparsable numerics).
	ErrCodeSchemaError ResolveErrorCode = "SCHEMA_ERROR"

	// ErrCodeComponentNotFound indicates no creation event in the record
	// matches the requested component name.
	ErrCodeComponentNotFound ResolveErrorCode = "COMPONENT_NOT_FOUND"
)

// ResolveError is a structured error from artifact location, selection, or
// parsing. Fields are populated per code so operators can act on the error
// without reading source: a MODE_CONFLICT carries both candidate paths and
// remediation guidance, a SCHEMA_ERROR carries the offending path.
type ResolveError struct {
	// Code identifies the error category.
	Code ResolveErrorCode

	// Message is a human-readable description.
	Message string

	// StepID and ChainID identify the resolution key.
	StepID  string
	ChainID uint64

	// Path is the record path involved (for parse-level errors).
	Path string

	// RealPath and DryRunPath are the conflicting candidates (for
	// MODE_CONFLICT) or the probed locations (for ARTIFACT_NOT_FOUND).
	RealPath   string
	DryRunPath string

	// Component is the requested component name (for COMPONENT_NOT_FOUND).
	Component string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *ResolveError) Error() string {
	switch {
	case e.Component != "":
		return fmt.Sprintf("%s: %s (step=%s, chain=%d, component=%s)", e.Code, e.Message, e.StepID, e.ChainID, e.Component)
	case e.Path != "":
		return fmt.Sprintf("%s: %s (path=%s)", e.Code, e.Message, e.Path)
	case e.StepID != "":
		return fmt.Sprintf("%s: %s (step=%s, chain=%d)", e.Code, e.Message, e.StepID, e.ChainID)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// Unwrap returns the underlying cause.
func (e *ResolveError) Unwrap() error {
	return e.Err
}

// IsNotFound returns true if the error is an ARTIFACT_NOT_FOUND error.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeArtifactNotFound)
}

// IsModeConflict returns true if the error is a MODE_CONFLICT error.
func IsModeConflict(err error) bool {
	return hasCode(err, ErrCodeModeConflict)
}

// IsSchemaError returns true if the error is a SCHEMA_ERROR error.
func IsSchemaError(err error) bool {
	return hasCode(err, ErrCodeSchemaError)
}

// IsComponentNotFound returns true if the error is a COMPONENT_NOT_FOUND
// error.
func IsComponentNotFound(err error) bool {
	return hasCode(err, ErrCodeComponentNotFound)
}

func hasCode(err error, code ResolveErrorCode) bool {
	var re *ResolveError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// NewModeConflictError creates a ResolveError for the both-modes-present
// case. The message tells the operator which file to delete for each
// intended mode.
func NewModeConflictError(stepID string, chainID uint64, realPath, dryRunPath string) *ResolveError {
	return &ResolveError{
		Code: ErrCodeModeConflict,
		Message: fmt.Sprintf(
			"records exist in both provenance modes; delete %s to resolve the broadcast record, or delete %s to resolve the dry-run record",
			dryRunPath, realPath),
		StepID:     stepID,
		ChainID:    chainID,
		RealPath:   realPath,
		DryRunPath: dryRunPath,
	}
}

// NewNotFoundError creates a ResolveError for the neither-mode-present case.
// Both probed locations are included so the operator can see exactly where
// resolution looked.
func NewNotFoundError(stepID string, chainID uint64, realPath, dryRunPath string) *ResolveError {
	return &ResolveError{
		Code: ErrCodeArtifactNotFound,
		Message: fmt.Sprintf(
			"no deployment record found; probed %s and %s", realPath, dryRunPath),
		StepID:     stepID,
		ChainID:    chainID,
		RealPath:   realPath,
		DryRunPath: dryRunPath,
	}
}

// NewSchemaError creates a ResolveError for a structurally invalid record.
func NewSchemaError(path, message string, err error) *ResolveError {
	return &ResolveError{
		Code:    ErrCodeSchemaError,
		Message: message,
		Path:    path,
		Err:     err,
	}
}
