package orchestrator

import (
	"time"

	"github.com/Hats-Protocol/dao-factory-sub001/internal/artifact"
)

// StepStatus is the terminal status of one unit invocation.
type StepStatus string

const (
	// StatusSuccess marks a unit that returned a terminal success outcome.
	StatusSuccess StepStatus = "success"

	// StatusFailed marks a unit whose invocation returned an error. The
	// run halts at the first failed unit.
	StatusFailed StepStatus = "failed"
)

// CreatedComponent is one component handle a unit reported creating.
type CreatedComponent struct {
	Name    string           `json:"name"`
	Address artifact.Address `json:"address"`
}

// UnitResult is the declared outcome of a successful unit invocation.
type UnitResult struct {
	// Components are the component handles the unit created, in creation
	// order.
	Components []CreatedComponent
}

// StepRecord captures the outcome of one unit invocation. Records exist
// for the run summary and the audit ledger only; resolution never reads
// them back.
type StepRecord struct {
	// Unit is the unit's plan name.
	Unit string `json:"unit"`

	// Status is the terminal status.
	Status StepStatus `json:"status"`

	// Reason is the raw failure reason, unmodified, when Status is failed.
	Reason string `json:"reason,omitempty"`

	// Components are the created component handles (success only).
	Components []CreatedComponent `json:"components,omitempty"`

	// SharedReferences and ParameterIDs snapshot the exact upstream values
	// this unit was handed, copied verbatim from the run's dependency
	// bundle.
	SharedReferences map[string]artifact.Address `json:"sharedReferences,omitempty"`
	ParameterIDs     map[string]uint64           `json:"parameterIds,omitempty"`

	// UnitParams snapshot the unit's own plan parameters.
	UnitParams map[string]uint64 `json:"unitParams,omitempty"`

	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// snapshotAddresses copies an address map so a record stays stable even if
// the source map is later mutated.
func snapshotAddresses(m map[string]artifact.Address) map[string]artifact.Address {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]artifact.Address, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// snapshotParams copies a parameter map.
func snapshotParams(m map[string]uint64) map[string]uint64 {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]uint64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
