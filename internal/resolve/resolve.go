package resolve

import (
	"context"
	"fmt"
	"sort"

	"github.com/Hats-Protocol/dao-factory-sub001/internal/artifact"
)

// FactoryReader is the read-only boundary to an already-deployed factory
// component. Implementations wrap whatever transport reaches the chain
// (out of scope here); all methods are pure reads with no side effects.
//
// Every method takes the factory address explicitly so a single reader can
// serve any number of factories.
type FactoryReader interface {
	// PrimaryComponent returns the address of the factory's primary
	// deployed component.
	PrimaryComponent(ctx context.Context, factory artifact.Address) (artifact.Address, error)

	// SharedReferences returns the named shared reference addresses the
	// factory wired (components every downstream unit must agree on).
	SharedReferences(ctx context.Context, factory artifact.Address) (map[string]artifact.Address, error)

	// ParameterIDs returns the factory's opaque numeric parameter
	// identifiers. The core passes these through unchanged.
	ParameterIDs(ctx context.Context, factory artifact.Address) (map[string]uint64, error)
}

// Dependency is the bundle of addresses and parameters a downstream unit
// needs from an upstream deployment. Derived per run, never persisted.
type Dependency struct {
	ChainID          uint64                      `json:"chainId"`
	Mode             artifact.Mode               `json:"mode"`
	FactoryAddress   artifact.Address            `json:"factoryAddress"`
	PrimaryAddress   artifact.Address            `json:"primaryAddress"`
	SharedReferences map[string]artifact.Address `json:"sharedReferences,omitempty"`
	ParameterIDs     map[string]uint64           `json:"parameterIds,omitempty"`
}

// Derive builds the dependency bundle for a run targeting wantChainID from
// the given upstream record.
//
// The factory address comes out of the record via last-match-wins
// extraction; everything else comes from read-calls against the factory
// through the reader. Gates, in order:
//
//   - the record's chain ID must equal wantChainID (CHAIN_ID_MISMATCH);
//     cross-chain resolution is forbidden, full stop.
//   - the extracted factory address must be non-zero (ZERO_ADDRESS).
//   - every collaborator read must succeed and return non-zero addresses
//     (COLLABORATOR_CALL_FAILED).
func Derive(ctx context.Context, a artifact.Artifact, factoryComponent string, wantChainID uint64, reader FactoryReader) (Dependency, error) {
	if a.ChainID != wantChainID {
		return Dependency{}, &DependencyError{
			Code:        ErrCodeChainIDMismatch,
			Message:     "record was produced for a different chain",
			WantChainID: wantChainID,
			GotChainID:  a.ChainID,
		}
	}

	factoryAddr, err := artifact.ExtractAddress(a, factoryComponent)
	if err != nil {
		return Dependency{}, err
	}
	if factoryAddr.IsZero() {
		return Dependency{}, &DependencyError{
			Code:    ErrCodeZeroAddress,
			Message: "factory address in record is zero",
			Field:   "factory",
		}
	}

	primary, err := reader.PrimaryComponent(ctx, factoryAddr)
	if err != nil {
		return Dependency{}, collaboratorErr("primary", "primary component read failed", err)
	}
	if primary.IsZero() {
		return Dependency{}, collaboratorErr("primary", "primary component read returned zero address", nil)
	}

	shared, err := reader.SharedReferences(ctx, factoryAddr)
	if err != nil {
		return Dependency{}, collaboratorErr("sharedReferences", "shared reference read failed", err)
	}
	sharedCopy := make(map[string]artifact.Address, len(shared))
	for name, addr := range shared {
		if addr.IsZero() {
			return Dependency{}, collaboratorErr(
				fmt.Sprintf("sharedReference[%s]", name),
				"shared reference read returned zero address", nil)
		}
		sharedCopy[name] = addr
	}

	params, err := reader.ParameterIDs(ctx, factoryAddr)
	if err != nil {
		return Dependency{}, collaboratorErr("parameterIDs", "parameter read failed", err)
	}
	paramsCopy := make(map[string]uint64, len(params))
	for name, id := range params {
		paramsCopy[name] = id
	}

	return Dependency{
		ChainID:          a.ChainID,
		Mode:             a.Mode,
		FactoryAddress:   factoryAddr,
		PrimaryAddress:   primary,
		SharedReferences: sharedCopy,
		ParameterIDs:     paramsCopy,
	}, nil
}

// Validate re-checks the non-zero address gate on an already-derived
// bundle. The orchestrator calls this immediately before handing the bundle
// to a unit, so a bundle mutated or mis-built by a caller still cannot
// reach an invocation with a zero address.
func (d Dependency) Validate() error {
	if d.FactoryAddress.IsZero() {
		return &DependencyError{Code: ErrCodeZeroAddress, Message: "factory address is zero", Field: "factory"}
	}
	if d.PrimaryAddress.IsZero() {
		return &DependencyError{Code: ErrCodeZeroAddress, Message: "primary component address is zero", Field: "primary"}
	}
	for _, name := range sortedNames(d.SharedReferences) {
		if d.SharedReferences[name].IsZero() {
			return &DependencyError{
				Code:    ErrCodeZeroAddress,
				Message: "shared reference address is zero",
				Field:   fmt.Sprintf("sharedReference[%s]", name),
			}
		}
	}
	return nil
}

func collaboratorErr(field, message string, err error) *DependencyError {
	return &DependencyError{
		Code:    ErrCodeCollaboratorCallFailed,
		Message: message,
		Field:   field,
		Err:     err,
	}
}

// sortedNames returns map keys in sorted order for deterministic iteration.
func sortedNames(m map[string]artifact.Address) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
