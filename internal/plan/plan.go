package plan

// Plan describes one orchestrator run: which upstream record to resolve and
// which units to invoke against it, in order.
type Plan struct {
	// UpstreamStep is the step ID of the deployment whose record supplies
	// dependency addresses.
	UpstreamStep string

	// ChainID is the chain this run targets. The upstream record must have
	// been produced for the same chain.
	ChainID uint64

	// FactoryComponent is the component name of the factory inside the
	// upstream record.
	FactoryComponent string

	// Units are the deployment units to invoke, in invocation order.
	Units []Unit
}

// Unit is one independently-invocable deployment action.
type Unit struct {
	// Name identifies the unit in step records and summaries.
	Name string

	// ConfigRef is the unit's own configuration reference (a path handed
	// through to the unit unopened; its contents are the unit's business).
	ConfigRef string

	// Script is the deployment script the invoker executes for this unit.
	Script string

	// Params are unit-scoped numeric parameters (durations, thresholds)
	// passed through to the unit unchanged.
	Params map[string]uint64
}

// Validate checks structural plan invariants: a named upstream step, a
// non-zero chain, a factory component name, at least one unit, and unique
// non-empty unit names.
func (p *Plan) Validate() error {
	if p.UpstreamStep == "" {
		return &LoadError{Code: ErrCodeInvalidPlan, Message: "plan missing upstream step"}
	}
	if p.ChainID == 0 {
		return &LoadError{Code: ErrCodeInvalidPlan, Message: "plan missing chain ID"}
	}
	if p.FactoryComponent == "" {
		return &LoadError{Code: ErrCodeInvalidPlan, Message: "plan missing factory component name"}
	}
	if len(p.Units) == 0 {
		return &LoadError{Code: ErrCodeInvalidPlan, Message: "plan declares no units"}
	}

	seen := make(map[string]bool, len(p.Units))
	for i, u := range p.Units {
		if u.Name == "" {
			return &LoadError{Code: ErrCodeInvalidUnit, Message: "unit has no name", Unit: indexLabel(i)}
		}
		if seen[u.Name] {
			return &LoadError{Code: ErrCodeInvalidUnit, Message: "duplicate unit name", Unit: u.Name}
		}
		seen[u.Name] = true
		if u.Script == "" {
			return &LoadError{Code: ErrCodeInvalidUnit, Message: "unit has no script", Unit: u.Name}
		}
	}
	return nil
}
