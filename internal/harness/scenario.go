package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Record mode values for ScenarioRecord.Mode. "both" plants records in both
// provenance modes to provoke the mode guard; "none" plants nothing.
const (
	RecordReal   = "real"
	RecordDryRun = "dry-run"
	RecordBoth   = "both"
	RecordNone   = "none"
)

// Scenario defines one end-to-end orchestrator run: the plan, the on-disk
// upstream record, the scripted boundary behavior, and the expected outcome.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario exercises.
	Description string `yaml:"description"`

	// Plan is the deployment plan the orchestrator runs.
	Plan ScenarioPlan `yaml:"plan"`

	// Record describes the upstream broadcast record planted before the run.
	Record ScenarioRecord `yaml:"record"`

	// Factory scripts the factory reader's answers.
	Factory ScenarioFactory `yaml:"factory"`

	// Units scripts each unit's invocation outcome, keyed by plan unit name.
	// A unit with no entry succeeds with no created components.
	Units map[string]UnitOutcome `yaml:"units,omitempty"`

	// Expect is the expected terminal outcome.
	Expect Expectation `yaml:"expect"`

	// RunToken is the fixed run token. Defaults to "run-test-0001" so golden
	// summaries stay stable across executions.
	RunToken string `yaml:"run_token,omitempty"`
}

// ScenarioPlan is the inline plan definition.
type ScenarioPlan struct {
	UpstreamStep string         `yaml:"upstream_step"`
	ChainID      uint64         `yaml:"chain_id"`
	Factory      string         `yaml:"factory"`
	Units        []ScenarioUnit `yaml:"units"`
}

// ScenarioUnit is one plan unit.
type ScenarioUnit struct {
	Name   string            `yaml:"name"`
	Script string            `yaml:"script"`
	Params map[string]uint64 `yaml:"params,omitempty"`
}

// ScenarioRecord describes the broadcast record to plant.
type ScenarioRecord struct {
	// Mode is one of "real", "dry-run", "both", or "none".
	Mode string `yaml:"mode"`

	// ChainID overrides the chain written into the record. Zero means the
	// plan's chain; a different value provokes the chain gate.
	ChainID uint64 `yaml:"chain_id,omitempty"`

	// Creations are the record's contract creation entries in order.
	Creations []ScenarioCreation `yaml:"creations,omitempty"`
}

// ScenarioCreation is one creation entry in the planted record.
type ScenarioCreation struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
}

// ScenarioFactory scripts the factory reader.
type ScenarioFactory struct {
	Primary    string            `yaml:"primary"`
	References map[string]string `yaml:"references,omitempty"`
	Parameters map[string]uint64 `yaml:"parameters,omitempty"`
}

// UnitOutcome scripts one unit invocation.
type UnitOutcome struct {
	// Fail, when non-empty, makes the invocation fail with this reason.
	Fail string `yaml:"fail,omitempty"`

	// Components are the created component handles reported on success.
	Components []ScenarioCreation `yaml:"components,omitempty"`
}

// Expectation is the asserted terminal outcome.
type Expectation struct {
	// State is the expected terminal run state: "done" or "failed".
	State string `yaml:"state"`

	// FailureContains, when non-empty, must be a substring of the failure
	// reason.
	FailureContains string `yaml:"failure_contains,omitempty"`

	// InvokedUnits, when non-nil, is the exact list of units that must have
	// been invoked, in order. Distinguishes fail-fast halts from full runs.
	InvokedUnits []string `yaml:"invoked_units,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so a typo fails loudly instead of silently relaxing a scenario.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}

	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse scenario YAML: %w", err)
	}

	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &s, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Plan.UpstreamStep == "" {
		return fmt.Errorf("plan.upstream_step is required")
	}
	if s.Plan.ChainID == 0 {
		return fmt.Errorf("plan.chain_id is required")
	}
	if s.Plan.Factory == "" {
		return fmt.Errorf("plan.factory is required")
	}
	if len(s.Plan.Units) == 0 {
		return fmt.Errorf("plan.units is required and must be non-empty")
	}
	for i, u := range s.Plan.Units {
		if u.Name == "" {
			return fmt.Errorf("plan.units[%d]: name is required", i)
		}
		if u.Script == "" {
			return fmt.Errorf("plan.units[%d]: script is required", i)
		}
	}

	switch s.Record.Mode {
	case RecordReal, RecordDryRun, RecordBoth, RecordNone:
	case "":
		return fmt.Errorf("record.mode is required")
	default:
		return fmt.Errorf("record.mode %q is not one of real, dry-run, both, none", s.Record.Mode)
	}

	for name := range s.Units {
		if !planHasUnit(s.Plan.Units, name) {
			return fmt.Errorf("units[%s]: no such unit in plan", name)
		}
	}

	switch s.Expect.State {
	case "done", "failed":
	case "":
		return fmt.Errorf("expect.state is required")
	default:
		return fmt.Errorf("expect.state %q is not one of done, failed", s.Expect.State)
	}

	return nil
}

func planHasUnit(units []ScenarioUnit, name string) bool {
	for _, u := range units {
		if u.Name == name {
			return true
		}
	}
	return false
}
