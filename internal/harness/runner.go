package harness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Hats-Protocol/dao-factory-sub001/internal/artifact"
	"github.com/Hats-Protocol/dao-factory-sub001/internal/orchestrator"
	"github.com/Hats-Protocol/dao-factory-sub001/internal/plan"
	"github.com/Hats-Protocol/dao-factory-sub001/internal/resolve"
)

// defaultRunToken keeps golden summaries stable when a scenario does not fix
// its own token.
const defaultRunToken = "run-test-0001"

// recordTimestamp is the fixed capture time written into planted records.
const recordTimestamp = 1700000000

// Result is the outcome of running one scenario.
type Result struct {
	// Summary is the orchestrator's run summary. Non-nil even on failure.
	Summary *orchestrator.Summary

	// RunErr is the error the orchestrator returned, nil on success.
	RunErr error

	// Invoked lists the units that were actually invoked, in order.
	Invoked []string

	// Errors lists expectation violations. Empty means the scenario passed.
	Errors []string
}

// Passed reports whether every expectation held.
func (r *Result) Passed() bool {
	return len(r.Errors) == 0
}

// Run executes a scenario inside dir, which must be an empty writable
// directory (tests pass t.TempDir()). The planted broadcast tree, the
// scripted invoker, and the scripted reader are all torn down with dir.
func Run(scenario *Scenario, dir string) (*Result, error) {
	if err := plantRecords(scenario, dir); err != nil {
		return nil, err
	}

	p := buildPlan(scenario)
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("scenario plan invalid: %w", err)
	}

	token := scenario.RunToken
	if token == "" {
		token = defaultRunToken
	}

	inv := &scriptedInvoker{outcomes: scenario.Units}
	orc := orchestrator.New(
		artifact.NewStore(dir),
		scriptedReader{factory: scenario.Factory},
		inv,
		p,
		orchestrator.WithTokenGenerator(orchestrator.FixedGenerator{Token: token}),
		orchestrator.WithClock(tickClock()),
	)

	summary, runErr := orc.Run(context.Background())

	result := &Result{Summary: summary, RunErr: runErr, Invoked: inv.invoked}
	evaluate(scenario, result)
	return result, nil
}

// evaluate checks the scenario's expectations against the run outcome.
func evaluate(scenario *Scenario, r *Result) {
	if got := string(r.Summary.State); got != scenario.Expect.State {
		r.Errors = append(r.Errors, fmt.Sprintf("expected terminal state %q, got %q", scenario.Expect.State, got))
	}

	if scenario.Expect.State == "done" && r.RunErr != nil {
		r.Errors = append(r.Errors, fmt.Sprintf("expected success, run failed: %v", r.RunErr))
	}
	if scenario.Expect.State == "failed" && r.RunErr == nil {
		r.Errors = append(r.Errors, "expected failure, run succeeded")
	}

	if want := scenario.Expect.FailureContains; want != "" {
		if !strings.Contains(r.Summary.FailureReason, want) {
			r.Errors = append(r.Errors, fmt.Sprintf("failure reason %q does not contain %q", r.Summary.FailureReason, want))
		}
	}

	if want := scenario.Expect.InvokedUnits; want != nil {
		if !equalStrings(r.Invoked, want) {
			r.Errors = append(r.Errors, fmt.Sprintf("invoked units %v, expected %v", r.Invoked, want))
		}
	}
}

// plantRecords writes the scenario's broadcast record(s) under dir in the
// standard tree layout.
func plantRecords(scenario *Scenario, dir string) error {
	if scenario.Record.Mode == RecordNone {
		return nil
	}

	chainID := scenario.Record.ChainID
	if chainID == 0 {
		chainID = scenario.Plan.ChainID
	}

	data, err := recordJSON(scenario.Record.Creations, chainID)
	if err != nil {
		return err
	}

	// The record directory is keyed by the plan's chain even when the record
	// body claims another chain, mirroring a record copied between trees.
	base := filepath.Join(dir, scenario.Plan.UpstreamStep+".s.sol", fmt.Sprintf("%d", scenario.Plan.ChainID))

	write := func(sub string) error {
		recDir := filepath.Join(base, sub)
		if err := os.MkdirAll(recDir, 0o755); err != nil {
			return fmt.Errorf("create record dir: %w", err)
		}
		if err := os.WriteFile(filepath.Join(recDir, "run-latest.json"), data, 0o644); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		return nil
	}

	switch scenario.Record.Mode {
	case RecordReal:
		return write("")
	case RecordDryRun:
		return write("dry-run")
	case RecordBoth:
		if err := write(""); err != nil {
			return err
		}
		return write("dry-run")
	}
	return nil
}

func recordJSON(creations []ScenarioCreation, chainID uint64) ([]byte, error) {
	type tx struct {
		TransactionType string `json:"transactionType"`
		ContractName    string `json:"contractName"`
		ContractAddress string `json:"contractAddress"`
	}
	txs := make([]tx, 0, len(creations))
	for _, c := range creations {
		txs = append(txs, tx{TransactionType: "CREATE", ContractName: c.Name, ContractAddress: c.Address})
	}
	data, err := json.Marshal(map[string]any{
		"transactions": txs,
		"chain":        chainID,
		"timestamp":    recordTimestamp,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	return data, nil
}

func buildPlan(scenario *Scenario) *plan.Plan {
	p := &plan.Plan{
		UpstreamStep:     scenario.Plan.UpstreamStep,
		ChainID:          scenario.Plan.ChainID,
		FactoryComponent: scenario.Plan.Factory,
	}
	for _, u := range scenario.Plan.Units {
		p.Units = append(p.Units, plan.Unit{Name: u.Name, Script: u.Script, Params: u.Params})
	}
	return p
}

// scriptedInvoker plays back the scenario's per-unit outcomes and records
// invocation order.
type scriptedInvoker struct {
	outcomes map[string]UnitOutcome
	invoked  []string
}

func (s *scriptedInvoker) Invoke(_ context.Context, unit plan.Unit, _ *orchestrator.EnvContext) (orchestrator.UnitResult, error) {
	s.invoked = append(s.invoked, unit.Name)

	outcome := s.outcomes[unit.Name]
	if outcome.Fail != "" {
		return orchestrator.UnitResult{}, errors.New(outcome.Fail)
	}

	var result orchestrator.UnitResult
	for _, c := range outcome.Components {
		result.Components = append(result.Components, orchestrator.CreatedComponent{
			Name:    c.Name,
			Address: artifact.Address(c.Address),
		})
	}
	return result, nil
}

// scriptedReader answers factory reads from the scenario.
type scriptedReader struct {
	factory ScenarioFactory
}

var _ resolve.FactoryReader = scriptedReader{}

func (r scriptedReader) PrimaryComponent(context.Context, artifact.Address) (artifact.Address, error) {
	return artifact.Address(r.factory.Primary), nil
}

func (r scriptedReader) SharedReferences(context.Context, artifact.Address) (map[string]artifact.Address, error) {
	refs := make(map[string]artifact.Address, len(r.factory.References))
	for name, addr := range r.factory.References {
		refs[name] = artifact.Address(addr)
	}
	return refs, nil
}

func (r scriptedReader) ParameterIDs(context.Context, artifact.Address) (map[string]uint64, error) {
	params := make(map[string]uint64, len(r.factory.Parameters))
	for name, id := range r.factory.Parameters {
		params[name] = id
	}
	return params, nil
}

// tickClock returns a deterministic clock advancing one second per call.
func tickClock() func() time.Time {
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
