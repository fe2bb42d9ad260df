package orchestrator

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Hats-Protocol/dao-factory-sub001/internal/artifact"
	"github.com/Hats-Protocol/dao-factory-sub001/internal/resolve"
)

// Summary is the report produced at the end of a run: every created
// component address across all invoked units, plus the resolved upstream
// addresses for cross-reference. The JSON form is stable so a later run
// (or other tooling) can consume it as machine input.
type Summary struct {
	RunToken      string             `json:"runToken"`
	UpstreamStep  string             `json:"upstreamStep"`
	ChainID       uint64             `json:"chainId"`
	Mode          artifact.Mode      `json:"mode,omitempty"`
	State         State              `json:"state"`
	FailureReason string             `json:"failureReason,omitempty"`
	Dependency    resolve.Dependency `json:"dependency"`
	Records       []StepRecord       `json:"records"`
	StartedAt     time.Time          `json:"startedAt"`
	FinishedAt    time.Time          `json:"finishedAt"`
}

// CreatedComponents returns every component created by successfully
// invoked units, in invocation then creation order.
func (s *Summary) CreatedComponents() []CreatedComponent {
	var out []CreatedComponent
	for _, rec := range s.Records {
		if rec.Status != StatusSuccess {
			continue
		}
		out = append(out, rec.Components...)
	}
	return out
}

// RenderText renders the human-readable report.
func (s *Summary) RenderText() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Run %s  step=%s  chain=%d  state=%s\n", s.RunToken, s.UpstreamStep, s.ChainID, s.State)
	if s.FailureReason != "" {
		fmt.Fprintf(&b, "  failure: %s\n", s.FailureReason)
	}

	fmt.Fprintf(&b, "\nResolved upstream dependency (%s record):\n", s.Mode)
	fmt.Fprintf(&b, "  factory  %s\n", s.Dependency.FactoryAddress)
	fmt.Fprintf(&b, "  primary  %s\n", s.Dependency.PrimaryAddress)
	for _, name := range sortedKeys(s.Dependency.SharedReferences) {
		fmt.Fprintf(&b, "  ref      %-16s %s\n", name, s.Dependency.SharedReferences[name])
	}
	for _, name := range sortedParamKeys(s.Dependency.ParameterIDs) {
		fmt.Fprintf(&b, "  param    %-16s %d\n", name, s.Dependency.ParameterIDs[name])
	}

	fmt.Fprintf(&b, "\nUnits (%d):\n", len(s.Records))
	for _, rec := range s.Records {
		fmt.Fprintf(&b, "  %-12s %s\n", rec.Unit, rec.Status)
		if rec.Reason != "" {
			fmt.Fprintf(&b, "    reason: %s\n", rec.Reason)
		}
		for _, c := range rec.Components {
			fmt.Fprintf(&b, "    created  %-16s %s\n", c.Name, c.Address)
		}
		for _, name := range sortedParamKeys(rec.UnitParams) {
			fmt.Fprintf(&b, "    param    %-16s %d\n", name, rec.UnitParams[name])
		}
	}

	return b.String()
}

// RenderJSON renders the machine-readable report, indented.
func (s *Summary) RenderJSON() (string, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal summary: %w", err)
	}
	return string(data) + "\n", nil
}

func sortedKeys(m map[string]artifact.Address) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedParamKeys(m map[string]uint64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
