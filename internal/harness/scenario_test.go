package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalScenario = `
name: minimal
description: a minimal valid scenario
plan:
  upstream_step: DeployDaoFactory
  chain_id: 11155111
  factory: DaoFactory
  units:
    - name: approver
      script: script/DeployApprover.s.sol
record:
  mode: real
factory:
  primary: "0xA1b0000000000000000000000000000000000002"
expect:
  state: done
`

func TestLoadScenario_Valid(t *testing.T) {
	path := writeScenario(t, minimalScenario)

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "minimal", s.Name)
	assert.Equal(t, uint64(11155111), s.Plan.ChainID)
	assert.Equal(t, RecordReal, s.Record.Mode)
	require.Len(t, s.Plan.Units, 1)
	assert.Equal(t, "approver", s.Plan.Units[0].Name)
}

func TestLoadScenario_RejectsUnknownField(t *testing.T) {
	path := writeScenario(t, minimalScenario+`
asserts:
  - whatever
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse scenario YAML")
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		mutate   string
		contains string
	}{
		{
			name: "missing name",
			mutate: `
description: d
plan:
  upstream_step: S
  chain_id: 1
  factory: F
  units: [{name: u, script: s}]
record: {mode: real}
expect: {state: done}
`,
			contains: "name is required",
		},
		{
			name: "bad record mode",
			mutate: `
name: n
description: d
plan:
  upstream_step: S
  chain_id: 1
  factory: F
  units: [{name: u, script: s}]
record: {mode: maybe}
expect: {state: done}
`,
			contains: "record.mode",
		},
		{
			name: "outcome for unknown unit",
			mutate: `
name: n
description: d
plan:
  upstream_step: S
  chain_id: 1
  factory: F
  units: [{name: u, script: s}]
record: {mode: real}
units:
  ghost: {fail: boom}
expect: {state: done}
`,
			contains: "no such unit",
		},
		{
			name: "bad expect state",
			mutate: `
name: n
description: d
plan:
  upstream_step: S
  chain_id: 1
  factory: F
  units: [{name: u, script: s}]
record: {mode: real}
expect: {state: maybe}
`,
			contains: "expect.state",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeScenario(t, tc.mutate)
			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.contains)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
