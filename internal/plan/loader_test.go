package plan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writePlan writes a plan.cue file into a fresh temp directory.
func writePlan(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plan.cue"), []byte(content), 0o644))
	return dir
}

const validPlan = `
plan: {
	upstreamStep: "DeployDaoFactory"
	chainId:      11155111
	factory:      "DaoFactory"
	units: [
		{
			name:   "approver"
			script: "script/DeployApprover.s.sol"
			config: "config/approver.json"
			params: {execDelay: 259200}
		},
		{
			name:   "curator"
			script: "script/DeployCurator.s.sol"
			config: "config/curator.json"
			params: {execDelay: 86400}
		},
	]
}
`

func TestLoad_ValidPlan(t *testing.T) {
	dir := writePlan(t, validPlan)

	p, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "DeployDaoFactory", p.UpstreamStep)
	assert.Equal(t, uint64(11155111), p.ChainID)
	assert.Equal(t, "DaoFactory", p.FactoryComponent)

	require.Len(t, p.Units, 2)
	assert.Equal(t, "approver", p.Units[0].Name)
	assert.Equal(t, "script/DeployApprover.s.sol", p.Units[0].Script)
	assert.Equal(t, "config/approver.json", p.Units[0].ConfigRef)
	assert.Equal(t, uint64(259200), p.Units[0].Params["execDelay"])
	assert.Equal(t, "curator", p.Units[1].Name)
	assert.Equal(t, uint64(86400), p.Units[1].Params["execDelay"],
		"units keep their own distinct parameter values")
}

func TestLoad_UnitOrderPreserved(t *testing.T) {
	dir := writePlan(t, `
plan: {
	upstreamStep: "S"
	chainId:      1
	factory:      "F"
	units: [
		{name: "c", script: "c.sol"},
		{name: "a", script: "a.sol"},
		{name: "b", script: "b.sol"},
	]
}
`)

	p, err := Load(dir)
	require.NoError(t, err)

	var names []string
	for _, u := range p.Units {
		names = append(names, u.Name)
	}
	assert.Equal(t, []string{"c", "a", "b"}, names, "plan order is invocation order")
}

func TestLoad_MissingDirectory(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeNotFound, le.Code)
}

func TestLoad_EmptyDirectory(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeNotFound, le.Code)
}

func TestLoad_InvalidPlans(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    LoadErrorCode
	}{
		{"no plan field", `other: 1`, ErrCodeInvalidPlan},
		{"missing upstreamStep", `plan: {chainId: 1, factory: "F", units: [{name: "u", script: "s"}]}`, ErrCodeInvalidPlan},
		{"missing chainId", `plan: {upstreamStep: "S", factory: "F", units: [{name: "u", script: "s"}]}`, ErrCodeInvalidPlan},
		{"chainId wrong type", `plan: {upstreamStep: "S", chainId: "one", factory: "F", units: [{name: "u", script: "s"}]}`, ErrCodeInvalidPlan},
		{"missing factory", `plan: {upstreamStep: "S", chainId: 1, units: [{name: "u", script: "s"}]}`, ErrCodeInvalidPlan},
		{"missing units", `plan: {upstreamStep: "S", chainId: 1, factory: "F"}`, ErrCodeInvalidPlan},
		{"empty units", `plan: {upstreamStep: "S", chainId: 1, factory: "F", units: []}`, ErrCodeInvalidPlan},
		{"unit missing name", `plan: {upstreamStep: "S", chainId: 1, factory: "F", units: [{script: "s"}]}`, ErrCodeInvalidUnit},
		{"unit missing script", `plan: {upstreamStep: "S", chainId: 1, factory: "F", units: [{name: "u"}]}`, ErrCodeInvalidUnit},
		{"duplicate unit names", `plan: {upstreamStep: "S", chainId: 1, factory: "F", units: [{name: "u", script: "a"}, {name: "u", script: "b"}]}`, ErrCodeInvalidUnit},
		{"negative param", `plan: {upstreamStep: "S", chainId: 1, factory: "F", units: [{name: "u", script: "s", params: {delay: -5}}]}`, ErrCodeInvalidUnit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writePlan(t, tt.content)
			_, err := Load(dir)
			require.Error(t, err)

			var le *LoadError
			require.ErrorAs(t, err, &le)
			assert.Equal(t, tt.code, le.Code, "got %v", err)
		})
	}
}

func TestLoad_BuildFailure(t *testing.T) {
	dir := writePlan(t, `plan: { this is not cue`)

	_, err := Load(dir)
	require.Error(t, err)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeBuildFailed, le.Code)
}
