package invoke

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hats-Protocol/dao-factory-sub001/internal/artifact"
	"github.com/Hats-Protocol/dao-factory-sub001/internal/orchestrator"
	"github.com/Hats-Protocol/dao-factory-sub001/internal/plan"
	"github.com/Hats-Protocol/dao-factory-sub001/internal/resolve"
)

func testEnv(t *testing.T) *orchestrator.EnvContext {
	t.Helper()
	dep := resolve.Dependency{
		ChainID:        11155111,
		FactoryAddress: "0xABC0000000000000000000000000000000000001",
		PrimaryAddress: "0xABC0000000000000000000000000000000000002",
	}
	env, err := orchestrator.NewEnvContext(dep, plan.Unit{
		Name:      "approver",
		Script:    "script/DeployApprover.s.sol",
		ConfigRef: "config/approver.json",
	})
	require.NoError(t, err)
	return env
}

func TestScriptStepID(t *testing.T) {
	assert.Equal(t, "DeployApprover", ScriptStepID("script/DeployApprover.s.sol"))
	assert.Equal(t, "DeployCurator", ScriptStepID("DeployCurator.s.sol"))
	assert.Equal(t, "run", ScriptStepID("tools/run"))
}

func TestInvoke_PassesEnvContext(t *testing.T) {
	root := t.TempDir()
	outFile := filepath.Join(t.TempDir(), "env.out")

	inv := &ScriptInvoker{
		// The "script" argument lands in $0 of the shell; the command
		// itself just dumps the relevant environment.
		Command: []string{"sh", "-c", fmt.Sprintf("env | grep '^DEPLOY_' | sort > %s", outFile)},
		Store:   artifact.NewStore(root),
		ChainID: 11155111,
		Stdout:  &bytes.Buffer{},
		Stderr:  &bytes.Buffer{},
	}

	_, err := inv.Invoke(context.Background(), plan.Unit{Name: "approver", Script: "script/DeployApprover.s.sol"}, testEnv(t))
	require.NoError(t, err)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "DEPLOY_CHAIN_ID=11155111")
	assert.Contains(t, out, "DEPLOY_UPSTREAM_FACTORY=0xABC0000000000000000000000000000000000001")
	assert.Contains(t, out, "DEPLOY_UPSTREAM_PRIMARY=0xABC0000000000000000000000000000000000002")
	assert.Contains(t, out, "DEPLOY_CONFIG=config/approver.json")
}

func TestInvoke_NonZeroExitIsFailure(t *testing.T) {
	inv := &ScriptInvoker{
		Command: []string{"sh", "-c", "exit 3"},
		Store:   artifact.NewStore(t.TempDir()),
		ChainID: 11155111,
		Stdout:  &bytes.Buffer{},
		Stderr:  &bytes.Buffer{},
	}

	_, err := inv.Invoke(context.Background(), plan.Unit{Name: "approver", Script: "script/DeployApprover.s.sol"}, testEnv(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DeployApprover")
}

func TestInvoke_ReadsUnitRecordAfterCleanExit(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "DeployApprover.s.sol", "11155111")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "run-latest.json"), []byte(`{
		"transactions": [
			{"transactionType": "CREATE", "contractName": "ApproverBranch", "contractAddress": "0x0000000000000000000000000000000000000010"}
		],
		"chain": 11155111
	}`), 0o644))

	inv := &ScriptInvoker{
		Command: []string{"sh", "-c", "true"},
		Store:   artifact.NewStore(root),
		ChainID: 11155111,
		Stdout:  &bytes.Buffer{},
		Stderr:  &bytes.Buffer{},
	}

	result, err := inv.Invoke(context.Background(), plan.Unit{Name: "approver", Script: "script/DeployApprover.s.sol"}, testEnv(t))
	require.NoError(t, err)
	require.Len(t, result.Components, 1)
	assert.Equal(t, "ApproverBranch", result.Components[0].Name)
	assert.Equal(t, artifact.Address("0x0000000000000000000000000000000000000010"), result.Components[0].Address)
}

func TestInvoke_CleanExitWithoutRecordDeclaresNothing(t *testing.T) {
	inv := &ScriptInvoker{
		Command: []string{"sh", "-c", "true"},
		Store:   artifact.NewStore(t.TempDir()),
		ChainID: 11155111,
		Stdout:  &bytes.Buffer{},
		Stderr:  &bytes.Buffer{},
	}

	result, err := inv.Invoke(context.Background(), plan.Unit{Name: "approver", Script: "script/DeployApprover.s.sol"}, testEnv(t))
	require.NoError(t, err)
	assert.Empty(t, result.Components)
}

func TestInvoke_UnitModeConflictIsFailure(t *testing.T) {
	// The unit's own record is subject to the same mode guard: if the
	// unit's key has records in both modes, the outcome is ambiguous.
	root := t.TempDir()
	for _, sub := range []string{"", "dry-run"} {
		dir := filepath.Join(root, "DeployApprover.s.sol", "11155111", sub)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "run-latest.json"),
			[]byte(`{"transactions": [], "chain": 11155111}`), 0o644))
	}

	inv := &ScriptInvoker{
		Command: []string{"sh", "-c", "true"},
		Store:   artifact.NewStore(root),
		ChainID: 11155111,
		Stdout:  &bytes.Buffer{},
		Stderr:  &bytes.Buffer{},
	}

	_, err := inv.Invoke(context.Background(), plan.Unit{Name: "approver", Script: "script/DeployApprover.s.sol"}, testEnv(t))
	require.Error(t, err)
	assert.True(t, artifact.IsModeConflict(err))
}

func TestInvoke_NoCommandConfigured(t *testing.T) {
	inv := &ScriptInvoker{Store: artifact.NewStore(t.TempDir()), ChainID: 1}

	_, err := inv.Invoke(context.Background(), plan.Unit{Name: "u", Script: "s"}, testEnv(t))
	require.Error(t, err)
}
