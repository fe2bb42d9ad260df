package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hats-Protocol/dao-factory-sub001/internal/artifact"
	"github.com/Hats-Protocol/dao-factory-sub001/internal/ledger"
	"github.com/Hats-Protocol/dao-factory-sub001/internal/orchestrator"
	"github.com/Hats-Protocol/dao-factory-sub001/internal/plan"
)

// seedLedger writes one finished run into a fresh ledger database.
func seedLedger(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	led, err := ledger.Open(dbPath)
	require.NoError(t, err)
	defer led.Close()

	ctx := context.Background()
	p := &plan.Plan{UpstreamStep: "DeployDaoFactory", ChainID: 11155111, FactoryComponent: "DaoFactory",
		Units: []plan.Unit{{Name: "approver", Script: "s"}}}
	started := time.Unix(1700000000, 0).UTC()

	require.NoError(t, led.BeginRun(ctx, "run-1", p, artifact.ModeReal, started))
	require.NoError(t, led.RecordStep(ctx, "run-1", orchestrator.StepRecord{
		Unit:   "approver",
		Status: orchestrator.StatusSuccess,
		Components: []orchestrator.CreatedComponent{
			{Name: "ApproverBranch", Address: "0x0000000000000000000000000000000000000010"},
		},
		StartedAt:  started,
		FinishedAt: started,
	}))
	require.NoError(t, led.FinishRun(ctx, "run-1", orchestrator.StateDone, started.Add(time.Minute)))
	return dbPath
}

func executeHistory(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewHistoryCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestHistory_ListsRuns(t *testing.T) {
	dbPath := seedLedger(t)

	out, err := executeHistory(t, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "done")
	assert.Contains(t, out, "DeployDaoFactory")
}

func TestHistory_ShowsSteps(t *testing.T) {
	dbPath := seedLedger(t)

	out, err := executeHistory(t, "--db", dbPath, "--run", "run-1")
	require.NoError(t, err)
	assert.Contains(t, out, "approver")
	assert.Contains(t, out, "ApproverBranch")
	assert.Contains(t, out, "0x0000000000000000000000000000000000000010")
}

func TestHistory_MissingDBFlag(t *testing.T) {
	_, err := executeHistory(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}
