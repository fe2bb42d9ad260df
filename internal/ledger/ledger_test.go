package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hats-Protocol/dao-factory-sub001/internal/artifact"
	"github.com/Hats-Protocol/dao-factory-sub001/internal/orchestrator"
	"github.com/Hats-Protocol/dao-factory-sub001/internal/plan"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func testPlan() *plan.Plan {
	return &plan.Plan{
		UpstreamStep:     "DeployDaoFactory",
		ChainID:          11155111,
		FactoryComponent: "DaoFactory",
		Units:            []plan.Unit{{Name: "approver", Script: "s"}},
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	l1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l1.Close())

	l2, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l2.Close())
}

func TestLedger_RunLifecycle(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	started := time.Unix(1700000000, 0).UTC()
	finished := time.Unix(1700000100, 0).UTC()

	require.NoError(t, l.BeginRun(ctx, "run-1", testPlan(), artifact.ModeReal, started))

	rec := orchestrator.StepRecord{
		Unit:   "approver",
		Status: orchestrator.StatusSuccess,
		Components: []orchestrator.CreatedComponent{
			{Name: "ApproverBranch", Address: "0x0000000000000000000000000000000000000010"},
			{Name: "ApproverShell", Address: "0x0000000000000000000000000000000000000011"},
		},
		StartedAt:  started.Add(time.Second),
		FinishedAt: started.Add(2 * time.Second),
	}
	require.NoError(t, l.RecordStep(ctx, "run-1", rec))
	require.NoError(t, l.FinishRun(ctx, "run-1", orchestrator.StateDone, finished))

	runs, err := l.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].Token)
	assert.Equal(t, "DeployDaoFactory", runs[0].UpstreamStep)
	assert.Equal(t, uint64(11155111), runs[0].ChainID)
	assert.Equal(t, "real", runs[0].Mode)
	assert.Equal(t, string(orchestrator.StateDone), runs[0].State)
	assert.Equal(t, started, runs[0].StartedAt)
	assert.Equal(t, finished, runs[0].FinishedAt)

	steps, err := l.ReadSteps(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, 0, steps[0].Seq)
	assert.Equal(t, "approver", steps[0].Unit)
	assert.Equal(t, string(orchestrator.StatusSuccess), steps[0].Status)

	require.Len(t, steps[0].Components, 2)
	assert.Equal(t, "ApproverBranch", steps[0].Components[0].Name)
	assert.Equal(t, "ApproverShell", steps[0].Components[1].Name,
		"components keep creation order")
}

func TestLedger_StepSequenceOrder(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()
	started := time.Unix(1700000000, 0).UTC()

	require.NoError(t, l.BeginRun(ctx, "run-1", testPlan(), artifact.ModeDryRun, started))
	for _, unit := range []string{"approver", "curator", "ragequit"} {
		require.NoError(t, l.RecordStep(ctx, "run-1", orchestrator.StepRecord{
			Unit:       unit,
			Status:     orchestrator.StatusSuccess,
			StartedAt:  started,
			FinishedAt: started,
		}))
	}

	steps, err := l.ReadSteps(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, steps, 3)
	for i, want := range []string{"approver", "curator", "ragequit"} {
		assert.Equal(t, i, steps[i].Seq)
		assert.Equal(t, want, steps[i].Unit)
	}
}

func TestLedger_FailedStepKeepsReason(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()
	started := time.Unix(1700000000, 0).UTC()

	require.NoError(t, l.BeginRun(ctx, "run-1", testPlan(), artifact.ModeReal, started))
	require.NoError(t, l.RecordStep(ctx, "run-1", orchestrator.StepRecord{
		Unit:       "approver",
		Status:     orchestrator.StatusFailed,
		Reason:     "deployment reverted",
		StartedAt:  started,
		FinishedAt: started,
	}))
	require.NoError(t, l.FinishRun(ctx, "run-1", orchestrator.StateFailed, started))

	steps, err := l.ReadSteps(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, "deployment reverted", steps[0].Reason)
	assert.Empty(t, steps[0].Components)
}

func TestLedger_EmptyReads(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	runs, err := l.ListRuns(ctx)
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)

	steps, err := l.ReadSteps(ctx, "no-such-run")
	require.NoError(t, err)
	assert.NotNil(t, steps)
	assert.Empty(t, steps)
}

func TestLedger_FinishUnknownRunIsNoop(t *testing.T) {
	l := openTestLedger(t)
	// A run can fail before BeginRun ever writes; finalization must not
	// error in that case.
	require.NoError(t, l.FinishRun(context.Background(), "never-began",
		orchestrator.StateFailed, time.Unix(1700000000, 0)))
}

func TestLedger_ListRuns_NewestFirst(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	older := time.Unix(1700000000, 0).UTC()
	newer := time.Unix(1700001000, 0).UTC()
	require.NoError(t, l.BeginRun(ctx, "run-old", testPlan(), artifact.ModeReal, older))
	require.NoError(t, l.BeginRun(ctx, "run-new", testPlan(), artifact.ModeReal, newer))

	runs, err := l.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-new", runs[0].Token)
	assert.Equal(t, "run-old", runs[1].Token)
}
