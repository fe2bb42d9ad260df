package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/Hats-Protocol/dao-factory-sub001/internal/artifact"
	"github.com/Hats-Protocol/dao-factory-sub001/internal/orchestrator"
	"github.com/Hats-Protocol/dao-factory-sub001/internal/plan"
)

// Ledger implements orchestrator.Recorder.
var _ orchestrator.Recorder = (*Ledger)(nil)

// BeginRun inserts the run row in the running state.
func (l *Ledger) BeginRun(ctx context.Context, token string, p *plan.Plan, mode artifact.Mode, startedAt time.Time) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO runs (token, upstream_step, chain_id, mode, state, started_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, token, p.UpstreamStep, p.ChainID, string(mode), string(orchestrator.StateInvokeUnit), startedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecordStep appends one step record and its created components in a single
// transaction. Sequence numbers are assigned per run in append order.
func (l *Ledger) RecordStep(ctx context.Context, token string, rec orchestrator.StepRecord) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var seq int
	if err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), -1) + 1 FROM step_records WHERE run_token = ?
	`, token).Scan(&seq); err != nil {
		return fmt.Errorf("next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO step_records (run_token, seq, unit, status, reason, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, token, seq, rec.Unit, string(rec.Status), rec.Reason,
		rec.StartedAt.UTC().Format(time.RFC3339), rec.FinishedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert step record: %w", err)
	}

	for i, c := range rec.Components {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO components (run_token, unit, position, name, address)
			VALUES (?, ?, ?, ?, ?)
		`, token, rec.Unit, i, c.Name, string(c.Address))
		if err != nil {
			return fmt.Errorf("insert component: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit step record: %w", err)
	}
	return nil
}

// FinishRun stamps the run's terminal state and finish time. Finishing a
// token that was never begun is a no-op; a run can fail before its
// BeginRun write.
func (l *Ledger) FinishRun(ctx context.Context, token string, state orchestrator.State, finishedAt time.Time) error {
	_, err := l.db.ExecContext(ctx, `
		UPDATE runs SET state = ?, finished_at = ? WHERE token = ?
	`, string(state), finishedAt.UTC().Format(time.RFC3339), token)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}
