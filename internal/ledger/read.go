package ledger

import (
	"context"
	"fmt"
	"time"
)

// RunInfo is one run row from the ledger.
type RunInfo struct {
	Token        string
	UpstreamStep string
	ChainID      uint64
	Mode         string
	State        string
	StartedAt    time.Time
	FinishedAt   time.Time // zero when the run never finished
}

// StepInfo is one step record row, with the components that unit created.
type StepInfo struct {
	Seq        int
	Unit       string
	Status     string
	Reason     string
	StartedAt  time.Time
	FinishedAt time.Time
	Components []ComponentInfo
}

// ComponentInfo is one created component row.
type ComponentInfo struct {
	Name    string
	Address string
}

// ListRuns returns all runs, newest first (started_at DESC, token ASC for a
// deterministic tie-break). Returns an empty slice (not nil) when the
// ledger is empty.
func (l *Ledger) ListRuns(ctx context.Context) ([]RunInfo, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT token, upstream_step, chain_id, mode, state, started_at, COALESCE(finished_at, '')
		FROM runs
		ORDER BY started_at DESC, token ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunInfo{}
	for rows.Next() {
		var r RunInfo
		var started, finished string
		if err := rows.Scan(&r.Token, &r.UpstreamStep, &r.ChainID, &r.Mode, &r.State, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if r.StartedAt, err = parseTime(started); err != nil {
			return nil, err
		}
		if finished != "" {
			if r.FinishedAt, err = parseTime(finished); err != nil {
				return nil, err
			}
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadSteps returns the step records of one run in sequence order, each
// with its created components in creation order. Returns an empty slice
// (not nil) for an unknown token.
func (l *Ledger) ReadSteps(ctx context.Context, token string) ([]StepInfo, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT seq, unit, status, reason, started_at, finished_at
		FROM step_records
		WHERE run_token = ?
		ORDER BY seq ASC
	`, token)
	if err != nil {
		return nil, fmt.Errorf("query step records: %w", err)
	}
	defer rows.Close()

	steps := []StepInfo{}
	for rows.Next() {
		var s StepInfo
		var started, finished string
		if err := rows.Scan(&s.Seq, &s.Unit, &s.Status, &s.Reason, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan step record: %w", err)
		}
		if s.StartedAt, err = parseTime(started); err != nil {
			return nil, err
		}
		if s.FinishedAt, err = parseTime(finished); err != nil {
			return nil, err
		}
		steps = append(steps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate step records: %w", err)
	}

	for i := range steps {
		components, err := l.readComponents(ctx, token, steps[i].Unit)
		if err != nil {
			return nil, err
		}
		steps[i].Components = components
	}
	return steps, nil
}

// readComponents returns one unit's created components in creation order.
func (l *Ledger) readComponents(ctx context.Context, token, unit string) ([]ComponentInfo, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT name, address
		FROM components
		WHERE run_token = ? AND unit = ?
		ORDER BY position ASC
	`, token, unit)
	if err != nil {
		return nil, fmt.Errorf("query components: %w", err)
	}
	defer rows.Close()

	components := []ComponentInfo{}
	for rows.Next() {
		var c ComponentInfo
		if err := rows.Scan(&c.Name, &c.Address); err != nil {
			return nil, fmt.Errorf("scan component: %w", err)
		}
		components = append(components, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate components: %w", err)
	}
	return components, nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse ledger time %q: %w", s, err)
	}
	return t, nil
}
