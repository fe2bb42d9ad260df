package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/Hats-Protocol/dao-factory-sub001/internal/artifact"
	"github.com/Hats-Protocol/dao-factory-sub001/internal/plan"
	"github.com/Hats-Protocol/dao-factory-sub001/internal/resolve"
)

// State identifies where a run is in its lifecycle.
type State string

const (
	StateInit            State = "init"
	StateResolveUpstream State = "resolve_upstream"
	StateInvokeUnit      State = "invoke_unit"
	StateRecordOutcome   State = "record_outcome"
	StateSummarize       State = "summarize"
	StateDone            State = "done"
	StateFailed          State = "failed"
)

// UnitInvoker is the boundary to external deployment units. Invoke blocks
// until the unit reaches a terminal outcome; the unit's internal submission
// and confirmation mechanics are opaque to the orchestrator. There is no
// orchestrator-level timeout: a hung unit hangs the run, and operators
// intervene externally.
type UnitInvoker interface {
	Invoke(ctx context.Context, unit plan.Unit, env *EnvContext) (UnitResult, error)
}

// Recorder receives run lifecycle writes for the audit ledger. Implemented
// by the SQLite ledger; NopRecorder discards everything. Recorder failures
// halt the run: an unrecordable deployment is treated like any other
// failure, and what already broadcast stays broadcast.
type Recorder interface {
	BeginRun(ctx context.Context, token string, p *plan.Plan, mode artifact.Mode, startedAt time.Time) error
	RecordStep(ctx context.Context, token string, rec StepRecord) error
	FinishRun(ctx context.Context, token string, state State, finishedAt time.Time) error
}

// NopRecorder is a Recorder that records nothing.
type NopRecorder struct{}

func (NopRecorder) BeginRun(context.Context, string, *plan.Plan, artifact.Mode, time.Time) error {
	return nil
}
func (NopRecorder) RecordStep(context.Context, string, StepRecord) error { return nil }
func (NopRecorder) FinishRun(context.Context, string, State, time.Time) error {
	return nil
}

// Orchestrator drives one deployment run. Not safe for concurrent use, and
// concurrent runs against the same broadcast tree are unsupported by
// design: one run at a time is an operational rule, not an enforced lock.
type Orchestrator struct {
	store    *artifact.Store
	reader   resolve.FactoryReader
	invoker  UnitInvoker
	plan     *plan.Plan
	tokens   RunTokenGenerator
	recorder Recorder
	now      func() time.Time
	state    State
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTokenGenerator overrides the run token generator (for testing).
func WithTokenGenerator(g RunTokenGenerator) Option {
	return func(o *Orchestrator) { o.tokens = g }
}

// WithRecorder sets the audit ledger sink. Default is NopRecorder.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithClock overrides the time source (for testing).
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New creates an Orchestrator for one plan.
func New(store *artifact.Store, reader resolve.FactoryReader, invoker UnitInvoker, p *plan.Plan, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:    store,
		reader:   reader,
		invoker:  invoker,
		plan:     p,
		tokens:   UUIDv7Generator{},
		recorder: NopRecorder{},
		now:      time.Now,
		state:    StateInit,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the run's current state.
func (o *Orchestrator) State() State {
	return o.state
}

// Run executes the plan: resolve the upstream record once, invoke each unit
// in plan order, record each outcome, and summarize.
//
// Fail-fast: any error in resolution or invocation halts the run
// immediately. Remaining units are never invoked, nothing is retried, and
// nothing already deployed is undone. The returned summary is non-nil even
// on failure and covers everything that happened up to the halt; the error
// carries the raw failure reason.
func (o *Orchestrator) Run(ctx context.Context) (*Summary, error) {
	token := o.tokens.Generate()
	startedAt := o.now()

	summary := &Summary{
		RunToken:     token,
		UpstreamStep: o.plan.UpstreamStep,
		ChainID:      o.plan.ChainID,
		StartedAt:    startedAt,
	}

	log := slog.With("run", token, "step", o.plan.UpstreamStep, "chain", o.plan.ChainID)

	// ResolveUpstream: locate -> mode guard -> parse -> derive. Exactly
	// once per run; every unit sees the bundle derived here.
	o.state = StateResolveUpstream
	log.Info("resolving upstream record")

	art, err := artifact.Resolve(o.store, o.plan.UpstreamStep, o.plan.ChainID)
	if err != nil {
		return o.fail(ctx, summary, err)
	}
	dep, err := resolve.Derive(ctx, art, o.plan.FactoryComponent, o.plan.ChainID, o.reader)
	if err != nil {
		return o.fail(ctx, summary, err)
	}
	if err := dep.Validate(); err != nil {
		return o.fail(ctx, summary, err)
	}

	summary.Mode = dep.Mode
	summary.Dependency = dep
	log.Info("upstream resolved",
		"mode", dep.Mode,
		"factory", dep.FactoryAddress,
		"primary", dep.PrimaryAddress,
		"refs", len(dep.SharedReferences))

	if err := o.recorder.BeginRun(ctx, token, o.plan, dep.Mode, startedAt); err != nil {
		return o.fail(ctx, summary, err)
	}

	for _, unit := range o.plan.Units {
		// InvokeUnit: a fresh context per invocation, copied from the one
		// bundle. Blocks until the unit's terminal outcome.
		o.state = StateInvokeUnit
		env, err := NewEnvContext(dep, unit)
		if err != nil {
			return o.fail(ctx, summary, err)
		}
		unitStart := o.now()
		log.Info("invoking unit", "unit", unit.Name, "script", unit.Script)

		result, invokeErr := o.invoker.Invoke(ctx, unit, env)

		// RecordOutcome: append the step record before anything else can
		// happen, success or failure.
		o.state = StateRecordOutcome
		rec := StepRecord{
			Unit:             unit.Name,
			SharedReferences: snapshotAddresses(dep.SharedReferences),
			ParameterIDs:     snapshotParams(dep.ParameterIDs),
			UnitParams:       snapshotParams(unit.Params),
			StartedAt:        unitStart,
			FinishedAt:       o.now(),
		}
		if invokeErr != nil {
			rec.Status = StatusFailed
			rec.Reason = invokeErr.Error()
		} else {
			rec.Status = StatusSuccess
			rec.Components = result.Components
		}
		summary.Records = append(summary.Records, rec)

		if err := o.recorder.RecordStep(ctx, token, rec); err != nil {
			return o.fail(ctx, summary, err)
		}

		if invokeErr != nil {
			log.Error("unit failed, halting run", "unit", unit.Name, "error", invokeErr)
			return o.fail(ctx, summary, &UnitError{Unit: unit.Name, Err: invokeErr})
		}
		log.Info("unit complete", "unit", unit.Name, "components", len(result.Components))
	}

	o.state = StateSummarize
	summary.FinishedAt = o.now()
	summary.State = StateDone

	if err := o.recorder.FinishRun(ctx, token, StateDone, summary.FinishedAt); err != nil {
		return o.fail(ctx, summary, err)
	}

	o.state = StateDone
	log.Info("run complete", "units", len(summary.Records))
	return summary, nil
}

// fail transitions the run to Failed, closes out the summary, and returns
// the raw error. Best-effort ledger finalization: the original error wins
// over a ledger write failure.
func (o *Orchestrator) fail(ctx context.Context, summary *Summary, err error) (*Summary, error) {
	o.state = StateFailed
	summary.State = StateFailed
	summary.FailureReason = err.Error()
	summary.FinishedAt = o.now()
	if ferr := o.recorder.FinishRun(ctx, summary.RunToken, StateFailed, summary.FinishedAt); ferr != nil {
		slog.Warn("ledger finalization failed", "run", summary.RunToken, "error", ferr)
	}
	return summary, err
}
