// Package orchestrator sequences dependent deployment units against a
// resolved upstream record.
//
// A run is a strict, single-threaded state machine:
//
//	Init -> ResolveUpstream -> InvokeUnit(k) -> RecordOutcome(k) -> ...
//	     -> Summarize -> Done
//
// with every state able to transition to Failed, which halts the run.
// Upstream resolution happens exactly once per run; every unit in the run
// is handed the same dependency bundle, so sibling units can never observe
// diverging addresses or parameters. Units are invoked in plan order with
// no parallel fan-out: deployments are rare, expensive, and irreversible,
// so deterministic auditable ordering beats throughput here.
//
// A failed unit halts the run before the next unit is invoked. Nothing is
// retried and nothing is compensated; a completed unit stays deployed when
// a later one fails, and rerunning after a fix restarts from resolution.
package orchestrator
