// Package harness provides a scenario-driven conformance harness for the
// deployment orchestrator.
//
// A scenario is a YAML file describing one end-to-end run: the plan, the
// upstream broadcast record to plant on disk, the values the factory reader
// answers with, the scripted outcome of each unit, and the expected terminal
// state. The runner lays the record out in a temporary broadcast tree,
// drives a real Orchestrator over it with deterministic run tokens and
// clocks, and evaluates the expectations against the resulting summary.
//
// Scenarios exercise the same resolution pipeline production runs use, so a
// scenario planting records in both provenance modes fails with the same
// mode conflict a production run would hit. Only the two external
// boundaries are scripted: the unit invoker and the factory reader.
//
// Golden files pin the rendered run summary. Regenerate them with:
//
//	go test ./internal/harness -update
package harness
