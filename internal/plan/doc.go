// Package plan loads the deployment plan that drives an orchestrator run.
//
// A plan names the upstream step whose record supplies dependency
// addresses, the chain the run targets, and the ordered list of deployment
// units to invoke. Plans are authored in CUE; the loader builds the CUE
// instance for a directory, extracts the plan value, and validates it into
// plain Go data. Unit order in the plan is invocation order.
package plan
