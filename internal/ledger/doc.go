// Package ledger persists run history for audit.
//
// The ledger is a write-mostly SQLite database recording each orchestrator
// run, its per-unit step records, and the components those units created.
// It backs the history command and nothing else: artifact resolution never
// reads the ledger, so its contents can never influence which record a run
// resolves or which addresses a unit receives.
package ledger
