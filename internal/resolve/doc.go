// Package resolve derives the dependency bundle a deployment unit needs
// from an upstream deployment record.
//
// The record only proves that a factory component exists at some address.
// The addresses and parameters the factory actually wired (its primary
// component, the shared reference components every downstream unit must
// agree on, and the opaque numeric parameter identifiers) live on chain
// behind the factory's read-only accessors. Derivation therefore combines a
// local parse (the factory address out of the record) with collaborator
// read-calls through the FactoryReader boundary.
//
// Derived bundles are never persisted. Every orchestrator run recomputes
// its bundle from the current record, and every unit within one run is
// handed the same bundle value, so sibling units can never observe
// diverging shared references.
package resolve
