// Package artifact locates and reads persisted deployment records.
//
// A deployment step that broadcasts transactions leaves behind a record of
// what it created, keyed by script name and chain ID under a fixed broadcast
// root. Records come in two provenance modes: a real record written by an
// irreversible broadcast, and a dry-run record written by a simulation. The
// two modes live at different paths under the same key, and resolution must
// settle on exactly one of them before anything downstream is allowed to
// trust the addresses inside.
//
// The package splits resolution into three phases:
//
//   - Store.Locate probes the filesystem for candidate record paths without
//     opening them.
//   - Select applies the mode guard: both-present and both-absent are hard
//     errors, never silently resolved.
//   - Parse reads the selected record into an Artifact, and ExtractAddress
//     picks a component address out of it with last-match-wins semantics.
//
// All failures are reported as *ResolveError values with stable string codes
// so that callers (and operators reading logs) can distinguish a missing
// record from an ambiguous one without consulting source code.
package artifact
