package artifact

// Select applies the mode guard to a set of located candidates and returns
// the single record path to parse, plus its provenance mode.
//
// Policy:
//   - both modes present: MODE_CONFLICT, carrying both paths and
//     remediation guidance. Resolution never silently prefers one mode,
//     because a stale dry-run record next to a real one (or vice versa) is
//     exactly the ambiguity that makes an irreversible deployment go wrong.
//   - neither mode present: ARTIFACT_NOT_FOUND, naming both probed
//     locations.
//   - exactly one present: that path.
//
// Select is a pure precondition gate: it runs before any record is opened,
// so a conflicting key can never be partially parsed.
func Select(c Candidates) (string, Mode, error) {
	switch {
	case c.RealPath != "" && c.DryRunPath != "":
		return "", "", NewModeConflictError(c.StepID, c.ChainID, c.RealPath, c.DryRunPath)
	case c.RealPath == "" && c.DryRunPath == "":
		return "", "", NewNotFoundError(c.StepID, c.ChainID, c.probedReal, c.probedDryRun)
	case c.RealPath != "":
		return c.RealPath, ModeReal, nil
	default:
		return c.DryRunPath, ModeDryRun, nil
	}
}
