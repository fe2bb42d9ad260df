package artifact

import (
	"golang.org/x/text/unicode/norm"
)

// ExtractAddress returns the address of the named component from the
// artifact's creation events.
//
// Selection is last-match-wins: among all creation events whose name
// matches, the one with the highest sequence index is authoritative. This
// models re-deployment overwrite: if a step created two components under
// the same name in one run, the later creation is the one actually in
// effect on chain.
//
// Names are NFC-normalized before comparison so that visually identical
// names with different Unicode encodings match. Sequence indices are unique
// within a well-formed record (they come from transaction positions); if a
// malformed record repeats an index, the event appearing later in the input
// wins; no further precedence rule is defined.
//
// Fails with COMPONENT_NOT_FOUND if no event matches.
func ExtractAddress(a Artifact, componentName string) (Address, error) {
	want := norm.NFC.String(componentName)

	found := false
	var best CreationEvent
	for _, ev := range a.CreationEvents {
		if norm.NFC.String(ev.Name) != want {
			continue
		}
		if !found || ev.SequenceIndex >= best.SequenceIndex {
			best = ev
			found = true
		}
	}

	if !found {
		return "", &ResolveError{
			Code:      ErrCodeComponentNotFound,
			Message:   "no creation event matches component",
			StepID:    a.StepID,
			ChainID:   a.ChainID,
			Component: componentName,
		}
	}
	return best.Address, nil
}

// Resolve is the full resolution pipeline for one key: locate candidates,
// apply the mode guard, parse the selected record. It is the only entry
// point the orchestrator uses; the phases are exported separately for
// callers that need just one of them.
func Resolve(s *Store, stepID string, chainID uint64) (Artifact, error) {
	candidates, err := s.Locate(stepID, chainID)
	if err != nil {
		return Artifact{}, err
	}
	path, mode, err := Select(candidates)
	if err != nil {
		return Artifact{}, err
	}
	return Parse(path, stepID, mode)
}
