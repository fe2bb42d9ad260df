package artifact

import (
	"fmt"
	"os"
	"path/filepath"
)

// recordFile is the well-known filename of the latest record for a key.
// Older runs are archived under timestamped names next to it; resolution
// only ever reads the latest.
const recordFile = "run-latest.json"

// dryRunSegment is the extra path segment that nests dry-run records.
const dryRunSegment = "dry-run"

// Store locates deployment records under a fixed broadcast root. It is a
// read-only view: nothing in this package writes to the tree.
//
// Layout, per key (stepID, chainID):
//
//	<root>/<stepID>.s.sol/<chainID>/run-latest.json           real record
//	<root>/<stepID>.s.sol/<chainID>/dry-run/run-latest.json   dry-run record
type Store struct {
	root string
}

// NewStore creates a Store over the given broadcast root directory.
// The root does not need to exist yet; Locate reports absent candidates
// for keys under a missing root.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the broadcast root directory.
func (s *Store) Root() string {
	return s.root
}

// Candidates is the result of a Locate probe: the set of record paths that
// exist for a key, one slot per provenance mode. An empty string means no
// record exists in that mode.
type Candidates struct {
	StepID     string
	ChainID    uint64
	RealPath   string
	DryRunPath string

	// probedReal and probedDryRun are the locations that were checked,
	// kept so error messages can name them even when nothing was found.
	probedReal   string
	probedDryRun string
}

// RealRecordPath returns the path at which a real record for the key would
// live, whether or not one exists.
func (s *Store) RealRecordPath(stepID string, chainID uint64) string {
	return filepath.Join(s.root, stepID+".s.sol", fmt.Sprintf("%d", chainID), recordFile)
}

// DryRunRecordPath returns the path at which a dry-run record for the key
// would live, whether or not one exists.
func (s *Store) DryRunRecordPath(stepID string, chainID uint64) string {
	return filepath.Join(s.root, stepID+".s.sol", fmt.Sprintf("%d", chainID), dryRunSegment, recordFile)
}

// Locate probes for deployment records matching (stepID, chainID) and
// returns the candidates found, without parsing anything.
//
// Absence is a normal outcome: a key with no records returns a Candidates
// value with both paths empty and a nil error. The only error case is an
// I/O-level inability to probe (permission failure, unreadable mount),
// reported as STORE_UNAVAILABLE.
func (s *Store) Locate(stepID string, chainID uint64) (Candidates, error) {
	c := Candidates{
		StepID:       stepID,
		ChainID:      chainID,
		probedReal:   s.RealRecordPath(stepID, chainID),
		probedDryRun: s.DryRunRecordPath(stepID, chainID),
	}

	exists, err := probe(c.probedReal)
	if err != nil {
		return Candidates{}, &ResolveError{
			Code:    ErrCodeStoreUnavailable,
			Message: "cannot probe broadcast tree",
			StepID:  stepID,
			ChainID: chainID,
			Path:    c.probedReal,
			Err:     err,
		}
	}
	if exists {
		c.RealPath = c.probedReal
	}

	exists, err = probe(c.probedDryRun)
	if err != nil {
		return Candidates{}, &ResolveError{
			Code:    ErrCodeStoreUnavailable,
			Message: "cannot probe broadcast tree",
			StepID:  stepID,
			ChainID: chainID,
			Path:    c.probedDryRun,
			Err:     err,
		}
	}
	if exists {
		c.DryRunPath = c.probedDryRun
	}

	return c, nil
}

// probe checks whether a regular file exists at path. Not-exist (including
// missing parent directories) is a normal false result; any other stat
// failure is an I/O error.
func probe(path string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if info.IsDir() {
		// A directory where the record file should be is effectively
		// no record.
		return false, nil
	}
	return true, nil
}
