package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeRecord writes record content at the conventional location for a key.
func writeRecord(t *testing.T, root, stepID string, chainID uint64, mode Mode, content string) string {
	t.Helper()

	dir := filepath.Join(root, stepID+".s.sol", fmt.Sprintf("%d", chainID))
	if mode == ModeDryRun {
		dir = filepath.Join(dir, "dry-run")
	}
	require.NoError(t, os.MkdirAll(dir, 0o755))

	path := filepath.Join(dir, "run-latest.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalRecord = `{"transactions": [], "chain": 11155111, "timestamp": 1700000000}`

func TestStore_Locate_Empty(t *testing.T) {
	s := NewStore(t.TempDir())

	c, err := s.Locate("DeployFactory", 11155111)
	require.NoError(t, err, "absence is a normal outcome, not an error")
	assert.Empty(t, c.RealPath)
	assert.Empty(t, c.DryRunPath)
}

func TestStore_Locate_MissingRoot(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "does-not-exist"))

	c, err := s.Locate("DeployFactory", 11155111)
	require.NoError(t, err, "missing root means no candidates, not an I/O failure")
	assert.Empty(t, c.RealPath)
	assert.Empty(t, c.DryRunPath)
}

func TestStore_Locate_RealOnly(t *testing.T) {
	root := t.TempDir()
	path := writeRecord(t, root, "DeployFactory", 11155111, ModeReal, minimalRecord)

	s := NewStore(root)
	c, err := s.Locate("DeployFactory", 11155111)
	require.NoError(t, err)
	assert.Equal(t, path, c.RealPath)
	assert.Empty(t, c.DryRunPath)
}

func TestStore_Locate_DryRunOnly(t *testing.T) {
	root := t.TempDir()
	path := writeRecord(t, root, "DeployFactory", 11155111, ModeDryRun, minimalRecord)

	s := NewStore(root)
	c, err := s.Locate("DeployFactory", 11155111)
	require.NoError(t, err)
	assert.Empty(t, c.RealPath)
	assert.Equal(t, path, c.DryRunPath)
}

func TestStore_Locate_BothModes(t *testing.T) {
	root := t.TempDir()
	real := writeRecord(t, root, "DeployFactory", 11155111, ModeReal, minimalRecord)
	dry := writeRecord(t, root, "DeployFactory", 11155111, ModeDryRun, minimalRecord)

	s := NewStore(root)
	c, err := s.Locate("DeployFactory", 11155111)
	require.NoError(t, err, "Locate reports candidates; the guard rejects them")
	assert.Equal(t, real, c.RealPath)
	assert.Equal(t, dry, c.DryRunPath)
}

func TestStore_Locate_KeyIsolation(t *testing.T) {
	root := t.TempDir()
	writeRecord(t, root, "DeployFactory", 11155111, ModeReal, minimalRecord)

	s := NewStore(root)

	// Different chain, same step.
	c, err := s.Locate("DeployFactory", 1)
	require.NoError(t, err)
	assert.Empty(t, c.RealPath)

	// Different step, same chain.
	c, err = s.Locate("DeployApprover", 11155111)
	require.NoError(t, err)
	assert.Empty(t, c.RealPath)
}

func TestStore_Locate_DirectoryAtRecordPath(t *testing.T) {
	root := t.TempDir()
	// A directory named run-latest.json is not a record.
	dir := filepath.Join(root, "DeployFactory.s.sol", "11155111", "run-latest.json")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	s := NewStore(root)
	c, err := s.Locate("DeployFactory", 11155111)
	require.NoError(t, err)
	assert.Empty(t, c.RealPath)
}

func TestStore_RecordPaths(t *testing.T) {
	s := NewStore("/broadcast")

	assert.Equal(t,
		filepath.Join("/broadcast", "DeployFactory.s.sol", "10", "run-latest.json"),
		s.RealRecordPath("DeployFactory", 10))
	assert.Equal(t,
		filepath.Join("/broadcast", "DeployFactory.s.sol", "10", "dry-run", "run-latest.json"),
		s.DryRunRecordPath("DeployFactory", 10))
}
