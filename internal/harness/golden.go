package harness

import (
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden executes a scenario and compares the rendered run summary
// against testdata/golden/{scenario.Name}.golden. The summary is rendered
// with the scenario's fixed run token and a deterministic clock, so the
// golden text pins the exact operator-visible report.
//
// Expectation violations fail before the golden comparison: a scenario that
// no longer behaves as declared should not quietly rewrite its golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario, t.TempDir())
	if err != nil {
		return err
	}
	if !result.Passed() {
		return fmt.Errorf("scenario %s failed: %v", scenario.Name, result.Errors)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, []byte(result.Summary.RenderText()))
	return nil
}
