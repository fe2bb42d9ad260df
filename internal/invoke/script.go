package invoke

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/Hats-Protocol/dao-factory-sub001/internal/artifact"
	"github.com/Hats-Protocol/dao-factory-sub001/internal/orchestrator"
	"github.com/Hats-Protocol/dao-factory-sub001/internal/plan"
)

// ScriptInvoker executes each unit's deployment script as a subprocess.
// Implements orchestrator.UnitInvoker.
type ScriptInvoker struct {
	// Command is the executable and fixed leading arguments; the unit's
	// script path is appended per invocation. For example
	// {"forge", "script"} yields "forge script <unit.Script>".
	Command []string

	// Dir is the working directory for invocations. Empty means the
	// current directory.
	Dir string

	// Store is the broadcast tree the unit writes its own record into;
	// the invoker reads the unit's outcome from it after a clean exit.
	Store *artifact.Store

	// ChainID keys the unit's record lookup.
	ChainID uint64

	// Stdout and Stderr receive the subprocess output. Nil writers
	// inherit the invoker process's streams.
	Stdout io.Writer
	Stderr io.Writer
}

var _ orchestrator.UnitInvoker = (*ScriptInvoker)(nil)

// Invoke runs the unit's script and returns its declared outcome.
//
// The env context is appended to the inherited process environment, so
// context keys override inherited values of the same name. The call blocks
// until the subprocess reaches a terminal exit; there is no invoker-level
// timeout, cancellation arrives only through ctx.
//
// On a clean exit the unit's own record is resolved from the broadcast
// tree (same locate/guard/parse pipeline as upstream resolution) and its
// creation events become the outcome's component handles. A unit that
// exits cleanly without writing a record declares no components, which is
// a valid outcome.
func (s *ScriptInvoker) Invoke(ctx context.Context, unit plan.Unit, env *orchestrator.EnvContext) (orchestrator.UnitResult, error) {
	if len(s.Command) == 0 {
		return orchestrator.UnitResult{}, fmt.Errorf("invoker has no command configured")
	}

	args := append(append([]string{}, s.Command[1:]...), unit.Script)
	cmd := exec.CommandContext(ctx, s.Command[0], args...)
	cmd.Dir = s.Dir
	cmd.Env = append(os.Environ(), env.Environ()...)
	cmd.Stdout = s.Stdout
	cmd.Stderr = s.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Run(); err != nil {
		return orchestrator.UnitResult{}, fmt.Errorf("script %s: %w", unit.Script, err)
	}

	return s.readOutcome(unit)
}

// readOutcome resolves the record the unit just wrote and converts its
// creation events into component handles.
func (s *ScriptInvoker) readOutcome(unit plan.Unit) (orchestrator.UnitResult, error) {
	stepID := ScriptStepID(unit.Script)

	a, err := artifact.Resolve(s.Store, stepID, s.ChainID)
	if err != nil {
		if artifact.IsNotFound(err) {
			// Clean exit, no record: the unit declares no components.
			return orchestrator.UnitResult{}, nil
		}
		return orchestrator.UnitResult{}, fmt.Errorf("read unit record: %w", err)
	}

	result := orchestrator.UnitResult{}
	for _, ev := range a.CreationEvents {
		result.Components = append(result.Components, orchestrator.CreatedComponent{
			Name:    ev.Name,
			Address: ev.Address,
		})
	}
	return result, nil
}

// ScriptStepID derives the record key from a script path:
// "script/DeployApprover.s.sol" -> "DeployApprover".
func ScriptStepID(script string) string {
	base := filepath.Base(script)
	base = strings.TrimSuffix(base, ".sol")
	base = strings.TrimSuffix(base, ".s")
	return base
}
