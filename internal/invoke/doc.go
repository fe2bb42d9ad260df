// Package invoke runs deployment units as subprocesses.
//
// A unit is an external, independently-invocable deployment script. The
// invoker hands it the orchestrator-built env context as process
// environment variables, blocks until the process exits, and reads the
// unit's declared outcome back out of the record the unit itself persisted
// in the broadcast tree. The unit's submission and confirmation mechanics
// stay entirely inside the subprocess.
package invoke
