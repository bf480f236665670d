package testset

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/giantswarm/cfti/internal/command"
	"github.com/giantswarm/cfti/internal/controller"
	"github.com/giantswarm/cfti/internal/process"
	"github.com/giantswarm/cfti/internal/units"
	"github.com/giantswarm/cfti/pkg/logging"
)

// phase tracks the RunState machine of spec.md §4.G: Idle ── Start ──▶
// Running ── all pass ──▶ Idle; Running ── Abort/Fatal fail ──▶ Stopping
// ──▶ Idle; Running ── Shutdown ──▶ Stopping ──▶ terminal.
type phase int

const (
	phaseIdle phase = iota
	phaseRunning
	phaseStopping
)

// Engine is the single worker that consumes the command stream the
// Controller broker forwards and drives scenario execution against a
// TestSet (cfti's "TestSet command engine").
type Engine struct {
	ts  *TestSet
	ctl *controller.Controller

	cmds chan command.TestSet

	phase            phase
	activeScenarioID string
	run              *run
	daemons          []*process.Process
}

// run is the live RunState for one in-flight scenario. runID correlates
// every log line a single scenario run produces, the way execution IDs do
// for workflow runs.
type run struct {
	scenario *units.Scenario
	runID    string
	cursor   int
	passed   map[string]bool
	proc     *process.Process
}

// NewEngine creates an Engine and registers its command channel with ctl.
// The channel is buffered so the broker's translated command sends never
// block behind a slow per-test exec.
func NewEngine(ts *TestSet, ctl *controller.Controller) *Engine {
	cmds := make(chan command.TestSet, 32)
	e := &Engine{ts: ts, ctl: ctl, cmds: cmds}
	ctl.SetTestSetChannel(cmds)
	return e
}

// Run is the engine's worker loop; it returns when the command channel is
// closed (Shutdown, or Controller.Close upstream).
func (e *Engine) Run() {
	for cmd := range e.cmds {
		e.handle(cmd)
	}
	e.killDaemons()
}

func (e *Engine) handle(cmd command.TestSet) {
	switch c := cmd.(type) {
	case command.SetInterfaceHello:
		if iface, ok := e.ts.Interfaces[c.InterfaceID]; ok {
			iface.SetHello(c.Greeting)
		}
	case command.DescribeJig:
		e.describeJig()
	case command.SetScenario:
		e.abortActiveRun("switching scenario")
		e.setScenario(c.ScenarioID)
	case command.SendScenarios:
		e.ctl.Broadcast("testset", "testset", controller.ScenariosPayload{ScenarioIDs: e.ts.SortedScenarioIDs()})
	case command.SendTests:
		e.sendTests(c.ScenarioID)
	case command.StartScenario:
		e.startScenario(c.ScenarioID)
	case command.AbortScenario:
		e.abortActiveRun("aborted")
	case command.AbortTests:
		e.abortActiveRun("aborted")
	case command.AdvanceScenario:
		e.advance(true, "")
	case command.Shutdown:
		e.abortActiveRun("shutdown: " + c.Reason)
		// Closing the controller ends the command stream, so Run returns.
		e.ctl.Close()
	}
}

func (e *Engine) describeJig() {
	if e.ts.ActiveJig == nil {
		return
	}
	j := e.ts.ActiveJig
	e.ctl.Broadcast("testset", "testset", controller.JigPayload{JigID: j.ID})
	e.ctl.Broadcast("testset", "testset", controller.DescribePayload{Class: "jig", Field: "name", Name: j.ID, Value: j.Name})
	e.ctl.Broadcast("testset", "testset", controller.DescribePayload{Class: "jig", Field: "description", Name: j.ID, Value: j.Description})
}

func (e *Engine) setScenario(id string) {
	e.activeScenarioID = id
	e.ctl.Broadcast("testset", "testset", controller.ScenarioPayload{ScenarioID: id})
	e.sendTests(&id)
}

func (e *Engine) sendTests(scenarioID *string) {
	id := e.resolveScenarioID(scenarioID)
	sc, ok := e.ts.Scenarios[id]
	if !ok {
		return
	}
	ids := make([]string, len(sc.Tests))
	for i, t := range sc.Tests {
		ids[i] = t.ID
	}
	e.ctl.Broadcast("testset", "testset", controller.TestsPayload{ScenarioID: id, TestIDs: ids})
}

func (e *Engine) resolveScenarioID(requested *string) string {
	if requested != nil && *requested != "" {
		return *requested
	}
	if e.activeScenarioID != "" {
		return e.activeScenarioID
	}
	if e.ts.ActiveJig != nil {
		return e.ts.ActiveJig.DefaultScenario
	}
	return ""
}

func (e *Engine) startScenario(requested *string) {
	if e.phase != phaseIdle {
		return
	}

	id := e.resolveScenarioID(requested)
	sc, ok := e.ts.Scenarios[id]
	if !ok {
		e.ctl.Broadcast("testset", "testset", controller.FailPayload{TestID: "", Reason: "no such scenario: " + id})
		return
	}

	e.activeScenarioID = id
	e.phase = phaseRunning
	e.run = &run{scenario: sc, runID: uuid.New().String(), passed: map[string]bool{}}
	logging.Debug("testset", "starting scenario %s (run %s)", id, e.run.runID)
	e.ctl.Broadcast("testset", "testset", controller.StartPayload{ScenarioID: id})
	e.runNext()
}

// advance is invoked either by AdvanceScenario (force the current test to
// Pass) or internally once a test's process exits.
func (e *Engine) advance(forcePass bool, reason string) {
	if e.phase != phaseRunning || e.run == nil {
		return
	}
	if forcePass {
		t := e.currentTest()
		if t != nil {
			e.run.passed[t.ID] = true
			e.ctl.Broadcast(t.ID, "test", controller.PassPayload{TestID: t.ID, Message: reason})
		}
	}
	e.run.cursor++
	e.runNext()
}

func (e *Engine) currentTest() *units.Test {
	if e.run == nil || e.run.cursor >= len(e.run.scenario.Tests) {
		return nil
	}
	return e.run.scenario.Tests[e.run.cursor]
}

// runNext launches the test at the current cursor, or finishes the
// scenario once every test has been accounted for.
func (e *Engine) runNext() {
	t := e.currentTest()
	if t == nil {
		e.finish(0, "")
		return
	}

	if !e.requirementsSatisfied(t) {
		e.ctl.Broadcast(t.ID, "test", controller.SkipPayload{TestID: t.ID, Reason: "required test did not pass"})
		e.run.cursor++
		e.runNext()
		return
	}

	e.ctl.Broadcast(t.ID, "test", controller.RunningPayload{TestID: t.ID})

	workingDir := e.ts.defaultWorkingDirectory()
	proc, err := process.Spawn(t.FullCommand(), workingDir, t.Timeout)
	if err != nil {
		e.ctl.Broadcast(t.ID, "test", controller.FailPayload{TestID: t.ID, Reason: "spawn failed: " + err.Error()})
		e.finish(1, "spawn failed: "+err.Error())
		return
	}
	e.run.proc = proc

	process.LogOutput(proc.Stdout, stubDebugger{}, "stdout", func(_, line string) {
		e.ctl.BroadcastClass("stdout", t.ID, "test", controller.LogPayload{Text: line})
	})
	process.LogOutput(proc.Stderr, stubDebugger{}, "stderr", func(_, line string) {
		e.ctl.BroadcastClass("stderr", t.ID, "test", controller.LogPayload{Text: line})
	})

	if t.Type == units.TestDaemon {
		e.daemons = append(e.daemons, proc)
		e.ctl.Broadcast(t.ID, "test", controller.PassPayload{TestID: t.ID, Message: "started"})
		e.run.passed[t.ID] = true
		e.run.cursor++
		e.runNext()
		return
	}

	go e.awaitCompletion(t, proc)
}

func (e *Engine) awaitCompletion(t *units.Test, proc *process.Process) {
	code := proc.Wait()

	switch {
	case code == 0:
		e.ctl.Broadcast(t.ID, "test", controller.PassPayload{TestID: t.ID, Message: ""})
		e.run.passed[t.ID] = true
		runStopHook(t.ExecStopSuccess, e.ts.defaultWorkingDirectory(), t.Timeout)
		e.advance(false, "")

	case code > 0:
		reason := fmt.Sprintf("exit %d", code)
		e.ctl.Broadcast(t.ID, "test", controller.FailPayload{TestID: t.ID, Reason: reason})
		runStopHook(t.ExecStopFailure, e.ts.defaultWorkingDirectory(), t.Timeout)
		if e.isRequiredByOthers(t.ID) {
			for _, rest := range e.run.scenario.Tests[e.run.cursor+1:] {
				if !e.requirementsSatisfied(rest) {
					e.ctl.Broadcast(rest.ID, "test", controller.SkipPayload{TestID: rest.ID, Reason: "required test did not pass"})
				}
			}
			e.finish(1, reason)
			return
		}
		e.run.cursor++
		e.runNext()

	default:
		e.ctl.Broadcast(t.ID, "test", controller.FailPayload{TestID: t.ID, Reason: "timeout"})
		runStopHook(t.ExecStopFailure, e.ts.defaultWorkingDirectory(), t.Timeout)
		e.finish(1, "timeout")
	}
}

func runStopHook(cmd, workingDir string, timeout time.Duration) {
	if cmd == "" {
		return
	}
	process.TryCommand(cmd, workingDir, timeout, nil)
}

func (e *Engine) requirementsSatisfied(t *units.Test) bool {
	for _, req := range t.Requires {
		if !e.run.passed[req] {
			return false
		}
	}
	return true
}

// isRequiredByOthers reports whether any other test in the active scenario
// lists testID in its own Requires — spec.md §4.G's "if test is in
// `requires` chain" condition for escalating a failure to a fatal one.
func (e *Engine) isRequiredByOthers(testID string) bool {
	if e.run == nil {
		return false
	}
	for _, t := range e.run.scenario.Tests {
		for _, req := range t.Requires {
			if req == testID {
				return true
			}
		}
	}
	return false
}

func (e *Engine) finish(code int, reason string) {
	if e.run != nil {
		logging.Debug("testset", "scenario %s run %s finished code=%d reason=%s", e.run.scenario.ID, e.run.runID, code, reason)
		e.ctl.Broadcast("testset", "testset", controller.FinishPayload{ScenarioID: e.run.scenario.ID, Code: code, Reason: reason})
	}
	e.run = nil
	e.phase = phaseIdle
}

func (e *Engine) abortActiveRun(reason string) {
	if e.phase != phaseRunning || e.run == nil {
		return
	}
	e.phase = phaseStopping
	if e.run.proc != nil {
		_ = e.run.proc.Kill()
		if t := e.currentTest(); t != nil {
			e.ctl.Broadcast(t.ID, "test", controller.FailPayload{TestID: t.ID, Reason: reason})
		}
	}
	scenarioID := e.run.scenario.ID
	logging.Debug("testset", "scenario %s run %s aborted: %s", scenarioID, e.run.runID, reason)
	e.run = nil
	e.phase = phaseIdle
	e.ctl.Broadcast("testset", "testset", controller.FinishPayload{ScenarioID: scenarioID, Code: 1, Reason: reason})
}

func (e *Engine) killDaemons() {
	for _, d := range e.daemons {
		_ = d.Kill()
	}
}

// stubDebugger discards stream-read errors for per-test stdout/stderr
// watchers, which already report failures via their own Fail broadcast.
type stubDebugger struct{}

func (stubDebugger) Debug(string, ...interface{}) {}
