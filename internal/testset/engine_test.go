package testset

import (
	"sync"
	"testing"
	"time"

	"github.com/giantswarm/cfti/internal/config"
	"github.com/giantswarm/cfti/internal/controller"
	"github.com/giantswarm/cfti/internal/unit"
	"github.com/giantswarm/cfti/internal/units"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects every broadcast the engine emits so tests can assert on
// the sequence of Pass/Fail/Skip/Finish events without racing the engine's
// own goroutine.
type recorder struct {
	mu  sync.Mutex
	msg []controller.BroadcastMessage
}

func (r *recorder) record(msg controller.BroadcastMessage) error {
	r.mu.Lock()
	r.msg = append(r.msg, msg)
	r.mu.Unlock()
	return nil
}

func (r *recorder) finish() (controller.FinishPayload, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.msg {
		if f, ok := m.Payload.(controller.FinishPayload); ok {
			return f, true
		}
	}
	return controller.FinishPayload{}, false
}

func (r *recorder) payloadsOfType(sample controller.BroadcastPayload) []controller.BroadcastPayload {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []controller.BroadcastPayload
	for _, m := range r.msg {
		if sameType(m.Payload, sample) {
			out = append(out, m.Payload)
		}
	}
	return out
}

func sameType(a, b controller.BroadcastPayload) bool {
	if a == nil || b == nil {
		return false
	}
	return typeName(a) == typeName(b)
}

func typeName(p controller.BroadcastPayload) string {
	switch p.(type) {
	case controller.PassPayload:
		return "pass"
	case controller.FailPayload:
		return "fail"
	case controller.SkipPayload:
		return "skip"
	case controller.FinishPayload:
		return "finish"
	default:
		return "other"
	}
}

func newEngineHarness(t *testing.T, tests map[string]*units.Test, scenario *units.Scenario) (*controller.Controller, *recorder) {
	t.Helper()

	ctl, err := controller.New()
	require.NoError(t, err)
	t.Cleanup(ctl.Close)

	ts := &TestSet{
		Dir:       t.TempDir(),
		Ctl:       ctl,
		Cfg:       config.Default(),
		Jigs:      map[string]*units.Jig{},
		Tests:     tests,
		Scenarios: map[string]*units.Scenario{scenario.ID: scenario},
	}
	scenario.Resolve(tests)

	rec := &recorder{}
	ctl.Listen(rec.record)

	engine := NewEngine(ts, ctl)
	go engine.Run()

	return ctl, rec
}

func makeTest(id, execStart string) *units.Test {
	return &units.Test{
		Base:      unit.Base{ID: id, UnitKind: unit.KindTest},
		ExecStart: execStart,
		Timeout:   2 * time.Second,
	}
}

func waitForFinish(t *testing.T, rec *recorder) controller.FinishPayload {
	t.Helper()
	var got controller.FinishPayload
	require.Eventually(t, func() bool {
		f, ok := rec.finish()
		if ok {
			got = f
		}
		return ok
	}, 3*time.Second, 10*time.Millisecond)
	return got
}

func TestEngineHappyPathAllTestsPass(t *testing.T) {
	tests := map[string]*units.Test{
		"net-check":   makeTest("net-check", "true"),
		"power-check": makeTest("power-check", "true"),
	}
	scenario := &units.Scenario{
		Base:      unit.Base{ID: "smoke"},
		TestNames: []string{"net-check", "power-check"},
	}
	ctl, rec := newEngineHarness(t, tests, scenario)

	ctl.Control("cli", "interface", controller.StartScenarioControl{ScenarioID: strPtr("smoke")})

	finish := waitForFinish(t, rec)
	assert.Equal(t, "smoke", finish.ScenarioID)
	assert.Equal(t, 0, finish.Code)
	assert.Len(t, rec.payloadsOfType(controller.PassPayload{}), 2)
}

func TestEngineRequiredTestFailureEscalatesToFatal(t *testing.T) {
	power := makeTest("power-check", "false")
	net := makeTest("net-check", "true")
	net.Requires = []string{"power-check"}

	tests := map[string]*units.Test{"power-check": power, "net-check": net}
	scenario := &units.Scenario{
		Base:      unit.Base{ID: "smoke"},
		TestNames: []string{"power-check", "net-check"},
	}
	ctl, rec := newEngineHarness(t, tests, scenario)

	ctl.Control("cli", "interface", controller.StartScenarioControl{ScenarioID: strPtr("smoke")})

	finish := waitForFinish(t, rec)
	assert.Equal(t, 1, finish.Code)
	assert.Len(t, rec.payloadsOfType(controller.SkipPayload{}), 1, "net-check should be skipped, not run, once its requirement fails")
}

func TestEngineUnrequiredTestFailureIsNotFatal(t *testing.T) {
	tests := map[string]*units.Test{
		"optional-check": makeTest("optional-check", "false"),
		"net-check":      makeTest("net-check", "true"),
	}
	scenario := &units.Scenario{
		Base:      unit.Base{ID: "smoke"},
		TestNames: []string{"optional-check", "net-check"},
	}
	ctl, rec := newEngineHarness(t, tests, scenario)

	ctl.Control("cli", "interface", controller.StartScenarioControl{ScenarioID: strPtr("smoke")})

	finish := waitForFinish(t, rec)
	assert.Equal(t, 0, finish.Code, "a failing test nobody requires must not fail the scenario")
}

func TestEngineTimeoutFailsTheTestAndScenario(t *testing.T) {
	slow := makeTest("slow-check", "sleep 5")
	slow.Timeout = 50 * time.Millisecond

	tests := map[string]*units.Test{"slow-check": slow}
	scenario := &units.Scenario{
		Base:      unit.Base{ID: "smoke"},
		TestNames: []string{"slow-check"},
	}
	ctl, rec := newEngineHarness(t, tests, scenario)

	ctl.Control("cli", "interface", controller.StartScenarioControl{ScenarioID: strPtr("smoke")})

	finish := waitForFinish(t, rec)
	assert.Equal(t, 1, finish.Code)
	fails := rec.payloadsOfType(controller.FailPayload{})
	require.Len(t, fails, 1)
	assert.Equal(t, "timeout", fails[0].(controller.FailPayload).Reason)
}

func TestEngineDaemonTestBackgroundsAndPassesImmediately(t *testing.T) {
	daemon := makeTest("watchdog", "sleep 5")
	daemon.Type = units.TestDaemon
	finalCheck := makeTest("final-check", "true")

	tests := map[string]*units.Test{"watchdog": daemon, "final-check": finalCheck}
	scenario := &units.Scenario{
		Base:      unit.Base{ID: "smoke"},
		TestNames: []string{"watchdog", "final-check"},
	}
	ctl, rec := newEngineHarness(t, tests, scenario)

	ctl.Control("cli", "interface", controller.StartScenarioControl{ScenarioID: strPtr("smoke")})

	finish := waitForFinish(t, rec)
	assert.Equal(t, 0, finish.Code)
}

func TestEngineAbortTestsEndsRunAsFatal(t *testing.T) {
	slow := makeTest("slow-check", "sleep 5")
	tests := map[string]*units.Test{"slow-check": slow}
	scenario := &units.Scenario{
		Base:      unit.Base{ID: "smoke"},
		TestNames: []string{"slow-check"},
	}
	ctl, rec := newEngineHarness(t, tests, scenario)

	ctl.Control("cli", "interface", controller.StartScenarioControl{ScenarioID: strPtr("smoke")})
	time.Sleep(50 * time.Millisecond)
	ctl.Control("cli", "interface", controller.AbortTestsControl{})

	finish := waitForFinish(t, rec)
	assert.Equal(t, 1, finish.Code)
}

func strPtr(s string) *string { return &s }
