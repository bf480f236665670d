package units

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/giantswarm/cfti/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestUnit(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.test")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadTestMissingExecStartFails(t *testing.T) {
	path := writeTestUnit(t, "[Test]\nName=no exec\n")
	res := LoadTest("t1", path, nil, nil, config.Default())
	require.Equal(t, Failed, res.Outcome)
}

func TestLoadTestIncompatibleJigSkips(t *testing.T) {
	path := writeTestUnit(t, "[Test]\nJigs=bench-z\nExecStart=/bin/true\n")
	jigs := map[string]*Jig{"bench-a": {}}
	res := LoadTest("t1", path, jigs, nil, config.Default())
	assert.Equal(t, Skip, res.Outcome)
}

func TestLoadTestDefaultsToSimple(t *testing.T) {
	path := writeTestUnit(t, "[Test]\nExecStart=/bin/true\n")
	res := LoadTest("t1", path, nil, nil, config.Default())
	require.Equal(t, Loaded, res.Outcome)
	assert.Equal(t, TestSimple, res.Value.Type)
}

func TestLoadTestInvalidTypeFails(t *testing.T) {
	path := writeTestUnit(t, "[Test]\nType=bogus\nExecStart=/bin/true\n")
	res := LoadTest("t1", path, nil, nil, config.Default())
	assert.Equal(t, Failed, res.Outcome)
}

func TestLoadTestDaemonType(t *testing.T) {
	path := writeTestUnit(t, "[Test]\nType=daemon\nExecStart=/bin/sleep 10\n")
	res := LoadTest("t1", path, nil, nil, config.Default())
	require.Equal(t, Loaded, res.Outcome)
	assert.Equal(t, TestDaemon, res.Value.Type)
}

func TestLoadTestTimeoutOverridesDefault(t *testing.T) {
	path := writeTestUnit(t, "[Test]\nTimeout=30\nExecStart=/bin/true\n")
	res := LoadTest("t1", path, nil, nil, config.Default())
	require.Equal(t, Loaded, res.Outcome)
	assert.Equal(t, 30*time.Second, res.Value.Timeout)
}

func TestLoadTestNoTimeoutUsesUnitDefault(t *testing.T) {
	path := writeTestUnit(t, "[Test]\nExecStart=/bin/true\n")
	res := LoadTest("t1", path, nil, nil, config.Default())
	require.Equal(t, Loaded, res.Outcome)
	assert.Equal(t, config.DefaultTimeout, res.Value.Timeout, "falls back to the 2000s Test/Scenario default, not Config.Timeout")
}

func TestLoadTestBadTimeoutFails(t *testing.T) {
	path := writeTestUnit(t, "[Test]\nTimeout=not-a-number\nExecStart=/bin/true\n")
	res := LoadTest("t1", path, nil, nil, config.Default())
	assert.Equal(t, Failed, res.Outcome)
}

func TestLoadTestRequiresAndSuggestsSplit(t *testing.T) {
	path := writeTestUnit(t, "[Test]\nExecStart=/bin/true\nRequires=a, b\nSuggests=c\n")
	res := LoadTest("t1", path, nil, nil, config.Default())
	require.Equal(t, Loaded, res.Outcome)
	assert.Equal(t, []string{"a", "b"}, res.Value.Requires)
	assert.Equal(t, []string{"c"}, res.Value.Suggests)
}

func TestLoadTestExecStopDefaultsFromExecStop(t *testing.T) {
	path := writeTestUnit(t, "[Test]\nExecStart=/bin/true\nExecStop=/bin/cleanup\n")
	res := LoadTest("t1", path, nil, nil, config.Default())
	require.Equal(t, Loaded, res.Outcome)
	assert.Equal(t, "/bin/cleanup", res.Value.ExecStopSuccess)
	assert.Equal(t, "/bin/cleanup", res.Value.ExecStopFailure)
}

func TestLoadTestExecStopSuccessFailureOverrideExecStop(t *testing.T) {
	path := writeTestUnit(t, `[Test]
ExecStart=/bin/true
ExecStop=/bin/cleanup
ExecStopSuccess=/bin/cleanup-ok
ExecStopFail=/bin/cleanup-bad
`)
	res := LoadTest("t1", path, nil, nil, config.Default())
	require.Equal(t, Loaded, res.Outcome)
	assert.Equal(t, "/bin/cleanup-ok", res.Value.ExecStopSuccess)
	assert.Equal(t, "/bin/cleanup-bad", res.Value.ExecStopFailure)
}

func TestFullCommandAppendsExtraArgs(t *testing.T) {
	tst := &Test{ExecStart: "/bin/echo hello", ExtraArgs: []string{"--flag", "value"}}
	assert.Equal(t, "/bin/echo hello --flag value", tst.FullCommand())
}

func TestFullCommandNoExtraArgsIsExecStartVerbatim(t *testing.T) {
	tst := &Test{ExecStart: "/bin/echo hello"}
	assert.Equal(t, "/bin/echo hello", tst.FullCommand())
}

func TestLoadTestExtraArgsFromRepeatableExecKey(t *testing.T) {
	path := writeTestUnit(t, "[Test]\nExecStart=/bin/echo\n[Exec]\nArg=--one\nArg=--two\n")
	res := LoadTest("t1", path, nil, nil, config.Default())
	require.Equal(t, Loaded, res.Outcome)
	assert.Equal(t, []string{"--one", "--two"}, res.Value.ExtraArgs)
}
