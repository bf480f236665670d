package units

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/giantswarm/cfti/internal/config"
	"github.com/giantswarm/cfti/internal/unit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenarioUnit(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.scenario")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadScenarioMissingTestsFails(t *testing.T) {
	path := writeScenarioUnit(t, "[Scenario]\nName=smoke\n")
	res := LoadScenario("smoke", path, nil, config.Default())
	assert.Equal(t, Failed, res.Outcome)
}

func TestLoadScenarioParsesTestList(t *testing.T) {
	path := writeScenarioUnit(t, "[Scenario]\nTests=net-check, power-check boot-check\n")
	res := LoadScenario("smoke", path, nil, config.Default())
	require.Equal(t, Loaded, res.Outcome)
	assert.Equal(t, []string{"net-check", "power-check", "boot-check"}, res.Value.TestNames)
}

func TestLoadScenarioNoTimeoutUsesUnitDefault(t *testing.T) {
	path := writeScenarioUnit(t, "[Scenario]\nTests=net-check\n")
	res := LoadScenario("smoke", path, nil, config.Default())
	require.Equal(t, Loaded, res.Outcome)
	assert.Equal(t, config.DefaultTimeout, res.Value.Timeout, "falls back to the 2000s Test/Scenario default, not Config.Timeout")
}

func TestScenarioResolveBindsTestsAndReportsMissing(t *testing.T) {
	sc := &Scenario{TestNames: []string{"a", "missing", "b"}}
	tests := map[string]*Test{
		"a": {Base: unit.Base{ID: "a"}},
		"b": {Base: unit.Base{ID: "b"}},
	}

	missing := sc.Resolve(tests)
	assert.Equal(t, []string{"missing"}, missing)
	require.Len(t, sc.Tests, 2)
	assert.Equal(t, "a", sc.Tests[0].ID)
	assert.Equal(t, "b", sc.Tests[1].ID)
}

func TestScenarioResolveIsIdempotent(t *testing.T) {
	sc := &Scenario{TestNames: []string{"a"}}
	tests := map[string]*Test{"a": {Base: unit.Base{ID: "a"}}}

	sc.Resolve(tests)
	sc.Resolve(tests)
	assert.Len(t, sc.Tests, 1, "re-resolving must not duplicate entries")
}
