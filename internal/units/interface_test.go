package units

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/giantswarm/cfti/internal/config"
	"github.com/giantswarm/cfti/internal/controller"
	"github.com/giantswarm/cfti/internal/unit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInterfaceUnit(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.interface")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadInterfaceMissingExecStartFails(t *testing.T) {
	path := writeInterfaceUnit(t, "[Interface]\nName=console\n")
	res := LoadInterface("console", path, nil, nil, config.Default())
	assert.Equal(t, Failed, res.Outcome)
}

func TestLoadInterfaceWorkingDirectoryLeftEmptyForStartFallback(t *testing.T) {
	path := writeInterfaceUnit(t, "[Interface]\nExecStart=cfti console\n")
	cfg := config.Default()
	cfg.DefaultWorkingDirectory = "/srv/cfti"

	// The config default is not applied at load time: Start receives the
	// jig/config fallback, so an unset WorkingDirectory stays empty here.
	res := LoadInterface("console", path, nil, nil, cfg)
	require.Equal(t, Loaded, res.Outcome)
	assert.Equal(t, "", res.Value.WorkingDirectory)
}

func TestLoadInterfaceOwnWorkingDirectoryWins(t *testing.T) {
	path := writeInterfaceUnit(t, "[Interface]\nExecStart=cfti console\nWorkingDirectory=/opt/console\n")
	cfg := config.Default()
	cfg.DefaultWorkingDirectory = "/srv/cfti"

	res := LoadInterface("console", path, nil, nil, cfg)
	require.Equal(t, Loaded, res.Outcome)
	assert.Equal(t, "/opt/console", res.Value.WorkingDirectory)
}

func TestLoadInterfaceInvalidFormatFails(t *testing.T) {
	path := writeInterfaceUnit(t, "[Interface]\nExecStart=cfti console\nFormat=xml\n")
	res := LoadInterface("console", path, nil, nil, config.Default())
	assert.Equal(t, Failed, res.Outcome)
}

func TestSetHelloRecordsGreeting(t *testing.T) {
	i := &Interface{}
	i.SetHello("Jig/20 1.0")
	assert.Equal(t, "Jig/20 1.0", i.Hello)
}

func TestInterfaceStartTextWritesHelloThenBroadcasts(t *testing.T) {
	ctl, err := controller.New()
	require.NoError(t, err)
	defer ctl.Close()

	out := filepath.Join(t.TempDir(), "out.txt")
	iface := &Interface{
		Base:      unit.Base{ID: "console", UnitKind: unit.KindInterface, Ctl: ctl},
		ExecStart: "sh -c 'cat > " + out + "'",
		Format:    InterfaceText,
	}
	require.NoError(t, iface.Start(""))

	ctl.Broadcast("jig-1", "jig", controller.LogPayload{Text: "booted"})

	assert.Eventually(t, func() bool {
		f, err := os.Open(out)
		if err != nil {
			return false
		}
		defer f.Close()
		scanner := bufio.NewScanner(f)
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		return len(lines) >= 2 && strings.HasPrefix(lines[0], "HELLO")
	}, 2*time.Second, 10*time.Millisecond)
}
