package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewListCmd(t *testing.T) {
	listCmd := newListCmd()
	if listCmd.Use != "list <unit-directory>" {
		t.Errorf("Expected Use to be 'list <unit-directory>', got %s", listCmd.Use)
	}
	if listCmd.Args == nil {
		t.Error("Expected Args validator to be set")
	}
}

func TestRunListPrintsLoadedUnits(t *testing.T) {
	dir := t.TempDir()
	must := func(name, contents string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	must("bench.jig", "[Unit]\nName=Acceptance Bench\n[Jig]\n")
	must("net-check.test", "[Unit]\nDescription=checks the link\n[Test]\nExecStart=/bin/true\n")
	must("smoke.scenario", "[Scenario]\nTests=net-check\n")

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	origStdout := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = origStdout }()

	errCh := make(chan error, 1)
	go func() { errCh <- runList(dir, "") }()

	if err := <-errCh; err != nil {
		t.Fatalf("runList returned an error: %v", err)
	}
	w.Close()

	buf := make([]byte, 4096)
	n, _ := r.Read(buf)
	output := string(buf[:n])

	for _, want := range []string{"bench", "Acceptance Bench", "net-check", "smoke"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, output)
		}
	}
}
