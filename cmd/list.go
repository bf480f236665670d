package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/giantswarm/cfti/internal/cli"
	"github.com/giantswarm/cfti/internal/config"
	"github.com/giantswarm/cfti/internal/controller"
	"github.com/giantswarm/cfti/internal/testset"

	"github.com/spf13/cobra"
)

// newListCmd builds `cfti list`, an inspection command: it loads a unit
// directory the same way `run` does, prints jigs/tests/scenarios as tables,
// and exits without starting the command engine. Loading goes through
// testset.Load, which starts each logger and interface process as it loads.
func newListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list <unit-directory>",
		Short: "List the jigs, tests, and scenarios a unit directory defines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(args[0], configPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to an optional config.yaml")
	return cmd
}

func runList(dir, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// list never runs the engine, so the controller only needs to exist
	// long enough for loaders to log through it.
	ctl, err := controller.New()
	if err != nil {
		return fmt.Errorf("starting controller: %w", err)
	}
	defer ctl.Close()

	ts, err := testset.Load(dir, ctl, cfg)
	if err != nil {
		return fmt.Errorf("loading unit directory %s: %w", dir, err)
	}

	fmt.Fprintln(os.Stdout, "Jigs")
	jigRows := make([]cli.Row, 0, len(ts.Jigs))
	for _, id := range sortedJigIDs(ts) {
		j := ts.Jigs[id]
		jigRows = append(jigRows, cli.Row{ID: j.ID, Name: j.Name, Description: j.Description})
	}
	cli.WriteTable(os.Stdout, [3]string{"ID", "Name", "Description"}, jigRows)

	fmt.Fprintln(os.Stdout, "\nTests")
	testRows := make([]cli.Row, 0, len(ts.Tests))
	for _, id := range sortedTestIDs(ts) {
		t := ts.Tests[id]
		testRows = append(testRows, cli.Row{ID: t.ID, Name: t.Name, Description: t.Description})
	}
	cli.WriteTable(os.Stdout, [3]string{"ID", "Name", "Description"}, testRows)

	fmt.Fprintln(os.Stdout, "\nScenarios")
	scenarioRows := make([]cli.Row, 0, len(ts.Scenarios))
	for _, id := range ts.SortedScenarioIDs() {
		s := ts.Scenarios[id]
		scenarioRows = append(scenarioRows, cli.Row{ID: s.ID, Name: s.Name, Description: s.Description})
	}
	cli.WriteTable(os.Stdout, [3]string{"ID", "Name", "Description"}, scenarioRows)

	return nil
}

func sortedJigIDs(ts *testset.TestSet) []string {
	ids := make([]string, 0, len(ts.Jigs))
	for id := range ts.Jigs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortedTestIDs(ts *testset.TestSet) []string {
	ids := make([]string, 0, len(ts.Tests))
	for id := range ts.Tests {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
