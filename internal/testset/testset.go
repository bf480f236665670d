// Package testset loads a directory of unit files into a running set of
// jigs, loggers, interfaces, tests, scenarios, and triggers, then drives
// the command engine that executes scenarios against them
// (cfti::testset::TestSet).
package testset

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/giantswarm/cfti/internal/config"
	"github.com/giantswarm/cfti/internal/controller"
	"github.com/giantswarm/cfti/internal/units"
	"github.com/giantswarm/cfti/pkg/logging"
)

// TestSet holds every unit loaded from one directory.
type TestSet struct {
	Dir string
	Ctl *controller.Controller
	Cfg config.Config

	Jigs       map[string]*units.Jig
	Loggers    map[string]*units.Logger
	Interfaces map[string]*units.Interface
	Tests      map[string]*units.Test
	Scenarios  map[string]*units.Scenario
	Triggers   map[string]*units.Trigger

	// ActiveJig is the first jig (by id) whose gating checks passed. A real
	// deployment only ever has one jig file whose TestFile/TestProgram gate
	// matches the running machine, so "first match, sorted for
	// determinism" reproduces the original's single-jig assumption without
	// requiring the directory to contain exactly one .jig file.
	ActiveJig *units.Jig
}

// Load enumerates dir, buckets unit files by extension, and loads them in
// the fixed dependency order jig → logger → interface → test → scenario →
// trigger, exactly as cfti::testset::TestSet::new does (spec.md §4.E).
// Loggers and interfaces are started as soon as they load.
func Load(dir string, ctl *controller.Controller, cfg config.Config) (*TestSet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var jigPaths, loggerPaths, interfacePaths, testPaths, scenarioPaths, triggerPaths []string

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		switch strings.TrimPrefix(filepath.Ext(entry.Name()), ".") {
		case "jig":
			jigPaths = append(jigPaths, path)
		case "logger":
			loggerPaths = append(loggerPaths, path)
		case "interface":
			interfacePaths = append(interfacePaths, path)
		case "test":
			testPaths = append(testPaths, path)
		case "scenario":
			scenarioPaths = append(scenarioPaths, path)
		case "trigger":
			triggerPaths = append(triggerPaths, path)
		case "service", "updater", "coupon":
			// Reserved extensions from the original format; no loader
			// exists for them in this daemon (spec.md Non-goals).
		default:
			logging.Debug("testset", "unrecognized unit file: %s", path)
		}
	}

	ts := &TestSet{
		Dir:        dir,
		Ctl:        ctl,
		Cfg:        cfg,
		Jigs:       map[string]*units.Jig{},
		Loggers:    map[string]*units.Logger{},
		Interfaces: map[string]*units.Interface{},
		Tests:      map[string]*units.Test{},
		Scenarios:  map[string]*units.Scenario{},
		Triggers:   map[string]*units.Trigger{},
	}

	sort.Strings(jigPaths)
	for _, p := range jigPaths {
		id := idFromPath(p)
		switch res := units.LoadJig(id, p, ctl, cfg); res.Outcome {
		case units.Loaded:
			ts.Jigs[id] = res.Value
		case units.Failed:
			logging.Warn("testset", "unable to load jig %s: %v", id, res.Err)
		}
	}
	if ids := sortedKeys(ts.Jigs); len(ids) > 0 {
		ts.ActiveJig = ts.Jigs[ids[0]]
	}

	sort.Strings(loggerPaths)
	for _, p := range loggerPaths {
		id := idFromPath(p)
		res := units.LoadLogger(id, p, ts.Jigs, ctl)
		switch res.Outcome {
		case units.Loaded:
			ts.Loggers[id] = res.Value
			if err := res.Value.Start(ts.defaultWorkingDirectory()); err != nil {
				logging.Warn("testset", "logger %s failed to start: %v", id, err)
			}
		case units.Failed:
			logging.Warn("testset", "unable to load logger %s: %v", id, res.Err)
		}
	}

	sort.Strings(interfacePaths)
	for _, p := range interfacePaths {
		id := idFromPath(p)
		res := units.LoadInterface(id, p, ts.Jigs, ctl, cfg)
		switch res.Outcome {
		case units.Loaded:
			ts.Interfaces[id] = res.Value
			if err := res.Value.Start(ts.defaultWorkingDirectory()); err != nil {
				logging.Warn("testset", "interface %s failed to start: %v", id, err)
			}
		case units.Failed:
			logging.Warn("testset", "unable to load interface %s: %v", id, res.Err)
		}
	}

	sort.Strings(testPaths)
	for _, p := range testPaths {
		id := idFromPath(p)
		res := units.LoadTest(id, p, ts.Jigs, ctl, cfg)
		switch res.Outcome {
		case units.Loaded:
			ts.Tests[id] = res.Value
		case units.Failed:
			logging.Warn("testset", "unable to load test %s: %v", id, res.Err)
		}
	}

	sort.Strings(scenarioPaths)
	for _, p := range scenarioPaths {
		id := idFromPath(p)
		res := units.LoadScenario(id, p, ctl, cfg)
		switch res.Outcome {
		case units.Loaded:
			ts.Scenarios[id] = res.Value
		case units.Failed:
			logging.Warn("testset", "unable to load scenario %s: %v", id, res.Err)
		}
	}

	sort.Strings(triggerPaths)
	for _, p := range triggerPaths {
		id := idFromPath(p)
		res := units.LoadTrigger(id, p, ts.Jigs, ctl)
		switch res.Outcome {
		case units.Loaded:
			ts.Triggers[id] = res.Value
		case units.Failed:
			logging.Warn("testset", "unable to load trigger %s: %v", id, res.Err)
		}
	}

	ts.resolveScenarios()

	return ts, nil
}

func (ts *TestSet) resolveScenarios() {
	for id, sc := range ts.Scenarios {
		if missing := sc.Resolve(ts.Tests); len(missing) > 0 {
			logging.Warn("testset", "scenario %s references unknown tests: %v", id, missing)
		}
	}
}

func (ts *TestSet) defaultWorkingDirectory() string {
	if ts.ActiveJig != nil && ts.ActiveJig.DefaultWorkingDirectory != "" {
		return ts.ActiveJig.DefaultWorkingDirectory
	}
	return ts.Cfg.DefaultWorkingDirectory
}

// SortedScenarioIDs returns every scenario id in lexical order, the order
// SendScenarios broadcasts them in.
func (ts *TestSet) SortedScenarioIDs() []string {
	return sortedKeys(ts.Scenarios)
}

func idFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
