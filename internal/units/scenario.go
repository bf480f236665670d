package units

import (
	"errors"
	"strconv"
	"time"

	"github.com/giantswarm/cfti/internal/config"
	"github.com/giantswarm/cfti/internal/controller"
	"github.com/giantswarm/cfti/internal/unit"
	"github.com/giantswarm/cfti/internal/unitfile"
)

// Scenario is an ordered list of tests to run together
// (cfti::types::scenario::Scenario). TestNames is resolved against the
// loaded Test set by Resolve, which testset.Load calls once every test file
// has been loaded.
type Scenario struct {
	unit.Base

	Timeout time.Duration

	TestNames []string
	Tests     []*Test

	ExecStart       string
	ExecStopSuccess string
	ExecStopFailure string
}

// LoadScenario parses a .scenario unit file. Unlike the gated unit kinds,
// a scenario has no Jigs= filter of its own in the original — it is
// reachable only via a jig's DefaultScenario or an explicit StartScenario
// command. No jig compatibility check is applied to a scenario, either at
// load time or when it is started.
func LoadScenario(id, path string, ctl *controller.Controller, cfg config.Config) Result[*Scenario] {
	uf, err := unitfile.Read(path)
	if err != nil {
		if _, ok := err.(*unitfile.NotFoundError); ok {
			return Skipped[*Scenario]()
		}
		return Failure[*Scenario](&config.UnitLoadError{Kind: "scenario", ID: id, Path: path, Err: err})
	}

	if !uf.HasSection("Scenario") {
		return Failure[*Scenario](&config.UnitLoadError{Kind: "scenario", ID: id, Path: path, Err: errors.New("missing [Scenario] section")})
	}

	testsField, ok := uf.Get("Scenario", "Tests")
	if !ok {
		return Failure[*Scenario](&config.UnitLoadError{Kind: "scenario", ID: id, Path: path, Err: errors.New("missing Tests list")})
	}
	testNames := splitJigNames(testsField)

	description, _ := uf.Get("Unit", "Description")
	name, ok := uf.Get("Scenario", "Name")
	if !ok {
		name = id
	}

	timeout := config.DefaultTimeout
	if s, ok := uf.Get("Scenario", "Timeout"); ok {
		secs, parseErr := strconv.Atoi(s)
		if parseErr != nil {
			return Failure[*Scenario](&config.UnitLoadError{Kind: "scenario", ID: id, Path: path, Err: parseErr})
		}
		timeout = time.Duration(secs) * time.Second
	}

	execStart, _ := uf.Get("Scenario", "ExecStart")
	execStop, _ := uf.Get("Scenario", "ExecStop")
	execStopSuccess, ok := uf.Get("Scenario", "ExecStopSuccess")
	if !ok {
		execStopSuccess = execStop
	}
	execStopFailure, ok := uf.Get("Scenario", "ExecStopFail")
	if !ok {
		execStopFailure = execStop
	}

	return Ok(&Scenario{
		Base: unit.Base{
			ID:          id,
			UnitKind:    unit.KindScenario,
			Name:        name,
			Description: description,
			Ctl:         ctl,
		},
		Timeout:         timeout,
		TestNames:       testNames,
		ExecStart:       execStart,
		ExecStopSuccess: execStopSuccess,
		ExecStopFailure: execStopFailure,
	})
}

// Resolve binds TestNames against the full loaded test set, dropping any
// name that doesn't resolve (and returning them so the caller can warn).
func (s *Scenario) Resolve(tests map[string]*Test) (missing []string) {
	s.Tests = s.Tests[:0]
	for _, name := range s.TestNames {
		t, ok := tests[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		s.Tests = append(s.Tests, t)
	}
	return missing
}
