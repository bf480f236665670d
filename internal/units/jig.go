package units

import (
	"errors"
	"os"

	"github.com/giantswarm/cfti/internal/config"
	"github.com/giantswarm/cfti/internal/controller"
	"github.com/giantswarm/cfti/internal/process"
	"github.com/giantswarm/cfti/internal/unit"
	"github.com/giantswarm/cfti/internal/unitfile"
)

// Jig describes the hardware or environment tests run against
// (cfti::types::jig::Jig). Exactly the jigs whose gating checks pass get
// loaded; a jig whose gating check fails is a silent Skip (an unreadable or
// malformed jig file is Failed instead), since a unit directory commonly
// ships jig files for machines other than the one currently running.
type Jig struct {
	unit.Base

	DefaultScenario         string
	DefaultWorkingDirectory string
}

// LoadJig parses a .jig unit file. A TestFile that doesn't exist, or a
// TestProgram that exits non-zero, means "this isn't the jig we're on" and
// yields Skip rather than Failed — those are gating checks, not errors.
func LoadJig(id, path string, ctl *controller.Controller, cfg config.Config) Result[*Jig] {
	uf, err := unitfile.Read(path)
	if err != nil {
		if _, ok := err.(*unitfile.NotFoundError); ok {
			return Skipped[*Jig]()
		}
		return Failure[*Jig](&config.UnitLoadError{Kind: "jig", ID: id, Path: path, Err: err})
	}

	if !uf.HasSection("Jig") {
		return Failure[*Jig](&config.UnitLoadError{Kind: "jig", ID: id, Path: path, Err: errors.New("missing [Jig] section")})
	}

	if testFile, ok := uf.Get("Jig", "TestFile"); ok {
		if _, statErr := os.Stat(testFile); statErr != nil {
			return Skipped[*Jig]()
		}
	}

	workingDir, _ := uf.Get("Unit", "WorkingDirectory")

	if testProgram, ok := uf.Get("Jig", "TestProgram"); ok {
		if !process.TryCommand(testProgram, workingDir, cfg.Timeout, nil) {
			return Skipped[*Jig]()
		}
	}

	description, _ := uf.Get("Unit", "Description")
	name, ok := uf.Get("Unit", "Name")
	if !ok {
		name = id
	}
	defaultScenario, _ := uf.Get("Jig", "DefaultScenario")

	return Ok(&Jig{
		Base: unit.Base{
			ID:          id,
			UnitKind:    unit.KindJig,
			Name:        name,
			Description: description,
			Ctl:         ctl,
		},
		DefaultScenario:         defaultScenario,
		DefaultWorkingDirectory: workingDir,
	})
}
