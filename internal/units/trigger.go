package units

import (
	"errors"

	"github.com/giantswarm/cfti/internal/config"
	"github.com/giantswarm/cfti/internal/controller"
	"github.com/giantswarm/cfti/internal/unit"
	"github.com/giantswarm/cfti/internal/unitfile"
)

// Trigger describes an external event source (a USB device appearing, a
// button press) that can kick off a scenario (cfti::types::trigger::Trigger).
// Its ExecStart names a long-running monitor process, not a pass/fail check.
// Triggers are loaded and kept in the TestSet; nothing in the daemon starts
// their ExecStart process.
type Trigger struct {
	unit.Base

	ExecStart string
}

// LoadTrigger parses a .trigger unit file.
func LoadTrigger(id, path string, jigs map[string]*Jig, ctl *controller.Controller) Result[*Trigger] {
	uf, err := unitfile.Read(path)
	if err != nil {
		if _, ok := err.(*unitfile.NotFoundError); ok {
			return Skipped[*Trigger]()
		}
		return Failure[*Trigger](&config.UnitLoadError{Kind: "trigger", ID: id, Path: path, Err: err})
	}

	if !uf.HasSection("Trigger") {
		return Failure[*Trigger](&config.UnitLoadError{Kind: "trigger", ID: id, Path: path, Err: errors.New("missing [Trigger] section")})
	}

	jigsField, hasJigs := uf.Get("Trigger", "Jigs")
	if !compatibleWithJigs(jigsField, hasJigs, jigs) {
		return Skipped[*Trigger]()
	}

	execStart, ok := uf.Get("Trigger", "ExecStart")
	if !ok {
		return Failure[*Trigger](&config.UnitLoadError{Kind: "trigger", ID: id, Path: path, Err: errors.New("missing ExecStart")})
	}

	description, _ := uf.Get("Trigger", "Description")
	name, ok := uf.Get("Trigger", "Name")
	if !ok {
		name = id
	}

	return Ok(&Trigger{
		Base: unit.Base{
			ID:          id,
			UnitKind:    unit.KindTrigger,
			Name:        name,
			Description: description,
			Ctl:         ctl,
		},
		ExecStart: execStart,
	})
}
