package units

import (
	"errors"
	"strings"

	"github.com/giantswarm/cfti/internal/config"
	"github.com/giantswarm/cfti/internal/controller"
	"github.com/giantswarm/cfti/internal/interfaceproto"
	"github.com/giantswarm/cfti/internal/process"
	"github.com/giantswarm/cfti/internal/unit"
	"github.com/giantswarm/cfti/internal/unitfile"
)

// InterfaceFormat selects the wire protocol an Interface speaks with its
// backing process: human/script-friendly text lines, or one JSON object
// per line (write-only, no command parsing).
type InterfaceFormat int

const (
	InterfaceText InterfaceFormat = iota
	InterfaceJSON
)

// Interface is an external client's connection point onto the bus —
// typically a CI runner, an operator console, or the bundled dashboard
// (cfti::types::interface::Interface).
type Interface struct {
	unit.Base

	ExecStart        string
	WorkingDirectory string
	Format           InterfaceFormat

	Hello string
}

// LoadInterface parses a .interface unit file. WorkingDirectory is read as
// declared (empty when unset); the fallback order own > jig default >
// config default > current directory is resolved at Start, matching
// config::Config::default_working_directory in the original.
func LoadInterface(id, path string, jigs map[string]*Jig, ctl *controller.Controller, cfg config.Config) Result[*Interface] {
	uf, err := unitfile.Read(path)
	if err != nil {
		if _, ok := err.(*unitfile.NotFoundError); ok {
			return Skipped[*Interface]()
		}
		return Failure[*Interface](&config.UnitLoadError{Kind: "interface", ID: id, Path: path, Err: err})
	}

	if !uf.HasSection("Interface") {
		return Failure[*Interface](&config.UnitLoadError{Kind: "interface", ID: id, Path: path, Err: errors.New("missing [Interface] section")})
	}

	jigsField, hasJigs := uf.Get("Interface", "Jigs")
	if !compatibleWithJigs(jigsField, hasJigs, jigs) {
		return Skipped[*Interface]()
	}

	description, _ := uf.Get("Interface", "Description")
	name, ok := uf.Get("Interface", "Name")
	if !ok {
		name = id
	}

	execStart, ok := uf.Get("Interface", "ExecStart")
	if !ok {
		return Failure[*Interface](&config.UnitLoadError{Kind: "interface", ID: id, Path: path, Err: errors.New("missing ExecStart")})
	}

	// WorkingDirectory is left empty when the unit doesn't set its own: Start
	// falls back to the jig/config default it's handed at call time, so
	// resolving cfg.DefaultWorkingDirectory here would skip the jig's own
	// default and let the config default win in its place.
	workingDir, _ := uf.Get("Interface", "WorkingDirectory")

	format := InterfaceText
	if s, ok := uf.Get("Interface", "Format"); ok {
		switch strings.ToLower(s) {
		case "text":
			format = InterfaceText
		case "json":
			format = InterfaceJSON
		default:
			return Failure[*Interface](&config.UnitLoadError{Kind: "interface", ID: id, Path: path, Err: errors.New("invalid Format: " + s)})
		}
	}

	return Ok(&Interface{
		Base: unit.Base{
			ID:          id,
			UnitKind:    unit.KindInterface,
			Name:        name,
			Description: description,
			Ctl:         ctl,
		},
		ExecStart:        execStart,
		WorkingDirectory: workingDir,
		Format:           format,
	})
}

// SetHello records the greeting string the client sent with its HELLO
// command (ControlPayload HelloControl), surfaced for diagnostics/dashboards.
func (i *Interface) SetHello(hello string) {
	i.Hello = hello
}

// Start launches the interface's backing process and wires it to the bus:
// text-format interfaces get a HELLO handshake, forward every broadcast as
// a protocol line, and have their stdout read back as commands; JSON-format
// interfaces are write-only.
func (i *Interface) Start(workingDir string) error {
	if i.WorkingDirectory != "" {
		workingDir = i.WorkingDirectory
	}

	proc, err := process.Spawn(i.ExecStart, workingDir, process.Unbounded)
	if err != nil {
		i.Debug("unable to run interface command %s: %v", i.ExecStart, err)
		return err
	}
	i.Debug("launched interface")

	switch i.Format {
	case InterfaceText:
		if _, werr := proc.Stdin.Write([]byte(interfaceproto.Hello + "\n")); werr != nil {
			i.Debug("unable to write hello: %v", werr)
		}

		i.Ctl.Listen(func(msg controller.BroadcastMessage) error {
			return interfaceproto.WriteText(proc.Stdin, msg)
		})

		process.LogOutput(proc.Stderr, i, "stderr", func(streamName, line string) {
			i.Control(controller.LogControl{Text: line})
		})

		process.Watch(proc.Stdout, i, func(line string) error {
			i.Debug("interface input: %s", line)
			i.Control(interfaceproto.ReadText(line))
			return nil
		})

	case InterfaceJSON:
		i.Ctl.Listen(func(msg controller.BroadcastMessage) error {
			return interfaceproto.WriteJSON(proc.Stdin, msg)
		})
	}

	return nil
}
