package units

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/giantswarm/cfti/internal/config"
	"github.com/giantswarm/cfti/internal/controller"
	"github.com/giantswarm/cfti/internal/process"
	"github.com/giantswarm/cfti/internal/unit"
	"github.com/giantswarm/cfti/internal/unitfile"
)

// LoggerFormat selects how a Logger serializes the Log broadcasts it
// subscribes to before writing them to its backing process' stdin.
type LoggerFormat int

const (
	FormatTSV LoggerFormat = iota
	FormatJSON
)

// Logger pipes every Log broadcast on the bus to an external process,
// serialized as tab-separated values or one JSON object per line
// (cfti::types::logger::Logger).
type Logger struct {
	unit.Base

	ExecStart        string
	WorkingDirectory string
	Format           LoggerFormat
}

// LoadLogger parses a .logger unit file.
func LoadLogger(id, path string, jigs map[string]*Jig, ctl *controller.Controller) Result[*Logger] {
	uf, err := unitfile.Read(path)
	if err != nil {
		if _, ok := err.(*unitfile.NotFoundError); ok {
			return Skipped[*Logger]()
		}
		return Failure[*Logger](&config.UnitLoadError{Kind: "logger", ID: id, Path: path, Err: err})
	}

	if !uf.HasSection("Logger") {
		return Failure[*Logger](&config.UnitLoadError{Kind: "logger", ID: id, Path: path, Err: errors.New("missing [Logger] section")})
	}

	jigsField, hasJigs := uf.Get("Logger", "Jigs")
	if !compatibleWithJigs(jigsField, hasJigs, jigs) {
		return Skipped[*Logger]()
	}

	description, _ := uf.Get("Logger", "Description")
	name, ok := uf.Get("Logger", "Name")
	if !ok {
		name = id
	}
	workingDir, _ := uf.Get("Logger", "WorkingDirectory")

	execStart, ok := uf.Get("Logger", "ExecStart")
	if !ok {
		return Failure[*Logger](&config.UnitLoadError{Kind: "logger", ID: id, Path: path, Err: errors.New("missing ExecStart")})
	}

	format := FormatTSV
	if s, ok := uf.Get("Logger", "Format"); ok {
		switch strings.ToLower(s) {
		case "tsv":
			format = FormatTSV
		case "json":
			format = FormatJSON
		default:
			return Failure[*Logger](&config.UnitLoadError{Kind: "logger", ID: id, Path: path, Err: errors.New("invalid Format: " + s)})
		}
	}

	return Ok(&Logger{
		Base: unit.Base{
			ID:          id,
			UnitKind:    unit.KindLogger,
			Name:        name,
			Description: description,
			Ctl:         ctl,
		},
		ExecStart:        execStart,
		WorkingDirectory: workingDir,
		Format:           format,
	})
}

// Start spawns the logger's backing process and wires a bus subscription
// that writes every Log broadcast to its stdin, in the logger's chosen
// format. The logger's own WorkingDirectory wins over the jig/config
// default passed in via workingDir.
func (l *Logger) Start(workingDir string) error {
	if l.WorkingDirectory != "" {
		workingDir = l.WorkingDirectory
	}

	l.Debug("starting logger")
	proc, err := process.Spawn(l.ExecStart, workingDir, process.Unbounded)
	if err != nil {
		l.Debug("unable to spawn %s: %v", l.ExecStart, err)
		return fmt.Errorf("logger %s: %w", l.ID, err)
	}

	write := l.writeTSV
	if l.Format == FormatJSON {
		write = l.writeJSON
	}

	l.Ctl.ListenLogs(func(msg controller.BroadcastMessage, log controller.LogPayload) error {
		return write(proc, msg, log)
	})

	l.Debug("logger is running")
	return nil
}

func (l *Logger) writeTSV(proc *process.Process, msg controller.BroadcastMessage, log controller.LogPayload) error {
	escaped := strings.NewReplacer("\\", "\\\\", "\n", "\\n", "\t", "\\t").Replace(log.Text)
	line := fmt.Sprintf("%s\t%s\t%s\t%d\t%d\t%s\t\n",
		msg.MessageClass, msg.UnitID, msg.UnitKind, msg.UnixSecs, msg.UnixNsecs, escaped)
	if _, err := proc.Stdin.Write([]byte(line)); err != nil {
		l.Debug("unable to write to logfile: %v", err)
		return err
	}
	return nil
}

func (l *Logger) writeJSON(proc *process.Process, msg controller.BroadcastMessage, log controller.LogPayload) error {
	record := struct {
		MessageClass  string `json:"message_class"`
		UnitID        string `json:"unit_id"`
		UnitType      string `json:"unit_type"`
		UnixTime      int64  `json:"unix_time"`
		UnixTimeNsecs int32  `json:"unix_time_nsecs"`
		Message       string `json:"message"`
	}{msg.MessageClass, msg.UnitID, msg.UnitKind, msg.UnixSecs, msg.UnixNsecs, log.Text}

	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	if _, err := proc.Stdin.Write(append(data, '\n')); err != nil {
		l.Debug("unable to write to logfile: %v", err)
		return err
	}
	return nil
}
