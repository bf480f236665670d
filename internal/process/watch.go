package process

import (
	"bufio"
	"io"
)

// Debugger is the minimal unit capability watch needs: somewhere to report
// stream errors. Both internal/unit.Base and test doubles satisfy it.
type Debugger interface {
	Debug(format string, args ...interface{})
}

// Watch reads stream line by line, invoking onLine for each, until the
// stream ends or onLine returns an error (cfti::process::watch_output). It
// runs in its own goroutine and reports unexpected read errors via
// dbg.Debug rather than returning them, matching the original's
// fire-and-forget thread.
func Watch(stream io.Reader, dbg Debugger, onLine func(line string) error) {
	go func() {
		scanner := bufio.NewScanner(stream)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			if err := onLine(scanner.Text()); err != nil {
				dbg.Debug("message handler returned an error: %v", err)
				return
			}
		}
		if err := scanner.Err(); err != nil {
			dbg.Debug("error reading stream: %v", err)
		}
	}()
}

// LogOutput is Watch specialized to forward every line as a Log control
// message tagged with streamName ("stdout"/"stderr"), the process analogue
// of cfti::process::log_output.
func LogOutput(stream io.Reader, dbg Debugger, streamName string, forward func(streamName, line string)) {
	Watch(stream, dbg, func(line string) error {
		forward(streamName, line)
		return nil
	})
}
