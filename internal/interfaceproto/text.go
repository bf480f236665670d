// Package interfaceproto implements the line-oriented wire protocol
// Interfaces speak with external clients (consoles, dashboards, CI
// runners): a text form and a JSON form, both write-only in the
// broadcast-to-client direction, with only the text form supporting
// client-to-daemon commands (cfti::types::interface::Interface's
// text_write/json_write/text_read/cfti_unescape).
package interfaceproto

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/giantswarm/cfti/internal/controller"
)

var escaper = strings.NewReplacer("\\", "\\\\", "\t", "\\t", "\n", "\\n", "\r", "\\r")
var unescaper = strings.NewReplacer("\\t", "\t", "\\n", "\n", "\\r", "\r", "\\\\", "\\")

// Escape applies the wire escaping a text-format Log line's message needs.
func Escape(s string) string { return escaper.Replace(s) }

// Unescape reverses Escape; applied to every whitespace-split token read
// back from a client (cfti_unescape).
func Unescape(s string) string { return unescaper.Replace(s) }

// WriteText serializes one broadcast message as a single text-protocol
// line, in the verb-first form clients parse by their first word.
func WriteText(w io.Writer, msg controller.BroadcastMessage) error {
	var line string
	switch p := msg.Payload.(type) {
	case controller.LogPayload:
		line = fmt.Sprintf("LOG %s\t%s\t%s\t%d\t%d\t%s",
			msg.MessageClass, msg.UnitID, msg.UnitKind, msg.UnixSecs, msg.UnixNsecs, Escape(p.Text))
	case controller.JigPayload:
		line = "JIG " + p.JigID
	case controller.DescribePayload:
		line = fmt.Sprintf("DESCRIBE %s %s %s %s", p.Class, p.Field, p.Name, p.Value)
	case controller.ScenarioPayload:
		line = "SCENARIO " + p.ScenarioID
	case controller.ScenariosPayload:
		line = "SCENARIOS " + strings.Join(p.ScenarioIDs, " ")
	case controller.ShutdownPayload:
		line = "EXIT " + p.Reason
	case controller.TestsPayload:
		line = fmt.Sprintf("TESTS %s %s", p.ScenarioID, strings.Join(p.TestIDs, " "))
	case controller.RunningPayload:
		line = "RUNNING " + p.TestID
	case controller.SkipPayload:
		line = fmt.Sprintf("SKIP %s %s", p.TestID, p.Reason)
	case controller.FailPayload:
		line = fmt.Sprintf("FAIL %s %s", p.TestID, p.Reason)
	case controller.PassPayload:
		line = fmt.Sprintf("PASS %s %s", p.TestID, p.Message)
	case controller.StartPayload:
		line = "START " + p.ScenarioID
	case controller.FinishPayload:
		line = fmt.Sprintf("FINISH %s %d %s", p.ScenarioID, p.Code, p.Reason)
	default:
		return fmt.Errorf("interfaceproto: unhandled broadcast payload %T", p)
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

// ReadText parses one line of client input into the control payload it
// requests, following the same verb table as cfti's text_read. An unknown
// verb is not an error: like the original, it degrades to a Log payload
// carrying a diagnostic message, so a typo from a client never kills the
// connection.
func ReadText(line string) controller.ControlPayload {
	fields := strings.Fields(line)
	words := make([]string, len(fields))
	for i, f := range fields {
		words[i] = Unescape(f)
	}
	if len(words) == 0 {
		return controller.LogControl{Text: ""}
	}

	verb := strings.ToLower(words[0])
	rest := words[1:]

	switch verb {
	case "scenario":
		if len(rest) == 0 {
			return controller.LogControl{Text: "scenario: missing scenario id"}
		}
		return controller.ScenarioControl{ScenarioID: strings.ToLower(rest[0])}
	case "scenarios":
		return controller.GetScenariosControl{}
	case "tests":
		if len(rest) == 0 {
			return controller.GetTestsControl{ScenarioID: nil}
		}
		id := strings.ToLower(rest[0])
		return controller.GetTestsControl{ScenarioID: &id}
	case "start":
		if len(rest) == 0 {
			return controller.StartScenarioControl{ScenarioID: nil}
		}
		id := strings.ToLower(rest[0])
		return controller.StartScenarioControl{ScenarioID: &id}
	case "abort":
		return controller.AbortTestsControl{}
	case "pong":
		token := ""
		if len(rest) > 0 {
			token = strings.ToLower(rest[0])
		}
		return controller.PongControl{Token: token}
	case "jig":
		return controller.GetJigControl{}
	case "hello":
		return controller.HelloControl{Greeting: strings.Join(rest, " ")}
	case "shutdown":
		if len(rest) == 0 {
			return controller.ShutdownControl{Reason: nil}
		}
		reason := strings.Join(rest, " ")
		return controller.ShutdownControl{Reason: &reason}
	case "log":
		return controller.LogControl{Text: strings.Join(rest, " ")}
	default:
		return controller.LogControl{Text: "Unimplemented verb: " + verb}
	}
}

// Hello is the greeting line written to every freshly spawned text-format
// interface, kept verbatim from the original protocol's handshake.
const Hello = "HELLO Jig/20 1.0"

// FormatInt is a small helper so callers building non-broadcast status
// lines (e.g. console clients) match the same integer formatting.
func FormatInt(n int) string { return strconv.Itoa(n) }
