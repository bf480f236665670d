package interfaceproto

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/giantswarm/cfti/internal/controller"
)

// jsonEnvelope is the common set of fields every JSON-format line carries,
// matching the flat object cfti's json_write builds (no nested "payload" key).
type jsonEnvelope struct {
	MessageClass string `json:"message_class"`
	UnitID       string `json:"unit_id"`
	UnitType     string `json:"unit_type"`
	UnixTime     int64  `json:"unix_time"`
	UnixNsecs    int32  `json:"unix_time_nsecs"`
	Type         string `json:"type"`

	Message  string   `json:"message,omitempty"`
	ID       string   `json:"id,omitempty"`
	Class    string   `json:"class,omitempty"`
	Field    string   `json:"field,omitempty"`
	Name     string   `json:"name,omitempty"`
	Value    string   `json:"value,omitempty"`
	Scenario string   `json:"scenario,omitempty"`
	Test     string   `json:"test,omitempty"`
	Reason   string   `json:"reason,omitempty"`
	Result   int      `json:"result,omitempty"`
	Tests    []string `json:"tests,omitempty"`
	Scenarios []string `json:"scenarios,omitempty"`
}

// WriteJSON serializes one broadcast message as a single JSON object per line.
func WriteJSON(w io.Writer, msg controller.BroadcastMessage) error {
	env := jsonEnvelope{
		MessageClass: msg.MessageClass,
		UnitID:       msg.UnitID,
		UnitType:     msg.UnitKind,
		UnixTime:     msg.UnixSecs,
		UnixNsecs:    msg.UnixNsecs,
	}

	switch p := msg.Payload.(type) {
	case controller.LogPayload:
		env.Type, env.Message = "log", p.Text
	case controller.JigPayload:
		env.Type, env.ID = "jig", p.JigID
	case controller.DescribePayload:
		env.Type, env.Class, env.Field, env.Name, env.Value = "describe", p.Class, p.Field, p.Name, p.Value
	case controller.ScenarioPayload:
		env.Type, env.ID = "scenario", p.ScenarioID
	case controller.ScenariosPayload:
		env.Type, env.Scenarios = "scenarios", p.ScenarioIDs
	case controller.ShutdownPayload:
		env.Type, env.Reason = "shutdown", p.Reason
	case controller.TestsPayload:
		env.Type, env.Scenario, env.Tests = "tests", p.ScenarioID, p.TestIDs
	case controller.RunningPayload:
		env.Type, env.Test = "running", p.TestID
	case controller.SkipPayload:
		env.Type, env.Test, env.Reason = "skip", p.TestID, p.Reason
	case controller.FailPayload:
		env.Type, env.Test, env.Reason = "fail", p.TestID, p.Reason
	case controller.PassPayload:
		env.Type, env.Test, env.Reason = "pass", p.TestID, p.Message
	case controller.StartPayload:
		env.Type, env.Scenario = "start", p.ScenarioID
	case controller.FinishPayload:
		env.Type, env.Scenario, env.Result, env.Reason = "finish", p.ScenarioID, p.Code, p.Reason
	default:
		return fmt.Errorf("interfaceproto: unhandled broadcast payload %T", p)
	}

	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
