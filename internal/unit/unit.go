// Package unit defines the common shape every loaded CFTI unit (jig,
// logger, interface, trigger, test, scenario) embeds, mirroring
// cfti::types::unit::Unit and its SimpleUnit helper.
package unit

import (
	"fmt"

	"github.com/giantswarm/cfti/internal/controller"
)

// Kind names a unit's file extension bucket, e.g. "jig", "logger",
// "interface", "test", "trigger", "scenario".
type Kind string

const (
	KindJig       Kind = "jig"
	KindLogger    Kind = "logger"
	KindInterface Kind = "interface"
	KindTrigger   Kind = "trigger"
	KindTest      Kind = "test"
	KindScenario  Kind = "scenario"
)

// Base is embedded by every concrete unit type. It carries identity plus a
// Controller handle and supplies the default Debug/Warn/Log/Broadcast/Control
// helpers so concrete unit types never touch the bus directly
// (cfti::types::unit::SimpleUnit).
type Base struct {
	ID          string
	UnitKind    Kind
	Name        string
	Description string
	Ctl         *controller.Controller
}

// Identity returns the (id, kind) pair every broadcast/control envelope tags
// its origin with.
func (b *Base) Identity() (id, kind string) {
	return b.ID, string(b.UnitKind)
}

// Debug emits a formatted "debug-internal" class Log broadcast.
func (b *Base) Debug(format string, args ...interface{}) {
	b.Ctl.DebugUnit(b.ID, string(b.UnitKind), fmt.Sprintf(format, args...))
}

// Warn emits a formatted "warning" class Log broadcast.
func (b *Base) Warn(format string, args ...interface{}) {
	b.Ctl.WarnUnit(b.ID, string(b.UnitKind), fmt.Sprintf(format, args...))
}

// Log emits a formatted "standard" class Log broadcast — the channel
// loggers subscribe to for the unit's regular (non-debug) output.
func (b *Base) Log(format string, args ...interface{}) {
	b.Ctl.Broadcast(b.ID, string(b.UnitKind), controller.LogPayload{Text: fmt.Sprintf(format, args...)})
}

// Broadcast emits a "standard" class broadcast with an arbitrary payload.
func (b *Base) Broadcast(payload controller.BroadcastPayload) {
	b.Ctl.Broadcast(b.ID, string(b.UnitKind), payload)
}

// Control sends a "standard" class control message on the unit's behalf.
func (b *Base) Control(payload controller.ControlPayload) {
	b.Ctl.Control(b.ID, string(b.UnitKind), payload)
}

// String gives every unit a consistent log-friendly identifier, "kind:id".
func (b *Base) String() string {
	return string(b.UnitKind) + ":" + b.ID
}
