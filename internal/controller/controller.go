package controller

import (
	"time"

	"github.com/giantswarm/cfti/internal/command"
	"github.com/giantswarm/cfti/pkg/logging"
)

// busCapacity is the ring's bound (spec §4.C: "bounded ... (capacity = 4096 entries)").
const busCapacity = 4096

// Controller is the message broker described in spec.md §3/§4.C: a
// multi-producer/multi-consumer broadcast bus plus a single-consumer
// control funnel into the TestSet. It is small and cheap to copy by value
// into every loaded unit, mirroring the original's `#[derive(Clone)]
// pub struct Controller` ("cyclic ownership... reference-counted handle
// passed by value", spec.md §9).
type Controller struct {
	bus     *ring
	control *unboundedQueue
}

// New creates a Controller and starts its broker goroutine. Construction
// cannot fail in this port (the Rust ControllerError enum was already
// uninhabited), but the signature is kept so callers can treat Controller
// bring-up the same way they treat any other fallible startup step.
func New() (*Controller, error) {
	c := &Controller{
		bus:     newRing(busCapacity),
		control: newUnboundedQueue(),
	}
	go c.brokerLoop()
	return c, nil
}

// SetTestSetChannel is the late-binding hook spec.md §9 calls out: the
// TestSet cannot be constructed before the Controller (it needs a
// Controller handle to hand to every unit it loads), yet the Controller
// must eventually know where to forward commands. The broker stores ch the
// first time it arrives and forwards every subsequent translated command to it.
func (c *Controller) SetTestSetChannel(ch chan<- command.TestSet) {
	c.control.push(ControlMessage{
		MessageClass: "system",
		UnitID:       "none",
		UnitKind:     "none",
		Payload:      setTestSetChannel{ch},
	})
}

// setTestSetChannel is an internal-only control payload: it never appears
// on the wire and is handled specially by the broker before the public
// dispatch table runs, exactly as ControlMessageContents::SetTestsetChannel
// is special-cased in cfti::controller::Controller::controller_thread.
type setTestSetChannel struct{ ch chan<- command.TestSet }

func (setTestSetChannel) isControlPayload() {}

func (c *Controller) brokerLoop() {
	var testsetCh chan<- command.TestSet

	for {
		msg, ok := c.control.pop()
		if !ok {
			if testsetCh != nil {
				close(testsetCh)
			}
			c.bus.close()
			return
		}

		if set, isSet := msg.Payload.(setTestSetChannel); isSet {
			testsetCh = set.ch
			continue
		}

		if testsetCh == nil {
			logging.Warn("controller", "TestSet channel not yet set, dropping control message class=%s unit=%s", msg.MessageClass, msg.UnitID)
			continue
		}

		c.dispatch(msg, testsetCh)
	}
}

func (c *Controller) dispatch(msg ControlMessage, testsetCh chan<- command.TestSet) {
	switch p := msg.Payload.(type) {
	case LogControl:
		// Log is the one control payload that short-circuits the TestSet:
		// it is simply rebroadcast as a Log event.
		c.bus.publish(BroadcastMessage{
			MessageClass: msg.MessageClass,
			UnitID:       msg.UnitID,
			UnitKind:     msg.UnitKind,
			UnixSecs:     msg.UnixSecs,
			UnixNsecs:    msg.UnixNsecs,
			Payload:      LogPayload{Text: p.Text},
		})

	case GetJigControl:
		testsetCh <- command.DescribeJig{}

	case ScenarioControl:
		testsetCh <- command.AbortScenario{}
		testsetCh <- command.SetScenario{ScenarioID: p.ScenarioID}

	case HelloControl:
		testsetCh <- command.SetInterfaceHello{InterfaceID: msg.UnitID, Greeting: p.Greeting}

	case ShutdownControl:
		reason := "(no reason)"
		if p.Reason != nil {
			reason = *p.Reason
		}
		c.bus.publish(BroadcastMessage{
			MessageClass: msg.MessageClass,
			UnitID:       msg.UnitID,
			UnitKind:     msg.UnitKind,
			UnixSecs:     msg.UnixSecs,
			UnixNsecs:    msg.UnixNsecs,
			Payload:      ShutdownPayload{Reason: reason},
		})
		testsetCh <- command.Shutdown{Reason: reason}

	case PongControl:
		// Unimplemented in the original; reserved for a future challenge/response check.

	case StartScenarioControl:
		testsetCh <- command.StartScenario{ScenarioID: p.ScenarioID}

	case AbortTestsControl:
		testsetCh <- command.AbortTests{}

	case AdvanceScenarioControl:
		testsetCh <- command.AdvanceScenario{}

	case GetScenariosControl:
		testsetCh <- command.SendScenarios{}

	case GetTestsControl:
		testsetCh <- command.SendTests{ScenarioID: p.ScenarioID}

	default:
		logging.Warn("controller", "unhandled control payload %T", p)
	}
}

func stamp() (int64, int32) {
	now := time.Now()
	if now.Before(time.Unix(0, 0)) {
		return 0, 0
	}
	return now.Unix(), int32(now.Nanosecond())
}

// BroadcastClass publishes a broadcast with an explicit message class
// (cfti::controller::Controller::broadcast_class).
func (c *Controller) BroadcastClass(messageClass, unitID, unitKind string, payload BroadcastPayload) {
	secs, nsecs := stamp()
	c.bus.publish(BroadcastMessage{
		MessageClass: messageClass,
		UnitID:       unitID,
		UnitKind:     unitKind,
		UnixSecs:     secs,
		UnixNsecs:    nsecs,
		Payload:      payload,
	})
}

// Broadcast publishes a "standard" class broadcast.
func (c *Controller) Broadcast(unitID, unitKind string, payload BroadcastPayload) {
	c.BroadcastClass("standard", unitID, unitKind, payload)
}

// DebugUnit publishes a "debug-internal" class Log broadcast on behalf of a unit.
func (c *Controller) DebugUnit(unitID, unitKind, msg string) {
	c.BroadcastClass("debug-internal", unitID, unitKind, LogPayload{Text: msg})
}

// WarnUnit publishes a "warning" class Log broadcast on behalf of a unit.
func (c *Controller) WarnUnit(unitID, unitKind, msg string) {
	c.BroadcastClass("warning", unitID, unitKind, LogPayload{Text: msg})
}

// ControlClass sends a control message with an explicit message class
// (cfti::controller::Controller::control_class).
func (c *Controller) ControlClass(messageClass, unitID, unitKind string, payload ControlPayload) {
	secs, nsecs := stamp()
	c.control.push(ControlMessage{
		MessageClass: messageClass,
		UnitID:       unitID,
		UnitKind:     unitKind,
		UnixSecs:     secs,
		UnixNsecs:    nsecs,
		Payload:      payload,
	})
}

// Control sends a "standard" class control message.
func (c *Controller) Control(unitID, unitKind string, payload ControlPayload) {
	c.ControlClass("standard", unitID, unitKind, payload)
}

// Shutdown requests an orderly shutdown with the given human-readable reason.
func (c *Controller) Shutdown(reason string) {
	c.ControlClass("system", "none", "none", ShutdownControl{Reason: &reason})
}

// Close ends the control funnel. The broker, upon seeing EOF, closes the
// TestSet channel (signalling the engine to stop) and then the broadcast
// bus (signalling every subscriber to stop), in that order — matching
// "closing the control sender ends the broker... which in turn lets all
// subscribers drain and exit" (spec.md §4.C).
func (c *Controller) Close() {
	c.control.close()
}

// BroadcastHandler processes one broadcast message. Returning an error ends
// the subscription (spec.md §4.C: "If the handler returns an error, the
// subscriber thread emits one Log broadcast... and terminates").
type BroadcastHandler func(BroadcastMessage) error

// Listen spawns a subscriber goroutine that invokes handler for every
// broadcast until handler errors or the bus closes.
func (c *Controller) Listen(handler BroadcastHandler) {
	sub := c.bus.subscribe()
	go func() {
		for {
			msg, ok := sub.recv()
			if !ok {
				return
			}
			if err := handler(msg); err != nil {
				c.BroadcastClass("debug", "controller", "controller", LogPayload{
					Text: "Broadcast watcher returned an error: " + err.Error(),
				})
				return
			}
		}
	}()
}

// ListenLogs is Listen filtered to Log payloads only.
func (c *Controller) ListenLogs(handler func(BroadcastMessage, LogPayload) error) {
	c.Listen(func(msg BroadcastMessage) error {
		if log, ok := msg.Payload.(LogPayload); ok {
			return handler(msg, log)
		}
		return nil
	})
}
