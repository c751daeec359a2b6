// Package server implements the two network-facing collaborators named in
// the wiring spec: a TCP line protocol and a WebSocket channel. Both
// decode inbound Command JSON and route it to the motor controller or the
// Arduino link, and both register as events.Sink so every TimedEvent
// published on the bus reaches every connected operator.
package server

import (
	"fmt"

	"github.com/edgeflow/roverctl/internal/command"
	"github.com/edgeflow/roverctl/internal/motor"
)

// MotorSubmitter is the subset of *motor.Controller the router needs.
type MotorSubmitter interface {
	SubmitMove(motor.MoveCommand)
	SubmitStop()
}

// ArduinoSender is the subset of *arduino.Link the router needs.
type ArduinoSender interface {
	SendOff() error
}

// Router decodes one Command and dispatches it to the right collaborator.
type Router struct {
	motor   MotorSubmitter
	arduino ArduinoSender
}

func NewRouter(motor MotorSubmitter, arduino ArduinoSender) *Router {
	return &Router{motor: motor, arduino: arduino}
}

// Dispatch decodes line and routes the resulting command. A decode or
// validation failure is returned to the caller to log and drop; the core
// never sees it.
func (r *Router) Dispatch(line []byte) error {
	cmd, err := command.Decode(line)
	if err != nil {
		return err
	}

	switch {
	case cmd.Motor != nil:
		if cmd.Motor.Stop {
			r.motor.SubmitStop()
			return nil
		}
		m := cmd.Motor.Move
		r.motor.SubmitMove(motor.MoveCommand{
			Speed:     m.Speed,
			Direction: motor.Direction(m.Direction),
			Ticks:     m.Ticks,
			Gains:     motor.PidGains{P: m.P, I: m.I, D: m.D},
		})
		return nil
	case cmd.Arduino != nil:
		if cmd.Arduino.Off {
			return r.arduino.SendOff()
		}
		return nil
	default:
		return fmt.Errorf("server: command has no recognized collaborator")
	}
}
