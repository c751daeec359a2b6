// Package command decodes the inbound network JSON into the closed set of
// commands the core accepts. Decoding never reaches the motor controller on
// failure: a malformed line is logged and dropped here, so the core never
// observes malformed input (§7 of the wiring spec).
package command

import (
	"encoding/json"
	"fmt"
	"math"
)

// Direction is one of the four directions a move can run in.
type Direction string

const (
	Forward  Direction = "forward"
	Backward Direction = "backward"
	Right    Direction = "right"
	Left     Direction = "left"
)

func (d Direction) Valid() bool {
	switch d {
	case Forward, Backward, Right, Left:
		return true
	}
	return false
}

// MoveParams are the parameters of a "move" motor command.
type MoveParams struct {
	Speed     uint8     `json:"speed"`
	Direction Direction `json:"direction"`
	Ticks     uint32    `json:"ticks"`
	P         float32   `json:"p"`
	I         float32   `json:"i"`
	D         float32   `json:"d"`
}

// Validate checks the constraints §6 places on a move command's fields.
func (m MoveParams) Validate() error {
	if m.Speed > 100 {
		return fmt.Errorf("command: speed %d out of range [0,100]", m.Speed)
	}
	if !m.Direction.Valid() {
		return fmt.Errorf("command: invalid direction %q", m.Direction)
	}
	if m.Ticks == 0 {
		return fmt.Errorf("command: ticks must be > 0")
	}
	for name, v := range map[string]float32{"p": m.P, "i": m.I, "d": m.D} {
		if v != v || math.IsInf(float64(v), 0) { // NaN or +-Inf
			return fmt.Errorf("command: gain %s is not finite", name)
		}
	}
	return nil
}

// MotorCommand is the tagged union {"move": MoveParams} | "stop".
type MotorCommand struct {
	Move *MoveParams
	Stop bool
}

func (m MotorCommand) MarshalJSON() ([]byte, error) {
	if m.Stop {
		return json.Marshal("stop")
	}
	return json.Marshal(map[string]interface{}{"move": m.Move})
}

func (m *MotorCommand) UnmarshalJSON(data []byte) error {
	var tag string
	if err := json.Unmarshal(data, &tag); err == nil {
		if tag != "stop" {
			return fmt.Errorf("command: unknown motor command %q", tag)
		}
		m.Stop = true
		return nil
	}

	var obj struct {
		Move *MoveParams `json:"move"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("command: decode motor command: %w", err)
	}
	if obj.Move == nil {
		return fmt.Errorf("command: motor command object missing \"move\"")
	}
	if err := obj.Move.Validate(); err != nil {
		return err
	}
	m.Move = obj.Move
	return nil
}

// ArduinoCommand is the tagged union accepted by the co-processor link.
// "off" is the only variant the original protocol defines.
type ArduinoCommand struct {
	Off bool
}

func (a ArduinoCommand) MarshalJSON() ([]byte, error) {
	return json.Marshal("off")
}

func (a *ArduinoCommand) UnmarshalJSON(data []byte) error {
	var tag string
	if err := json.Unmarshal(data, &tag); err != nil {
		return fmt.Errorf("command: decode arduino command: %w", err)
	}
	if tag != "off" {
		return fmt.Errorf("command: unknown arduino command %q", tag)
	}
	a.Off = true
	return nil
}

// Command is the closed union of everything a client can send:
// {"motor": {"command": ...}} or {"arduino": {"command": ...}}.
type Command struct {
	Motor   *MotorCommand
	Arduino *ArduinoCommand
}

func (c Command) MarshalJSON() ([]byte, error) {
	if c.Motor != nil {
		return json.Marshal(map[string]interface{}{"motor": map[string]interface{}{"command": c.Motor}})
	}
	return json.Marshal(map[string]interface{}{"arduino": map[string]interface{}{"command": c.Arduino}})
}

func (c *Command) UnmarshalJSON(data []byte) error {
	var envelope struct {
		Motor *struct {
			Command MotorCommand `json:"command"`
		} `json:"motor"`
		Arduino *struct {
			Command ArduinoCommand `json:"command"`
		} `json:"arduino"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("command: decode envelope: %w", err)
	}
	switch {
	case envelope.Motor != nil:
		if envelope.Motor.Command.Move == nil && !envelope.Motor.Command.Stop {
			return fmt.Errorf("command: motor envelope missing \"command\"")
		}
		c.Motor = &envelope.Motor.Command
	case envelope.Arduino != nil:
		if !envelope.Arduino.Command.Off {
			return fmt.Errorf("command: arduino envelope missing \"command\"")
		}
		c.Arduino = &envelope.Arduino.Command
	default:
		return fmt.Errorf("command: envelope has neither \"motor\" nor \"arduino\"")
	}
	return nil
}

// Decode parses one line of inbound JSON into a Command.
func Decode(line []byte) (Command, error) {
	var c Command
	if err := json.Unmarshal(line, &c); err != nil {
		return Command{}, err
	}
	return c, nil
}
