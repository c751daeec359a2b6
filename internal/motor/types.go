// Package motor implements the closed-loop differential-drive motor
// controller: move lifecycle, PID trim, watchdog, and the bridge/PWM
// driver it steers.
package motor

import "github.com/edgeflow/roverctl/internal/events"

// Direction is the commanded rotational sense of a move.
type Direction string

const (
	Forward  Direction = "forward"
	Backward Direction = "backward"
	Right    Direction = "right"
	Left     Direction = "left"
)

// Side is one of the two independently driven wheels.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

// BridgeDirection is the electrical sense a side's H-bridge is driven in,
// independent of the commanded Direction: a Right turn drives the left
// side Forward and the right side Backward.
type BridgeDirection int

const (
	BridgeForward BridgeDirection = iota
	BridgeBackward
)

// sideDirections returns the per-side bridge direction for a commanded
// move direction, per the table in the motor controller's direction spec.
func sideDirections(d Direction) (left, right BridgeDirection) {
	switch d {
	case Forward:
		return BridgeForward, BridgeForward
	case Backward:
		return BridgeBackward, BridgeBackward
	case Right:
		return BridgeForward, BridgeBackward
	case Left:
		return BridgeBackward, BridgeForward
	default:
		return BridgeForward, BridgeForward
	}
}

// PidGains is an immutable triple of gains supplied per move. No per-cycle
// sample-time rescaling is applied: the caller supplies gains already
// scaled for their cadence.
type PidGains struct {
	P, I, D float32
}

// EncodersSnapshot is one tick report: left/right tick counts accumulated
// since the previous snapshot, and the time span they cover.
type EncodersSnapshot struct {
	LeftTicks  uint8
	RightTicks uint8
	DurationMs int32
}

// BaseWheel is the reference wheel, held at the commanded base speed by
// convention the right wheel.
type BaseWheel struct {
	CurrentTicks int32
	Speed        float32
}

// SlaveWheel is the wheel trimmed by the PID step, by convention the left
// wheel.
type SlaveWheel struct {
	ITerm        float32
	LastTicks    *int32
	CurrentTicks int32
	Speed        float32
}

// MotorRunStat is one telemetry record produced per control cycle.
type MotorRunStat struct {
	SpeedBase  float32
	SpeedSlave float32
	TicksBase  int32
	TicksSlave int32
	Error      float32
	PTerm      float32
	ITerm      float32
	DTerm      float32
	Duration   int32
}

func (s MotorRunStat) toEvent() events.MotorRunStat {
	return events.MotorRunStat{
		SpeedBase:  s.SpeedBase,
		SpeedSlave: s.SpeedSlave,
		TicksBase:  s.TicksBase,
		TicksSlave: s.TicksSlave,
		Error:      s.Error,
		PTerm:      s.PTerm,
		ITerm:      s.ITerm,
		DTerm:      s.DTerm,
		Duration:   s.Duration,
	}
}

// MoveState is the controller's sole piece of mutable state, created once
// at construction and reset by every Move command.
type MoveState struct {
	Direction        Direction
	IsMoving         bool
	HeartbeatTouchMs int64
	TicksToMove      int32
	TicksMoved       int32
	Pid              PidGains
	BaseSpeed        uint8
	WheelSlave       SlaveWheel
	WheelBase        BaseWheel
	Stats            []MotorRunStat
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
