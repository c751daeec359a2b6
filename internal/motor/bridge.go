package motor

import (
	"github.com/edgeflow/roverctl/internal/hal"
	"go.uber.org/zap"
)

// Wiring is the fixed hardware pin/channel assignment. All fields are
// overridable via configuration; the zero value is not a valid Wiring.
type Wiring struct {
	LeftIN1, LeftIN2   int
	RightIN3, RightIN4 int
	LeftChannel        int
	RightChannel       int
}

// DefaultWiring is the fixed wiring the spec mandates: Left IN1=6, IN2=5,
// Right IN3=27, IN4=17, Left PWM channel 0, Right PWM channel 1.
func DefaultWiring() Wiring {
	return Wiring{
		LeftIN1: 6, LeftIN2: 5,
		RightIN3: 27, RightIN4: 17,
		LeftChannel:  0,
		RightChannel: 1,
	}
}

// Bridge is the motor controller's sole I/O collaborator: direction pins
// plus the PWM duty-cycle channel for each side.
type Bridge interface {
	SetDirection(side Side, dir BridgeDirection) error
	SetSpeed(side Side, speedPercent float32) error
	Stop() error
}

// PCA9685Bridge drives two H-bridge sides through sysfs GPIO direction
// pins and PCA9685 PWM channels. When the PWM controller was absent at
// startup (hal.ErrHardwareAbsent), pwm is a NoPWM, so SetSpeed and Stop
// write nothing and only log. SetDirection is not logged: it still writes
// through the GPIO provider it was given (with a NullHAL, that provider
// only records the level in memory).
type PCA9685Bridge struct {
	gpio   hal.GPIOProvider
	pwm    PWMDriver
	wiring Wiring
	log    *zap.Logger
}

// NewBridge wires the GPIO provider and PWM driver together and puts all
// four direction pins into output mode.
func NewBridge(gpio hal.GPIOProvider, pwm PWMDriver, wiring Wiring, log *zap.Logger) (*PCA9685Bridge, error) {
	b := &PCA9685Bridge{gpio: gpio, pwm: pwm, wiring: wiring, log: log}
	for _, pin := range []int{wiring.LeftIN1, wiring.LeftIN2, wiring.RightIN3, wiring.RightIN4} {
		if err := gpio.SetMode(pin, hal.Output); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *PCA9685Bridge) pins(side Side) (a, c int) {
	if side == SideLeft {
		return b.wiring.LeftIN1, b.wiring.LeftIN2
	}
	return b.wiring.RightIN3, b.wiring.RightIN4
}

func (b *PCA9685Bridge) channel(side Side) int {
	if side == SideLeft {
		return b.wiring.LeftChannel
	}
	return b.wiring.RightChannel
}

// SetDirection drives the side's direction pins: Forward sets the first
// pin high and the second low, Backward the inverse.
func (b *PCA9685Bridge) SetDirection(side Side, dir BridgeDirection) error {
	first, second := b.pins(side)
	high, low := true, false
	if dir == BridgeBackward {
		high, low = false, true
	}
	if err := b.gpio.DigitalWrite(first, high); err != nil {
		b.log.Warn("direction pin write failed", zap.Int("pin", first), zap.Error(err))
		return err
	}
	if err := b.gpio.DigitalWrite(second, low); err != nil {
		b.log.Warn("direction pin write failed", zap.Int("pin", second), zap.Error(err))
		return err
	}
	return nil
}

// SetSpeed converts a percent [0,100] to a 12-bit PWM duty cycle and writes
// it to the side's channel. The 18% floor on the scaled speed ensures the
// motor overcomes stiction even at a commanded 0%.
func (b *PCA9685Bridge) SetSpeed(side Side, speedPercent float32) error {
	scaled := speedPercent/100*82 + 18
	duty := uint16(4095 * scaled / 100)
	if err := b.pwm.SetDutyCycle(b.channel(side), duty); err != nil {
		b.log.Warn("pwm write failed", zap.Int("channel", b.channel(side)), zap.Error(err))
		return err
	}
	return nil
}

// Stop writes zero duty to both channels; direction pins are left
// unchanged.
func (b *PCA9685Bridge) Stop() error {
	var firstErr error
	if err := b.pwm.SetDutyCycle(b.wiring.LeftChannel, 0); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := b.pwm.SetDutyCycle(b.wiring.RightChannel, 0); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
