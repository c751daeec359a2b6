package motor

import (
	"fmt"
	"math"
	"time"

	"github.com/edgeflow/roverctl/internal/hal"
	"go.uber.org/zap"
)

// PCA9685 register map, per the chip datasheet and the reference I2C
// sequence this driver is ported from.
const (
	regMode1    = 0x00
	regMode2    = 0x01
	regPrescale = 0xFE
	regLed0OnL  = 0x06

	mode1AutoIncrement = 0x20
	mode1AllCall       = 0x01
	mode1Sleep         = 0x10
	mode1Restart       = 0x80
	mode2OutDrv        = 0x04 // totem-pole output
)

const i2cClockHz = 25_000_000
const pwmResolution = 4096

// PWMDriver programs per-channel PWM duty cycles on a 16-channel
// controller.
type PWMDriver interface {
	SetFrequency(hz float64) error
	SetDutyCycle(channel int, duty uint16) error
}

// PCA9685 drives a real PCA9685 over an I2C bus.
type PCA9685 struct {
	bus  hal.I2CProvider
	addr byte
	log  *zap.Logger
}

// NewPCA9685 initializes the chip: auto-increment enabled, output mode set
// to totem-pole, sleep cleared.
func NewPCA9685(bus hal.I2CProvider, addr byte, log *zap.Logger) (*PCA9685, error) {
	p := &PCA9685{bus: bus, addr: addr, log: log}

	mode1 := byte(mode1AllCall | mode1AutoIncrement)
	if err := p.bus.WriteRegister(p.addr, regMode2, mode2OutDrv); err != nil {
		return nil, fmt.Errorf("pca9685: write mode2: %w", err)
	}
	if err := p.bus.WriteRegister(p.addr, regMode1, mode1); err != nil {
		return nil, fmt.Errorf("pca9685: write mode1: %w", err)
	}
	time.Sleep(6 * time.Millisecond)

	mode1 &^= mode1AllCall
	if err := p.bus.WriteRegister(p.addr, regMode1, mode1); err != nil {
		return nil, fmt.Errorf("pca9685: write mode1 (clear allcall): %w", err)
	}
	time.Sleep(6 * time.Millisecond)

	return p, nil
}

// SetFrequency programs the PWM frequency, required to be in [40, 1000] Hz.
// The chip must be put to sleep to reprogram its prescaler, then restored
// and restarted.
func (p *PCA9685) SetFrequency(hz float64) error {
	if hz < 40 || hz > 1000 {
		return fmt.Errorf("pca9685: frequency %v out of range [40,1000]", hz)
	}
	prescale := byte(math.Round(i2cClockHz/pwmResolution/hz) - 1)

	old, err := p.bus.ReadRegister(p.addr, regMode1, 1)
	if err != nil {
		return fmt.Errorf("pca9685: read mode1: %w", err)
	}
	oldMode := old[0]
	sleepMode := (oldMode & 0x7F) | mode1Sleep

	if err := p.bus.WriteRegister(p.addr, regMode1, sleepMode); err != nil {
		return fmt.Errorf("pca9685: enter sleep: %w", err)
	}
	if err := p.bus.WriteRegister(p.addr, regPrescale, prescale); err != nil {
		return fmt.Errorf("pca9685: write prescale: %w", err)
	}
	if err := p.bus.WriteRegister(p.addr, regMode1, oldMode); err != nil {
		return fmt.Errorf("pca9685: restore mode1: %w", err)
	}
	time.Sleep(6 * time.Millisecond)
	if err := p.bus.WriteRegister(p.addr, regMode1, oldMode|mode1Restart); err != nil {
		return fmt.Errorf("pca9685: restart: %w", err)
	}
	return nil
}

// SetDutyCycle writes a 12-bit duty cycle to channel: ON-count fixed at 0,
// OFF-count set to duty, across the four consecutive registers beginning
// at LED0_ON_L + 4*channel.
func (p *PCA9685) SetDutyCycle(channel int, duty uint16) error {
	if duty >= pwmResolution {
		return fmt.Errorf("pca9685: duty %d out of range [0,4096)", duty)
	}
	base := byte(regLed0OnL + 4*channel)
	if err := p.bus.WriteRegister(p.addr, base+0, 0); err != nil {
		return err
	}
	if err := p.bus.WriteRegister(p.addr, base+1, 0); err != nil {
		return err
	}
	if err := p.bus.WriteRegister(p.addr, base+2, byte(duty&0xFF)); err != nil {
		return err
	}
	if err := p.bus.WriteRegister(p.addr, base+3, byte(duty>>8)); err != nil {
		return err
	}
	return nil
}

// NoPWM is the null-hardware PWM driver: every call logs and succeeds,
// matching the HardwareAbsent contract so Move/Stop commands keep updating
// MoveState and emitting telemetry without a real controller attached.
type NoPWM struct {
	log *zap.Logger
}

func NewNoPWM(log *zap.Logger) *NoPWM {
	return &NoPWM{log: log}
}

func (n *NoPWM) SetFrequency(hz float64) error {
	n.log.Debug("pwm absent: would set frequency", zap.Float64("hz", hz))
	return nil
}

func (n *NoPWM) SetDutyCycle(channel int, duty uint16) error {
	n.log.Debug("pwm absent: would set duty cycle", zap.Int("channel", channel), zap.Uint16("duty", duty))
	return nil
}
