// Package hal provides the hardware abstraction layer: GPIO, I2C and serial
// access for the robot's digital direction pins, PWM controller, and serial
// links. A real board backs these interfaces with the kernel sysfs GPIO
// interface and an I2C bus; NullHAL backs them with no-ops when the
// hardware probe at startup fails, so the control logic above never needs to
// know whether it is talking to silicon.
package hal

import (
	"errors"
	"fmt"
	"sync"
)

// ErrHardwareAbsent is returned (wrapped) by PeriphI2C.Probe when the PWM
// controller does not answer its I2C probe. Callers should fall back to NewNullHAL rather
// than treat this as fatal.
var ErrHardwareAbsent = errors.New("hal: hardware not present")

// PinMode is the electrical direction of a GPIO pin.
type PinMode int

const (
	Input PinMode = iota
	Output
)

// EdgeMode selects which transitions WatchEdge reports.
type EdgeMode int

const (
	EdgeNone EdgeMode = iota
	EdgeRising
	EdgeFalling
	EdgeBoth
)

// GPIOProvider is digital GPIO access: direction pins and encoder edges.
type GPIOProvider interface {
	// SetMode exports the pin (if needed) and sets its direction.
	SetMode(pin int, mode PinMode) error
	// DigitalWrite drives an output pin high or low.
	DigitalWrite(pin int, value bool) error
	// DigitalRead reads the current level of a pin.
	DigitalRead(pin int) (bool, error)
	// WatchEdge starts a goroutine that invokes callback on every matching
	// edge transition of pin. Safe to call once per pin; a second call
	// replaces the previous watcher.
	WatchEdge(pin int, edge EdgeMode, callback func(pin int, value bool)) error
	// Close releases any pins this provider exported.
	Close() error
}

// I2CProvider is register-level I2C access, used by the PWM driver to talk
// to the PCA9685.
type I2CProvider interface {
	// WriteRegister writes a single byte to register on the device at addr.
	WriteRegister(addr byte, register byte, value byte) error
	// ReadRegister reads length bytes starting at register on the device at addr.
	ReadRegister(addr byte, register byte, length int) ([]byte, error)
	// Close releases the bus.
	Close() error
}

// SerialProvider is a byte-oriented serial port, used for the Arduino
// co-processor link and the LIDAR.
type SerialProvider interface {
	Open(port string, baud int) error
	Read(buf []byte) (int, error)
	Write(data []byte) (int, error)
	Close() error
}

// HAL bundles the three providers the robot's drivers need.
type HAL interface {
	GPIO() GPIOProvider
	I2C() I2CProvider
	Serial() SerialProvider
	// Present reports whether this HAL is backed by real hardware.
	// cmd/roverctl consults this to choose between the PCA9685 PWM driver
	// and the logging no-op one, and whether to open dedicated serial ports.
	Present() bool
	Close() error
}

var (
	globalHAL HAL
	halMu     sync.RWMutex
)

// SetGlobal installs the process-wide HAL instance.
func SetGlobal(h HAL) {
	halMu.Lock()
	defer halMu.Unlock()
	globalHAL = h
}

// GetGlobal returns the process-wide HAL instance.
func GetGlobal() (HAL, error) {
	halMu.RLock()
	defer halMu.RUnlock()
	if globalHAL == nil {
		return nil, fmt.Errorf("hal: global HAL not initialized")
	}
	return globalHAL, nil
}
