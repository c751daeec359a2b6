package hal

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// PeriphI2C implements I2CProvider over a periph.io i2c.Bus, the same
// library the teacher uses for its I2CBusWrapper, minus the SPI half the
// robot wiring never needs.
type PeriphI2C struct {
	bus i2c.BusCloser
}

// OpenPeriphI2C initializes the periph.io host drivers and opens the named
// bus ("" selects the platform default, e.g. /dev/i2c-1 on a Raspberry Pi).
func OpenPeriphI2C(busName string) (*PeriphI2C, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("hal: init periph host: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("hal: open i2c bus %q: %w", busName, err)
	}
	return &PeriphI2C{bus: bus}, nil
}

func (p *PeriphI2C) WriteRegister(addr byte, register byte, value byte) error {
	dev := &i2c.Dev{Bus: p.bus, Addr: uint16(addr)}
	return dev.Tx([]byte{register, value}, nil)
}

func (p *PeriphI2C) ReadRegister(addr byte, register byte, length int) ([]byte, error) {
	dev := &i2c.Dev{Bus: p.bus, Addr: uint16(addr)}
	buf := make([]byte, length)
	if err := dev.Tx([]byte{register}, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (p *PeriphI2C) Close() error {
	return p.bus.Close()
}

// Probe performs a zero-length-read style check that the device at addr
// acknowledges the bus, used at startup to decide between BoardHAL and
// NullHAL (ErrHardwareAbsent).
func (p *PeriphI2C) Probe(addr byte) error {
	dev := &i2c.Dev{Bus: p.bus, Addr: uint16(addr)}
	buf := make([]byte, 1)
	if err := dev.Tx([]byte{0x00}, buf); err != nil {
		return fmt.Errorf("%w: %v", ErrHardwareAbsent, err)
	}
	return nil
}
