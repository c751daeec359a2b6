package hal

import "sync"

// NullHAL backs every provider with no-ops that log nothing: GPIO writes
// are only remembered so DigitalRead returns them, I2C reads return zeroed
// bytes, and serial reads return no data. Used whenever the I2C bus cannot
// be opened or the PCA9685 probe at startup returns ErrHardwareAbsent;
// cmd/roverctl then drives the bridge with the motor package's logging
// NoPWM driver, so the runtime keeps accepting commands and emitting
// events on a workstation with no robot attached.
type NullHAL struct {
	gpio   *nullGPIO
	i2c    *nullI2C
	serial *nullSerial
}

func NewNullHAL() *NullHAL {
	return &NullHAL{
		gpio:   &nullGPIO{pins: make(map[int]bool)},
		i2c:    &nullI2C{},
		serial: &nullSerial{},
	}
}

func (n *NullHAL) GPIO() GPIOProvider     { return n.gpio }
func (n *NullHAL) I2C() I2CProvider       { return n.i2c }
func (n *NullHAL) Serial() SerialProvider { return n.serial }
func (n *NullHAL) Present() bool          { return false }
func (n *NullHAL) Close() error           { return nil }

type nullGPIO struct {
	mu   sync.Mutex
	pins map[int]bool
}

func (g *nullGPIO) SetMode(pin int, mode PinMode) error { return nil }

func (g *nullGPIO) DigitalWrite(pin int, value bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pins[pin] = value
	return nil
}

func (g *nullGPIO) DigitalRead(pin int) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pins[pin], nil
}

func (g *nullGPIO) WatchEdge(pin int, edge EdgeMode, callback func(pin int, value bool)) error {
	return nil
}

func (g *nullGPIO) Close() error { return nil }

type nullI2C struct{}

func (i *nullI2C) WriteRegister(addr byte, register byte, value byte) error { return nil }

func (i *nullI2C) ReadRegister(addr byte, register byte, length int) ([]byte, error) {
	return make([]byte, length), nil
}

func (i *nullI2C) Close() error { return nil }

type nullSerial struct{}

func (s *nullSerial) Open(port string, baud int) error      { return nil }
func (s *nullSerial) Read(buf []byte) (int, error)          { return 0, nil }
func (s *nullSerial) Write(data []byte) (int, error)        { return len(data), nil }
func (s *nullSerial) Close() error                           { return nil }
