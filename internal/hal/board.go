package hal

// BoardHAL wires the sysfs GPIO provider, a periph.io I2C bus, and a
// go.bug.st/serial port together as the real-hardware HAL implementation.
type BoardHAL struct {
	gpio   GPIOProvider
	i2c    I2CProvider
	serial SerialProvider
}

// NewBoardHAL constructs a BoardHAL over an already-opened I2C bus. i2cBus
// may be nil for callers (tests, non-I2C-only setups) that don't need it.
func NewBoardHAL(i2cBus I2CProvider) *BoardHAL {
	return &BoardHAL{
		gpio:   NewSysfsGPIO(),
		i2c:    i2cBus,
		serial: NewBugstSerial(),
	}
}

func (b *BoardHAL) GPIO() GPIOProvider     { return b.gpio }
func (b *BoardHAL) I2C() I2CProvider       { return b.i2c }
func (b *BoardHAL) Serial() SerialProvider { return b.serial }
func (b *BoardHAL) Present() bool          { return true }

func (b *BoardHAL) Close() error {
	var firstErr error
	if err := b.gpio.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if b.i2c != nil {
		if err := b.i2c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := b.serial.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
