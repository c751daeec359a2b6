//go:build !linux

package hal

import "fmt"

// SysfsGPIO is unavailable outside Linux; NewSysfsGPIO returns a provider
// whose methods all fail, so non-Linux dev builds still link while making
// it obvious a real board is required at runtime.
type SysfsGPIO struct{}

func NewSysfsGPIO() *SysfsGPIO {
	return &SysfsGPIO{}
}

var errSysfsUnsupported = fmt.Errorf("hal: sysfs GPIO is only available on linux")

func (g *SysfsGPIO) SetMode(pin int, mode PinMode) error {
	return errSysfsUnsupported
}

func (g *SysfsGPIO) DigitalWrite(pin int, value bool) error {
	return errSysfsUnsupported
}

func (g *SysfsGPIO) DigitalRead(pin int) (bool, error) {
	return false, errSysfsUnsupported
}

func (g *SysfsGPIO) WatchEdge(pin int, edge EdgeMode, callback func(pin int, value bool)) error {
	return errSysfsUnsupported
}

func (g *SysfsGPIO) Close() error {
	return nil
}
