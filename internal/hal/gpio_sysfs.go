//go:build linux

package hal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// SysfsGPIO implements GPIOProvider over the kernel sysfs GPIO interface
// (/sys/class/gpio/gpioN/...): export, direction, value. Per §6 of the
// wiring spec, all direction and encoder pins go through this path rather
// than a memory-mapped register driver, so the runtime works unmodified
// across any board whose kernel exposes sysfs GPIO.
type SysfsGPIO struct {
	mu       sync.Mutex
	exported map[int]bool
	watchers map[int]context.CancelFunc
}

const sysfsGPIORoot = "/sys/class/gpio"

// NewSysfsGPIO returns a GPIOProvider backed by the sysfs GPIO tree. It does
// not itself verify the tree exists; the first SetMode call will fail if
// sysfs GPIO support is missing from the running kernel.
func NewSysfsGPIO() *SysfsGPIO {
	return &SysfsGPIO{
		exported: make(map[int]bool),
		watchers: make(map[int]context.CancelFunc),
	}
}

func (g *SysfsGPIO) exportLocked(pin int) error {
	if g.exported[pin] {
		return nil
	}
	pinDir := filepath.Join(sysfsGPIORoot, fmt.Sprintf("gpio%d", pin))
	if _, err := os.Stat(pinDir); err != nil {
		if err := os.WriteFile(filepath.Join(sysfsGPIORoot, "export"), []byte(strconv.Itoa(pin)), 0644); err != nil {
			return fmt.Errorf("export pin %d: %w", pin, err)
		}
		// The kernel creates the gpioN directory and udev rules asynchronously.
		for i := 0; i < 50; i++ {
			if _, statErr := os.Stat(pinDir); statErr == nil {
				break
			}
			time.Sleep(10 * time.Millisecond)
		}
	}
	g.exported[pin] = true
	return nil
}

func (g *SysfsGPIO) SetMode(pin int, mode PinMode) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.exportLocked(pin); err != nil {
		return err
	}

	direction := "in"
	if mode == Output {
		direction = "out"
	}
	path := filepath.Join(sysfsGPIORoot, fmt.Sprintf("gpio%d", pin), "direction")
	if err := os.WriteFile(path, []byte(direction), 0644); err != nil {
		return fmt.Errorf("set direction on pin %d: %w", pin, err)
	}
	return nil
}

func (g *SysfsGPIO) DigitalWrite(pin int, value bool) error {
	v := "0"
	if value {
		v = "1"
	}
	path := filepath.Join(sysfsGPIORoot, fmt.Sprintf("gpio%d", pin), "value")
	if err := os.WriteFile(path, []byte(v), 0644); err != nil {
		return fmt.Errorf("write pin %d: %w", pin, err)
	}
	return nil
}

func (g *SysfsGPIO) DigitalRead(pin int) (bool, error) {
	path := filepath.Join(sysfsGPIORoot, fmt.Sprintf("gpio%d", pin), "value")
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read pin %d: %w", pin, err)
	}
	return strings.TrimSpace(string(data)) == "1", nil
}

// WatchEdge exports the pin for input, sets its sysfs edge trigger, and
// starts a goroutine that polls the value file for transitions, invoking
// callback on every one matching edge. sysfs GPIO supports blocking poll(2)
// on the value file for true interrupt delivery; the portable poll-loop
// below is used here so the provider has no cgo/epoll dependency, at the
// cost of up to one poll interval (1ms) of added latency per edge.
func (g *SysfsGPIO) WatchEdge(pin int, edge EdgeMode, callback func(pin int, value bool)) error {
	g.mu.Lock()
	if cancel, ok := g.watchers[pin]; ok {
		cancel()
		delete(g.watchers, pin)
	}
	if err := g.exportLocked(pin); err != nil {
		g.mu.Unlock()
		return err
	}
	g.mu.Unlock()

	if err := g.SetMode(pin, Input); err != nil {
		return err
	}

	edgeName := "none"
	switch edge {
	case EdgeRising:
		edgeName = "rising"
	case EdgeFalling:
		edgeName = "falling"
	case EdgeBoth:
		edgeName = "both"
	}
	edgePath := filepath.Join(sysfsGPIORoot, fmt.Sprintf("gpio%d", pin), "edge")
	if err := os.WriteFile(edgePath, []byte(edgeName), 0644); err != nil {
		return fmt.Errorf("set edge on pin %d: %w", pin, err)
	}

	if edge == EdgeNone {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	g.mu.Lock()
	g.watchers[pin] = cancel
	g.mu.Unlock()

	last, _ := g.DigitalRead(pin)
	go func() {
		ticker := time.NewTicker(time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				val, err := g.DigitalRead(pin)
				if err != nil || val == last {
					continue
				}
				rising := !last && val
				last = val
				if (edge == EdgeRising && rising) || (edge == EdgeFalling && !rising) || edge == EdgeBoth {
					callback(pin, val)
				}
			}
		}
	}()

	return nil
}

func (g *SysfsGPIO) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, cancel := range g.watchers {
		cancel()
	}
	g.watchers = make(map[int]context.CancelFunc)

	var firstErr error
	for pin := range g.exported {
		path := filepath.Join(sysfsGPIORoot, "unexport")
		if err := os.WriteFile(path, []byte(strconv.Itoa(pin)), 0644); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	g.exported = make(map[int]bool)
	return firstErr
}
