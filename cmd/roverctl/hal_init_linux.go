//go:build linux
// +build linux

package main

import (
	"os/exec"

	"go.uber.org/zap"

	"github.com/edgeflow/roverctl/internal/config"
	"github.com/edgeflow/roverctl/internal/hal"
)

// probeI2CBus shells out to i2cdetect as a best-effort boot diagnostic,
// matching the original runtime's startup behavior. Failure (binary
// missing, permission denied) is logged, never fatal.
func probeI2CBus(busNumber string, log *zap.Logger) {
	out, err := exec.Command("i2cdetect", "-y", busNumber).Output()
	if err != nil {
		log.Debug("i2cdetect probe unavailable", zap.Error(err))
		return
	}
	log.Info("i2cdetect boot probe", zap.String("output", string(out)))
}

// initHAL opens the real I2C bus and probes the PCA9685 address. If either
// the bus or the probe fails, it falls back to NullHAL rather than treat a
// missing robot as fatal: roverctl should boot and accept commands even on
// a bench with no hardware attached.
func initHAL(cfg *config.Config, log *zap.Logger) hal.HAL {
	probeI2CBus("1", log)

	i2cBus, err := hal.OpenPeriphI2C(cfg.Wiring.I2CBus)
	if err != nil {
		log.Warn("i2c bus unavailable, using null HAL", zap.Error(err))
		return hal.NewNullHAL()
	}

	if err := i2cBus.Probe(byte(cfg.Wiring.PWMAddr)); err != nil {
		log.Warn("pwm controller not detected, using null HAL", zap.Error(err))
		i2cBus.Close()
		return hal.NewNullHAL()
	}

	return hal.NewBoardHAL(i2cBus)
}
