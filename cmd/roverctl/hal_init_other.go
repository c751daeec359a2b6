//go:build !linux
// +build !linux

package main

import (
	"go.uber.org/zap"

	"github.com/edgeflow/roverctl/internal/config"
	"github.com/edgeflow/roverctl/internal/hal"
)

// initHAL always returns NullHAL on non-Linux platforms: the sysfs GPIO
// tree this runtime drives is Linux-only.
func initHAL(_ *config.Config, log *zap.Logger) hal.HAL {
	log.Info("non-linux platform detected, using null HAL")
	return hal.NewNullHAL()
}
