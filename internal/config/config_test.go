package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithNoConfigFile(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(cwd)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:5000", cfg.Server.TCPAddr)
	assert.Equal(t, 100, cfg.Wiring.PWMFrequency)
	assert.Equal(t, 2000, cfg.Motor.WatchdogTimeoutMs)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("wiring:\n  pwm_frequency: 200\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Wiring.PWMFrequency)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(cwd)

	t.Setenv("ROVERCTL_MOTOR_WATCHDOG_TIMEOUT_MS", "5000")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Motor.WatchdogTimeoutMs)
}
