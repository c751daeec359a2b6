// Package config loads the runtime's configuration: hardware wiring
// overrides, watchdog/heartbeat timing, network listener addresses,
// serial port paths, and optional telemetry sinks. YAML-backed via
// spf13/viper, overridable by ROVERCTL_-prefixed environment variables,
// and live-reloadable via fsnotify while the process runs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all configuration for the runtime.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Wiring    WiringConfig    `mapstructure:"wiring"`
	Motor     MotorConfig     `mapstructure:"motor"`
	Serial    SerialConfig    `mapstructure:"serial"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Logger    LoggerConfig    `mapstructure:"logger"`
}

// ServerConfig contains the TCP and WebSocket listener addresses.
type ServerConfig struct {
	TCPAddr string `mapstructure:"tcp_addr"`
	WSAddr  string `mapstructure:"ws_addr"`
}

// WiringConfig overrides the fixed hardware pin/bus assignment in §6.
type WiringConfig struct {
	I2CBus       string `mapstructure:"i2c_bus"`
	PWMAddr      int    `mapstructure:"pwm_addr"`
	PWMFrequency int    `mapstructure:"pwm_frequency"`
	LeftChannel  int    `mapstructure:"left_channel"`
	RightChannel int    `mapstructure:"right_channel"`
	LeftIN1      int    `mapstructure:"left_in1"`
	LeftIN2      int    `mapstructure:"left_in2"`
	RightIN3     int    `mapstructure:"right_in3"`
	RightIN4     int    `mapstructure:"right_in4"`
	EncoderLeft  int    `mapstructure:"encoder_left"`
	EncoderRight int    `mapstructure:"encoder_right"`
}

// MotorConfig holds the watchdog and heartbeat timing.
type MotorConfig struct {
	WatchdogTimeoutMs int    `mapstructure:"watchdog_timeout_ms"`
	HeartbeatPeriod   string `mapstructure:"heartbeat_period"`
}

// SerialConfig holds the Arduino and LIDAR serial port settings.
type SerialConfig struct {
	ArduinoPort string `mapstructure:"arduino_port"`
	ArduinoBaud int    `mapstructure:"arduino_baud"`
	LidarPort   string `mapstructure:"lidar_port"`
	LidarBaud   int    `mapstructure:"lidar_baud"`
}

// TelemetryConfig enables the optional fanout sinks. Each is off unless
// its address/URL is non-empty.
type TelemetryConfig struct {
	MQTTBrokerURL string `mapstructure:"mqtt_broker_url"`
	InfluxURL     string `mapstructure:"influx_url"`
	InfluxToken   string `mapstructure:"influx_token"`
	InfluxBucket  string `mapstructure:"influx_bucket"`
	InfluxOrg     string `mapstructure:"influx_org"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisChannel  string `mapstructure:"redis_channel"`
}

// LoggerConfig contains logging settings.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	LogDir string `mapstructure:"log_dir"`
}

// Load reads configuration from file and environment variables. An empty
// configPath falls back to ./configs, the working directory, and
// ~/.roverctl, in that order, and tolerates no config file existing.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		v.AddConfigPath(getConfigDir())
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvPrefix("ROVERCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// WatchAndReload calls onChange with the freshly reloaded Config whenever
// the config file changes on disk, so wiring overrides can be edited live
// without a restart.
func WatchAndReload(configPath string, onChange func(*Config)) error {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	v.SetEnvPrefix("ROVERCTL")
	v.AutomaticEnv()

	v.OnConfigChange(func(e fsnotify.Event) {
		var cfg Config
		if err := v.Unmarshal(&cfg); err != nil {
			return
		}
		onChange(&cfg)
	})
	v.WatchConfig()
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.tcp_addr", "0.0.0.0:5000")
	v.SetDefault("server.ws_addr", "0.0.0.0:5001")

	v.SetDefault("wiring.i2c_bus", "")
	v.SetDefault("wiring.pwm_addr", 0x40)
	v.SetDefault("wiring.pwm_frequency", 100)
	v.SetDefault("wiring.left_channel", 0)
	v.SetDefault("wiring.right_channel", 1)
	v.SetDefault("wiring.left_in1", 6)
	v.SetDefault("wiring.left_in2", 5)
	v.SetDefault("wiring.right_in3", 27)
	v.SetDefault("wiring.right_in4", 17)
	v.SetDefault("wiring.encoder_left", 23)
	v.SetDefault("wiring.encoder_right", 22)

	v.SetDefault("motor.watchdog_timeout_ms", 2000)
	v.SetDefault("motor.heartbeat_period", "1s")

	v.SetDefault("serial.arduino_port", "/dev/ttyUSB0")
	v.SetDefault("serial.arduino_baud", 115200)
	v.SetDefault("serial.lidar_port", "/dev/ttyUSB1")
	v.SetDefault("serial.lidar_baud", 115200)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.log_dir", "./logs")
}

func getConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".roverctl")
}
