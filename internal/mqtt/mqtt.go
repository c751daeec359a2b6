// Package mqtt publishes the event bus onto an MQTT broker. It is an
// optional telemetry fanout, disabled unless Config.BrokerURL is set: a
// field technician running roverctl standalone on the bench never pays for
// a broker connection they don't have.
package mqtt

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/edgeflow/roverctl/internal/events"
)

// Config configures the MQTT sink.
type Config struct {
	BrokerURL      string
	ClientID       string
	Topic          string
	QoS            byte
	Retain         bool
	Username       string
	Password       string
	KeepAlive      time.Duration
	ConnectTimeout time.Duration
}

// DefaultConfig returns sensible defaults; BrokerURL must still be set for
// the sink to be used.
func DefaultConfig() Config {
	return Config{
		ClientID:       fmt.Sprintf("roverctl_%d", time.Now().UnixNano()),
		Topic:          "roverctl/events",
		QoS:            0,
		KeepAlive:      60 * time.Second,
		ConnectTimeout: 10 * time.Second,
	}
}

// Sink publishes every TimedEvent it receives to the configured MQTT topic
// as JSON. It satisfies events.Sink.
type Sink struct {
	cfg       Config
	client    paho.Client
	log       *zap.Logger
	mu        sync.RWMutex
	connected bool
}

// New connects to the broker named in cfg and returns a ready Sink.
func New(cfg Config, log *zap.Logger) (*Sink, error) {
	if cfg.BrokerURL == "" {
		return nil, fmt.Errorf("mqtt: broker url is required")
	}

	s := &Sink{cfg: cfg, log: log}

	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.BrokerURL)
	opts.SetClientID(cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(cfg.KeepAlive)
	opts.SetConnectTimeout(cfg.ConnectTimeout)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetOnConnectHandler(func(paho.Client) {
		s.mu.Lock()
		s.connected = true
		s.mu.Unlock()
		s.log.Info("mqtt broker connected", zap.String("broker", cfg.BrokerURL))
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		s.mu.Lock()
		s.connected = false
		s.mu.Unlock()
		s.log.Warn("mqtt broker connection lost", zap.Error(err))
	})

	s.client = paho.NewClient(opts)
	token := s.client.Connect()
	token.Wait()
	if token.Error() != nil {
		return nil, fmt.Errorf("mqtt: connect failed: %w", token.Error())
	}

	return s, nil
}

// Publish implements events.Sink. Marshal failures and publish failures are
// logged rather than propagated, matching the runtime's other sinks, so a
// telemetry fanout failure never kills the controller. While connected,
// Publish waits up to 2s for the broker to acknowledge, blocking its caller
// for that long.
func (s *Sink) Publish(e events.TimedEvent) {
	payload, err := json.Marshal(e)
	if err != nil {
		s.log.Error("mqtt marshal failed", zap.Error(err))
		return
	}

	if !s.isConnected() {
		return
	}

	token := s.client.Publish(s.cfg.Topic, s.cfg.QoS, s.cfg.Retain, payload)
	if !token.WaitTimeout(2 * time.Second) {
		s.log.Warn("mqtt publish timed out")
		return
	}
	if token.Error() != nil {
		s.log.Warn("mqtt publish failed", zap.Error(token.Error()))
	}
}

func (s *Sink) isConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// Close disconnects from the broker, waiting up to 250ms for in-flight
// publishes to drain.
func (s *Sink) Close() error {
	if s.client != nil && s.client.IsConnected() {
		s.client.Disconnect(250)
	}
	return nil
}
