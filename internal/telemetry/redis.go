package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/edgeflow/roverctl/internal/events"
)

// RedisConfig configures the Redis pub/sub sink.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// RedisSink publishes each event, JSON-encoded, onto a Redis pub/sub
// channel so other processes on the host or LAN can observe the runtime
// without opening the TCP/WebSocket operator interfaces. It satisfies
// events.Sink.
type RedisSink struct {
	client  *redis.Client
	channel string
	log     *zap.Logger
}

// NewRedis dials the Redis server named in cfg and pings it before
// returning.
func NewRedis(cfg RedisConfig, log *zap.Logger) (*RedisSink, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("telemetry: redis addr is required")
	}
	if cfg.Channel == "" {
		cfg.Channel = "roverctl:events"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("telemetry: redis ping failed: %w", err)
	}

	return &RedisSink{client: client, channel: cfg.Channel, log: log}, nil
}

// Publish implements events.Sink.
func (s *RedisSink) Publish(e events.TimedEvent) {
	payload, err := json.Marshal(e)
	if err != nil {
		s.log.Error("redis marshal failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		s.log.Warn("redis publish failed", zap.Error(err))
	}
}

// Close releases the underlying connection pool.
func (s *RedisSink) Close() error {
	return s.client.Close()
}
