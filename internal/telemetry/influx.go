// Package telemetry holds the optional time-series and pub/sub fanout
// sinks: InfluxDB for durable historical storage, Redis for fan-out to
// other processes on the same host/network. Both are off unless
// configured; a failed write is logged and dropped, after blocking the
// publisher for at most its 2s timeout.
package telemetry

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"go.uber.org/zap"

	"github.com/edgeflow/roverctl/internal/events"
)

// InfluxConfig configures the InfluxDB sink.
type InfluxConfig struct {
	URL         string
	Token       string
	Org         string
	Bucket      string
	Measurement string
}

// InfluxSink writes events as points, tagged with their variant, to an
// InfluxDB bucket. It satisfies events.Sink.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      *zap.Logger
	cfg      InfluxConfig
}

// NewInflux connects to the InfluxDB instance named in cfg and verifies
// its health before returning.
func NewInflux(cfg InfluxConfig, log *zap.Logger) (*InfluxSink, error) {
	if cfg.URL == "" || cfg.Token == "" {
		return nil, fmt.Errorf("telemetry: influx url and token are required")
	}
	if cfg.Measurement == "" {
		cfg.Measurement = "roverctl_events"
	}

	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := client.Health(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("telemetry: influx health check failed: %w", err)
	}
	if health.Status != "pass" {
		client.Close()
		return nil, fmt.Errorf("telemetry: influx unhealthy: %s", health.Status)
	}

	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      log,
		cfg:      cfg,
	}, nil
}

// Publish implements events.Sink. Each event that eventToPoint maps to a
// point is written as that single point; every other event is skipped.
func (s *InfluxSink) Publish(e events.TimedEvent) {
	point := eventToPoint(s.cfg.Measurement, e)
	if point == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.writeAPI.WritePoint(ctx, point); err != nil {
		s.log.Warn("influx write failed", zap.Error(err))
	}
}

// Close releases the underlying HTTP client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}
