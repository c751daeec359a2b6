// Package lidar polls a spinning LIDAR over USB serial and publishes scan
// batches onto the event bus. No real LIDAR wire protocol ships with this
// runtime; the poller is structurally present but emits only empty scans,
// the same placeholder status the runtime assigns the IMU/compass/IR
// sensors.
package lidar

import (
	"context"
	"time"

	"github.com/edgeflow/roverctl/internal/events"
	"github.com/edgeflow/roverctl/internal/hal"
	"go.uber.org/zap"
)

// Poller periodically reads whatever bytes are available on the serial
// link and emits one (possibly empty) scan batch per tick.
type Poller struct {
	serial hal.SerialProvider
	bus    events.Sink
	period time.Duration
	log    *zap.Logger
}

func New(serial hal.SerialProvider, bus events.Sink, period time.Duration, log *zap.Logger) *Poller {
	return &Poller{serial: serial, bus: bus, period: period, log: log}
}

// Run ticks at p.period until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick()
		}
	}
}

func (p *Poller) tick() {
	buf := make([]byte, 256)
	n, err := p.serial.Read(buf)
	if err != nil {
		p.log.Debug("lidar: read failed", zap.Error(err))
		return
	}
	points := parseScan(buf[:n])
	p.bus.Publish(events.TimedEvent{Event: events.LidarScan(points), Time: time.Now().UnixMilli()})
}

// parseScan is a placeholder: no scan protocol is defined for this
// runtime, so every poll reports zero points.
func parseScan(data []byte) []events.LidarScanPoint {
	return nil
}
