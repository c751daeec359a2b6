// Package sensors models the IMU, compass, and IR collaborators the
// runtime declares but does not yet load-bear: each is a periodic producer
// that emits a Generic event at a slow cadence, mirroring the original
// system's unimplemented axl/gyro/ir sensors.
package sensors

import (
	"context"
	"time"

	"github.com/edgeflow/roverctl/internal/events"
)

// Placeholder is a named periodic no-op sensor producer.
type Placeholder struct {
	name   string
	bus    events.Sink
	period time.Duration
}

func NewPlaceholder(name string, bus events.Sink, period time.Duration) *Placeholder {
	return &Placeholder{name: name, bus: bus, period: period}
}

// Run ticks at p.period until ctx is cancelled, emitting a Generic event
// naming this sensor.
func (p *Placeholder) Run(ctx context.Context) {
	ticker := time.NewTicker(p.period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.bus.Publish(events.TimedEvent{
				Event: events.Generic(p.name + " sensor message"),
				Time:  time.Now().UnixMilli(),
			})
		}
	}
}

// IMU, Compass, and IR are the three placeholder sensors the runtime
// declares.
func IMU(bus events.Sink, period time.Duration) *Placeholder {
	return NewPlaceholder("imu", bus, period)
}

func Compass(bus events.Sink, period time.Duration) *Placeholder {
	return NewPlaceholder("compass", bus, period)
}

func IR(bus events.Sink, period time.Duration) *Placeholder {
	return NewPlaceholder("ir", bus, period)
}
