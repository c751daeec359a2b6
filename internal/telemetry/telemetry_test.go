package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgeflow/roverctl/internal/events"
)

func TestNewInflux_RequiresURLAndToken(t *testing.T) {
	_, err := NewInflux(InfluxConfig{}, nil)
	assert.Error(t, err)
}

func TestNewRedis_RequiresAddr(t *testing.T) {
	_, err := NewRedis(RedisConfig{}, nil)
	assert.Error(t, err)
}

func TestEventToPoint_MotorRunStatsUsesLastCycle(t *testing.T) {
	te := events.TimedEvent{
		Time: 1000,
		Event: events.RunStats(events.MotorRunStats{
			Stats: []events.MotorRunStat{
				{SpeedBase: 50, SpeedSlave: 40, Error: 2},
				{SpeedBase: 52, SpeedSlave: 52, Error: 0},
			},
			P: 1, I: 0.1, D: 0.05,
		}),
	}

	p := eventToPoint("roverctl_events", te)
	require.NotNil(t, p)

	fields := map[string]interface{}{}
	for _, f := range p.FieldList() {
		fields[f.Key] = f.Value
	}
	assert.Equal(t, float64(52), fields["speed_slave"])
	assert.Equal(t, float64(0), fields["error"])
	assert.Equal(t, int64(2), fields["cycles"])
}

func TestEventToPoint_EmptyStatsYieldsNilPoint(t *testing.T) {
	te := events.TimedEvent{Event: events.RunStats(events.MotorRunStats{})}
	assert.Nil(t, eventToPoint("m", te))
}

func TestEventToPoint_LidarScanYieldsNilPoint(t *testing.T) {
	te := events.TimedEvent{Event: events.LidarScan(nil)}
	assert.Nil(t, eventToPoint("m", te))
}

func TestEventToPoint_EncoderTick(t *testing.T) {
	te := events.TimedEvent{Event: events.EncoderTick(events.WheelLeft)}
	p := eventToPoint("m", te)
	require.NotNil(t, p)
}
