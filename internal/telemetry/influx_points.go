package telemetry

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/edgeflow/roverctl/internal/events"
)

// eventToPoint flattens a TimedEvent into a single InfluxDB point tagged by
// variant. A MotorRunStats event becomes one point holding its last cycle's
// values and the cycle count. Returns nil for a MotorRunStats with no
// cycles and for LIDAR scans, logs, generic messages and Arduino readings
// that carry neither power nor temperature.
func eventToPoint(measurement string, te events.TimedEvent) *write.Point {
	ts := time.UnixMilli(te.Time)
	e := te.Event

	switch {
	case e.MotorRunStats != nil:
		if len(e.MotorRunStats.Stats) == 0 {
			return nil
		}
		last := e.MotorRunStats.Stats[len(e.MotorRunStats.Stats)-1]
		return write.NewPoint(measurement,
			map[string]string{"variant": "motor_run_stats"},
			map[string]interface{}{
				"speed_base":  last.SpeedBase,
				"speed_slave": last.SpeedSlave,
				"error":       last.Error,
				"p_term":      last.PTerm,
				"i_term":      last.ITerm,
				"d_term":      last.DTerm,
				"cycles":      len(e.MotorRunStats.Stats),
			},
			ts,
		)
	case e.Arduino != nil && e.Arduino.Power != nil:
		return write.NewPoint(measurement,
			map[string]string{"variant": "arduino_power"},
			map[string]interface{}{
				"load_voltage": e.Arduino.Power.LoadVoltage,
				"current_ma":   e.Arduino.Power.CurrentMA,
			},
			ts,
		)
	case e.Arduino != nil && e.Arduino.Temp != nil:
		return write.NewPoint(measurement,
			map[string]string{"variant": "arduino_temp"},
			map[string]interface{}{
				"room":    e.Arduino.Temp.Room,
				"battery": e.Arduino.Temp.Battery,
			},
			ts,
		)
	case e.Encoder != nil:
		return write.NewPoint(measurement,
			map[string]string{"variant": "encoder", "wheel": string(e.Encoder.Wheel)},
			map[string]interface{}{"tick": 1},
			ts,
		)
	default:
		return nil
	}
}
