package motor

// pidStep computes the next slave-wheel state and the telemetry record for
// one control cycle. This is a positional PID with conditional integral
// clamping and derivative-on-measurement; the pre-update i_term is used in
// the output expression intentionally — this is the behavior historical
// tuning depends on, not a bug.
func pidStep(base BaseWheel, slave SlaveWheel, gains PidGains, duration int32) (SlaveWheel, MotorRunStat) {
	errVal := float32(base.CurrentTicks) - float32(slave.CurrentTicks)
	outMin := -base.Speed
	outMax := 100 - base.Speed

	iTermNew := clamp(slave.ITerm+gains.I*errVal, outMin, outMax)

	var inputDelta float32
	if slave.LastTicks != nil {
		inputDelta = float32(slave.CurrentTicks) - float32(*slave.LastTicks)
	}

	outputRaw := gains.P*errVal + slave.ITerm - gains.D*inputDelta
	output := clamp(outputRaw, outMin, outMax)

	lastTicks := slave.CurrentTicks
	next := SlaveWheel{
		ITerm:        iTermNew,
		LastTicks:    &lastTicks,
		CurrentTicks: 0,
		Speed:        clamp(base.Speed+output, 0, 100),
	}

	stat := MotorRunStat{
		SpeedBase:  base.Speed,
		SpeedSlave: next.Speed,
		TicksBase:  base.CurrentTicks,
		TicksSlave: slave.CurrentTicks,
		Error:      errVal,
		PTerm:      gains.P * errVal,
		ITerm:      iTermNew,
		DTerm:      gains.D * inputDelta,
		Duration:   duration,
	}

	return next, stat
}
