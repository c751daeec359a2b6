package motor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Testable property 3: PID bound.
func TestPidStep_OutputBounded(t *testing.T) {
	base := BaseWheel{CurrentTicks: 10, Speed: 70}
	slave := SlaveWheel{CurrentTicks: 0, Speed: 70}

	next, _ := pidStep(base, slave, PidGains{P: 5, I: 5, D: 5}, 100)

	assert.GreaterOrEqual(t, next.Speed, float32(0))
	assert.LessOrEqual(t, next.Speed, float32(100))
}

// Testable property 5: derivative sign — two identical snapshots in a row
// yield d_term = 0, because the first establishes last_ticks and the
// second's input_delta is zero.
func TestPidStep_RepeatedIdenticalTicksZeroDerivative(t *testing.T) {
	base := BaseWheel{CurrentTicks: 5, Speed: 50}
	slave := SlaveWheel{CurrentTicks: 3, Speed: 50}

	next, _ := pidStep(base, slave, PidGains{P: 0, I: 0, D: 2}, 100)
	assert.Equal(t, int32(3), *next.LastTicks)

	slave2 := SlaveWheel{ITerm: next.ITerm, LastTicks: next.LastTicks, CurrentTicks: 3, Speed: next.Speed}
	_, stat := pidStep(base, slave2, PidGains{P: 0, I: 0, D: 2}, 100)

	assert.Equal(t, float32(0), stat.DTerm)
}

// Testable property 4: integral windup clamp is monotonically
// non-decreasing under constant positive error and saturates at
// 100 - base.speed.
func TestPidStep_IntegralSaturates(t *testing.T) {
	base := BaseWheel{CurrentTicks: 1, Speed: 90}
	slave := SlaveWheel{}

	var lastITerm float32 = -1
	for i := 0; i < 10; i++ {
		next, _ := pidStep(base, slave, PidGains{I: 100}, 100)
		assert.GreaterOrEqual(t, next.ITerm, lastITerm)
		lastITerm = next.ITerm
		slave = next
		slave.CurrentTicks = 0
	}
	assert.InDelta(t, 10, lastITerm, 0.0001)
}

// The pre-update i_term is used in the output expression, not the
// just-computed one — this is intentional per the reference PID design.
// With i_term starting at 0 and a large i gain, i_term_new jumps to 20
// while the output must still be computed from the pre-update value (0),
// giving next.speed = 50, not the 70 a post-update implementation would
// produce.
func TestPidStep_UsesPreUpdateITerm(t *testing.T) {
	base := BaseWheel{CurrentTicks: 2, Speed: 50}
	slave := SlaveWheel{ITerm: 0, CurrentTicks: 0}

	next, stat := pidStep(base, slave, PidGains{P: 0, I: 10, D: 0}, 100)

	assert.Equal(t, float32(20), stat.ITerm)
	assert.Equal(t, float32(50), next.Speed)
}
