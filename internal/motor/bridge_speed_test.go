package motor

import (
	"testing"

	"github.com/edgeflow/roverctl/internal/hal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDutyPWM struct {
	duties map[int]uint16
}

func newFakeDutyPWM() *fakeDutyPWM {
	return &fakeDutyPWM{duties: make(map[int]uint16)}
}

func (f *fakeDutyPWM) SetFrequency(hz float64) error { return nil }

func (f *fakeDutyPWM) SetDutyCycle(channel int, duty uint16) error {
	f.duties[channel] = duty
	return nil
}

func TestBridge_SetSpeed_ScalesWithStictionFloor(t *testing.T) {
	h := hal.NewNullHAL()
	pwm := newFakeDutyPWM()
	b, err := NewBridge(h.GPIO(), pwm, DefaultWiring(), zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, b.SetSpeed(SideLeft, 0))
	// scaled = 0/100*82+18 = 18; duty = 4095*18/100 = 737 (int truncation)
	assert.Equal(t, uint16(4095*18/100), pwm.duties[0])

	require.NoError(t, b.SetSpeed(SideRight, 100))
	// scaled = 100/100*82+18 = 100; duty = 4095
	assert.Equal(t, uint16(4095), pwm.duties[1])
}

func TestBridge_Stop_ZeroesBothChannels(t *testing.T) {
	h := hal.NewNullHAL()
	pwm := newFakeDutyPWM()
	b, err := NewBridge(h.GPIO(), pwm, DefaultWiring(), zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, b.SetSpeed(SideLeft, 80))
	require.NoError(t, b.SetSpeed(SideRight, 80))
	require.NoError(t, b.Stop())

	assert.Equal(t, uint16(0), pwm.duties[0])
	assert.Equal(t, uint16(0), pwm.duties[1])
}

func TestBridge_SetDirection_DrivesPins(t *testing.T) {
	h := hal.NewNullHAL()
	pwm := newFakeDutyPWM()
	wiring := DefaultWiring()
	b, err := NewBridge(h.GPIO(), pwm, wiring, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, b.SetDirection(SideLeft, BridgeForward))
	in1, err := h.GPIO().DigitalRead(wiring.LeftIN1)
	require.NoError(t, err)
	in2, err := h.GPIO().DigitalRead(wiring.LeftIN2)
	require.NoError(t, err)
	assert.True(t, in1)
	assert.False(t, in2)

	require.NoError(t, b.SetDirection(SideLeft, BridgeBackward))
	in1, err = h.GPIO().DigitalRead(wiring.LeftIN1)
	require.NoError(t, err)
	in2, err = h.GPIO().DigitalRead(wiring.LeftIN2)
	require.NoError(t, err)
	assert.False(t, in1)
	assert.True(t, in2)
}
