package motor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeI2C struct {
	regs map[byte]byte
}

func newFakeI2C() *fakeI2C {
	return &fakeI2C{regs: make(map[byte]byte)}
}

func (f *fakeI2C) WriteRegister(addr, register, value byte) error {
	f.regs[register] = value
	return nil
}

func (f *fakeI2C) ReadRegister(addr, register byte, length int) ([]byte, error) {
	out := make([]byte, length)
	for i := 0; i < length; i++ {
		out[i] = f.regs[register+byte(i)]
	}
	return out, nil
}

func (f *fakeI2C) Close() error { return nil }

func TestPCA9685_InitSetsAutoIncrementAndTotemPole(t *testing.T) {
	bus := newFakeI2C()
	_, err := NewPCA9685(bus, 0x40, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, byte(mode2OutDrv), bus.regs[regMode2])
	assert.Equal(t, byte(mode1AutoIncrement), bus.regs[regMode1])
}

func TestPCA9685_SetFrequency_Prescale(t *testing.T) {
	bus := newFakeI2C()
	p, err := NewPCA9685(bus, 0x40, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, p.SetFrequency(100))
	// round(25_000_000/4096/100) - 1 = round(61.035) - 1 = 60
	assert.Equal(t, byte(60), bus.regs[regPrescale])
}

func TestPCA9685_SetFrequency_RejectsOutOfRange(t *testing.T) {
	bus := newFakeI2C()
	p, err := NewPCA9685(bus, 0x40, zap.NewNop())
	require.NoError(t, err)

	assert.Error(t, p.SetFrequency(10))
	assert.Error(t, p.SetFrequency(2000))
}

func TestPCA9685_SetDutyCycle_WritesOnOffRegisters(t *testing.T) {
	bus := newFakeI2C()
	p, err := NewPCA9685(bus, 0x40, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, p.SetDutyCycle(1, 2048))

	base := byte(regLed0OnL + 4*1)
	assert.Equal(t, byte(0), bus.regs[base+0])
	assert.Equal(t, byte(0), bus.regs[base+1])
	assert.Equal(t, byte(2048&0xFF), bus.regs[base+2])
	assert.Equal(t, byte(2048>>8), bus.regs[base+3])
}

func TestPCA9685_SetDutyCycle_RejectsOutOfRange(t *testing.T) {
	bus := newFakeI2C()
	p, err := NewPCA9685(bus, 0x40, zap.NewNop())
	require.NoError(t, err)

	assert.Error(t, p.SetDutyCycle(0, 4096))
}

func TestNoPWM_NeverErrors(t *testing.T) {
	n := NewNoPWM(zap.NewNop())
	assert.NoError(t, n.SetFrequency(100))
	assert.NoError(t, n.SetDutyCycle(0, 4095))
}
