package arduino

import (
	"sync"
	"testing"

	"github.com/edgeflow/roverctl/internal/events"
	"github.com/edgeflow/roverctl/internal/motor"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeSerial struct{}

func (f *fakeSerial) Open(port string, baud int) error   { return nil }
func (f *fakeSerial) Read(buf []byte) (int, error)       { return 0, nil }
func (f *fakeSerial) Write(data []byte) (int, error)     { return len(data), nil }
func (f *fakeSerial) Close() error                        { return nil }

type recordingSink struct {
	mu     sync.Mutex
	events []events.TimedEvent
}

func (s *recordingSink) Publish(e events.TimedEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

type recordingEncoderSink struct {
	mu    sync.Mutex
	snaps []motor.EncodersSnapshot
}

func (s *recordingEncoderSink) SubmitEncoders(snap motor.EncodersSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps = append(s.snaps, snap)
}

func TestLink_HandleLine_Power(t *testing.T) {
	bus := &recordingSink{}
	enc := &recordingEncoderSink{}
	l := New(&fakeSerial{}, bus, enc, zap.NewNop())

	l.handleLine([]byte(`{"power":{"load_voltage":12.1,"current_ma":850}}`))

	bus.mu.Lock()
	defer bus.mu.Unlock()
	assert.Len(t, bus.events, 1)
	assert.NotNil(t, bus.events[0].Event.Arduino.Power)
	assert.Equal(t, float32(12.1), bus.events[0].Event.Arduino.Power.LoadVoltage)
}

func TestLink_HandleLine_EncodersForwarded(t *testing.T) {
	bus := &recordingSink{}
	enc := &recordingEncoderSink{}
	l := New(&fakeSerial{}, bus, enc, zap.NewNop())

	l.handleLine([]byte(`{"encoders":{"left":3,"right":4,"duration":100}}`))

	enc.mu.Lock()
	defer enc.mu.Unlock()
	assert.Len(t, enc.snaps, 1)
	assert.Equal(t, uint8(3), enc.snaps[0].LeftTicks)
	assert.Equal(t, uint8(4), enc.snaps[0].RightTicks)
}

func TestLink_HandleLine_MalformedIsIgnored(t *testing.T) {
	bus := &recordingSink{}
	enc := &recordingEncoderSink{}
	l := New(&fakeSerial{}, bus, enc, zap.NewNop())

	l.handleLine([]byte(`not json`))

	bus.mu.Lock()
	defer bus.mu.Unlock()
	assert.Empty(t, bus.events)
}
