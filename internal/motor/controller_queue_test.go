package motor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// waitFor polls until cond returns true or the deadline elapses, exercising
// the real async command/encoder reader goroutines NewController starts.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	require.True(t, cond(), "condition never became true")
}

func TestController_AsyncSubmitMoveAndEncoders(t *testing.T) {
	bridge := &recordingBridge{}
	sink := &recordingSink{}
	c := NewController(bridge, sink, zap.NewNop())
	defer c.Close()

	c.SubmitMove(MoveCommand{Speed: 50, Direction: Forward, Ticks: 4, Gains: PidGains{P: 1}})
	for i := 0; i < 4; i++ {
		c.SubmitEncoders(EncodersSnapshot{LeftTicks: 2, RightTicks: 2, DurationMs: 100})
	}

	waitFor(t, func() bool { return len(sink.runStats()) == 1 })
	stats := sink.runStats()
	assert.Len(t, stats[0].Stats, 1)
}

func TestController_SubmitNeverBlocks(t *testing.T) {
	bridge := &recordingBridge{}
	sink := &recordingSink{}
	c := NewController(bridge, sink, zap.NewNop())
	defer c.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			c.SubmitEncoders(EncodersSnapshot{LeftTicks: 1, RightTicks: 1, DurationMs: 10})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("SubmitEncoders blocked")
	}
}
