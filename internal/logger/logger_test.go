package logger

import (
	"testing"

	"github.com/edgeflow/roverctl/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSink struct {
	events []events.TimedEvent
}

func (s *recordingSink) Publish(e events.TimedEvent) {
	s.events = append(s.events, e)
}

func TestInit_DefaultConfigSucceeds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogDir = t.TempDir()
	require.NoError(t, Init(cfg))
	assert.NotNil(t, Get())
	assert.NotNil(t, Sugar())
}

func TestSetEventSink_BridgesLogEntryToBus(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogDir = ""
	cfg.Level = "debug"
	require.NoError(t, Init(cfg))

	sink := &recordingSink{}
	SetEventSink(sink)
	defer SetBroadcaster(nil)

	WithComponent("motor").Info("starting move", zap.String("direction", "forward"))

	require.Len(t, sink.events, 1)
	logEvt := sink.events[0].Event.Log
	require.NotNil(t, logEvt)
	assert.Equal(t, "info", logEvt.Level)
	assert.Equal(t, "starting move", logEvt.Message)
	assert.Equal(t, "motor", logEvt.Source)
	assert.Equal(t, "forward", logEvt.Fields["direction"])
}

func TestWriter_WritesAtInfoLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogDir = ""
	require.NoError(t, Init(cfg))

	n, err := Writer().Write([]byte("hello\n"))
	require.NoError(t, err)
	assert.Equal(t, len("hello\n"), n)
}
