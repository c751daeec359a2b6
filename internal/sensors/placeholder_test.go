package sensors

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/edgeflow/roverctl/internal/events"
	"github.com/stretchr/testify/assert"
)

type recordingSink struct {
	mu     sync.Mutex
	events []events.TimedEvent
}

func (s *recordingSink) Publish(e events.TimedEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestPlaceholder_EmitsGenericEventsAtCadence(t *testing.T) {
	bus := &recordingSink{}
	p := IMU(bus, 2*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	p.Run(ctx)
	assert.Greater(t, bus.count(), 0)
}
