package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_RequiresBrokerURL(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.Error(t, err)
}

func TestDefaultConfig_SetsTopicAndKeepAlive(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "roverctl/events", cfg.Topic)
	assert.NotZero(t, cfg.KeepAlive)
	assert.NotEmpty(t, cfg.ClientID)
}
