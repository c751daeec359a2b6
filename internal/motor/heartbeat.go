package motor

import (
	"github.com/robfig/cron/v3"
)

// HeartbeatScheduler drives Controller.Heartbeat at a fixed interval using
// robfig/cron's "@every" trigger, the same interval-trigger mechanism the
// teacher's flow scheduler uses.
type HeartbeatScheduler struct {
	cron *cron.Cron
}

// NewHeartbeatScheduler wires period (e.g. "1s") to call ctrl.Heartbeat.
func NewHeartbeatScheduler(ctrl *Controller, period string) (*HeartbeatScheduler, error) {
	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc("@every "+period, ctrl.Heartbeat); err != nil {
		return nil, err
	}
	return &HeartbeatScheduler{cron: c}, nil
}

func (h *HeartbeatScheduler) Start() {
	h.cron.Start()
}

func (h *HeartbeatScheduler) Stop() {
	h.cron.Stop()
}
