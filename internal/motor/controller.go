package motor

import (
	"sync"
	"time"

	"github.com/edgeflow/roverctl/internal/events"
	"github.com/edgeflow/roverctl/internal/logger"
	"go.uber.org/zap"
)

// watchdogTimeout is the maximum gap between encoder snapshots before
// Heartbeat aborts an in-progress move. Overridable via SetWatchdogTimeout
// (wired from config at startup); 2s matches the spec default.
var watchdogTimeout = 2000 * time.Millisecond

// SetWatchdogTimeout overrides the watchdog timeout. Not safe to call
// concurrently with an active Controller; call once at startup.
func SetWatchdogTimeout(d time.Duration) {
	watchdogTimeout = d
}

// MoveCommand starts a new move, overwriting any move in progress.
type MoveCommand struct {
	Speed     uint8
	Direction Direction
	Ticks     uint32
	Gains     PidGains
}

// ctrlCommand is the queue element for submit_command: exactly one of Move
// or Stop is set.
type ctrlCommand struct {
	move *MoveCommand
	stop bool
}

// Controller is the closed-loop motor controller: the sole subject of this
// package. It owns one MoveState, guarded by a single mutex per the
// one-critical-section concurrency model, and drives a Bridge.
type Controller struct {
	mu    sync.Mutex
	state MoveState

	bridge Bridge
	bus    events.Sink
	log    *zap.Logger

	commandQueue *queue[ctrlCommand]
	encoderQueue *queue[EncodersSnapshot]

	lastTick time.Time // monotonic reference for the watchdog

	done chan struct{}
	wg   sync.WaitGroup

	nowMs func() int64
}

// NewController starts the controller's command and encoder reader
// goroutines.
func NewController(bridge Bridge, bus events.Sink, log *zap.Logger) *Controller {
	c := &Controller{
		bridge:       bridge,
		bus:          bus,
		log:          log,
		commandQueue: newQueue[ctrlCommand](),
		encoderQueue: newQueue[EncodersSnapshot](),
		done:         make(chan struct{}),
		nowMs:        func() int64 { return time.Now().UnixMilli() },
	}
	c.wg.Add(2)
	go c.runCommandReader()
	go c.runEncoderReader()
	return c
}

// Close stops the reader goroutines. Items still queued when Close is
// called are processed before the readers exit; Close waits for that.
func (c *Controller) Close() {
	close(c.done)
	c.commandQueue.close()
	c.encoderQueue.close()
	c.wg.Wait()
}

// SubmitMove enqueues a Move command.
func (c *Controller) SubmitMove(m MoveCommand) {
	c.commandQueue.push(ctrlCommand{move: &m})
}

// SubmitStop enqueues a Stop command.
func (c *Controller) SubmitStop() {
	c.commandQueue.push(ctrlCommand{stop: true})
}

// SubmitEncoders is a non-blocking enqueue of a tick snapshot. Snapshots
// received while !is_moving are discarded by the reader, not here, so the
// enqueue itself is always non-blocking and unconditional.
func (c *Controller) SubmitEncoders(s EncodersSnapshot) {
	c.encoderQueue.push(s)
}

func (c *Controller) runCommandReader() {
	defer c.wg.Done()
	for {
		cmd, ok := c.commandQueue.pop()
		if !ok {
			return
		}
		c.handleCommand(cmd)
	}
}

func (c *Controller) runEncoderReader() {
	defer c.wg.Done()
	for {
		snap, ok := c.encoderQueue.pop()
		if !ok {
			return
		}
		c.handleSnapshot(snap)
	}
}

func (c *Controller) handleCommand(cmd ctrlCommand) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cmd.stop {
		if !c.state.IsMoving {
			return
		}
		if err := c.bridge.Stop(); err != nil {
			c.log.Warn("bridge stop failed", zap.Error(err))
		}
		c.state.IsMoving = false
		return
	}

	m := cmd.move
	left, right := sideDirections(m.Direction)
	if err := c.bridge.SetDirection(SideLeft, left); err != nil {
		c.log.Warn("set direction failed", zap.Error(err))
	}
	if err := c.bridge.SetDirection(SideRight, right); err != nil {
		c.log.Warn("set direction failed", zap.Error(err))
	}
	speed := clamp(float32(m.Speed), 0, 100)
	if err := c.bridge.SetSpeed(SideLeft, speed); err != nil {
		c.log.Warn("set speed failed", zap.Error(err))
	}
	if err := c.bridge.SetSpeed(SideRight, speed); err != nil {
		c.log.Warn("set speed failed", zap.Error(err))
	}

	c.state = MoveState{
		Direction:        m.Direction,
		IsMoving:         true,
		HeartbeatTouchMs: c.nowMs(),
		TicksToMove:      int32(m.Ticks),
		TicksMoved:       0,
		Pid:              m.Gains,
		BaseSpeed:        m.Speed,
		WheelSlave:       SlaveWheel{Speed: speed},
		WheelBase:        BaseWheel{Speed: speed},
		Stats:            nil,
	}
	c.lastTick = time.Now()

	logger.WithMove(string(m.Direction), m.Ticks).Info("move started", zap.Uint8("speed", m.Speed))
}

func (c *Controller) handleSnapshot(snap EncodersSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.IsMoving {
		return
	}

	c.state.HeartbeatTouchMs = c.nowMs()
	c.lastTick = time.Now()
	c.state.TicksMoved += int32(snap.LeftTicks)

	if c.state.TicksMoved >= c.state.TicksToMove {
		if err := c.bridge.Stop(); err != nil {
			c.log.Warn("bridge stop failed", zap.Error(err))
		}
		c.state.IsMoving = false
		c.emitRunStats()
		c.state.Stats = nil
		return
	}

	c.state.WheelSlave.CurrentTicks = int32(snap.LeftTicks)
	c.state.WheelBase.CurrentTicks = int32(snap.RightTicks)

	next, stat := pidStep(c.state.WheelBase, c.state.WheelSlave, c.state.Pid, snap.DurationMs)
	c.state.Stats = append(c.state.Stats, stat)
	c.state.WheelSlave = next
	c.state.WheelBase.CurrentTicks = 0

	if err := c.bridge.SetSpeed(SideLeft, c.state.WheelSlave.Speed); err != nil {
		c.log.Warn("set speed failed", zap.Error(err))
	}
	if err := c.bridge.SetSpeed(SideRight, c.state.WheelBase.Speed); err != nil {
		c.log.Warn("set speed failed", zap.Error(err))
	}
}

func (c *Controller) emitRunStats() {
	wire := make([]events.MotorRunStat, len(c.state.Stats))
	for i, s := range c.state.Stats {
		wire[i] = s.toEvent()
	}
	c.bus.Publish(events.TimedEvent{
		Event: events.RunStats(events.MotorRunStats{
			Stats: wire,
			P:     c.state.Pid.P,
			I:     c.state.Pid.I,
			D:     c.state.Pid.D,
		}),
		Time: c.nowMs(),
	})
}

// Heartbeat is invoked by an external ~1 Hz timer. If a move is in
// progress and no snapshot has arrived within the watchdog timeout, it
// commands the bridge to stop and silently ends the move: no terminating
// event is emitted, so the absence of a MotorRunStats event is what tells a
// watchdog abort apart from a completed move.
func (c *Controller) Heartbeat() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.IsMoving {
		return
	}
	if time.Since(c.lastTick) <= watchdogTimeout {
		return
	}
	if err := c.bridge.Stop(); err != nil {
		c.log.Warn("watchdog bridge stop failed", zap.Error(err))
	}
	c.state.IsMoving = false
}
