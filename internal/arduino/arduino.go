// Package arduino implements the co-processor serial link: a newline-
// delimited JSON protocol reporting battery/temperature readings and wheel
// tick snapshots, and accepting simple commands.
package arduino

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/edgeflow/roverctl/internal/events"
	"github.com/edgeflow/roverctl/internal/hal"
	"github.com/edgeflow/roverctl/internal/motor"
	"go.uber.org/zap"
)

// wireReading is the newline-delimited JSON shape read from the
// co-processor. Exactly one field is populated per line.
type wireReading struct {
	Power    *events.ArduinoPower     `json:"power,omitempty"`
	Temp     *events.ArduinoTemp      `json:"temp,omitempty"`
	Encoders *events.EncodersSnapshot `json:"encoders,omitempty"`
}

// EncoderSink receives wheel tick snapshots multiplexed onto the Arduino
// link; *motor.Controller implements this.
type EncoderSink interface {
	SubmitEncoders(motor.EncodersSnapshot)
}

// Link is the Arduino co-processor serial link.
type Link struct {
	serial  hal.SerialProvider
	bus     events.Sink
	encoder EncoderSink
	log     *zap.Logger
}

// New wires an already-opened serial provider to the event bus and the
// motor controller's encoder queue.
func New(serial hal.SerialProvider, bus events.Sink, encoder EncoderSink, log *zap.Logger) *Link {
	return &Link{serial: serial, bus: bus, encoder: encoder, log: log}
}

// Run reads newline-delimited JSON until ctx is cancelled or the port
// errors. A malformed line is logged and skipped, never propagated.
func (l *Link) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(readerFunc(l.serial.Read))
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		l.handleLine(scanner.Bytes())
	}
	return scanner.Err()
}

func (l *Link) handleLine(line []byte) {
	var reading wireReading
	if err := json.Unmarshal(line, &reading); err != nil {
		l.log.Warn("arduino: malformed line", zap.Error(err))
		return
	}

	evt := events.ArduinoEvent{Power: reading.Power, Temp: reading.Temp, Encoders: reading.Encoders}
	l.bus.Publish(events.TimedEvent{Event: events.ArduinoReading(evt), Time: time.Now().UnixMilli()})

	if reading.Encoders != nil {
		l.encoder.SubmitEncoders(motor.EncodersSnapshot{
			LeftTicks:  reading.Encoders.Left,
			RightTicks: reading.Encoders.Right,
			DurationMs: reading.Encoders.Duration,
		})
	}
}

// SendOff writes the "off" command line to the co-processor.
func (l *Link) SendOff() error {
	_, err := l.serial.Write([]byte("off\n"))
	if err != nil {
		return fmt.Errorf("arduino: write off: %w", err)
	}
	return nil
}

// readerFunc adapts a Read(buf) (int, error) method value to io.Reader.
type readerFunc func([]byte) (int, error)

func (f readerFunc) Read(p []byte) (int, error) { return f(p) }
