package hal

import (
	"fmt"

	"go.bug.st/serial"
)

// BugstSerial implements SerialProvider over go.bug.st/serial, the same
// library the teacher's serial_in node uses for its port access.
type BugstSerial struct {
	port serial.Port
}

// NewBugstSerial returns an unopened serial provider; Open must be called
// before Read/Write.
func NewBugstSerial() *BugstSerial {
	return &BugstSerial{}
}

func (s *BugstSerial) Open(port string, baud int) error {
	mode := &serial.Mode{BaudRate: baud}
	p, err := serial.Open(port, mode)
	if err != nil {
		return fmt.Errorf("hal: open serial port %s: %w", port, err)
	}
	s.port = p
	return nil
}

func (s *BugstSerial) Read(buf []byte) (int, error) {
	if s.port == nil {
		return 0, fmt.Errorf("hal: serial port not open")
	}
	return s.port.Read(buf)
}

func (s *BugstSerial) Write(data []byte) (int, error) {
	if s.port == nil {
		return 0, fmt.Errorf("hal: serial port not open")
	}
	return s.port.Write(data)
}

func (s *BugstSerial) Close() error {
	if s.port == nil {
		return nil
	}
	return s.port.Close()
}
