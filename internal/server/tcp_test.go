package server

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/edgeflow/roverctl/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTCPServer_DispatchesInboundCommand(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	m := &fakeMotor{}
	a := &fakeArduino{}
	s := NewTCPServer(ln.Addr().String(), NewRouter(m, a), zap.NewNop())
	s.clients = make(map[string]net.Conn)

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go s.handleConn(conn)
		}
	}()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("{\"motor\": {\"command\": \"stop\"}}\r\n"))
	require.NoError(t, err)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && m.stops == 0 {
		time.Sleep(time.Millisecond)
	}
	assert.Equal(t, 1, m.stops)
}

func TestTCPServer_PublishWritesFramedEvent(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	s := NewTCPServer(ln.Addr().String(), NewRouter(&fakeMotor{}, &fakeArduino{}), zap.NewNop())

	serverConnCh := make(chan net.Conn, 1)
	go func() {
		conn, _ := ln.Accept()
		serverConnCh <- conn
	}()

	clientConn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer clientConn.Close()

	serverConn := <-serverConnCh
	s.mu.Lock()
	s.clients["test"] = serverConn
	s.mu.Unlock()

	s.Publish(events.TimedEvent{Event: events.Generic("hi"), Time: 1})

	reader := bufio.NewReader(clientConn)
	clientConn.SetReadDeadline(time.Now().Add(time.Second))
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, "generic")
}
