package server

import (
	"bufio"
	"encoding/json"
	"net"
	"sync"

	"github.com/edgeflow/roverctl/internal/events"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TCPServer is the line-oriented protocol: every inbound line is a Command
// JSON object, every outbound line is one TimedEvent, \r\n-delimited, the
// same framing the original's Lines/Client pair implements by hand —
// bufio.Scanner's default line split already strips the trailing \r, so no
// custom SplitFunc is needed on read.
type TCPServer struct {
	addr   string
	router *Router
	log    *zap.Logger

	mu      sync.Mutex
	clients map[string]net.Conn
}

func NewTCPServer(addr string, router *Router, log *zap.Logger) *TCPServer {
	return &TCPServer{addr: addr, router: router, log: log, clients: make(map[string]net.Conn)}
}

// Serve listens and accepts connections until the listener closes.
func (s *TCPServer) Serve() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	defer ln.Close()

	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		go s.handleConn(conn)
	}
}

func (s *TCPServer) handleConn(conn net.Conn) {
	id := uuid.NewString()
	s.mu.Lock()
	s.clients[id] = conn
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, id)
		s.mu.Unlock()
		conn.Close()
	}()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := s.router.Dispatch(line); err != nil {
			s.log.Warn("tcp: dropping malformed command", zap.String("client", id), zap.Error(err))
		}
	}
}

// Publish implements events.Sink: every event is marshaled and written to
// every connected client, best-effort.
func (s *TCPServer) Publish(e events.TimedEvent) {
	data, err := json.Marshal(e)
	if err != nil {
		s.log.Warn("tcp: marshal event failed", zap.Error(err))
		return
	}
	data = append(data, '\r', '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, conn := range s.clients {
		if _, err := conn.Write(data); err != nil {
			s.log.Debug("tcp: write to client failed", zap.String("client", id), zap.Error(err))
		}
	}
}
