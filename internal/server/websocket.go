package server

import (
	"encoding/json"
	"time"

	"github.com/edgeflow/roverctl/internal/events"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// wsClient is one connected operator; Send buffers outbound events so a
// slow reader never blocks Hub.broadcast.
type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan events.TimedEvent
}

// Hub fans TimedEvents out to every connected WebSocket client and routes
// inbound Command JSON through the shared Router, mirroring the teacher's
// register/unregister/broadcast channel shape.
type Hub struct {
	router     *Router
	log        *zap.Logger
	clients    map[string]*wsClient
	register   chan *wsClient
	unregister chan *wsClient
	broadcast  chan events.TimedEvent
}

func NewHub(router *Router, log *zap.Logger) *Hub {
	return &Hub{
		router:     router,
		log:        log,
		clients:    make(map[string]*wsClient),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		broadcast:  make(chan events.TimedEvent, 256),
	}
}

// Run is the hub's single goroutine: the only place clients is mutated.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c.id] = c
		case c := <-h.unregister:
			if _, ok := h.clients[c.id]; ok {
				delete(h.clients, c.id)
				close(c.send)
			}
		case e := <-h.broadcast:
			for _, c := range h.clients {
				select {
				case c.send <- e:
				default:
					h.log.Debug("ws: dropping event for slow client", zap.String("client", c.id))
				}
			}
		}
	}
}

// Publish implements events.Sink.
func (h *Hub) Publish(e events.TimedEvent) {
	h.broadcast <- e
}

// HandlerFunc returns a websocket.New(...) fiber handler to mount on the
// upgrade route, spawning the read/write pumps for each connection.
func (h *Hub) HandlerFunc() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		c := &wsClient{id: uuid.NewString(), conn: conn, send: make(chan events.TimedEvent, 256)}
		h.register <- c

		done := make(chan struct{})
		go h.writePump(c, done)
		h.readPump(c)
		close(done)

		h.unregister <- c
	})
}

func (h *Hub) readPump(c *wsClient) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if err := h.router.Dispatch(data); err != nil {
			h.log.Warn("ws: dropping malformed command", zap.String("client", c.id), zap.Error(err))
		}
	}
}

func (h *Hub) writePump(c *wsClient, done chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case e, ok := <-c.send:
			if !ok {
				return
			}
			data, err := json.Marshal(e)
			if err != nil {
				continue
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
