// internal/infrastructure/events/hub.go
package events

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/veggiefresh/grocery-backend/internal/domain/order"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 16
)

type subscriber struct {
	conn *websocket.Conn
	send chan order.Event
}

// Hub fans order events out to connected back-office websocket clients.
// A client whose buffer is full is dropped.
type Hub struct {
	mu      sync.Mutex
	clients map[*subscriber]struct{}
	log     logrus.FieldLogger
}

// NewHub creates an empty hub
func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		clients: make(map[*subscriber]struct{}),
		log:     log,
	}
}

// Publish implements order.EventPublisher
func (h *Hub) Publish(_ context.Context, event order.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for s := range h.clients {
		select {
		case s.send <- event:
		default:
			h.removeLocked(s)
		}
	}
	return nil
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Serve streams events to conn until the client disconnects or ctx ends.
// It blocks and closes conn on return.
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn) {
	s := &subscriber{conn: conn, send: make(chan order.Event, sendBuffer)}

	h.mu.Lock()
	h.clients[s] = struct{}{}
	h.mu.Unlock()
	h.log.WithField("clients", h.Clients()).Debug("order feed client connected")

	done := make(chan struct{})
	go h.readPump(s, done)
	h.writePump(ctx, s, done)

	h.mu.Lock()
	h.removeLocked(s)
	h.mu.Unlock()
	conn.Close()
}

func (h *Hub) removeLocked(s *subscriber) {
	if _, ok := h.clients[s]; ok {
		delete(h.clients, s)
		close(s.send)
	}
}

// readPump discards client messages and watches for disconnects
func (h *Hub) readPump(s *subscriber, done chan<- struct{}) {
	defer close(done)

	s.conn.SetReadLimit(512)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(ctx context.Context, s *subscriber, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
			return
		case <-done:
			return
		case event, ok := <-s.send:
			if !ok {
				// dropped by Publish
				return
			}
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(event); err != nil {
				h.log.WithError(err).Debug("order feed write failed")
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

var _ order.EventPublisher = (*Hub)(nil)
