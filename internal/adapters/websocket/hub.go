// Package websocket delivers job events to browser sessions. Every
// connection is one session; events addressed to a session go to that
// connection only, events with no session go to everyone.
package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/danilodaat/automat/internal/core/domain"
)

// Event names exchanged with clients.
const (
	EventConnectAck      = "connect_ack"
	EventStartProcessing = "start_processing"
	EventPing            = "ping"
	EventPong            = "pong"
)

// Envelope is the wire form of every message in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// StartFunc submits a job on behalf of a session and returns its id.
type StartFunc func(req domain.StartRequest, session string) (string, error)

// Hub tracks live sessions. It implements ports.EventSink.
type Hub struct {
	sessions   map[string]*Client
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	start      StartFunc
	logger     logrus.FieldLogger
}

// NewHub creates a hub that hands start_processing requests to start.
func NewHub(start StartFunc, logger logrus.FieldLogger) *Hub {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Hub{
		sessions:   make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		start:      start,
		logger:     logger.WithField("component", "websocket"),
	}
}

// Run processes registrations until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for id, c := range h.sessions {
				delete(h.sessions, id)
				close(c.send)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.sessions[c.id] = c
			h.mu.Unlock()
			h.logger.WithField("sid", c.id).Info("session connected")
			h.Emit(c.id, EventConnectAck, map[string]string{"message": "connected", "sid": c.id})

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.sessions[c.id]; ok {
				delete(h.sessions, c.id)
				close(c.send)
			}
			h.mu.Unlock()
			h.logger.WithField("sid", c.id).Info("session disconnected")

		case <-ticker.C:
			h.logger.WithField("sessions", h.Count()).Debug("hub stats")
		}
	}
}

func (h *Hub) add(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) remove(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Emit sends event to session, or to every session when session is empty.
// It never blocks: a session whose buffer is full misses the event.
func (h *Hub) Emit(session, event string, payload any) {
	data, err := encode(event, payload)
	if err != nil {
		h.logger.WithError(err).WithField("event", event).Error("failed to marshal event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if session != "" {
		c, ok := h.sessions[session]
		if !ok {
			h.logger.WithFields(logrus.Fields{"sid": session, "event": event}).Debug("session gone, event dropped")
			return
		}
		h.deliver(c, event, data)
		return
	}
	for _, c := range h.sessions {
		h.deliver(c, event, data)
	}
}

func (h *Hub) deliver(c *Client, event string, data []byte) {
	select {
	case c.send <- data:
	default:
		h.logger.WithFields(logrus.Fields{"sid": c.id, "event": event}).Warn("session send buffer full")
	}
}

// Count is the number of live sessions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

func encode(event string, payload any) ([]byte, error) {
	env := Envelope{Event: event}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.Data = raw
	}
	return json.Marshal(env)
}
