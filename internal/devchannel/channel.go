package devchannel

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Message is one named event on the dev channel.
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Handler receives an event payload from one client connection.
type Handler func(client string, data json.RawMessage)

// Hub accepts websocket connections from the running application and
// dispatches named events to registered handlers. Handlers are registered
// during startup, before the HTTP server accepts connections.
type Hub struct {
	log      *logrus.Logger
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	handlers map[string][]Handler
}

func New(log *logrus.Logger) *Hub {
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// dev-only channel, same-machine browser
			CheckOrigin: func(*http.Request) bool { return true },
		},
		handlers: make(map[string][]Handler),
	}
}

// On registers a handler for a named event.
func (h *Hub) On(event string, fn Handler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[event] = append(h.handlers[event], fn)
}

// ServeHTTP upgrades the request and reads events until the peer goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("channel upgrade: %v", err)
		return
	}
	client := uuid.NewString()
	h.log.Debugf("channel client %s connected", client)
	defer func() {
		_ = conn.Close()
		h.log.Debugf("channel client %s disconnected", client)
	}()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warnf("channel client %s: %v", client, err)
			}
			return
		}
		h.dispatch(client, msg)
	}
}

func (h *Hub) dispatch(client string, msg Message) {
	h.mu.RLock()
	fns := h.handlers[msg.Event]
	h.mu.RUnlock()
	if len(fns) == 0 {
		h.log.Debugf("channel: no handler for event %q", msg.Event)
		return
	}
	for _, fn := range fns {
		fn(client, msg.Data)
	}
}
