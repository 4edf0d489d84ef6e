// Package events pushes mutation notifications to open browser tabs over a
// WebSocket so they can refresh their local copy of the board.
//
// Services call Publish after a successful write. Publish never blocks: the
// event goes into a buffered channel and Run fans it out to every connected
// client. If the buffer is full the event is dropped; clients still converge
// on their next GET.
package events

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Type names one kind of change.
type Type string

const (
	MessageCreated Type = "message_created"
	MessageDeleted Type = "message_deleted"
	LikeAdded      Type = "like_added"
	LikeRemoved    Type = "like_removed"
	CommentAdded   Type = "comment_added"
	CommentDeleted Type = "comment_deleted"
	TagsChanged    Type = "tags_changed"
	PrenomsChanged Type = "prenoms_changed"
)

const (
	bufferSize   = 100
	writeTimeout = 5 * time.Second
)

// Event is the JSON frame sent to clients.
type Event struct {
	Type      Type      `json:"type"`
	ID        string    `json:"id"`
	MessageID string    `json:"messageId,omitempty"`
	At        time.Time `json:"at"`
}

// Publisher is what services need from the hub.
type Publisher interface {
	Publish(e Event)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(Event) {}

// Hub tracks WebSocket clients and broadcasts events to them.
type Hub struct {
	clientMu  sync.RWMutex
	clients   map[*websocket.Conn]bool
	broadcast chan Event
	upgrader  websocket.Upgrader
	logger    *slog.Logger
	now       func() time.Time
}

var _ Publisher = (*Hub)(nil)

// NewHub creates a hub accepting connections from allowedOrigins.
// A "*" entry accepts any origin.
func NewHub(allowedOrigins []string, logger *slog.Logger) *Hub {
	return &Hub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Event, bufferSize),
		upgrader:  newUpgrader(allowedOrigins),
		logger:    logger,
		now:       time.Now,
	}
}

func newUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowAll := slices.Contains(allowedOrigins, "*")
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			// Non-browser clients send no Origin.
			if allowAll || origin == "" {
				return true
			}
			return allowed[origin]
		},
	}
}

// Publish queues e for broadcast. It stamps At when unset.
func (h *Hub) Publish(e Event) {
	if e.At.IsZero() {
		e.At = h.now()
	}
	select {
	case h.broadcast <- e:
	default:
		h.logger.Warn("event buffer full, dropping event",
			slog.String("type", string(e.Type)),
			slog.String("id", e.ID),
		)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.clientMu.RLock()
	defer h.clientMu.RUnlock()
	return len(h.clients)
}

// ServeHTTP handles GET /api/ws.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	h.clientMu.Lock()
	h.clients[conn] = true
	total := len(h.clients)
	h.clientMu.Unlock()

	h.logger.Info("websocket client connected", slog.Int("clients", total))

	// The board never reads client frames; the loop only detects hangups.
	for {
		if _, _, err := conn.NextReader(); err != nil {
			break
		}
	}

	h.remove(conn)
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.clientMu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	remaining := len(h.clients)
	h.clientMu.Unlock()

	conn.Close()
	if ok {
		h.logger.Info("websocket client disconnected", slog.Int("clients", remaining))
	}
}

// Run broadcasts queued events until ctx is cancelled, then closes every
// client connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case e := <-h.broadcast:
			h.send(e)
		}
	}
}

func (h *Hub) send(e Event) {
	// Snapshot so a disconnect during the loop cannot race the map.
	h.clientMu.RLock()
	snapshot := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		snapshot = append(snapshot, c)
	}
	h.clientMu.RUnlock()

	for _, c := range snapshot {
		c.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.WriteJSON(e); err != nil {
			h.logger.Debug("dropping websocket client", slog.String("error", err.Error()))
			h.remove(c)
		}
	}
}

func (h *Hub) closeAll() {
	h.clientMu.Lock()
	defer h.clientMu.Unlock()
	for c := range h.clients {
		c.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		c.Close()
		delete(h.clients, c)
	}
}
