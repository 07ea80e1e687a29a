// Package websocket pushes class leaderboards to connected scoreboard screens.
package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MessageSnapshot is the type of the first message a client receives
const MessageSnapshot = "snapshot"

const broadcastBuffer = 64

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	// Registered clients organized by class ID
	clients map[uuid.UUID]map[*Client]bool

	// Outbound scoreboard updates
	broadcast chan *Message

	register   chan *Client
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	// Guards clients for readers outside the Run goroutine
	mu sync.RWMutex

	logger zerolog.Logger
}

// Message is one scoreboard update sent over the WebSocket
type Message struct {
	// snapshot, points_changed or groups_committed
	Type      string    `json:"type"`
	ClassID   uuid.UUID `json:"classId"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		broadcast:  make(chan *Message, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run handles registrations and broadcasts until ctx is cancelled, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.classID]; !ok {
		h.clients[client.classID] = make(map[*Client]bool)
	}
	h.clients[client.classID][client] = true

	h.logger.Info().
		Str("classID", client.classID.String()).
		Str("userID", client.userID.String()).
		Msg("Scoreboard client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

// removeLocked drops client and closes its send channel. h.mu must be held.
func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.clients[client.classID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.classID)
	}

	h.logger.Info().
		Str("classID", client.classID.String()).
		Str("userID", client.userID.String()).
		Msg("Scoreboard client unregistered")
}

// broadcastMessage sends message to every client watching its class. Clients
// whose buffer is full are dropped.
func (h *Hub) broadcastMessage(message *Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[message.ClassID]
	if !ok {
		h.logger.Debug().Str("classID", message.ClassID.String()).Msg("No scoreboard clients for class")
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error().Err(err).Str("classID", message.ClassID.String()).Msg("Failed to marshal scoreboard message")
		return
	}

	for client := range clients {
		select {
		case client.send <- data:
		default:
			h.logger.Warn().Str("userID", client.userID.String()).Msg("Dropping slow scoreboard client")
			h.removeLocked(client)
		}
	}

	h.logger.Debug().
		Str("classID", message.ClassID.String()).
		Str("type", message.Type).
		Int("clientCount", len(clients)).
		Msg("Scoreboard update broadcasted")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.clients {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}

// Publish queues an update for the class's screens. It never blocks: when the
// queue is full the update is dropped, since the next one supersedes it.
func (h *Hub) Publish(classID uuid.UUID, event string, payload any) {
	msg := &Message{Type: event, ClassID: classID, Payload: payload, Timestamp: time.Now()}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn().Str("classID", classID.String()).Str("type", event).Msg("Scoreboard queue full, update dropped")
	}
}

// Register adds client unless the hub has stopped
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes client unless the hub has stopped
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients for a class
func (h *Hub) ClientCount(classID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[classID])
}
