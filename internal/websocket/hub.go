// Package websocket streams cart changes to the browser tabs of a session.
package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
)

const (
	sendBufferSize      = 16
	broadcastBufferSize = 1024

	EventCartUpdated = "cart_updated"
)

// CartEvent is the message pushed to clients after every cart change.
type CartEvent struct {
	Type string         `json:"type"`
	Cart model.CartView `json:"cart"`
}

// Client is one WebSocket connection of a session.
type Client struct {
	Hub       *Hub
	Conn      *Conn
	SessionID string
	Send      chan []byte
}

func NewClient(hub *Hub, conn *Conn, sessionID string) *Client {
	return &Client{
		Hub:       hub,
		Conn:      conn,
		SessionID: sessionID,
		Send:      make(chan []byte, sendBufferSize),
	}
}

// Hub fans cart events out to the connections of each session.
type Hub struct {
	// sessionID -> clients, several tabs per session
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan *broadcastMessage
	done       chan struct{}

	mu sync.RWMutex
}

type broadcastMessage struct {
	SessionID string
	Message   []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string][]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *broadcastMessage, broadcastBufferSize),
		done:       make(chan struct{}),
	}
}

// Run dispatches until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			total := len(h.clients[client.SessionID])
			h.mu.Unlock()
			logger.Debug("WebSocket client registered", map[string]interface{}{
				"session_id":  client.SessionID,
				"connections": total,
			})

		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.broadcast:
			h.mu.RLock()
			clients := h.clients[message.SessionID]
			var stalled []*Client
			for _, client := range clients {
				select {
				case client.Send <- message.Message:
				default:
					stalled = append(stalled, client)
				}
			}
			h.mu.RUnlock()

			for _, client := range stalled {
				logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
					"session_id": client.SessionID,
				})
				h.remove(client)
			}
		}
	}
}

// Publish queues state for every connection of sessionID. It never blocks; an
// event is dropped when the hub is saturated.
func (h *Hub) Publish(sessionID string, state model.CartState) {
	data, err := EncodeCartEvent(state)
	if err != nil {
		logger.Error("Failed to marshal cart event", err, map[string]interface{}{
			"session_id": sessionID,
		})
		return
	}

	select {
	case h.broadcast <- &broadcastMessage{SessionID: sessionID, Message: data}:
	default:
		logger.Warn("Broadcast channel full, cart event dropped", map[string]interface{}{
			"session_id": sessionID,
			"version":    state.Version,
		})
	}
}

// EncodeCartEvent renders state as a cart_updated message
func EncodeCartEvent(state model.CartState) ([]byte, error) {
	return json.Marshal(CartEvent{
		Type: EventCartUpdated,
		Cart: model.NewCartView(state),
	})
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Connections reports how many connections sessionID has open.
func (h *Hub) Connections(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.SessionID]
	if !ok {
		return
	}
	remaining := make([]*Client, 0, len(clients))
	found := false
	for _, c := range clients {
		if c == client {
			found = true
			continue
		}
		remaining = append(remaining, c)
	}
	if !found {
		return
	}
	if len(remaining) == 0 {
		delete(h.clients, client.SessionID)
	} else {
		h.clients[client.SessionID] = remaining
	}
	close(client.Send)

	logger.Debug("WebSocket client unregistered", map[string]interface{}{
		"session_id":  client.SessionID,
		"connections": len(remaining),
	})
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	close(h.done)
	for sessionID, clients := range h.clients {
		for _, client := range clients {
			close(client.Send)
		}
		delete(h.clients, sessionID)
	}
}
