package websocket

import (
	"cadenza/types"
	"log"
	"sync"
	"time"
)

// Hub interface defines the methods for managing WebSocket connections
type Hub interface {
	Run()
	BroadcastPlayback(sessionID, msgType, trackPath string, ordinal int, message string)
	RegisterClient(client *Client)
	UnregisterClient(client *Client)
}

// hub maintains the set of active clients and broadcasts messages to them
type hub struct {
	// Registered clients mapped by session ID
	clients map[string]map[*Client]bool

	// Broadcast channel for sending messages to all clients of a session
	broadcast chan types.PlaybackMessage

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Mutex for thread-safe operations
	mu sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub() Hub {
	return &hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan types.PlaybackMessage),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's main event loop
func (h *hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.sessionID] == nil {
				h.clients[client.sessionID] = make(map[*Client]bool)
			}
			h.clients[client.sessionID][client] = true
			h.mu.Unlock()
			log.Printf("WebSocket client connected for session %s", client.sessionID)

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.sessionID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.clients, client.sessionID)
					}
				}
			}
			h.mu.Unlock()
			log.Printf("WebSocket client disconnected for session %s", client.sessionID)

		case message := <-h.broadcast:
			// Write lock: stale clients are evicted during fan-out.
			h.mu.Lock()
			// Send to specific session clients
			if clients, ok := h.clients[message.SessionID]; ok {
				for client := range clients {
					select {
					case client.send <- message:
					default:
						close(client.send)
						delete(clients, client)
					}
				}
				if len(clients) == 0 {
					delete(h.clients, message.SessionID)
				}
			}

			// Also send to "all" clients for any playback update
			if allClients, ok := h.clients["all"]; ok {
				for client := range allClients {
					select {
					case client.send <- message:
					default:
						close(client.send)
						delete(allClients, client)
					}
				}
				if len(allClients) == 0 {
					delete(h.clients, "all")
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastPlayback sends a playback message to all clients of a specific session
func (h *hub) BroadcastPlayback(sessionID, msgType, trackPath string, ordinal int, message string) {
	playbackMsg := types.PlaybackMessage{
		SessionID: sessionID,
		Type:      msgType,
		TrackPath: trackPath,
		Ordinal:   ordinal,
		Message:   message,
		Timestamp: time.Now(),
	}

	select {
	case h.broadcast <- playbackMsg:
	default:
		log.Printf("WebSocket broadcast channel full, dropping message for session %s", sessionID)
	}
}

// RegisterClient registers a new client with the hub
func (h *hub) RegisterClient(client *Client) {
	h.register <- client
}

// UnregisterClient unregisters a client from the hub
func (h *hub) UnregisterClient(client *Client) {
	h.unregister <- client
}
