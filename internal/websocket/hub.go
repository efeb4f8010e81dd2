package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"

	"github.com/oldtraffrod/tiktok-videogenerator/internal/model"
)

// Client represents a WebSocket client
type Client struct {
	SessionID string
	Conn      *websocket.Conn
	Send      chan []byte
}

// Hub maintains active WebSocket connections grouped by session. Broadcasts
// are advisory progress for the wizard UI; dropping one is harmless.
type Hub struct {
	clients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage

	mu sync.RWMutex
}

// BroadcastMessage represents a message to broadcast
type BroadcastMessage struct {
	SessionID string
	Message   []byte
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *BroadcastMessage, 256),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.SessionID] == nil {
				h.clients[client.SessionID] = make(map[*Client]bool)
			}
			h.clients[client.SessionID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.SessionID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.Send)
					if len(clients) == 0 {
						delete(h.clients, client.SessionID)
					}
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			if clients, ok := h.clients[msg.SessionID]; ok {
				for client := range clients {
					select {
					case client.Send <- msg.Message:
					default:
						// Slow consumer: drop it from the fan-out but
						// leave Send open. Only the unregister path
						// closes the channel, so the connection's own
						// goroutines can still use it.
						delete(clients, client)
						if len(clients) == 0 {
							delete(h.clients, msg.SessionID)
						}
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register adds a new client
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) send(sessionID string, msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal ws message: %v", err)
		return
	}
	h.broadcast <- &BroadcastMessage{SessionID: sessionID, Message: data}
}

// BroadcastStage announces a wizard stage change to session subscribers
func (h *Hub) BroadcastStage(sessionID string, stage model.Stage) {
	h.send(sessionID, model.WSStageMessage{
		Type:      model.WSMessageTypeStage,
		SessionID: sessionID,
		Stage:     stage,
	})
}

// BroadcastProgress sends a progress update to session subscribers
func (h *Hub) BroadcastProgress(sessionID, step string, progress int) {
	h.send(sessionID, model.WSProgressMessage{
		Type:      model.WSMessageTypeProgress,
		SessionID: sessionID,
		Step:      step,
		Progress:  progress,
	})
}

// BroadcastComplete announces a finished render to session subscribers
func (h *Hub) BroadcastComplete(sessionID string, result interface{}) {
	h.send(sessionID, model.WSCompleteMessage{
		Type:      model.WSMessageTypeComplete,
		SessionID: sessionID,
		Result:    result,
	})
}

// BroadcastError surfaces a failure to session subscribers
func (h *Hub) BroadcastError(sessionID, code, message string) {
	h.send(sessionID, model.WSErrorMessage{
		Type:      model.WSMessageTypeError,
		SessionID: sessionID,
		Error: model.WSError{
			Code:    code,
			Message: message,
		},
	})
}

// HandleConnection handles a WebSocket connection
func (h *Hub) HandleConnection(c *websocket.Conn, sessionID string) {
	client := &Client{
		SessionID: sessionID,
		Conn:      c,
		Send:      make(chan []byte, 256),
	}

	h.Register(client)
	defer h.Unregister(client)

	// Start writer goroutine
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case message, ok := <-client.Send:
				if !ok {
					c.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := c.WriteMessage(websocket.TextMessage, message); err != nil {
					return
				}

			case <-ticker.C:
				// Send ping for keep-alive
				if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	// Reader loop
	for {
		_, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		// Handle client messages (ping/pong)
		var msg model.WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		if msg.Type == model.WSMessageTypePing {
			pong := model.WSMessage{Type: model.WSMessageTypePong}
			data, _ := json.Marshal(pong)
			// Never block the reader on a full buffer.
			select {
			case client.Send <- data:
			default:
			}
		}
	}
}
