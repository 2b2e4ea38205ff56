// Package websocket pushes install progress and registry sync events to
// connected admin sessions.
package websocket

// Hub maintains the set of active clients and broadcasts messages to
// them.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Inbound messages to fan out to the clients.
	broadcast chan []byte

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// Run processes register, unregister and broadcast events. It blocks;
// callers run it in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client is too slow to keep up; drop it.
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// Broadcast queues a message for delivery to all connected clients. It
// never blocks the caller; when the hub is saturated the message is
// dropped.
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	default:
	}
}
