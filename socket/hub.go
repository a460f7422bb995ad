package socket

import (
	"encoding/json"
	"sync"

	"newsdesk/internal/article/model"
	"newsdesk/pkg/logger"
)

// Hub fans article events out to every connected feed subscriber.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	Register   chan *Client
	Unregister chan *Client
	quit       chan struct{}
	closeOnce  sync.Once
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		quit:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			logger.Sugar.Infof("Feed subscriber %s connected (%d total)", client.ID, count)

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()

		case payload := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.Send <- payload:
				default:
					// Lagging subscriber; its write pump closes the connection.
					logger.Sugar.Warnf("Subscriber %s's send buffer is full. Dropping.", client.ID)
					delete(h.clients, client)
					close(client.Send)
				}
			}
			h.mu.Unlock()

		case <-h.quit:
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Publish queues an event for broadcast. It never blocks the caller; when the
// queue is full the event is dropped and logged.
func (h *Hub) Publish(evt model.Event) {
	payload, err := json.Marshal(evt)
	if err != nil {
		logger.Sugar.Errorf("Error marshalling article event: %v", err)
		return
	}
	select {
	case h.broadcast <- payload:
	case <-h.quit:
	default:
		logger.Sugar.Warnf("Event queue full, dropping %s for article %s", evt.Type, evt.ArticleID)
	}
}

// Close stops Run and disconnects all subscribers.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.quit) })
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) register(c *Client) bool {
	select {
	case h.Register <- c:
		return true
	case <-h.quit:
		return false
	}
}

func (h *Hub) unregister(c *Client) {
	select {
	case h.Unregister <- c:
	case <-h.quit:
	}
}
