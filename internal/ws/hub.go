package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

const (
	EventStockUpdate        = "stock_update"
	EventTransactionCreated = "transaction_created"
	EventProductChanged     = "product_changed"
)

// Event is the message pushed to connected clients.
type Event struct {
	Type      string      `json:"type"`
	Action    string      `json:"action,omitempty"`
	CompanyID uuid.UUID   `json:"companyId"`
	Data      interface{} `json:"data,omitempty"`
	User      *EventUser  `json:"user,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type EventUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type subscription struct {
	conn      Conn
	companyID *uuid.UUID // nil receives every company's events
}

type Hub struct {
	clients    map[Conn]*uuid.UUID
	register   chan subscription
	unregister chan Conn
	broadcast  chan Event
	done       chan struct{} // closed when Run returns
	mutex      sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[Conn]*uuid.UUID),
		register:   make(chan subscription),
		unregister: make(chan Conn),
		broadcast:  make(chan Event, 256),
		done:       make(chan struct{}),
	}
}

// Register subscribes conn to the events of companyID, or all events when nil.
func (h *Hub) Register(conn Conn, companyID *uuid.UUID) {
	select {
	case h.register <- subscription{conn: conn, companyID: companyID}:
	case <-h.done:
		conn.Close()
	}
}

func (h *Hub) Unregister(conn Conn) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Publish never blocks. Events are dropped when the buffer is full.
func (h *Hub) Publish(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	select {
	case h.broadcast <- evt:
	default:
		log.Printf("[ws] broadcast buffer full, dropping %s event", evt.Type)
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Run serves the hub until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for conn := range h.clients {
				conn.Close()
				delete(h.clients, conn)
			}
			h.mutex.Unlock()
			return

		case sub := <-h.register:
			h.mutex.Lock()
			h.clients[sub.conn] = sub.companyID
			h.mutex.Unlock()
			log.Println("[ws] client connected")

		case conn := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case evt := <-h.broadcast:
			message, err := json.Marshal(evt)
			if err != nil {
				log.Printf("[ws] marshal %s event: %v", evt.Type, err)
				continue
			}
			h.mutex.Lock()
			for conn, companyID := range h.clients {
				if companyID != nil && *companyID != evt.CompanyID {
					continue
				}
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}
