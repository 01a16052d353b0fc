package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ignatzorin/talent-sift/internal/logger"
)

// Hub управляет WebSocket клиентами, сгруппированными по сессии.
type Hub struct {
	mu         sync.RWMutex
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
	done       chan struct{}
}

type message struct {
	sessionID string
	payload   []byte
}

// NewHub создаёт новый хаб.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 32),
		done:       make(chan struct{}),
	}
}

// Run запускает главный цикл хаба до отмены ctx.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case msg := <-h.broadcast:
			h.send(msg.sessionID, msg.payload)
		}
	}
}

// Register добавляет клиента. После остановки хаба ничего не делает.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister удаляет клиента.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast отправляет событие всем подключениям сессии.
// Формат сообщения: {"type": event, "data": data}.
func (h *Hub) Broadcast(sessionID, event string, data any) error {
	raw, err := json.Marshal(map[string]any{
		"type": event,
		"data": data,
	})
	if err != nil {
		return fmt.Errorf("ws: не удалось сериализовать сообщение: %w", err)
	}

	select {
	case h.broadcast <- message{sessionID: sessionID, payload: raw}:
	case <-h.done:
	}
	return nil
}

// ClientCount возвращает число подключений сессии.
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.sessionID]; !ok {
		h.clients[client.sessionID] = make(map[*Client]struct{})
	}
	h.clients[client.sessionID][client] = struct{}{}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.sessionID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)
		}
		if len(clients) == 0 {
			delete(h.clients, client.sessionID)
		}
	}
}

func (h *Hub) send(sessionID string, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients[sessionID] {
		select {
		case client.send <- payload:
		default:
			// медленный клиент
			logger.Component("ws").WithField("session_id", sessionID).Warn("буфер клиента переполнен, соединение закрыто")
			delete(h.clients[sessionID], client)
			close(client.send)
		}
	}
	if len(h.clients[sessionID]) == 0 {
		delete(h.clients, sessionID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sessionID, clients := range h.clients {
		for client := range clients {
			close(client.send)
		}
		delete(h.clients, sessionID)
	}
}
