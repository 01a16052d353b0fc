package board

import (
	"context"
	"sync"
	"time"

	"github.com/ignatzorin/talent-sift/internal/logger"
)

// Registry хранит по одной доске на сессию.
type Registry struct {
	mu       sync.Mutex
	boards   map[string]*registryEntry
	onCreate []func(sessionID string, b *Board)
}

type registryEntry struct {
	board    *Board
	lastSeen time.Time
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{boards: make(map[string]*registryEntry)}
}

// OnCreate вызывается для каждой новой доски (например, чтобы подписать её на WebSocket).
func (r *Registry) OnCreate(fn func(sessionID string, b *Board)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onCreate = append(r.onCreate, fn)
}

// Get возвращает доску сессии, создавая её при первом обращении.
// Каждое обращение продлевает жизнь доски.
func (r *Registry) Get(sessionID string) *Board {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if entry, ok := r.boards[sessionID]; ok {
		entry.lastSeen = now
		return entry.board
	}
	b := New()
	for _, fn := range r.onCreate {
		fn(sessionID, b)
	}
	r.boards[sessionID] = &registryEntry{board: b, lastSeen: now}
	return b
}

// Reset удаляет доску сессии; следующий Get вернёт пустую.
func (r *Registry) Reset(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.boards, sessionID)
}

// Len возвращает число активных досок.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.boards)
}

// RunEviction удаляет доски, к которым не обращались дольше idle, пока не отменён ctx.
// idle совпадает со сроком жизни сессии: после него токен уже недействителен.
func (r *Registry) RunEviction(ctx context.Context, idle, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.evictIdle(time.Now(), idle); n > 0 {
				logger.Component("board").WithField("evicted", n).Debug("удалены неактивные доски")
			}
		}
	}
}

func (r *Registry) evictIdle(now time.Time, idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, entry := range r.boards {
		if now.Sub(entry.lastSeen) > idle {
			delete(r.boards, id)
			evicted++
		}
	}
	return evicted
}
