package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound возвращается для неизвестной или истёкшей сессии.
var ErrNotFound = errors.New("session not found")

// Manager хранит сессии игроков.
type Manager struct {
	sessions map[string]*Session // ключ - sessionID
	deps     Deps
	ttl      time.Duration
	mu       sync.RWMutex
}

// NewManager создаёт менеджер. ttl <= 0 отключает истечение сессий.
func NewManager(deps Deps, ttl time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		deps:     deps.withDefaults(),
		ttl:      ttl,
	}
}

// Create создаёт новую сессию на стартовом экране.
func (m *Manager) Create() *Session {
	s := newSession(uuid.NewString(), m.deps)

	m.mu.Lock()
	m.sessions[s.id] = s
	n := len(m.sessions)
	m.mu.Unlock()

	m.deps.Metrics.SetActiveSessions(n)
	m.deps.Log.Debug("session created", slog.String("session", s.id))

	return s
}

// Get возвращает сессию по идентификатору.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Delete останавливает и удаляет сессию.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}

	s.close()
	m.deps.Metrics.SetActiveSessions(n)

	return nil
}

// Len возвращает число живых сессий.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions)
}

// Sweep удаляет сессии, простаивающие дольше ttl. Возвращает число удалённых.
func (m *Manager) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}

	now := m.deps.Now()

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.idleSince(now, m.ttl) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	for _, s := range expired {
		s.close()
	}
	if len(expired) > 0 {
		m.deps.Metrics.SetActiveSessions(n)
		m.deps.Log.Info("expired sessions removed", slog.Int("count", len(expired)))
	}

	return len(expired)
}

// Run периодически вызывает Sweep, пока не отменён ctx.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// Close останавливает все сессии.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
	m.deps.Metrics.SetActiveSessions(0)
}
