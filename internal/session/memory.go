package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryEntry struct {
	state   State
	expires time.Time
}

// MemoryStore хранит сессии в памяти процесса. Используется,
// когда Redis не настроен; сессии не переживают перезапуск.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*memoryEntry
	now      func() time.Time
}

// NewMemoryStore создаёт пустое хранилище.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*memoryEntry),
		now:      time.Now,
	}
}

// get возвращает живую запись; истёкшая удаляется. Вызывается под mu.
func (m *MemoryStore) get(id string) (*memoryEntry, bool) {
	e, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	if !m.now().Before(e.expires) {
		delete(m.sessions, id)
		return nil, false
	}
	return e, true
}

func (m *MemoryStore) Create(_ context.Context, ttl time.Duration) (string, error) {
	id := uuid.NewString()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = &memoryEntry{expires: m.now().Add(ttl)}
	return id, nil
}

func (m *MemoryStore) Load(_ context.Context, id string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.get(id)
	if !ok {
		return State{}, ErrNotFound
	}
	st := e.state
	if st.Flash != nil {
		f := *st.Flash
		st.Flash = &f
	}
	return st, nil
}

func (m *MemoryStore) Update(_ context.Context, id string, patch Patch, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.get(id)
	if !ok {
		return ErrNotFound
	}
	patch.apply(&e.state)
	e.expires = m.now().Add(ttl)
	return nil
}

func (m *MemoryStore) TakeFlash(_ context.Context, id string) (*Flash, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.get(id)
	if !ok {
		return nil, nil
	}
	f := e.state.Flash
	e.state.Flash = nil
	return f, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len возвращает количество живых сессий.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id := range m.sessions {
		if _, ok := m.get(id); ok {
			n++
		}
	}
	return n
}
