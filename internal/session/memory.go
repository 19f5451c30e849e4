package session

import (
	"context"
	"sync"
)

var _ Repository = (*MemoryRepository)(nil)

type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: make(map[string]Session)}
}

func (r *MemoryRepository) Load(_ context.Context, uid string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[uid]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *MemoryRepository) Save(_ context.Context, s Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.UID] = s
	return nil
}

func (r *MemoryRepository) Update(_ context.Context, uid string, fn func(*Session)) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.sessions[uid]
	apply(&s, uid, fn)
	r.sessions[uid] = s
	return s, nil
}

func (r *MemoryRepository) Clear(_ context.Context, uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, uid)
	return nil
}
