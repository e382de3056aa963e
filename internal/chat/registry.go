package chat

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Factory creates the session for a new ID.
type Factory func(id string) *Session

// Registry keeps the live sessions in memory. When it is full the least
// recently used session is dropped; nothing survives eviction.
type Registry struct {
	mu         sync.Mutex
	cache      *lru.Cache[string, *Session]
	newSession Factory
}

func NewRegistry(size int, newSession Factory) (*Registry, error) {
	cache, err := lru.New[string, *Session](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}
	return &Registry{cache: cache, newSession: newSession}, nil
}

// Get returns an existing session.
func (r *Registry) Get(id string) (*Session, bool) {
	return r.cache.Get(id)
}

// GetOrCreate returns the session for id, creating it on first use.
func (r *Registry) GetOrCreate(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.cache.Get(id); ok {
		return s
	}
	s := r.newSession(id)
	r.cache.Add(id, s)
	return s
}

// Len is the number of live sessions.
func (r *Registry) Len() int {
	return r.cache.Len()
}
