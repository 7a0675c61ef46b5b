// internal/store/memory.go
//
// In-memory implementation of Store.
// Used in development/testing, or when durability is not required.
// Concurrency-safe via RWMutex; state is lost when the process restarts.

package store

import (
	"context"
	"sync"
)

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu      sync.RWMutex       // guards players map
	players map[string]*Player // keyed by Player.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{players: make(map[string]*Player)}
}

// Save adds or updates a copy of the player.
func (m *memory) Save(ctx context.Context, p *Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players[p.ID] = clone(p)
	return nil
}

// Load returns a copy of the stored player or ErrNotFound.
func (m *memory) Load(ctx context.Context, id string) (*Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.players[id]; ok {
		return fixup(clone(p)), nil
	}
	return nil, ErrNotFound
}
