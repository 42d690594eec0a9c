package user

import (
	"strings"
	"sync"
	"sync/atomic"
)

// Registry tracks all live connections.
type Registry struct {
	mu     sync.RWMutex
	conns  map[uint64]*Connection
	nextID atomic.Uint64
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[uint64]*Connection)}
}

// AllocateID returns the next unique connection id.
func (r *Registry) AllocateID() uint64 {
	return r.nextID.Add(1)
}

func (r *Registry) Add(c *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[c.ID()] = c
}

func (r *Registry) Remove(c *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, c.ID())
}

// Len returns the number of live connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

func (r *Registry) Get(id uint64) *Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.conns[id]
}

// GetByName returns the connection of the given player (case-insensitive), or nil.
func (r *Registry) GetByName(name string) *Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.conns {
		if _, n := c.Identity(); strings.EqualFold(n, name) {
			return c
		}
	}
	return nil
}

// Snapshot returns the live connections at the time of the call.
func (r *Registry) Snapshot() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Connection, 0, len(r.conns))
	for _, c := range r.conns {
		out = append(out, c)
	}
	return out
}

// ForEach calls fn for every connection of a snapshot, outside the registry
// lock so fn may take the connection lock.
func (r *Registry) ForEach(fn func(*Connection)) {
	for _, c := range r.Snapshot() {
		fn(c)
	}
}
