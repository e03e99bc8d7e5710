package world

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/udisondev/regionspawn/internal/model"
	"github.com/udisondev/regionspawn/internal/spawn"
)

// Registry resolves dimension ids to worlds and owns the global tick.
type Registry struct {
	mu     sync.RWMutex
	worlds map[string]*World

	tick atomic.Int64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{worlds: make(map[string]*World)}
}

// Add registers w under its dimension id, replacing any previous world.
func (r *Registry) Add(w *World) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.worlds[w.Dimension()] = w
}

// Get returns the world registered for dimension.
func (r *Registry) Get(dimension string) (*World, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.worlds[model.NormalizeDimension(dimension)]
	return w, ok
}

// World resolves dimension for the spawn scheduler.
func (r *Registry) World(dimension string) (spawn.WorldQuery, bool) {
	w, ok := r.Get(dimension)
	if !ok {
		return nil, false
	}
	return w, true
}

// Dimensions returns the registered dimension ids, sorted.
func (r *Registry) Dimensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.worlds))
	for d := range r.worlds {
		out = append(out, d)
	}
	slices.Sort(out)
	return out
}

// Subscribe registers l on every registered world.
func (r *Registry) Subscribe(l BlockListener) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.worlds {
		w.Subscribe(l)
	}
}

// Tick returns the current global tick.
func (r *Registry) Tick() int64 {
	return r.tick.Load()
}

// SetTick sets the global tick, used when resuming.
func (r *Registry) SetTick(t int64) {
	r.tick.Store(t)
}

// Advance moves every world clock and the global tick forward by one.
func (r *Registry) Advance() int64 {
	r.mu.RLock()
	for _, w := range r.worlds {
		w.Advance(1)
	}
	r.mu.RUnlock()
	return r.tick.Add(1)
}
