package entity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/regionspawn/internal/spawn"
)

var (
	ErrEntityNotFound = errors.New("entity not found")
	ErrNotWild        = errors.New("entity is not wild")
	ErrNotCatchable   = errors.New("entity cannot be captured")
	ErrWrongBall      = errors.New("ball not allowed for this entity")
)

// Registry holds every live entity. Safe for concurrent use.
type Registry struct {
	entities sync.Map // map[uuid.UUID]*Entity
	count    atomic.Int32

	mu  sync.Mutex // guards entity state transitions and rng
	rng *rand.Rand
}

// NewRegistry creates an empty entity registry.
func NewRegistry() *Registry {
	return &Registry{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// Create materializes an entity from req and returns its handle.
func (r *Registry) Create(ctx context.Context, req spawn.SpawnRequest) (spawn.Handle, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, fmt.Errorf("creating %s: %w", req.Species, err)
	}

	e := &Entity{
		ID:        uuid.New(),
		Species:   req.Species,
		Form:      req.Form,
		Level:     req.Level,
		Shiny:     req.Shiny,
		IVs:       req.IVs,
		EVs:       req.EVs,
		Size:      req.Size,
		Capture:   req.Capture,
		Position:  req.Position,
		Dimension: req.Dimension,
		State:     StateWild,
		CreatedAt: time.Now(),
	}
	if req.HeldItems.Enabled {
		e.HeldItem = r.rollHeldItem(req.HeldItems.Items)
	}

	r.entities.Store(e.ID, e)
	r.count.Add(1)
	return e.ID, nil
}

// IsAliveAndWild reports whether h denotes a live, unowned entity.
func (r *Registry) IsAliveAndWild(h spawn.Handle) bool {
	v, ok := r.entities.Load(h)
	if !ok {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return v.(*Entity).Wild()
}

// Despawn removes the entity from the world.
func (r *Registry) Despawn(h spawn.Handle) bool {
	if _, ok := r.entities.LoadAndDelete(h); !ok {
		return false
	}
	r.count.Add(-1)
	return true
}

// Kill marks the entity dead. Dead entities stay queryable until despawned.
func (r *Registry) Kill(h spawn.Handle) error {
	return r.transition(h, func(e *Entity) error {
		if e.State == StateDead {
			return fmt.Errorf("killing %s: %w", h, ErrNotWild)
		}
		e.State = StateDead
		return nil
	})
}

// Capture marks a wild entity captured with the given ball.
func (r *Registry) Capture(h spawn.Handle, ball string) error {
	return r.transition(h, func(e *Entity) error {
		if !e.Wild() {
			return fmt.Errorf("capturing %s: %w", h, ErrNotWild)
		}
		if !e.Capture.Catchable {
			return fmt.Errorf("capturing %s: %w", h, ErrNotCatchable)
		}
		if e.Capture.RestrictToBalls && !slices.ContainsFunc(e.Capture.RequiredBalls, func(b string) bool {
			return strings.EqualFold(b, ball)
		}) {
			return fmt.Errorf("capturing %s with %q: %w", h, ball, ErrWrongBall)
		}
		e.State = StateCaptured
		slog.Debug("entity captured", "handle", h, "species", e.Species, "ball", ball)
		return nil
	})
}

// Get returns a copy of the entity.
func (r *Registry) Get(h spawn.Handle) (Entity, bool) {
	v, ok := r.entities.Load(h)
	if !ok {
		return Entity{}, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return *v.(*Entity), true
}

// Count returns the number of entities in the world (O(1)).
func (r *Registry) Count() int {
	return int(r.count.Load())
}

func (r *Registry) transition(h spawn.Handle, fn func(e *Entity) error) error {
	v, ok := r.entities.Load(h)
	if !ok {
		return fmt.Errorf("%s: %w", h, ErrEntityNotFound)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(v.(*Entity))
}

// rollHeldItem tries each item in name order with its percent chance and
// returns the first hit, or "".
func (r *Registry) rollHeldItem(items map[string]float64) string {
	names := make([]string, 0, len(items))
	for name := range items {
		names = append(names, name)
	}
	slices.Sort(names)

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range names {
		if r.rng.Float64()*100 < items[name] {
			return name
		}
	}
	return ""
}
