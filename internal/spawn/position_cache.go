package spawn

import (
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/udisondev/regionspawn/internal/model"
)

// MinSurfaceHeight is the lowest top-face height (fraction of a block) a
// floor block needs to carry a spawned entity.
const MinSurfaceHeight = 0.9

// RegionSource lists the regions known to the process.
type RegionSource interface {
	Snapshots() []*model.Region
}

// PositionCache caches validated placement points per region.
//
// Entries are stale-tolerant: they are only dropped on explicit
// invalidation. Every compute takes a token recorded in pending; an
// invalidation or Clear drops the token, and a compute whose token is gone
// still returns its result to the caller but does not store it, so a set
// that straddles a block change or a reload never outlives it.
type PositionCache struct {
	regions RegionSource

	mu      sync.RWMutex
	entries map[model.Coord][]model.Coord
	pending map[model.Coord]uint64 // in-flight compute tokens
	seq     uint64

	group singleflight.Group
}

// NewPositionCache creates an empty cache. regions is used by InvalidateNear.
func NewPositionCache(regions RegionSource) *PositionCache {
	return &PositionCache{
		regions: regions,
		entries: make(map[model.Coord][]model.Coord),
		pending: make(map[model.Coord]uint64),
	}
}

// GetOrCompute returns the cached positions for r, computing and caching
// them on a miss. The result is never nil and is shared: callers must not
// modify it.
func (c *PositionCache) GetOrCompute(r *model.Region, w WorldQuery) []model.Coord {
	c.mu.RLock()
	cached, ok := c.entries[r.Key]
	c.mu.RUnlock()
	if ok {
		return cached
	}

	v, _, _ := c.group.Do(r.Key.String(), func() (any, error) {
		c.mu.Lock()
		c.seq++
		token := c.seq
		c.pending[r.Key] = token
		c.mu.Unlock()

		positions := ComputePositions(r, w)

		c.mu.Lock()
		if c.pending[r.Key] == token {
			c.entries[r.Key] = positions
			delete(c.pending, r.Key)
		} else {
			slog.Debug("position set invalidated during compute, not cached", "region", r.Name, "key", r.Key)
		}
		c.mu.Unlock()
		return positions, nil
	})
	return v.([]model.Coord)
}

// Recompute drops the entry for r and computes it again.
func (c *PositionCache) Recompute(r *model.Region, w WorldQuery) []model.Coord {
	c.Invalidate(r.Key)
	return c.GetOrCompute(r, w)
}

// Invalidate drops the cached entry for key and disowns any compute in
// flight for it. Nothing is retained for key afterwards.
func (c *PositionCache) Invalidate(key model.Coord) {
	c.mu.Lock()
	delete(c.entries, key)
	delete(c.pending, key)
	c.mu.Unlock()
	c.group.Forget(key.String())
}

// InvalidateNear drops the entry of every region whose spawn box covers
// the changed block and returns their keys.
func (c *PositionCache) InvalidateNear(dimension string, changed model.Coord) []model.Coord {
	var invalidated []model.Coord
	for _, r := range c.regions.Snapshots() {
		if !r.Covers(dimension, changed) {
			continue
		}
		c.Invalidate(r.Key)
		invalidated = append(invalidated, r.Key)
		slog.Debug("invalidated cached spawn positions",
			"region", r.Name,
			"key", r.Key,
			"changed", changed)
	}
	return invalidated
}

// Cached returns the cached entry for key without computing.
func (c *PositionCache) Cached(key model.Coord) ([]model.Coord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	positions, ok := c.entries[key]
	return positions, ok
}

// Clear drops every entry and disowns every compute in flight.
func (c *PositionCache) Clear() {
	c.mu.Lock()
	keys := make([]model.Coord, 0, len(c.entries)+len(c.pending))
	for key := range c.entries {
		keys = append(keys, key)
	}
	for key := range c.pending {
		keys = append(keys, key)
	}
	clear(c.entries)
	clear(c.pending)
	c.mu.Unlock()

	for _, key := range keys {
		c.group.Forget(key.String())
	}
}

// Len returns the number of cached regions.
func (c *PositionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// ComputePositions scans the spawn box of r and returns every safe point.
func ComputePositions(r *model.Region, w WorldQuery) []model.Coord {
	width, height := r.Radius.Width, r.Radius.Height
	positions := make([]model.Coord, 0)
	for dx := -width; dx <= width; dx++ {
		for dy := -height; dy <= height; dy++ {
			for dz := -width; dz <= width; dz++ {
				p := r.Key.Add(dx, dy, dz)
				if IsSafePosition(w, p) {
					positions = append(positions, p)
				}
			}
		}
	}
	slog.Debug("computed spawn positions", "region", r.Name, "key", r.Key, "count", len(positions))
	return positions
}

// IsSafePosition reports whether an entity can stand at p: a solid enough
// floor below, and no collision at p or directly above.
func IsSafePosition(w WorldQuery, p model.Coord) bool {
	if w.TopSurfaceHeight(p.Down()) < MinSurfaceHeight {
		return false
	}
	if w.IsBlockingAt(p) {
		return false
	}
	return !w.IsBlockingAt(p.Up())
}

// FilterByMedium keeps the positions that satisfy the placement medium.
func FilterByMedium(positions []model.Coord, medium model.Medium, w WorldQuery) []model.Coord {
	if medium == model.MediumAny {
		return positions
	}
	out := make([]model.Coord, 0, len(positions))
	for _, p := range positions {
		var ok bool
		switch medium {
		case model.MediumSurface:
			ok = w.HasSkyAccess(p)
		case model.MediumUnderground:
			ok = !w.HasSkyAccess(p) && !w.IsSubmerged(p)
		case model.MediumWater:
			ok = w.IsSubmerged(p)
		}
		if ok {
			out = append(out, p)
		}
	}
	return out
}
