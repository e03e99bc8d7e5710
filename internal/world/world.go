package world

import (
	"sync"
	"sync/atomic"

	"github.com/udisondev/regionspawn/internal/model"
)

// BlockListener is notified after a block of a world changed.
type BlockListener func(dimension string, at model.Coord, old, new BlockKind)

// World is one dimension: a sparse block map, the set of loaded chunks,
// a day clock and the weather. Unset blocks are air.
type World struct {
	dimension string
	topY      int32

	mu     sync.RWMutex
	blocks map[model.Coord]BlockKind
	chunks map[ChunkPos]struct{}

	timeOfDay atomic.Int64
	weather   atomic.Uint32 // model.Weather

	lmu       sync.RWMutex
	listeners []BlockListener
}

// New creates an empty world for dimension. topY bounds the sky access scan.
func New(dimension string, topY int32) *World {
	return &World{
		dimension: model.NormalizeDimension(dimension),
		topY:      topY,
		blocks:    make(map[model.Coord]BlockKind),
		chunks:    make(map[ChunkPos]struct{}),
	}
}

// Dimension returns the dimension id of the world.
func (w *World) Dimension() string {
	return w.dimension
}

// TopY returns the highest block row of the world.
func (w *World) TopY() int32 {
	return w.topY
}

// Subscribe registers l for block change notifications.
func (w *World) Subscribe(l BlockListener) {
	w.lmu.Lock()
	defer w.lmu.Unlock()
	w.listeners = append(w.listeners, l)
}

// Block returns the block at c.
func (w *World) Block(c model.Coord) BlockKind {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.blocks[c]
}

// SetBlock changes the block at c and notifies listeners when it differs.
// Listeners run on the caller's goroutine after the lock is released.
func (w *World) SetBlock(c model.Coord, k BlockKind) {
	w.mu.Lock()
	old := w.blocks[c]
	if old == k {
		w.mu.Unlock()
		return
	}
	if k == Air {
		delete(w.blocks, c)
	} else {
		w.blocks[c] = k
	}
	w.mu.Unlock()

	w.notify(c, old, k)
}

// Fill sets every block in the box spanned by from and to without
// notifying listeners. Used to build terrain before regions exist.
func (w *World) Fill(from, to model.Coord, k BlockKind) int {
	minX, maxX := min(from.X, to.X), max(from.X, to.X)
	minY, maxY := min(from.Y, to.Y), max(from.Y, to.Y)
	minZ, maxZ := min(from.Z, to.Z), max(from.Z, to.Z)

	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			for z := minZ; z <= maxZ; z++ {
				c := model.Coord{X: x, Y: y, Z: z}
				if k == Air {
					delete(w.blocks, c)
				} else {
					w.blocks[c] = k
				}
				n++
			}
		}
	}
	return n
}

// BlockCount returns the number of non-air blocks.
func (w *World) BlockCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.blocks)
}

// LoadChunk marks a chunk loaded.
func (w *World) LoadChunk(p ChunkPos) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.chunks[p] = struct{}{}
}

// UnloadChunk marks a chunk unloaded.
func (w *World) UnloadChunk(p ChunkPos) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.chunks, p)
}

// LoadedChunks returns the number of loaded chunks.
func (w *World) LoadedChunks() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.chunks)
}

// IsChunkLoaded reports whether the chunk holding c is loaded.
func (w *World) IsChunkLoaded(c model.Coord) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.chunks[ChunkOf(c)]
	return ok
}

// IsBlockingAt reports whether the block at c has a collision volume.
func (w *World) IsBlockingAt(c model.Coord) bool {
	return w.Block(c).Blocking()
}

// TopSurfaceHeight returns the top collision face height of the block at c.
func (w *World) TopSurfaceHeight(c model.Coord) float64 {
	return w.Block(c).SurfaceHeight()
}

// HasSkyAccess reports whether only air or leaves lie above c up to TopY.
func (w *World) HasSkyAccess(c model.Coord) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for y := c.Y + 1; y <= w.topY; y++ {
		if !w.blocks[model.Coord{X: c.X, Y: y, Z: c.Z}].SeeThrough() {
			return false
		}
	}
	return true
}

// IsSubmerged reports whether the block at c is water.
func (w *World) IsSubmerged(c model.Coord) bool {
	return w.Block(c) == Water
}

// TimeOfDay returns the world time in ticks.
func (w *World) TimeOfDay() int64 {
	return w.timeOfDay.Load()
}

// SetTimeOfDay sets the world time in ticks.
func (w *World) SetTimeOfDay(t int64) {
	w.timeOfDay.Store(t)
}

// Advance moves the clock forward by n ticks and returns the new time.
func (w *World) Advance(n int64) int64 {
	return w.timeOfDay.Add(n)
}

// TimePhase returns day or night for the current time of day.
func (w *World) TimePhase() model.TimePhase {
	return PhaseAt(w.timeOfDay.Load())
}

// Weather returns the current weather.
func (w *World) Weather() model.Weather {
	return model.Weather(w.weather.Load())
}

// SetWeather changes the weather.
func (w *World) SetWeather(weather model.Weather) {
	w.weather.Store(uint32(weather))
}

func (w *World) notify(c model.Coord, old, k BlockKind) {
	w.lmu.RLock()
	listeners := w.listeners
	w.lmu.RUnlock()
	for _, l := range listeners {
		l(w.dimension, c, old, k)
	}
}
