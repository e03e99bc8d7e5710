package spawn

import (
	"sync"

	"github.com/udisondev/regionspawn/internal/model"
)

// VisualizationSink renders the spawn positions of a region for a viewer.
type VisualizationSink interface {
	Visualize(viewer string, r model.Region, positions []model.Coord)
}

// VisualRequest asks for one visualization of region Key to Viewer.
type VisualRequest struct {
	Viewer string
	Key    model.Coord
}

type visualEntry struct {
	key  model.Coord
	last int64
}

// Visualizer throttles per-viewer radius visualizations to one emission
// every interval ticks. A viewer watches at most one region at a time.
type Visualizer struct {
	interval int64

	mu     sync.Mutex
	active map[string]*visualEntry
}

// NewVisualizer creates a visualizer emitting every interval ticks.
func NewVisualizer(interval int64) *Visualizer {
	if interval < 1 {
		interval = 1
	}
	return &Visualizer{
		interval: interval,
		active:   make(map[string]*visualEntry),
	}
}

// Toggle switches visualization of key for viewer at tick and reports
// whether it is now on. Switching to another region replaces the old one.
func (v *Visualizer) Toggle(viewer string, key model.Coord, tick int64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if e, ok := v.active[viewer]; ok && e.key == key {
		delete(v.active, viewer)
		return false
	}
	v.active[viewer] = &visualEntry{key: key, last: tick - v.interval}
	return true
}

// Stop turns off visualization for viewer.
func (v *Visualizer) Stop(viewer string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.active, viewer)
}

// Due returns the requests whose last emission is at least interval ticks
// old and marks them emitted at tick. Viewers watching a region for which
// exists returns false are dropped.
func (v *Visualizer) Due(tick int64, exists func(model.Coord) bool) []VisualRequest {
	v.mu.Lock()
	defer v.mu.Unlock()

	var due []VisualRequest
	for viewer, e := range v.active {
		if !exists(e.key) {
			delete(v.active, viewer)
			continue
		}
		if tick-e.last < v.interval {
			continue
		}
		e.last = tick
		due = append(due, VisualRequest{Viewer: viewer, Key: e.key})
	}
	return due
}

// Len returns the number of active visualizations.
func (v *Visualizer) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.active)
}
