package spawn

import (
	"log/slog"
	"sync"
	"time"

	"github.com/udisondev/regionspawn/internal/model"
)

// Record links a live entity to the region that produced it.
type Record struct {
	Region   model.Coord
	Species  string
	LastSeen time.Time
}

// Tracker maps entity handles to their origin region.
//
// The per-region count is derived from the records themselves (through the
// byRegion index), never from a separate counter, so it cannot drift.
type Tracker struct {
	mu       sync.RWMutex
	records  map[Handle]*Record
	byRegion map[model.Coord]map[Handle]struct{}

	now func() time.Time
}

// NewTracker creates an empty population tracker.
func NewTracker() *Tracker {
	return &Tracker{
		records:  make(map[Handle]*Record),
		byRegion: make(map[model.Coord]map[Handle]struct{}),
		now:      time.Now,
	}
}

// Register records that h was produced by region.
// Registering a known handle moves it to the new region.
func (t *Tracker) Register(h Handle, region model.Coord, species string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if old, ok := t.records[h]; ok {
		t.unindex(h, old.Region)
	}
	t.records[h] = &Record{Region: region, Species: species, LastSeen: t.now()}
	set, ok := t.byRegion[region]
	if !ok {
		set = make(map[Handle]struct{})
		t.byRegion[region] = set
	}
	set[h] = struct{}{}
}

// CountFor returns the number of records belonging to region.
func (t *Tracker) CountFor(region model.Coord) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byRegion[region])
}

// HandlesFor returns the handles recorded for region.
func (t *Tracker) HandlesFor(region model.Coord) []Handle {
	t.mu.RLock()
	defer t.mu.RUnlock()
	set := t.byRegion[region]
	out := make([]Handle, 0, len(set))
	for h := range set {
		out = append(out, h)
	}
	return out
}

// Lookup returns the record for h.
func (t *Tracker) Lookup(h Handle) (Record, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.records[h]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Reclaim drops the records of region whose entity is no longer alive and
// wild, and refreshes LastSeen on the others. The entity query runs outside
// the lock. Returns the number of dropped records.
func (t *Tracker) Reclaim(region model.Coord, q EntityQuery) int {
	handles := t.HandlesFor(region)
	if len(handles) == 0 {
		return 0
	}

	var stale, live []Handle
	for _, h := range handles {
		if q.IsAliveAndWild(h) {
			live = append(live, h)
		} else {
			stale = append(stale, h)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	for _, h := range live {
		if rec, ok := t.records[h]; ok {
			rec.LastSeen = now
		}
	}
	removed := 0
	for _, h := range stale {
		rec, ok := t.records[h]
		if !ok || rec.Region != region {
			continue
		}
		delete(t.records, h)
		t.unindex(h, region)
		removed++
		slog.Debug("removed stale population record", "handle", h, "region", region)
	}
	return removed
}

// Remove drops the record for h.
func (t *Tracker) Remove(h Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[h]
	if !ok {
		return false
	}
	delete(t.records, h)
	t.unindex(h, rec.Region)
	return true
}

// ClearFor drops every record of region and returns the dropped handles.
func (t *Tracker) ClearFor(region model.Coord) []Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	set := t.byRegion[region]
	out := make([]Handle, 0, len(set))
	for h := range set {
		delete(t.records, h)
		out = append(out, h)
	}
	delete(t.byRegion, region)
	return out
}

// Regions returns the keys that have at least one record.
func (t *Tracker) Regions() []model.Coord {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]model.Coord, 0, len(t.byRegion))
	for key := range t.byRegion {
		out = append(out, key)
	}
	return out
}

// Clear drops every record.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.records)
	clear(t.byRegion)
}

// Len returns the total number of records.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.records)
}

// unindex removes h from the region index. Caller holds mu.
func (t *Tracker) unindex(h Handle, region model.Coord) {
	set, ok := t.byRegion[region]
	if !ok {
		return
	}
	delete(set, h)
	if len(set) == 0 {
		delete(t.byRegion, region)
	}
}
