package spawn

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/udisondev/regionspawn/internal/model"
	"github.com/udisondev/regionspawn/internal/region"
)

// ManagerConfig tunes the manager.
type ManagerConfig struct {
	Scheduler             SchedulerConfig
	CullOnStop            bool
	VisualizationInterval int64
}

// DefaultManagerConfig returns the default scheduler settings, culling on
// stop and a 20 tick visualization interval.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		Scheduler:             DefaultSchedulerConfig(),
		CullOnStop:            true,
		VisualizationInterval: 20,
	}
}

// Stats is a point-in-time view of the manager's maps.
type Stats struct {
	Regions        int
	CachedRegions  int
	Population     int
	Visualizations int
	LastTick       int64
}

// Manager ties the region store to the spawn machinery and is the entry
// point for region edits, world events and persistence.
type Manager struct {
	store      *region.Store
	cache      *PositionCache
	tracker    *Tracker
	selector   *Selector
	scheduler  *Scheduler
	visualizer *Visualizer

	collab  Collaborators
	remover EntityRemover
	regions RegionRepository
	state   SpawnStateRepository // nil: spawn timers are not persisted
	sink    VisualizationSink    // nil: visualizations are dropped

	cfg      ManagerConfig
	lastTick atomic.Int64
}

// NewManager creates a manager over store. state may be nil.
func NewManager(
	store *region.Store,
	regions RegionRepository,
	state SpawnStateRepository,
	collab Collaborators,
	remover EntityRemover,
	selector *Selector,
	cfg ManagerConfig,
) *Manager {
	if selector == nil {
		selector = NewSelector()
	}
	cache := NewPositionCache(store)
	tracker := NewTracker()
	return &Manager{
		store:      store,
		cache:      cache,
		tracker:    tracker,
		selector:   selector,
		scheduler:  NewScheduler(store, cache, selector, tracker, collab, cfg.Scheduler),
		visualizer: NewVisualizer(cfg.VisualizationInterval),
		collab:     collab,
		remover:    remover,
		regions:    regions,
		state:      state,
		cfg:        cfg,
	}
}

// SetVisualizationSink sets where due visualizations are sent.
func (m *Manager) SetVisualizationSink(sink VisualizationSink) {
	m.sink = sink
}

func (m *Manager) Store() *region.Store { return m.store }
func (m *Manager) Cache() *PositionCache { return m.cache }
func (m *Manager) Tracker() *Tracker { return m.tracker }
func (m *Manager) Scheduler() *Scheduler { return m.scheduler }
func (m *Manager) Visualizer() *Visualizer { return m.visualizer }
func (m *Manager) LastTick() int64 { return m.lastTick.Load() }
func (m *Manager) Config() ManagerConfig { return m.cfg }
func (m *Manager) Collaborators() Collaborators { return m.collab }

// Load reads regions and spawn timers from the repositories and primes the
// scheduler at now. A failure to read spawn timers is logged and the
// regions start with fresh timers.
func (m *Manager) Load(ctx context.Context, now int64) error {
	regions, err := m.regions.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading regions: %w", err)
	}
	loaded := m.store.Replace(regions)

	var offsets map[model.Coord]int64
	if m.state != nil {
		offsets, err = m.state.LoadSpawnTicks(ctx)
		if err != nil {
			slog.Warn("loading spawn timers failed, starting fresh", "error", err)
			offsets = nil
		}
	}

	m.lastTick.Store(now)
	m.scheduler.Prime(now, offsets)

	slog.Info("regions loaded", "count", loaded, "skipped", len(regions)-loaded)
	return nil
}

// Save writes regions and spawn timers to the repositories.
func (m *Manager) Save(ctx context.Context) error {
	if err := m.regions.SaveAll(ctx, m.store.All()); err != nil {
		return fmt.Errorf("saving regions: %w", err)
	}
	if m.state == nil {
		return nil
	}
	if err := m.state.SaveSpawnTicks(ctx, m.scheduler.SpawnOffsets(m.lastTick.Load())); err != nil {
		return fmt.Errorf("saving spawn timers: %w", err)
	}
	return nil
}

// Reload drops cached positions and timers and loads everything again.
// Population records of regions that no longer exist are forgotten; the
// entities themselves stay in the world.
func (m *Manager) Reload(ctx context.Context) error {
	var err error
	m.scheduler.Exclusive(func() {
		m.cache.Clear()
		m.scheduler.Reset()
		err = m.Load(ctx, m.lastTick.Load())
		if err != nil {
			return
		}
		for _, key := range m.tracker.Regions() {
			if _, ok := m.store.Snapshot(key); !ok {
				m.tracker.ClearFor(key)
			}
		}
	})
	if err != nil {
		return fmt.Errorf("reloading: %w", err)
	}
	return nil
}

// PlaceRegion creates a region with default settings at the given block
// and names it region_N.
func (m *Manager) PlaceRegion(dimension string, at model.Coord) (model.Region, error) {
	r := model.NewRegion(at, m.store.NextName(), dimension)
	if err := m.AddRegion(r); err != nil {
		return model.Region{}, err
	}
	return r, nil
}

// AddRegion stores r and arms its timer from the last seen tick.
func (m *Manager) AddRegion(r model.Region) error {
	if err := m.store.Add(r); err != nil {
		return err
	}
	m.cache.Invalidate(r.Key)
	m.scheduler.SetLastSpawnTick(r.Key, m.lastTick.Load())
	slog.Info("region added", "region", r.Name, "key", r.Key, "dimension", r.Dimension)
	return nil
}

// RemoveRegion deletes the region at key together with its cached
// positions, population records and timer. When it returns, no tick is
// still working on the region.
func (m *Manager) RemoveRegion(key model.Coord) bool {
	var removed bool
	m.scheduler.Exclusive(func() {
		removed = m.store.Remove(key)
		if !removed {
			return
		}
		m.cache.Invalidate(key)
		m.tracker.ClearFor(key)
		m.scheduler.Forget(key)
	})
	if removed {
		slog.Info("region removed", "key", key)
	}
	return removed
}

// EditRegion applies fn to a copy of the region and stores the result.
// Cached positions are dropped when the radius or dimension changed.
func (m *Manager) EditRegion(key model.Coord, fn func(r *model.Region) error) (model.Region, error) {
	before, ok := m.store.Get(key)
	if !ok {
		return model.Region{}, fmt.Errorf("editing %s: %w", key, region.ErrRegionNotFound)
	}
	after, err := m.store.Update(key, fn)
	if err != nil {
		return model.Region{}, err
	}
	if after.Radius != before.Radius || after.Dimension != before.Dimension {
		m.cache.Invalidate(key)
	}
	return after, nil
}

// Rename renames a region.
func (m *Manager) Rename(current, next string) error {
	return m.store.Rename(current, next)
}

// AddCandidate adds c to the region at key.
func (m *Manager) AddCandidate(key model.Coord, c model.CandidateSpec) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return m.store.AddCandidate(key, c)
}

// RemoveCandidate removes a candidate from the region at key.
func (m *Manager) RemoveCandidate(key model.Coord, species, form string) error {
	return m.store.RemoveCandidate(key, species, form)
}

// ToggleVisibility flips the region's marker visibility.
func (m *Manager) ToggleVisibility(key model.Coord) (bool, error) {
	return m.store.ToggleVisibility(key)
}

// BeginEdit opens an edit session; due ticks skip the region until EndEdit.
func (m *Manager) BeginEdit(key model.Coord) bool {
	return m.store.BeginEdit(key)
}

// EndEdit closes the edit session of key.
func (m *Manager) EndEdit(key model.Coord) {
	m.store.EndEdit(key)
}

// ToggleVisualization switches the radius visualization of key for viewer.
func (m *Manager) ToggleVisualization(viewer string, key model.Coord) (bool, error) {
	if _, ok := m.store.Snapshot(key); !ok {
		return false, fmt.Errorf("visualizing %s: %w", key, region.ErrRegionNotFound)
	}
	return m.visualizer.Toggle(viewer, key, m.lastTick.Load()), nil
}

// OnBlockChanged reacts to a block change in a world. Breaking the block
// that anchors a region removes the region; any other change drops the
// cached positions of the regions that cover it.
func (m *Manager) OnBlockChanged(dimension string, at model.Coord, broken bool) {
	if r, ok := m.store.Snapshot(at); ok && r.Dimension == dimension && broken {
		m.RemoveRegion(at)
		return
	}
	m.cache.InvalidateNear(dimension, at)
}

// Cull despawns every entity recorded for the region at key and forgets
// them. Returns the number of despawned entities.
func (m *Manager) Cull(ctx context.Context, key model.Coord) (int, error) {
	if _, ok := m.store.Snapshot(key); !ok {
		return 0, fmt.Errorf("culling %s: %w", key, region.ErrRegionNotFound)
	}
	return m.cull(ctx, key), nil
}

func (m *Manager) cull(ctx context.Context, key model.Coord) int {
	despawned := 0
	for _, h := range m.tracker.ClearFor(key) {
		if ctx.Err() != nil {
			break
		}
		if m.remover != nil && m.remover.Despawn(h) {
			despawned++
		}
	}
	slog.Info("region culled", "key", key, "despawned", despawned)
	return despawned
}

// Shutdown culls every region when configured to and persists state.
func (m *Manager) Shutdown(ctx context.Context) error {
	if m.cfg.CullOnStop {
		total := 0
		for _, key := range m.tracker.Regions() {
			total += m.cull(ctx, key)
		}
		slog.Info("spawned entities culled on stop", "count", total)
	}

	if err := m.Save(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Tick runs one scheduler pass and emits due visualizations.
func (m *Manager) Tick(ctx context.Context, tick int64) TickReport {
	m.lastTick.Store(tick)
	report := m.scheduler.Tick(ctx, tick)

	exists := func(key model.Coord) bool {
		_, ok := m.store.Snapshot(key)
		return ok
	}
	for _, req := range m.visualizer.Due(tick, exists) {
		m.emitVisualization(req)
	}
	return report
}

func (m *Manager) emitVisualization(req VisualRequest) {
	if m.sink == nil {
		return
	}
	r, ok := m.store.Get(req.Key)
	if !ok {
		return
	}
	w, ok := m.collab.Worlds.World(r.Dimension)
	if !ok {
		return
	}
	m.sink.Visualize(req.Viewer, r, m.cache.GetOrCompute(&r, w))
}

// Stats returns the current map sizes.
func (m *Manager) Stats() Stats {
	return Stats{
		Regions:        m.store.Len(),
		CachedRegions:  m.cache.Len(),
		Population:     m.tracker.Len(),
		Visualizations: m.visualizer.Len(),
		LastTick:       m.lastTick.Load(),
	}
}
