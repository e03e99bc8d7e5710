package spawn

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/udisondev/regionspawn/internal/model"
	"github.com/udisondev/regionspawn/internal/region"
)

const testDimension = "minimal:overworld"

// fakeWorld is a sparse WorldQuery. Unset blocks are air.
type fakeWorld struct {
	mu       sync.RWMutex
	surface  map[model.Coord]float64
	water    map[model.Coord]bool
	roofs    map[[2]int32]int32 // column → y of a roof block
	unloaded map[[2]int32]bool  // chunk → unloaded
	phase    model.TimePhase
	weather  model.Weather

	surfaceCalls atomic.Int64
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		surface:  make(map[model.Coord]float64),
		water:    make(map[model.Coord]bool),
		roofs:    make(map[[2]int32]int32),
		unloaded: make(map[[2]int32]bool),
	}
}

// newFloorWorld returns a world with a full-block floor one below center,
// spanning |dx|, |dz| <= half.
func newFloorWorld(center model.Coord, half int32) *fakeWorld {
	w := newFakeWorld()
	for dx := -half; dx <= half; dx++ {
		for dz := -half; dz <= half; dz++ {
			w.surface[center.Add(dx, -1, dz)] = 1.0
		}
	}
	return w
}

func (w *fakeWorld) set(c model.Coord, height float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if height <= 0 {
		delete(w.surface, c)
		return
	}
	w.surface[c] = height
}

func (w *fakeWorld) setWater(c model.Coord) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.water[c] = true
}

func (w *fakeWorld) setRoof(x, z, y int32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.roofs[[2]int32{x, z}] = y
}

func (w *fakeWorld) unloadChunkAt(c model.Coord) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.unloaded[[2]int32{c.ChunkX(), c.ChunkZ()}] = true
}

func (w *fakeWorld) IsBlockingAt(c model.Coord) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.surface[c] > 0
}

func (w *fakeWorld) TopSurfaceHeight(c model.Coord) float64 {
	w.surfaceCalls.Add(1)
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.surface[c]
}

func (w *fakeWorld) IsChunkLoaded(c model.Coord) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return !w.unloaded[[2]int32{c.ChunkX(), c.ChunkZ()}]
}

func (w *fakeWorld) TimePhase() model.TimePhase { return w.phase }
func (w *fakeWorld) Weather() model.Weather { return w.weather }

func (w *fakeWorld) HasSkyAccess(c model.Coord) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	roof, ok := w.roofs[[2]int32{c.X, c.Z}]
	return !ok || roof <= c.Y
}

func (w *fakeWorld) IsSubmerged(c model.Coord) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.water[c]
}

type fakeResolver map[string]WorldQuery

func (r fakeResolver) World(dimension string) (WorldQuery, bool) {
	w, ok := r[dimension]
	return w, ok
}

// fakeEntities implements EntityFactory, EntityQuery and EntityRemover.
type fakeEntities struct {
	mu       sync.Mutex
	live     map[Handle]SpawnRequest
	requests []SpawnRequest
	fail     bool
}

func newFakeEntities() *fakeEntities {
	return &fakeEntities{live: make(map[Handle]SpawnRequest)}
}

var errFactoryDown = errors.New("factory down")

func (f *fakeEntities) Create(ctx context.Context, req SpawnRequest) (Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.fail {
		return uuid.Nil, errFactoryDown
	}
	h := uuid.New()
	f.live[h] = req
	return h, nil
}

func (f *fakeEntities) IsAliveAndWild(h Handle) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.live[h]
	return ok
}

func (f *fakeEntities) Despawn(h Handle) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.live[h]; !ok {
		return false
	}
	delete(f.live, h)
	return true
}

func (f *fakeEntities) killAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	clear(f.live)
}

func (f *fakeEntities) createCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeEntities) liveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.live)
}

type fakeCatalog map[string][]string

func (c fakeCatalog) Forms(species string) ([]string, bool) {
	forms, ok := c[species]
	return forms, ok
}

// fakeRepo implements RegionRepository and SpawnStateRepository in memory.
type fakeRepo struct {
	mu      sync.Mutex
	regions []model.Region
	ticks   map[model.Coord]int64
	saves   int
	failErr error
}

func (r *fakeRepo) LoadAll(ctx context.Context) ([]model.Region, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return nil, r.failErr
	}
	out := make([]model.Region, len(r.regions))
	for i, reg := range r.regions {
		out[i] = reg.Clone()
	}
	return out, nil
}

func (r *fakeRepo) SaveAll(ctx context.Context, regions []model.Region) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	r.regions = regions
	r.saves++
	return nil
}

func (r *fakeRepo) LoadSpawnTicks(ctx context.Context) (map[model.Coord]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ticks, nil
}

func (r *fakeRepo) SaveSpawnTicks(ctx context.Context, ticks map[model.Coord]int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks = ticks
	return nil
}

func testSelector() *Selector {
	return NewSelectorWithSource(rand.NewPCG(1, 2))
}

// testRegion returns a default region at key with one always-eligible candidate.
func testRegion(key model.Coord, name string) model.Region {
	r := model.NewRegion(key, name, testDimension)
	r.Candidates = []model.CandidateSpec{model.NewCandidate("pikachu", "")}
	return r
}

type schedulerFixture struct {
	store    *region.Store
	cache    *PositionCache
	tracker  *Tracker
	world    *fakeWorld
	entities *fakeEntities
	sched    *Scheduler
}

func newSchedulerFixture(world *fakeWorld, cfg SchedulerConfig) *schedulerFixture {
	store := region.NewStore()
	cache := NewPositionCache(store)
	tracker := NewTracker()
	entities := newFakeEntities()
	collab := Collaborators{
		Worlds:   fakeResolver{testDimension: world},
		Factory:  entities,
		Entities: entities,
	}
	return &schedulerFixture{
		store:    store,
		cache:    cache,
		tracker:  tracker,
		world:    world,
		entities: entities,
		sched:    NewScheduler(store, cache, testSelector(), tracker, collab, cfg),
	}
}
