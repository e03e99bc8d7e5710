package spawn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/udisondev/regionspawn/internal/model"
)

var (
	ErrChunkNotLoaded     = errors.New("chunk not loaded")
	ErrUnknownSpecies     = errors.New("unknown species")
	ErrNoPositionInMedium = errors.New("no position matches placement medium")
)

// Outcome is the terminal state a region reached during one tick.
type Outcome uint8

const (
	OutcomeIdle Outcome = iota
	OutcomeWorldUnresolved
	OutcomeInvalidConfig
	OutcomeEditing
	OutcomeCapacityBlocked
	OutcomePositionsEmpty
	OutcomeNoEligibleCandidates
	OutcomeInvalidWeights
	OutcomeSpawned
)

var outcomeNames = [...]string{
	OutcomeIdle:                 "idle",
	OutcomeWorldUnresolved:      "world_unresolved",
	OutcomeInvalidConfig:        "invalid_config",
	OutcomeEditing:              "editing",
	OutcomeCapacityBlocked:      "capacity_blocked",
	OutcomePositionsEmpty:       "positions_empty",
	OutcomeNoEligibleCandidates: "no_eligible_candidates",
	OutcomeInvalidWeights:       "invalid_weights",
	OutcomeSpawned:              "spawned",
}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return fmt.Sprintf("outcome(%d)", o)
}

// RegionResult describes what one tick did to one region.
type RegionResult struct {
	Key      model.Coord
	Name     string
	Outcome  Outcome
	Spawned  int
	Attempts int
}

// TickReport collects the per-region results of one tick.
type TickReport struct {
	Tick    int64
	Results []RegionResult
}

// Spawned returns the number of entities created during the tick.
func (r TickReport) Spawned() int {
	n := 0
	for _, res := range r.Results {
		n += res.Spawned
	}
	return n
}

// Result returns the result recorded for key.
func (r TickReport) Result(key model.Coord) (RegionResult, bool) {
	for _, res := range r.Results {
		if res.Key == key {
			return res, true
		}
	}
	return RegionResult{}, false
}

// RegionView is the read side of the region store used by the scheduler.
type RegionView interface {
	RegionSource
	Snapshot(key model.Coord) (*model.Region, bool)
	IsEditing(key model.Coord) bool
}

// SchedulerConfig tunes the scheduler.
type SchedulerConfig struct {
	MaxAttemptsPerSpawn int
	StartJitterTicks    int64
}

// DefaultSchedulerConfig returns 5 attempts per requested entity and a
// 0..5 tick start jitter.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		MaxAttemptsPerSpawn: 5,
		StartJitterTicks:    5,
	}
}

// Collaborators groups the external services the scheduler drives.
// Species may be nil, in which case every species is accepted with no forms.
type Collaborators struct {
	Worlds   WorldResolver
	Factory  EntityFactory
	Entities EntityQuery
	Species  SpeciesCatalog
}

// Scheduler decides, once per tick, which regions are due and spawns into them.
type Scheduler struct {
	regions  RegionView
	cache    *PositionCache
	selector *Selector
	tracker  *Tracker
	collab   Collaborators
	cfg      SchedulerConfig

	// procMu is held while one region is processed, so Exclusive callers
	// (region removal) never interleave with a half-done spawn pass.
	procMu sync.Mutex

	mu        sync.Mutex
	lastSpawn map[model.Coord]int64
}

// NewScheduler creates a scheduler over the given services.
func NewScheduler(
	regions RegionView,
	cache *PositionCache,
	selector *Selector,
	tracker *Tracker,
	collab Collaborators,
	cfg SchedulerConfig,
) *Scheduler {
	if cfg.MaxAttemptsPerSpawn < 1 {
		cfg.MaxAttemptsPerSpawn = 1
	}
	return &Scheduler{
		regions:   regions,
		cache:     cache,
		selector:  selector,
		tracker:   tracker,
		collab:    collab,
		cfg:       cfg,
		lastSpawn: make(map[model.Coord]int64),
	}
}

// Prime initialises the last spawn tick of every known region to
// now + uniform[0, StartJitterTicks] + offsets[key]. offsets are the values
// returned by SpawnOffsets before the previous shutdown; the jitter keeps
// regions with equal timers from firing in lockstep.
func (s *Scheduler) Prime(now int64, offsets map[model.Coord]int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.regions.Snapshots() {
		jitter := s.selector.Int64Between(0, s.cfg.StartJitterTicks)
		s.lastSpawn[r.Key] = now + jitter + offsets[r.Key]
	}
}

// LastSpawnTick returns the last spawn tick of key (0 if never set).
func (s *Scheduler) LastSpawnTick(key model.Coord) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSpawn[key]
}

// SetLastSpawnTick overrides the last spawn tick of key.
func (s *Scheduler) SetLastSpawnTick(key model.Coord, tick int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSpawn[key] = tick
}

// SpawnOffsets returns lastSpawnTick - now for every region, the form in
// which spawn timers are persisted across restarts.
func (s *Scheduler) SpawnOffsets(now int64) map[model.Coord]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[model.Coord]int64, len(s.lastSpawn))
	for key, last := range s.lastSpawn {
		out[key] = last - now
	}
	return out
}

// Forget drops the due state of key.
func (s *Scheduler) Forget(key model.Coord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lastSpawn, key)
}

// Reset drops the due state of every region.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.lastSpawn)
}

// Tick processes every region once. A failing region never stops the
// others; processing stops early only when ctx is canceled.
func (s *Scheduler) Tick(ctx context.Context, tick int64) TickReport {
	regions := s.regions.Snapshots()
	report := TickReport{Tick: tick, Results: make([]RegionResult, 0, len(regions))}

	for _, listed := range regions {
		if ctx.Err() != nil {
			break
		}

		s.procMu.Lock()
		// Re-read under procMu: the region may have been removed or edited
		// since the list was taken.
		r, ok := s.regions.Snapshot(listed.Key)
		if !ok {
			s.procMu.Unlock()
			continue
		}
		res := s.processRegion(ctx, r, tick)
		s.procMu.Unlock()

		report.Results = append(report.Results, res)

		if res.Outcome != OutcomeIdle {
			slog.Debug("region processed",
				"region", r.Name,
				"tick", tick,
				"outcome", res.Outcome,
				"spawned", res.Spawned,
				"attempts", res.Attempts)
		}
	}
	return report
}

// Exclusive runs fn while no region is being processed.
func (s *Scheduler) Exclusive(fn func()) {
	s.procMu.Lock()
	defer s.procMu.Unlock()
	fn()
}

func (s *Scheduler) processRegion(ctx context.Context, r *model.Region, tick int64) RegionResult {
	res := RegionResult{Key: r.Key, Name: r.Name, Outcome: OutcomeIdle}

	if err := r.Validate(); err != nil {
		slog.Error("invalid region config, skipping", "region", r.Name, "error", err)
		res.Outcome = OutcomeInvalidConfig
		return res
	}

	w, ok := s.collab.Worlds.World(r.Dimension)
	if !ok {
		slog.Error("world not found for region", "region", r.Name, "dimension", r.Dimension)
		res.Outcome = OutcomeWorldUnresolved
		return res
	}

	s.tracker.Reclaim(r.Key, s.collab.Entities)

	if tick-s.LastSpawnTick(r.Key) <= r.TimerTicks {
		return res
	}

	if s.regions.IsEditing(r.Key) {
		slog.Debug("edit session open, skipping spawn", "region", r.Name)
		res.Outcome = OutcomeEditing
		return res
	}

	// Every branch below re-arms the full timer.
	defer s.SetLastSpawnTick(r.Key, tick)

	if errs := r.ValidateCandidates(); len(errs) > 0 {
		for _, err := range errs {
			slog.Error("malformed candidate, skipping region", "region", r.Name, "error", err)
		}
		res.Outcome = OutcomeInvalidConfig
		return res
	}

	count := s.tracker.CountFor(r.Key)
	if count >= r.Capacity {
		slog.Debug("spawn limit reached", "region", r.Name, "count", count, "capacity", r.Capacity)
		res.Outcome = OutcomeCapacityBlocked
		return res
	}

	positions := s.cache.GetOrCompute(r, w)
	if len(positions) == 0 {
		positions = s.cache.Recompute(r, w)
	}
	if len(positions) == 0 {
		slog.Error("no valid spawn positions after two attempts", "region", r.Name, "key", r.Key)
		res.Outcome = OutcomePositionsEmpty
		return res
	}

	eligible := s.selector.Eligible(r.Candidates, w.TimePhase(), w.Weather())
	if len(eligible) == 0 {
		slog.Debug("no eligible candidates", "region", r.Name)
		res.Outcome = OutcomeNoEligibleCandidates
		return res
	}
	if TotalWeight(eligible) <= 0 {
		slog.Warn("total spawn weight is zero or negative, skipping", "region", r.Name)
		res.Outcome = OutcomeInvalidWeights
		return res
	}

	amount := min(r.BatchSize, r.Capacity-count)
	maxAttempts := amount * s.cfg.MaxAttemptsPerSpawn
	for res.Spawned < amount && res.Attempts < maxAttempts {
		res.Attempts++
		if err := s.attempt(ctx, r, w, positions, eligible); err != nil {
			slog.Debug("spawn attempt failed", "region", r.Name, "attempt", res.Attempts, "error", err)
			continue
		}
		res.Spawned++
	}

	res.Outcome = OutcomeSpawned
	return res
}

// attempt performs one placement: pick a candidate, pick a position that
// fits its medium, and ask the factory to create the entity.
func (s *Scheduler) attempt(
	ctx context.Context,
	r *model.Region,
	w WorldQuery,
	positions []model.Coord,
	eligible []model.CandidateSpec,
) error {
	cand, err := s.selector.Pick(eligible)
	if err != nil {
		return err
	}

	fitting := FilterByMedium(positions, cand.Medium, w)
	if len(fitting) == 0 {
		return fmt.Errorf("%s (%s): %w", cand.Species, cand.Medium, ErrNoPositionInMedium)
	}
	pos := fitting[s.selector.Intn(len(fitting))]

	if !w.IsChunkLoaded(pos) {
		return fmt.Errorf("at %s: %w", pos, ErrChunkNotLoaded)
	}

	species := NormalizeSpecies(cand.Species)
	var forms []string
	if s.collab.Species != nil {
		known, ok := s.collab.Species.Forms(species)
		if !ok {
			return fmt.Errorf("%q: %w", cand.Species, ErrUnknownSpecies)
		}
		forms = known
	}

	rolls := s.selector.Roll(cand, forms)
	req := SpawnRequest{
		Species:   species,
		Form:      rolls.Form,
		Level:     rolls.Level,
		Shiny:     rolls.Shiny,
		IVs:       rolls.IVs,
		Size:      rolls.Size,
		Capture:   cand.Capture,
		EVs:       cand.EVs,
		HeldItems: cand.HeldItems,
		Position:  pos,
		Dimension: r.Dimension,
	}

	h, err := s.collab.Factory.Create(ctx, req)
	if err != nil {
		return fmt.Errorf("creating %s at %s: %w", species, pos, err)
	}

	s.tracker.Register(h, r.Key, cand.Species)
	slog.Debug("entity spawned",
		"region", r.Name,
		"species", species,
		"form", rolls.Form,
		"level", rolls.Level,
		"shiny", rolls.Shiny,
		"handle", h,
		"position", pos)
	return nil
}
