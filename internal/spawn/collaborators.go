package spawn

import (
	"context"

	"github.com/google/uuid"

	"github.com/udisondev/regionspawn/internal/model"
)

// Handle identifies a live entity created by the factory.
type Handle = uuid.UUID

// WorldQuery answers block and environment questions for one world.
// Implementations must return promptly; they are called on the tick goroutine.
type WorldQuery interface {
	// IsBlockingAt reports whether the block at c has a collision volume.
	IsBlockingAt(c model.Coord) bool
	// TopSurfaceHeight returns the height of the block's top collision face
	// in [0, 1]; 0 means no collision at all.
	TopSurfaceHeight(c model.Coord) float64
	IsChunkLoaded(c model.Coord) bool
	TimePhase() model.TimePhase
	Weather() model.Weather
	// HasSkyAccess reports whether only air or foliage lies above c.
	HasSkyAccess(c model.Coord) bool
	// IsSubmerged reports whether the block at c is water.
	IsSubmerged(c model.Coord) bool
}

// WorldResolver maps a dimension id onto its world.
type WorldResolver interface {
	World(dimension string) (WorldQuery, bool)
}

// SpawnRequest carries everything the factory needs to materialize one entity.
type SpawnRequest struct {
	Species   string
	Form      string
	Level     int
	Shiny     bool
	IVs       *[6]int // nil when IV rolls are disabled
	Size      *float64
	Capture   model.CaptureSettings
	EVs       model.EVSettings
	HeldItems model.HeldItems
	Position  model.Coord
	Dimension string
}

// EntityFactory materializes entities in a world.
type EntityFactory interface {
	Create(ctx context.Context, req SpawnRequest) (Handle, error)
}

// EntityQuery reports whether a handle still denotes a live, wild entity.
type EntityQuery interface {
	IsAliveAndWild(h Handle) bool
}

// EntityRemover despawns entities, used when culling a region.
type EntityRemover interface {
	Despawn(h Handle) bool
}

// SpeciesCatalog lists known species and their form names.
type SpeciesCatalog interface {
	Forms(species string) ([]string, bool)
}

// RegionRepository persists region configuration.
type RegionRepository interface {
	LoadAll(ctx context.Context) ([]model.Region, error)
	SaveAll(ctx context.Context, regions []model.Region) error
}

// SpawnStateRepository persists the last spawn tick of every region.
type SpawnStateRepository interface {
	LoadSpawnTicks(ctx context.Context) (map[model.Coord]int64, error)
	SaveSpawnTicks(ctx context.Context, ticks map[model.Coord]int64) error
}
