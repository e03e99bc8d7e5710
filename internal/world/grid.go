package world

import "github.com/udisondev/regionspawn/internal/model"

// Chunk grid constants.
const (
	// ChunkShift - shift by N bits for 2^N blocks per chunk side (2^4 = 16)
	ChunkShift = 4

	// ChunkSize in blocks along X and Z
	ChunkSize = 1 << ChunkShift

	// DayLength in ticks; [0, DayEnd] of each day is daytime
	DayLength = 24000
	DayEnd    = 12000
)

// ChunkPos identifies a 16x16 block column.
type ChunkPos struct {
	X, Z int32
}

// ChunkOf returns the chunk holding c.
func ChunkOf(c model.Coord) ChunkPos {
	return ChunkPos{X: c.X >> ChunkShift, Z: c.Z >> ChunkShift}
}

// ChunksCovering returns every chunk that intersects the block square
// [minX, maxX] x [minZ, maxZ].
func ChunksCovering(minX, minZ, maxX, maxZ int32) []ChunkPos {
	var out []ChunkPos
	for cx := minX >> ChunkShift; cx <= maxX>>ChunkShift; cx++ {
		for cz := minZ >> ChunkShift; cz <= maxZ>>ChunkShift; cz++ {
			out = append(out, ChunkPos{X: cx, Z: cz})
		}
	}
	return out
}

// PhaseAt returns the time phase for a time of day in ticks.
func PhaseAt(timeOfDay int64) model.TimePhase {
	t := timeOfDay % DayLength
	if t < 0 {
		t += DayLength
	}
	if t <= DayEnd {
		return model.PhaseDay
	}
	return model.PhaseNight
}
