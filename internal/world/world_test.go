package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/regionspawn/internal/model"
	"github.com/udisondev/regionspawn/internal/spawn"
)

var _ spawn.WorldQuery = (*World)(nil)

func TestBlockKindShape(t *testing.T) {
	tests := []struct {
		kind       BlockKind
		height     float64
		blocking   bool
		seeThrough bool
	}{
		{Air, 0, false, true},
		{Solid, 1, true, false},
		{Slab, 0.5, true, false},
		{Carpet, 0.0625, true, false},
		{Water, 0, false, false},
		{Leaves, 1, true, true},
		{Spawner, 1, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.height, tt.kind.SurfaceHeight())
			assert.Equal(t, tt.blocking, tt.kind.Blocking())
			assert.Equal(t, tt.seeThrough, tt.kind.SeeThrough())
		})
	}
}

func TestParseBlockKind(t *testing.T) {
	k, err := ParseBlockKind(" Slab ")
	require.NoError(t, err)
	assert.Equal(t, Slab, k)

	_, err = ParseBlockKind("bedrock")
	assert.Error(t, err)
}

func TestSetBlockNotifies(t *testing.T) {
	w := New("overworld", 10)
	type change struct {
		dim      string
		at       model.Coord
		old, new BlockKind
	}
	var got []change
	w.Subscribe(func(dim string, at model.Coord, old, new BlockKind) {
		got = append(got, change{dim, at, old, new})
	})

	at := model.NewCoord(1, 2, 3)
	w.SetBlock(at, Solid)
	w.SetBlock(at, Solid)
	w.SetBlock(at, Air)

	require.Len(t, got, 2, "setting the same block twice notifies once")
	assert.Equal(t, change{"minimal:overworld", at, Air, Solid}, got[0])
	assert.Equal(t, change{"minimal:overworld", at, Solid, Air}, got[1])
	assert.Equal(t, 0, w.BlockCount(), "air is not stored")
}

func TestFillDoesNotNotify(t *testing.T) {
	w := New("overworld", 10)
	notified := false
	w.Subscribe(func(string, model.Coord, BlockKind, BlockKind) { notified = true })

	n := w.Fill(model.NewCoord(1, 0, 1), model.NewCoord(-1, 0, -1), Solid)

	assert.Equal(t, 9, n)
	assert.Equal(t, 9, w.BlockCount())
	assert.False(t, notified)
	assert.True(t, w.IsBlockingAt(model.NewCoord(-1, 0, 1)))
}

func TestHasSkyAccess(t *testing.T) {
	w := New("overworld", 20)
	floor := model.NewCoord(0, 5, 0)
	w.SetBlock(floor, Solid)

	assert.True(t, w.HasSkyAccess(floor))

	w.SetBlock(model.NewCoord(0, 12, 0), Leaves)
	assert.True(t, w.HasSkyAccess(floor), "leaves let the sky through")

	w.SetBlock(model.NewCoord(0, 20, 0), Solid)
	assert.False(t, w.HasSkyAccess(floor), "roof at top row")

	w.SetBlock(model.NewCoord(0, 20, 0), Air)
	w.SetBlock(model.NewCoord(0, 21, 0), Solid)
	assert.True(t, w.HasSkyAccess(floor), "blocks above TopY are ignored")
}

func TestSurfaceAndWater(t *testing.T) {
	w := New("overworld", 10)
	slab := model.NewCoord(0, 0, 0)
	pool := model.NewCoord(1, 0, 0)
	w.SetBlock(slab, Slab)
	w.SetBlock(pool, Water)

	assert.Equal(t, 0.5, w.TopSurfaceHeight(slab))
	assert.True(t, w.IsSubmerged(pool))
	assert.False(t, w.IsSubmerged(slab))
	assert.False(t, w.IsBlockingAt(pool))
}

func TestChunks(t *testing.T) {
	w := New("overworld", 10)
	c := model.NewCoord(-1, 0, 17)
	assert.False(t, w.IsChunkLoaded(c))

	w.LoadChunk(ChunkOf(c))
	assert.True(t, w.IsChunkLoaded(c))
	assert.True(t, w.IsChunkLoaded(model.NewCoord(-16, 50, 31)))
	assert.Equal(t, 1, w.LoadedChunks())

	w.UnloadChunk(ChunkPos{X: -1, Z: 1})
	assert.False(t, w.IsChunkLoaded(c))
}

func TestChunksCovering(t *testing.T) {
	got := ChunksCovering(-1, 0, 16, 15)
	assert.ElementsMatch(t, []ChunkPos{{-1, 0}, {0, 0}, {1, 0}}, got)
}

func TestPhaseAt(t *testing.T) {
	tests := []struct {
		time int64
		want model.TimePhase
	}{
		{0, model.PhaseDay},
		{DayEnd, model.PhaseDay},
		{DayEnd + 1, model.PhaseNight},
		{DayLength - 1, model.PhaseNight},
		{DayLength, model.PhaseDay},
		{-1, model.PhaseNight},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PhaseAt(tt.time), "time %d", tt.time)
	}
}

func TestClockAndWeather(t *testing.T) {
	w := New("overworld", 10)
	w.SetTimeOfDay(DayEnd)
	assert.Equal(t, model.PhaseDay, w.TimePhase())

	assert.Equal(t, int64(DayEnd+1), w.Advance(1))
	assert.Equal(t, model.PhaseNight, w.TimePhase())

	assert.Equal(t, model.WeatherClear, w.Weather())
	w.SetWeather(model.WeatherThunder)
	assert.Equal(t, model.WeatherThunder, w.Weather())
}

func TestNewFlat(t *testing.T) {
	w := NewFlat("overworld", FlatOptions{Radius: 8, GroundY: 63, TopY: 100})

	assert.Equal(t, 17*17, w.BlockCount())
	assert.Equal(t, Solid, w.Block(model.NewCoord(8, 63, -8)))
	assert.Equal(t, Air, w.Block(model.NewCoord(9, 63, 0)))
	assert.Equal(t, 4, w.LoadedChunks())
	assert.True(t, w.IsChunkLoaded(model.NewCoord(-8, 64, 8)))
	assert.Equal(t, int32(100), w.TopY())
}
