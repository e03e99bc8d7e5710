package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/regionspawn/internal/model"
	"github.com/udisondev/regionspawn/internal/testutil"
)

func testRegion(x int32, name string) model.Region {
	r := model.NewRegion(model.NewCoord(x, 64, 0), name, "minimal:overworld")
	c := model.NewCandidate("pikachu", "alola")
	c.Weight = 25
	c.Time = model.TimeNight
	c.Weather = model.WeatherGateRain
	c.Medium = model.MediumSurface
	c.Size = model.SizeSettings{Enabled: true, Min: 0.5, Max: 1.5}
	c.HeldItems = model.HeldItems{Enabled: true, Items: map[string]float64{"oran_berry": 12.5}}
	r.Candidates = append(r.Candidates, c)
	return r
}

func TestRegionRepository_SaveLoadRoundTrip(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewRegionRepository(pool)
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)

	want := []model.Region{testRegion(10, "alpha"), testRegion(20, "beta")}
	want[1].Capacity = 0
	want[1].Radius = model.Radius{Width: 2, Height: 1}

	require.NoError(t, repo.SaveAll(ctx, want))

	got, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, want[0], got[0])
	assert.Equal(t, want[1], got[1])
}

func TestRegionRepository_SaveAllReplaces(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewRegionRepository(pool)
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)

	require.NoError(t, repo.SaveAll(ctx, []model.Region{testRegion(1, "a"), testRegion(2, "b")}))

	kept := testRegion(2, "b")
	kept.TimerTicks = 40
	require.NoError(t, repo.SaveAll(ctx, []model.Region{kept}))

	got, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].Name)
	assert.EqualValues(t, 40, got[0].TimerTicks)
}

func TestRegionRepository_SwapNames(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewRegionRepository(pool)
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)

	a, b := testRegion(1, "first"), testRegion(2, "second")
	require.NoError(t, repo.SaveAll(ctx, []model.Region{a, b}))

	a.Name, b.Name = "second", "first"
	require.NoError(t, repo.SaveAll(ctx, []model.Region{a, b}))

	got, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a.Key, got[1].Key, "region at x=1 is now named second")
}

func TestRegionRepository_SaveEmpty(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewRegionRepository(pool)
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)

	require.NoError(t, repo.SaveAll(ctx, []model.Region{testRegion(1, "a")}))
	require.NoError(t, repo.SaveAll(ctx, nil))

	got, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSpawnStateRepository_RoundTrip(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewSpawnStateRepository(pool)
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)

	want := map[model.Coord]int64{
		model.NewCoord(1, 2, 3):    -150,
		model.NewCoord(-4, 70, 9):  0,
		model.NewCoord(100, 5, -8): 3,
	}
	require.NoError(t, repo.SaveSpawnTicks(ctx, want))

	got, err := repo.LoadSpawnTicks(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, repo.SaveSpawnTicks(ctx, map[model.Coord]int64{model.NewCoord(1, 2, 3): -1}))
	got, err = repo.LoadSpawnTicks(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[model.Coord]int64{model.NewCoord(1, 2, 3): -1}, got)
}

func TestDB_SchemaVersion(t *testing.T) {
	pool := setupTestDB(t)
	d := &DB{pool: pool}

	version, err := d.SchemaVersion(testutil.ContextWithTimeout(t, 30*time.Second))
	require.NoError(t, err)
	assert.EqualValues(t, 1, version)
}

func TestRegionRepository_NilCandidatesStoredAsEmptyList(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewRegionRepository(pool)
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)

	r := model.NewRegion(model.NewCoord(5, 64, 5), "bare", "")
	r.Candidates = nil
	require.NoError(t, repo.SaveAll(ctx, []model.Region{r}))

	var raw string
	require.NoError(t, pool.QueryRow(ctx, "SELECT candidates::text FROM regions WHERE name = 'bare'").Scan(&raw))
	assert.Equal(t, "[]", raw)

	got, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NotNil(t, got[0].Candidates)
	assert.Empty(t, got[0].Candidates)
}
