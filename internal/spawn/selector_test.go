package spawn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/regionspawn/internal/model"
)

func weighted(species string, weight float64) model.CandidateSpec {
	c := model.NewCandidate(species, "")
	c.Weight = weight
	return c
}

func TestSelector_PickDistribution(t *testing.T) {
	s := testSelector()
	cands := []model.CandidateSpec{weighted("a", 10), weighted("b", 20), weighted("c", 70)}

	const draws = 100_000
	counts := map[string]int{}
	for range draws {
		c, err := s.Pick(cands)
		require.NoError(t, err)
		counts[c.Species]++
	}

	for species, want := range map[string]float64{"a": 0.10, "b": 0.20, "c": 0.70} {
		got := float64(counts[species]) / draws
		assert.InDelta(t, want, got, 0.02, "species %s", species)
	}
}

func TestSelector_PickNeverReturnsZeroWeight(t *testing.T) {
	s := testSelector()
	cands := []model.CandidateSpec{weighted("zero", 0), weighted("one", 1), weighted("zero2", 0)}

	for range 10_000 {
		c, err := s.Pick(cands)
		require.NoError(t, err)
		assert.Equal(t, "one", c.Species)
	}
}

func TestSelector_PickNoMass(t *testing.T) {
	s := testSelector()

	_, err := s.Pick(nil)
	assert.ErrorIs(t, err, ErrNoEligibleCandidates)

	_, err = s.Pick([]model.CandidateSpec{weighted("a", 0), weighted("b", 0)})
	assert.ErrorIs(t, err, ErrNoEligibleCandidates)
}

func TestSelector_Eligible(t *testing.T) {
	s := testSelector()
	day := weighted("day", 1)
	day.Time = model.TimeDay
	night := weighted("night", 1)
	night.Time = model.TimeNight
	sunny := weighted("clear", 1)
	sunny.Weather = model.WeatherGateClear
	zero := weighted("zero", 0)

	got := s.Eligible([]model.CandidateSpec{day, night, sunny, zero}, model.PhaseNight, model.WeatherRain)

	names := make([]string, 0, len(got))
	for _, c := range got {
		names = append(names, c.Species)
	}
	assert.Equal(t, []string{"night", "zero"}, names)
}

func TestSelector_RollRanges(t *testing.T) {
	s := testSelector()
	c := model.NewCandidate("bulbasaur", "")
	c.Level = model.Range{Min: 5, Max: 7}
	c.IVs.Enabled = true
	c.IVs.Speed = model.Range{Min: 31, Max: 31}
	c.Size = model.SizeSettings{Enabled: true, Min: 0.5, Max: 1.5}

	seen := map[int]bool{}
	for range 1000 {
		r := s.Roll(c, nil)
		require.GreaterOrEqual(t, r.Level, 5)
		require.LessOrEqual(t, r.Level, 7)
		seen[r.Level] = true

		require.NotNil(t, r.IVs)
		assert.Equal(t, 31, r.IVs[5])
		for _, iv := range r.IVs {
			require.GreaterOrEqual(t, iv, 0)
			require.LessOrEqual(t, iv, 31)
		}

		require.NotNil(t, r.Size)
		require.GreaterOrEqual(t, *r.Size, 0.5)
		require.LessOrEqual(t, *r.Size, 1.5)
		assert.InDelta(t, *r.Size, math.Round(*r.Size*10)/10, 1e-9, "rounded to one decimal")
	}
	assert.Len(t, seen, 3, "both bounds are reachable")
}

func TestSelector_RollDisabledExtras(t *testing.T) {
	s := testSelector()
	c := model.NewCandidate("bulbasaur", "")
	c.ShinyChance = 0

	for range 100 {
		r := s.Roll(c, nil)
		assert.Nil(t, r.IVs)
		assert.Nil(t, r.Size)
		assert.False(t, r.Shiny)
	}
}

func TestSelector_RollInvalidIVsSkipped(t *testing.T) {
	s := testSelector()
	c := model.NewCandidate("bulbasaur", "")
	c.IVs.Enabled = true
	c.IVs.HP = model.Range{Min: 20, Max: 10}

	assert.Nil(t, s.Roll(c, nil).IVs)
}

func TestSelector_RollAlwaysShiny(t *testing.T) {
	s := testSelector()
	c := model.NewCandidate("bulbasaur", "")
	c.ShinyChance = 100

	for range 100 {
		assert.True(t, s.Roll(c, nil).Shiny)
	}
}

func TestResolveForm(t *testing.T) {
	forms := []string{"Alola", "Galar-Zen", "Hisui"}
	tests := []struct {
		configured string
		want       string
		found      bool
	}{
		{"", "", true},
		{"normal", "", true},
		{"Default", "", true},
		{"alola", "Alola", true},
		{"GALAR_ZEN", "Galar-Zen", true},
		{"galar zen", "Galar-Zen", true},
		{"paldea", "", false},
	}

	for _, tt := range tests {
		got, found := ResolveForm(tt.configured, forms)
		assert.Equal(t, tt.want, got, "form %q", tt.configured)
		assert.Equal(t, tt.found, found, "form %q", tt.configured)
	}
}

func TestNormalizeSpecies(t *testing.T) {
	assert.Equal(t, "mrmime", NormalizeSpecies("Mr. Mime"))
	assert.Equal(t, "hooh", NormalizeSpecies("Ho-Oh"))
	assert.Equal(t, "porygon2", NormalizeSpecies("porygon2"))
}

func TestSelector_Int64Between(t *testing.T) {
	s := testSelector()
	for range 200 {
		v := s.Int64Between(0, 5)
		require.GreaterOrEqual(t, v, int64(0))
		require.LessOrEqual(t, v, int64(5))
	}
	assert.EqualValues(t, 3, s.Int64Between(3, 3))
	assert.EqualValues(t, 3, s.Int64Between(3, 1))
}
