package spawn

import (
	"errors"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/udisondev/regionspawn/internal/model"
)

// ErrNoEligibleCandidates is returned by Pick when the eligible list carries
// no probability mass.
var ErrNoEligibleCandidates = errors.New("no eligible candidates")

// Rolls holds the per-entity attributes drawn for a selected candidate.
type Rolls struct {
	Level int
	Shiny bool
	Form  string
	IVs   *[6]int
	Size  *float64
}

// Selector performs weighted candidate selection and attribute rolls.
// Safe for concurrent use.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector creates a selector seeded from the runtime's random source.
func NewSelector() *Selector {
	return NewSelectorWithSource(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// NewSelectorWithSource creates a selector drawing from src.
func NewSelectorWithSource(src rand.Source) *Selector {
	return &Selector{rng: rand.New(src)}
}

// Eligible returns the candidates whose time and weather gates admit the
// current environment. Weight-zero entries stay in the list.
func (s *Selector) Eligible(cands []model.CandidateSpec, phase model.TimePhase, weather model.Weather) []model.CandidateSpec {
	out := make([]model.CandidateSpec, 0, len(cands))
	for _, c := range cands {
		if !c.Time.Allows(phase) {
			slog.Debug("candidate gated by time", "species", c.Species, "gate", c.Time, "phase", phase)
			continue
		}
		if !c.Weather.Allows(weather) {
			slog.Debug("candidate gated by weather", "species", c.Species, "gate", c.Weather, "weather", weather)
			continue
		}
		out = append(out, c)
	}
	return out
}

// TotalWeight sums the weights of cands.
func TotalWeight(cands []model.CandidateSpec) float64 {
	var total float64
	for _, c := range cands {
		total += c.Weight
	}
	return total
}

// Pick draws one candidate with probability proportional to its weight.
// The draw is r in (0, total] and the walk stops at the first running sum
// >= r, so weight-zero entries are never returned.
func (s *Selector) Pick(eligible []model.CandidateSpec) (model.CandidateSpec, error) {
	total := TotalWeight(eligible)
	if total <= 0 {
		return model.CandidateSpec{}, ErrNoEligibleCandidates
	}

	r := total * (1 - s.float64())
	var cumulative float64
	last := -1
	for i, c := range eligible {
		if c.Weight <= 0 {
			continue
		}
		last = i
		cumulative += c.Weight
		if cumulative >= r {
			return c, nil
		}
	}
	// Floating point drift: the running sum fell short of total.
	return eligible[last], nil
}

// Roll draws level, shiny status, IVs and size for c, and resolves the
// configured form against forms.
func (s *Selector) Roll(c model.CandidateSpec, forms []string) Rolls {
	s.mu.Lock()
	defer s.mu.Unlock()

	rolls := Rolls{
		Level: s.between(c.Level.Min, c.Level.Max),
		Shiny: s.rng.Float64()*100 < c.ShinyChance,
	}

	if c.IVs.Enabled {
		if c.IVs.Valid() {
			var ivs [6]int
			for i, axis := range c.IVs.Axes() {
				ivs[i] = s.between(axis.Min, axis.Max)
			}
			rolls.IVs = &ivs
		} else {
			slog.Warn("invalid IV settings, skipping custom IVs", "species", c.Species)
		}
	}

	if c.Size.Enabled {
		size := model.RoundToOneDecimal(c.Size.Min + s.rng.Float64()*(c.Size.Max-c.Size.Min))
		rolls.Size = &size
	}

	form, ok := ResolveForm(c.Form, forms)
	if !ok {
		slog.Warn("form not found, using default form", "species", c.Species, "form", c.Form)
	}
	rolls.Form = form

	return rolls
}

// Intn returns a uniform int in [0, n).
func (s *Selector) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// Int64Between returns a uniform int64 in [min, max].
func (s *Selector) Int64Between(min, max int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if max <= min {
		return min
	}
	return min + s.rng.Int64N(max-min+1)
}

func (s *Selector) float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// between returns a uniform int in [min, max]. Caller holds mu.
func (s *Selector) between(min, max int) int {
	if max <= min {
		return min
	}
	return min + s.rng.IntN(max-min+1)
}

// ResolveForm matches a configured form name against the species' forms,
// ignoring case and every non-alphanumeric character. Empty, "normal" and
// "default" select the default form. The second result is false when a
// non-default name matched nothing; the default form is returned then.
func ResolveForm(configured string, forms []string) (string, bool) {
	want := normalizeName(configured)
	if want == "" || want == "normal" || want == "default" {
		return "", true
	}
	for _, f := range forms {
		if normalizeName(f) == want {
			return f, true
		}
	}
	return "", false
}

// NormalizeSpecies turns a configured species name into a catalog id.
func NormalizeSpecies(name string) string {
	return normalizeName(name)
}

func normalizeName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
