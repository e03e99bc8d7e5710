package model

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// Default region settings applied on placement and to missing config keys.
const (
	DefaultTimerTicks = 200
	DefaultCapacity   = 4
	DefaultBatchSize  = 1
	DefaultRadius     = 4
	DefaultDimension  = "minimal:overworld"
)

// Radius is the half-extent of the spawn box around a region key:
// [-Width, Width] on X and Z, [-Height, Height] on Y.
type Radius struct {
	Width  int32 `yaml:"width" json:"width"`
	Height int32 `yaml:"height" json:"height"`
}

// Region is a configured spatial source of spawned entities.
// Key is the identity and never changes after creation.
type Region struct {
	Key           Coord           `yaml:"key" json:"key"`
	Name          string          `yaml:"name" json:"name"`
	Dimension     string          `yaml:"dimension" json:"dimension"`
	TimerTicks    int64           `yaml:"timer_ticks" json:"timer_ticks"`
	Capacity      int             `yaml:"capacity" json:"capacity"`
	BatchSize     int             `yaml:"batch_size" json:"batch_size"`
	Radius        Radius          `yaml:"radius" json:"radius"`
	Visible       bool            `yaml:"visible" json:"visible"`
	ShowParticles bool            `yaml:"show_particles" json:"show_particles"`
	Candidates    []CandidateSpec `yaml:"candidates" json:"candidates"`
}

// NewRegion creates a region with default settings and no candidates.
func NewRegion(key Coord, name, dimension string) Region {
	if dimension == "" {
		dimension = DefaultDimension
	}
	return Region{
		Key:           key,
		Name:          name,
		Dimension:     NormalizeDimension(dimension),
		TimerTicks:    DefaultTimerTicks,
		Capacity:      DefaultCapacity,
		BatchSize:     DefaultBatchSize,
		Radius:        Radius{Width: DefaultRadius, Height: DefaultRadius},
		Visible:       true,
		ShowParticles: true,
		Candidates:    []CandidateSpec{},
	}
}

// Clone returns a deep copy, so edits on the copy never leak into
// snapshots held by readers.
func (r Region) Clone() Region {
	out := r
	out.Candidates = make([]CandidateSpec, len(r.Candidates))
	for i, c := range r.Candidates {
		c.Capture.RequiredBalls = slices.Clone(c.Capture.RequiredBalls)
		c.HeldItems.Items = maps.Clone(c.HeldItems.Items)
		out.Candidates[i] = c
	}
	return out
}

// Covers reports whether a block change at c in dimension may affect
// positions cached for this region. The vertical extent is widened by one
// block because the placement check reads the floor and the head-room.
func (r Region) Covers(dimension string, c Coord) bool {
	if r.Dimension != dimension {
		return false
	}
	dx := abs32(c.X - r.Key.X)
	dy := abs32(c.Y - r.Key.Y)
	dz := abs32(c.Z - r.Key.Z)
	return dx <= r.Radius.Width && dz <= r.Radius.Width && dy <= r.Radius.Height+1
}

// FindCandidate returns the index of the entry matching species and form,
// or -1.
func (r Region) FindCandidate(species, form string) int {
	return slices.IndexFunc(r.Candidates, func(c CandidateSpec) bool {
		return c.Matches(species, form)
	})
}

var (
	ErrNegativeCapacity = errors.New("capacity is negative")
	ErrBadBatchSize     = errors.New("batch size below 1")
	ErrNegativeTimer    = errors.New("timer is negative")
	ErrNegativeRadius   = errors.New("radius is negative")
)

// Validate checks region-level invariants. Candidate errors are reported
// separately by ValidateCandidates: a region with a bad entry still loads
// and can be edited, but is not spawned from.
func (r Region) Validate() error {
	switch {
	case r.Capacity < 0:
		return fmt.Errorf("region %s: %w", r.Key, ErrNegativeCapacity)
	case r.BatchSize < 1:
		return fmt.Errorf("region %s: %w", r.Key, ErrBadBatchSize)
	case r.TimerTicks < 0:
		return fmt.Errorf("region %s: %w", r.Key, ErrNegativeTimer)
	case r.Radius.Width < 0 || r.Radius.Height < 0:
		return fmt.Errorf("region %s: %w", r.Key, ErrNegativeRadius)
	}
	return nil
}

// ValidateCandidates returns one error per malformed candidate.
func (r Region) ValidateCandidates() []error {
	var errs []error
	for _, c := range r.Candidates {
		if err := c.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
