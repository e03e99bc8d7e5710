package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Range is an inclusive integer interval.
type Range struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// Valid reports Min <= Max.
func (r Range) Valid() bool {
	return r.Min <= r.Max
}

// IVSettings configures rolled individual values. Each axis is rolled
// independently when Enabled.
type IVSettings struct {
	Enabled        bool  `yaml:"enabled" json:"enabled"`
	HP             Range `yaml:"hp" json:"hp"`
	Attack         Range `yaml:"attack" json:"attack"`
	Defense        Range `yaml:"defense" json:"defense"`
	SpecialAttack  Range `yaml:"special_attack" json:"special_attack"`
	SpecialDefense Range `yaml:"special_defense" json:"special_defense"`
	Speed          Range `yaml:"speed" json:"speed"`
}

// Axes returns the six ranges in stat order.
func (s IVSettings) Axes() [6]Range {
	return [6]Range{s.HP, s.Attack, s.Defense, s.SpecialAttack, s.SpecialDefense, s.Speed}
}

// Valid reports whether every axis has Min <= Max.
func (s IVSettings) Valid() bool {
	for _, r := range s.Axes() {
		if !r.Valid() {
			return false
		}
	}
	return true
}

// DefaultIVSettings returns disabled IV rolls with the full 0..31 range.
func DefaultIVSettings() IVSettings {
	full := Range{Min: 0, Max: 31}
	return IVSettings{HP: full, Attack: full, Defense: full, SpecialAttack: full, SpecialDefense: full, Speed: full}
}

// EVSettings configures effort values granted when the entity is defeated.
type EVSettings struct {
	Enabled        bool `yaml:"enabled" json:"enabled"`
	HP             int  `yaml:"hp" json:"hp"`
	Attack         int  `yaml:"attack" json:"attack"`
	Defense        int  `yaml:"defense" json:"defense"`
	SpecialAttack  int  `yaml:"special_attack" json:"special_attack"`
	SpecialDefense int  `yaml:"special_defense" json:"special_defense"`
	Speed          int  `yaml:"speed" json:"speed"`
}

// SizeSettings configures the rolled scale of a spawned entity.
type SizeSettings struct {
	Enabled bool    `yaml:"enabled" json:"enabled"`
	Min     float64 `yaml:"min" json:"min"`
	Max     float64 `yaml:"max" json:"max"`
}

// CaptureSettings is the capture policy handed to the entity factory.
type CaptureSettings struct {
	Catchable       bool     `yaml:"catchable" json:"catchable"`
	RestrictToBalls bool     `yaml:"restrict_to_balls" json:"restrict_to_balls"`
	RequiredBalls   []string `yaml:"required_balls" json:"required_balls"`
}

// HeldItems lists items that may be held on spawn, item id → chance percent.
type HeldItems struct {
	Enabled bool               `yaml:"enabled" json:"enabled"`
	Items   map[string]float64 `yaml:"items" json:"items"`
}

// CandidateSpec is one species entry configured on a region.
type CandidateSpec struct {
	Species     string          `yaml:"species" json:"species"`
	Form        string          `yaml:"form,omitempty" json:"form,omitempty"`
	Weight      float64         `yaml:"weight" json:"weight"`
	ShinyChance float64         `yaml:"shiny_chance" json:"shiny_chance"`
	Level       Range           `yaml:"level" json:"level"`
	Capture     CaptureSettings `yaml:"capture" json:"capture"`
	IVs         IVSettings      `yaml:"ivs" json:"ivs"`
	EVs         EVSettings      `yaml:"evs" json:"evs"`
	Size        SizeSettings    `yaml:"size" json:"size"`
	HeldItems   HeldItems       `yaml:"held_items" json:"held_items"`
	Time        TimeGate        `yaml:"time" json:"time"`
	Weather     WeatherGate     `yaml:"weather" json:"weather"`
	Medium      Medium          `yaml:"medium" json:"medium"`
}

// NewCandidate returns a candidate with the same defaults a freshly added
// species gets: weight 50, shiny 0.0122%, level 1..100, catchable.
func NewCandidate(species, form string) CandidateSpec {
	return CandidateSpec{
		Species:     species,
		Form:        form,
		Weight:      50,
		ShinyChance: 0.0122,
		Level:       Range{Min: 1, Max: 100},
		Capture: CaptureSettings{
			Catchable:     true,
			RequiredBalls: []string{"safari_ball"},
		},
		IVs:  DefaultIVSettings(),
		Size: SizeSettings{Min: 1.0, Max: 1.0},
	}
}

// Matches reports whether the entry denotes the given species and form,
// compared case-insensitively. Empty forms only match empty forms.
func (c CandidateSpec) Matches(species, form string) bool {
	return strings.EqualFold(c.Species, species) && strings.EqualFold(c.Form, form)
}

// Normalize rounds the size bounds to one decimal place.
func (c *CandidateSpec) Normalize() {
	c.Size.Min = RoundToOneDecimal(c.Size.Min)
	c.Size.Max = RoundToOneDecimal(c.Size.Max)
}

var (
	errEmptySpecies = errors.New("species is empty")
	errWeight       = errors.New("weight is negative")
	errShiny        = errors.New("shiny chance outside 0..100")
	errLevel        = errors.New("level min greater than max")
	errSize         = errors.New("size min greater than max")
)

// Validate checks the candidate invariants. IV ranges are not checked here:
// an invalid IV block disables IV rolls instead of rejecting the entry.
func (c CandidateSpec) Validate() error {
	switch {
	case strings.TrimSpace(c.Species) == "":
		return errEmptySpecies
	case c.Weight < 0 || math.IsNaN(c.Weight):
		return fmt.Errorf("%s: %w", c.Species, errWeight)
	case c.ShinyChance < 0 || c.ShinyChance > 100:
		return fmt.Errorf("%s: %w", c.Species, errShiny)
	case !c.Level.Valid():
		return fmt.Errorf("%s: %w", c.Species, errLevel)
	case c.Size.Enabled && c.Size.Min > c.Size.Max:
		return fmt.Errorf("%s: %w", c.Species, errSize)
	}
	return nil
}

// RoundToOneDecimal rounds v to one decimal place.
func RoundToOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}
