package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/regionspawn/internal/model"
)

// State is the lifecycle state of an entity.
type State uint8

const (
	StateWild State = iota
	StateCaptured
	StateDead
)

func (s State) String() string {
	switch s {
	case StateCaptured:
		return "captured"
	case StateDead:
		return "dead"
	default:
		return "wild"
	}
}

// Entity is a creature materialized in a world.
type Entity struct {
	ID        uuid.UUID
	Species   string
	Form      string
	Level     int
	Shiny     bool
	IVs       *[6]int
	EVs       model.EVSettings
	Size      *float64
	HeldItem  string
	Capture   model.CaptureSettings
	Position  model.Coord
	Dimension string
	State     State
	CreatedAt time.Time
}

// Wild reports whether the entity is alive and not owned.
func (e *Entity) Wild() bool {
	return e.State == StateWild
}
