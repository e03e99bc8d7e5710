package world

import (
	"fmt"
	"strings"
)

// BlockKind is the shape class of a block, all the spawn machinery needs.
type BlockKind uint8

const (
	Air BlockKind = iota
	Solid
	Slab
	Carpet
	Water
	Leaves
	Spawner
)

var blockNames = [...]string{
	Air:     "air",
	Solid:   "solid",
	Slab:    "slab",
	Carpet:  "carpet",
	Water:   "water",
	Leaves:  "leaves",
	Spawner: "spawner",
}

func (k BlockKind) String() string {
	if int(k) < len(blockNames) {
		return blockNames[k]
	}
	return fmt.Sprintf("block(%d)", k)
}

// ParseBlockKind parses a block name as written in config files.
func ParseBlockKind(s string) (BlockKind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range blockNames {
		if n == name {
			return BlockKind(k), nil
		}
	}
	return Air, fmt.Errorf("unknown block kind %q", s)
}

// SurfaceHeight is the height of the block's top collision face in [0, 1].
func (k BlockKind) SurfaceHeight() float64 {
	switch k {
	case Solid, Leaves, Spawner:
		return 1.0
	case Slab:
		return 0.5
	case Carpet:
		return 0.0625
	default:
		return 0
	}
}

// Blocking reports whether the block has a collision volume.
func (k BlockKind) Blocking() bool {
	return k.SurfaceHeight() > 0
}

// SeeThrough reports whether sky light passes the block for placement
// purposes (air and foliage).
func (k BlockKind) SeeThrough() bool {
	return k == Air || k == Leaves
}
