package model

import (
	"cmp"
	"fmt"
)

// Coord is a block position in a world. Y is the vertical axis.
// Value type, used as a map key for regions and cached positions.
type Coord struct {
	X int32 `yaml:"x" json:"x"`
	Y int32 `yaml:"y" json:"y"`
	Z int32 `yaml:"z" json:"z"`
}

// NewCoord creates Coord with the given components.
func NewCoord(x, y, z int32) Coord {
	return Coord{X: x, Y: y, Z: z}
}

// Add returns the coordinate shifted by the given offsets.
func (c Coord) Add(dx, dy, dz int32) Coord {
	return Coord{X: c.X + dx, Y: c.Y + dy, Z: c.Z + dz}
}

// Up returns the coordinate directly above.
func (c Coord) Up() Coord {
	return c.Add(0, 1, 0)
}

// Down returns the coordinate directly below.
func (c Coord) Down() Coord {
	return c.Add(0, -1, 0)
}

// DistanceSquared returns the squared euclidean distance to other (no sqrt).
func (c Coord) DistanceSquared(other Coord) int64 {
	dx := int64(c.X - other.X)
	dy := int64(c.Y - other.Y)
	dz := int64(c.Z - other.Z)
	return dx*dx + dy*dy + dz*dz
}

// ChunkX returns the X index of the 16x16 column chunk holding the coordinate.
func (c Coord) ChunkX() int32 {
	return c.X >> 4
}

// ChunkZ returns the Z index of the 16x16 column chunk holding the coordinate.
func (c Coord) ChunkZ() int32 {
	return c.Z >> 4
}

// Compare orders coordinates by X, then Y, then Z, as cmp.Compare does.
func (c Coord) Compare(other Coord) int {
	if r := cmp.Compare(c.X, other.X); r != 0 {
		return r
	}
	if r := cmp.Compare(c.Y, other.Y); r != 0 {
		return r
	}
	return cmp.Compare(c.Z, other.Z)
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.X, c.Y, c.Z)
}
