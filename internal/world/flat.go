package world

import "github.com/udisondev/regionspawn/internal/model"

// FlatOptions shapes a flat demo world.
type FlatOptions struct {
	Radius  int32 // half side of the floor square, in blocks
	GroundY int32 // row of the floor blocks
	TopY    int32
}

// NewFlat builds a world with a square solid floor centered on the
// origin and every chunk over it loaded.
func NewFlat(dimension string, opts FlatOptions) *World {
	w := New(dimension, opts.TopY)
	from := model.Coord{X: -opts.Radius, Y: opts.GroundY, Z: -opts.Radius}
	to := model.Coord{X: opts.Radius, Y: opts.GroundY, Z: opts.Radius}
	w.Fill(from, to, Solid)
	for _, p := range ChunksCovering(-opts.Radius, -opts.Radius, opts.Radius, opts.Radius) {
		w.LoadChunk(p)
	}
	return w
}
