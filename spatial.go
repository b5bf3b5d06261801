package main

const (
	SpatialCellSize = 4.0 // world units per cell, ~10x entity radius
	spatialInflate  = 0.5 // largest entity radius plus a skin margin
)

// RectRef identifies a static rectangle in the grid
type RectRef struct {
	Kind byte // 'w'=wall, 'f'=platform
	Idx  int  // index into the corresponding flat list
}

// RectGrid is a fixed-size grid over the static geometry, used as a
// broad phase by collision resolution and spawn placement. Built once
// per Start; never mutated while the simulation runs.
type RectGrid struct {
	cols  int
	rows  int
	half  float32
	cells [][]RectRef
}

// NewRectGrid creates a grid covering the square [-half,+half] on X and Z
func NewRectGrid(half float32) *RectGrid {
	n := int(2*half/SpatialCellSize) + 1
	if n < 1 {
		n = 1
	}
	return &RectGrid{
		cols:  n,
		rows:  n,
		half:  half,
		cells: make([][]RectRef, n*n),
	}
}

func (g *RectGrid) cellCoord(v float32) int {
	c := int((v + g.half) / SpatialCellSize)
	if c < 0 {
		c = 0
	} else if c >= g.cols {
		c = g.cols - 1
	}
	return c
}

// InsertRect adds a rectangle reference to every cell its inflated bounds
// touch, so a point query from any overlapping entity finds it.
func (g *RectGrid) InsertRect(minX, maxX, minZ, maxZ float32, ref RectRef) {
	minCX := g.cellCoord(minX - spatialInflate)
	maxCX := g.cellCoord(maxX + spatialInflate)
	minCZ := g.cellCoord(minZ - spatialInflate)
	maxCZ := g.cellCoord(maxZ + spatialInflate)
	for cz := minCZ; cz <= maxCZ; cz++ {
		for cx := minCX; cx <= maxCX; cx++ {
			idx := cz*g.cols + cx
			g.cells[idx] = append(g.cells[idx], ref)
		}
	}
}

// QueryBuf appends the refs in the cell containing (x,z) to buf and returns
// the extended slice, avoiding per-call allocation.
func (g *RectGrid) QueryBuf(x, z float32, buf []RectRef) []RectRef {
	idx := g.cellCoord(z)*g.cols + g.cellCoord(x)
	return append(buf, g.cells[idx]...)
}
