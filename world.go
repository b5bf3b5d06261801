package main

// Wall is a static axis-aligned rectangle in the XZ plane, solid at all heights
type Wall struct {
	MinX, MaxX float32
	MinZ, MaxZ float32
}

// Platform is a static axis-aligned rectangle with a standing height;
// entities land on top of it or are pushed out of its sides
type Platform struct {
	MinX, MaxX float32
	MinZ, MaxZ float32
	Height     float32
}

const wallThickness = 1.0

// setupMap rebuilds the static geometry and initial hostile spawns for a run
func (e *Engine) setupMap() {
	e.walls = e.walls[:0]
	e.platforms = e.platforms[:0]
	e.spiders = e.spiders[:0]
	e.nextSpiderID = spiderIDBase

	h := e.cfg.WorldHalfExtent
	e.walls = append(e.walls,
		Wall{-h, h, h - wallThickness, h},
		Wall{-h, h, -h, -h + wallThickness},
		Wall{-h, -h + wallThickness, -h, h},
		Wall{h - wallThickness, h, -h, h},
	)

	// No interior walls or platforms beyond the perimeter; the arena relies
	// on map visuals for navigation.

	e.grid = NewRectGrid(h)
	for i, w := range e.walls {
		e.grid.InsertRect(w.MinX, w.MaxX, w.MinZ, w.MaxZ, RectRef{Kind: 'w', Idx: i})
	}
	for i, pl := range e.platforms {
		e.grid.InsertRect(pl.MinX, pl.MaxX, pl.MinZ, pl.MaxZ, RectRef{Kind: 'f', Idx: i})
	}

	margin := h - 3.0
	if margin < 2.0 {
		margin = 2.0
	}
	spawns := [4][2]float32{{-margin, -margin}, {margin, -margin}, {-margin, margin}, {margin, margin}}
	for i := uint32(0); i < e.cfg.SpiderCount; i++ {
		at := spawns[int(i)%len(spawns)]
		e.spawnSpider(at[0], at[1])
	}
}

func circleOverlapsWall(x, z, r float32, w Wall) bool {
	return x+r > w.MinX && x-r < w.MaxX && z+r > w.MinZ && z-r < w.MaxZ
}

func (e *Engine) overlapsWall(p *PlayerState, w Wall) bool {
	return circleOverlapsWall(p.X, p.Z, playerRadius, w)
}

// resolveWalls pushes the player out of every overlapping wall along the
// axis of least penetration, zeroing the matching velocity component.
func (e *Engine) resolveWalls(p *PlayerState) {
	e.scratch = e.grid.QueryBuf(p.X, p.Z, e.scratch[:0])
	for _, ref := range e.scratch {
		if ref.Kind != 'w' {
			continue
		}
		w := e.walls[ref.Idx]
		if !e.overlapsWall(p, w) {
			continue
		}
		const r = playerRadius
		penLeft := w.MaxX - (p.X - r)
		penRight := (p.X + r) - w.MinX
		penDown := (p.Z + r) - w.MinZ
		penUp := w.MaxZ - (p.Z - r)
		minPen, axis := penLeft, 0
		if penRight < minPen {
			minPen, axis = penRight, 1
		}
		if penDown < minPen {
			minPen, axis = penDown, 2
		}
		if penUp < minPen {
			axis = 3
		}
		switch axis {
		case 0:
			p.X = w.MaxX + r
			p.VX = 0
		case 1:
			p.X = w.MinX - r
			p.VX = 0
		case 2:
			p.Z = w.MinZ - r
			p.VZ = 0
		case 3:
			p.Z = w.MaxZ + r
			p.VZ = 0
		}
	}
}

// resolvePlatforms lands a falling player on top of a platform when within
// the landing window, otherwise applies the same side push as walls while
// the player is below the platform's standing height.
func (e *Engine) resolvePlatforms(p *PlayerState) {
	e.scratch = e.grid.QueryBuf(p.X, p.Z, e.scratch[:0])
	for _, ref := range e.scratch {
		if ref.Kind != 'f' {
			continue
		}
		pl := e.platforms[ref.Idx]
		const r = playerRadius
		insideXZ := p.X+r > pl.MinX && p.X-r < pl.MaxX && p.Z+r > pl.MinZ && p.Z-r < pl.MaxZ
		if !insideXZ {
			continue
		}
		top := pl.Height
		if p.VY < 0 && p.Y <= top+0.2 && p.Y >= top-0.8 {
			p.Y = top
			p.VY = 0
			p.Grounded = true
			continue
		}
		if p.Y > top+0.2 {
			continue
		}
		penLeft := pl.MaxX - (p.X - r)
		penRight := (p.X + r) - pl.MinX
		penDown := (p.Z + r) - pl.MinZ
		penUp := pl.MaxZ - (p.Z - r)
		minPen, axis := penLeft, 0
		if penRight < minPen {
			minPen, axis = penRight, 1
		}
		if penDown < minPen {
			minPen, axis = penDown, 2
		}
		if penUp < minPen {
			axis = 3
		}
		switch axis {
		case 0:
			p.X = pl.MaxX + r
			p.VX = 0
		case 1:
			p.X = pl.MinX - r
			p.VX = 0
		case 2:
			p.Z = pl.MinZ - r
			p.VZ = 0
		case 3:
			p.Z = pl.MaxZ + r
			p.VZ = 0
		}
	}
}

// resolveSpiderWalls pushes a hostile out of wall overlaps on the shallower
// axis; hostiles never interact with platforms.
func (e *Engine) resolveSpiderWalls(s *SpiderEntity) {
	const r = spiderRadius
	e.scratch = e.grid.QueryBuf(s.X, s.Z, e.scratch[:0])
	for _, ref := range e.scratch {
		if ref.Kind != 'w' {
			continue
		}
		w := e.walls[ref.Idx]
		if !circleOverlapsWall(s.X, s.Z, r, w) {
			continue
		}
		overlapX := min32(s.X+r-w.MinX, w.MaxX-(s.X-r))
		overlapZ := min32(s.Z+r-w.MinZ, w.MaxZ-(s.Z-r))
		if overlapX < overlapZ {
			if s.X < (w.MinX+w.MaxX)/2 {
				s.X = w.MinX - r - 0.01
			} else {
				s.X = w.MaxX + r + 0.01
			}
		} else {
			if s.Z < (w.MinZ+w.MaxZ)/2 {
				s.Z = w.MinZ - r - 0.01
			} else {
				s.Z = w.MaxZ + r + 0.01
			}
		}
	}
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
