package main

import "testing"

// wallFreeAfter asserts the post-resolution invariant: no entity position
// may overlap any wall's bounds inflated by the entity radius.
func wallFreeAfter(t *testing.T, e *Engine, p *PlayerState) {
	t.Helper()
	// Shrink the radius a hair so exact surface contact is not an overlap
	for _, w := range e.walls {
		if circleOverlapsWall(p.X, p.Z, playerRadius-0.001, w) {
			t.Fatalf("player at (%v,%v) overlaps wall %+v", p.X, p.Z, w)
		}
	}
}

func TestResolveWallsPushesOutMinPenetration(t *testing.T) {
	e := newTestEngine(GameConfig{MaxPlayers: 2, WorldHalfExtent: 20})
	// Player barely inside the north wall (z in [19,20]): the shallow axis
	// is -Z, so it must be pushed south and VZ zeroed.
	p := PlayerState{ID: 1, X: 0, Z: 19.05, VZ: 3, Y: standHeight, Health: 100, Active: true}
	e.resolveWalls(&p)

	if p.Z >= 19-playerRadius+0.001 {
		t.Errorf("expected push out to z<=%v, got %v", 19-playerRadius, p.Z)
	}
	if p.VZ != 0 {
		t.Errorf("expected VZ zeroed, got %v", p.VZ)
	}
	wallFreeAfter(t, e, &p)
}

func TestWallInvariantUnderPressure(t *testing.T) {
	e := newTestEngine(GameConfig{MaxPlayers: 2, WorldHalfExtent: 10})
	e.processInput(InputPacket{PlayerID: 1, Seq: 1}, testDT)

	// Drive the player into every wall in turn and hold it there.
	yaws := []float32{0, 1.5708, 3.1416, -1.5708}
	seq := uint32(2)
	for _, yaw := range yaws {
		for i := 0; i < 240; i++ {
			e.ring.Push(InputPacket{PlayerID: 1, Seq: seq, Yaw: yaw, MoveZ: 1})
			seq++
			e.step(testDT)
			wallFreeAfter(t, e, e.findPlayer(1))
		}
	}
}

func TestPlatformLandOnTop(t *testing.T) {
	e := newTestEngine(GameConfig{MaxPlayers: 2, WorldHalfExtent: 20})
	e.platforms = append(e.platforms, Platform{MinX: -2, MaxX: 2, MinZ: -2, MaxZ: 2, Height: 3})
	e.grid.InsertRect(-2, 2, -2, 2, RectRef{Kind: 'f', Idx: 0})

	p := PlayerState{ID: 1, X: 0, Z: 0, Y: 3.1, VY: -5, Health: 100, Active: true}
	e.resolvePlatforms(&p)

	if p.Y != 3 {
		t.Errorf("expected landing snap to height 3, got %v", p.Y)
	}
	if p.VY != 0 {
		t.Errorf("expected vertical velocity zeroed, got %v", p.VY)
	}
	if !p.Grounded {
		t.Error("expected grounded on platform top")
	}
}

func TestPlatformSidePushWhenBelow(t *testing.T) {
	e := newTestEngine(GameConfig{MaxPlayers: 2, WorldHalfExtent: 20})
	e.platforms = append(e.platforms, Platform{MinX: -2, MaxX: 2, MinZ: -2, MaxZ: 2, Height: 3})
	e.grid.InsertRect(-2, 2, -2, 2, RectRef{Kind: 'f', Idx: 0})

	// Standing on the floor, overlapping the platform's east side while
	// rising: side push, not landing.
	p := PlayerState{ID: 1, X: 1.9, Z: 0, Y: standHeight, VX: -2, VY: 1, Health: 100, Active: true}
	e.resolvePlatforms(&p)

	if p.X < 2+playerRadius-0.001 {
		t.Errorf("expected push out east of the platform, got x=%v", p.X)
	}
	if p.VX != 0 {
		t.Errorf("expected VX zeroed on side push, got %v", p.VX)
	}
}

func TestPlatformIgnoredWhenOnTop(t *testing.T) {
	e := newTestEngine(GameConfig{MaxPlayers: 2, WorldHalfExtent: 20})
	e.platforms = append(e.platforms, Platform{MinX: -2, MaxX: 2, MinZ: -2, MaxZ: 2, Height: 3})
	e.grid.InsertRect(-2, 2, -2, 2, RectRef{Kind: 'f', Idx: 0})

	p := PlayerState{ID: 1, X: 0, Z: 0, Y: 3.5, VY: 1, Health: 100, Active: true}
	before := p
	e.resolvePlatforms(&p)
	if p.X != before.X || p.Z != before.Z || p.Y != before.Y {
		t.Error("entity above the platform must not be displaced")
	}
}

func TestResolveSpiderWalls(t *testing.T) {
	e := newTestEngine(GameConfig{MaxPlayers: 2, WorldHalfExtent: 10})
	s := SpiderEntity{ID: spiderIDBase, X: 0, Z: 9.2, Y: spiderHeight, Health: spiderMaxHealth, Active: true}
	e.resolveSpiderWalls(&s)

	// North wall spans z in [9,10]; spider center below the wall midline
	// must be pushed south of it.
	if s.Z >= 9-spiderRadius {
		t.Errorf("expected spider pushed out of wall, z=%v", s.Z)
	}
}

func TestSetupMapRebuildsGeometry(t *testing.T) {
	e := newTestEngine(GameConfig{MaxPlayers: 2, WorldHalfExtent: 15, SpiderCount: 3})
	if len(e.walls) != 4 {
		t.Fatalf("expected 4 perimeter walls, got %d", len(e.walls))
	}
	if len(e.spiders) != 3 {
		t.Fatalf("expected 3 map-spawned spiders, got %d", len(e.spiders))
	}
	for i, s := range e.spiders {
		if s.ID != spiderIDBase+uint32(i) {
			t.Errorf("expected spider id %d, got %d", spiderIDBase+i, s.ID)
		}
		if !s.Active || s.Health != spiderMaxHealth {
			t.Errorf("spider %d not initialized: %+v", i, s)
		}
	}

	// Rebuild resets hostiles and keeps wall count stable
	e.setupMap()
	if len(e.walls) != 4 || len(e.spiders) != 3 {
		t.Errorf("rebuild changed geometry: %d walls, %d spiders", len(e.walls), len(e.spiders))
	}
}
