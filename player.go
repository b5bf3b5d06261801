package main

import "math/rand"

const (
	playerRadius = 0.35
	targetRadius = 0.6 // pellet hit sphere around a player

	moveAccel    = 50.0 // units/s²
	maxMoveSpeed = 12.0 // units/s horizontal
	friction     = 8.0  // per second, applied before the speed clamp
	gravity      = 26.0 // units/s²
	jumpVelocity = 11.0 // units/s
	standHeight  = 1.2  // player center height when standing on the floor
	groundEps    = 0.05

	playerMaxHealth   = 100
	respawnDelayTicks = 180 // 3 seconds at 60Hz
	idleTimeoutTicks  = 600 // 10 seconds without input deactivates a human
	spawnDropHeight   = 10.0
)

// PlayerState is one connected human or active bot. Created on first input
// from an unseen id, never deleted; death and idle timeout only deactivate.
// Owned exclusively by the simulation goroutine.
type PlayerState struct {
	ID            uint32
	X, Y, Z       float32
	VX, VY, VZ    float32
	Yaw, Pitch    float32
	Health        int32
	LastSeq       uint32
	Active        bool
	RespawnTick   uint32
	LastFireTick  uint32
	LastInputTick uint32
	Weapon        uint8
	IsBot         bool
	Grounded      bool
}

// integrate advances one player by one fixed step under the given input.
// Horizontal wish direction is built from yaw-relative basis vectors, then
// acceleration, friction, speed clamp, gravity, jump, geometry resolution
// and the world-boundary clamp are applied in that order.
func (e *Engine) integrate(p *PlayerState, in InputPacket, dt float32) {
	forwardX := -sinf(in.Yaw)
	forwardZ := -cosf(in.Yaw)
	rightX := cosf(in.Yaw)
	rightZ := -sinf(in.Yaw)
	moveDirX := forwardX*in.MoveZ + rightX*in.MoveX
	moveDirZ := forwardZ*in.MoveZ + rightZ*in.MoveX
	if l := sqrtf(moveDirX*moveDirX + moveDirZ*moveDirZ); l > 1e-4 {
		moveDirX /= l
		moveDirZ /= l
	}
	p.VX += moveDirX * moveAccel * dt
	p.VZ += moveDirZ * moveAccel * dt

	if speed := sqrtf(p.VX*p.VX + p.VZ*p.VZ); speed > 0 {
		drop := speed * friction * dt
		newSpeed := speed - drop
		if newSpeed < 0 {
			newSpeed = 0
		}
		if newSpeed != speed {
			scale := newSpeed / speed
			p.VX *= scale
			p.VZ *= scale
		}
	}
	if speed := sqrtf(p.VX*p.VX + p.VZ*p.VZ); speed > maxMoveSpeed {
		scale := maxMoveSpeed / speed
		p.VX *= scale
		p.VZ *= scale
	}

	p.X += p.VX * dt
	p.Z += p.VZ * dt

	onGround := p.Y <= standHeight+groundEps
	if in.Jump && onGround {
		p.VY = jumpVelocity
		onGround = false
	}
	p.VY -= gravity * dt
	p.Y += p.VY * dt
	if p.Y < standHeight {
		p.Y = standHeight
		p.VY = 0
		onGround = true
	}
	p.Grounded = onGround

	e.resolveWalls(p)
	e.resolvePlatforms(p)

	half := e.cfg.WorldHalfExtent
	p.X = Clampf(p.X, -half, half)
	p.Z = Clampf(p.Z, -half, half)

	p.Yaw = in.Yaw
	p.Pitch = in.Pitch
}

// Spawn anchors roughly centered in open areas to avoid wall overlaps.
var spawnAnchors = [8][2]float32{
	{-5, -5},
	{5, -5},
	{-5, 5},
	{5, 5},
	{0, -6},
	{0, 6},
	{-8, 0},
	{8, 0},
}

// spawnPosition picks a wall-free XZ placement: a jittered anchor first,
// then free scatter, then the origin as a last resort. Pure given the rng,
// so tests can pin the sequence.
func spawnPosition(rng *rand.Rand, walls []Wall, half float32) (float32, float32) {
	clear := func(x, z float32) bool {
		for _, w := range walls {
			if circleOverlapsWall(x, z, playerRadius, w) {
				return false
			}
		}
		return true
	}
	jitter := func() float32 { return rng.Float32()*2.4 - 1.2 }
	for attempt := 0; attempt < 12; attempt++ {
		base := spawnAnchors[rng.Intn(len(spawnAnchors))]
		x := base[0] + jitter()
		z := base[1] + jitter()
		if clear(x, z) {
			return x, z
		}
	}
	span := 2 * (half - 1.5)
	for attempt := 0; attempt < 20; attempt++ {
		x := rng.Float32()*span - (half - 1.5)
		z := rng.Float32()*span - (half - 1.5)
		if clear(x, z) {
			return x, z
		}
	}
	return 0, 0
}

// respawn resets a player to spawn defaults and drops it from above the
// floor so it lands on whatever stands at the spawn point.
func (e *Engine) respawn(p *PlayerState) {
	p.X, p.Z = spawnPosition(e.rng, e.walls, e.cfg.WorldHalfExtent)
	p.Y = spawnDropHeight
	p.VX, p.VY, p.VZ = 0, 0, 0
	p.Health = playerMaxHealth
	p.Active = true
	p.LastFireTick = 0
	p.LastInputTick = e.tick.Load()
	p.Weapon = 0
	p.Grounded = false
	e.emit(GameEvent{Type: EventSpawn, Actor: p.ID, Tick: e.tick.Load()})
}
