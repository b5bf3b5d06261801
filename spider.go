package main

const (
	spiderIDBase    = 2000000
	spiderRadius    = 0.4
	spiderHitRadius = 0.5 // pellet hit sphere
	spiderMaxHealth = 80
	spiderHeight    = 0.3 // hostiles are ground-locked at this height
)

// SpiderEntity is a hostile AI entity. Created by map spawn, never by
// input; updated directly by the spider controller without going through
// the input path.
type SpiderEntity struct {
	ID             uint32
	X, Y, Z        float32
	VX, VZ         float32
	Yaw            float32
	Health         int32
	Active         bool
	TargetPlayerID uint32
	LastAttackTick uint32
	RespawnTick    uint32
	SpawnX, SpawnZ float32

	// Per-entity tunables, fixed at spawn
	AggroRange         float32
	AttackRange        float32
	AttackDamage       int32
	AttackCooldownTick uint32
	MoveSpeed          float32
}

func (e *Engine) spawnSpider(x, z float32) {
	e.spiders = append(e.spiders, SpiderEntity{
		ID:     e.nextSpiderID,
		X:      x,
		Y:      spiderHeight,
		Z:      z,
		Health: spiderMaxHealth,
		Active: true,
		SpawnX: x,
		SpawnZ: z,

		AggroRange:         18,
		AttackRange:        1.5,
		AttackDamage:       8,
		AttackCooldownTick: 30, // 0.5 seconds at 60Hz
		MoveSpeed:          5,
	})
	e.nextSpiderID++
}

// updateSpiders runs the seek/attack state machine for every hostile.
// Movement is applied directly to the entity: straight-line pursuit at a
// fixed speed, world clamp, then wall push-out.
func (e *Engine) updateSpiders(dt float32) {
	tick := e.tick.Load()
	for i := range e.spiders {
		s := &e.spiders[i]
		if !s.Active {
			// Terminal death unless respawn is explicitly enabled.
			if e.cfg.SpiderRespawnTicks > 0 && tick >= s.RespawnTick {
				s.X, s.Z = s.SpawnX, s.SpawnZ
				s.Y = spiderHeight
				s.VX, s.VZ = 0, 0
				s.Health = spiderMaxHealth
				s.Active = true
				s.TargetPlayerID = 0
				s.LastAttackTick = 0
			}
			continue
		}

		target := e.findNearestPlayer(s)
		if target == nil {
			s.TargetPlayerID = 0
			s.VX, s.VZ = 0, 0
			s.Y = spiderHeight
			continue
		}

		s.TargetPlayerID = target.ID
		dx := target.X - s.X
		dz := target.Z - s.Z
		dist := sqrtf(dx*dx + dz*dz)

		if dist > s.AttackRange {
			s.Yaw = atan2f(-dx, -dz)
			s.VX = dx / dist * s.MoveSpeed
			s.VZ = dz / dist * s.MoveSpeed
			s.X += s.VX * dt
			s.Z += s.VZ * dt

			h := e.cfg.WorldHalfExtent
			s.X = Clampf(s.X, -h, h)
			s.Z = Clampf(s.Z, -h, h)

			e.resolveSpiderWalls(s)
		} else {
			if tick-s.LastAttackTick >= s.AttackCooldownTick {
				s.LastAttackTick = tick
				e.damagePlayer(target, s.AttackDamage, s.ID)
			}
			s.VX, s.VZ = 0, 0
		}

		s.Y = spiderHeight
	}
}

// findNearestPlayer returns the closest active living player within the
// spider's aggro range, or nil.
func (e *Engine) findNearestPlayer(s *SpiderEntity) *PlayerState {
	var target *PlayerState
	bestDist2 := s.AggroRange * s.AggroRange
	for i := range e.players {
		p := &e.players[i]
		if !p.Active || p.Health <= 0 {
			continue
		}
		dx := p.X - s.X
		dz := p.Z - s.Z
		d2 := dx*dx + dz*dz
		if d2 < bestDist2 {
			bestDist2 = d2
			target = p
		}
	}
	return target
}

// damageSpider applies weapon damage to a hostile. Death schedules a
// respawn only when the run was configured with one.
func (e *Engine) damageSpider(s *SpiderEntity, dmg int32, attackerID uint32) {
	if s.Health <= 0 {
		return
	}
	s.Health -= dmg
	if s.Health < 0 {
		s.Health = 0
	}
	if s.Health == 0 {
		s.Active = false
		if e.cfg.SpiderRespawnTicks > 0 {
			s.RespawnTick = e.tick.Load() + e.cfg.SpiderRespawnTicks
		}
		e.emit(GameEvent{Type: EventKill, Actor: attackerID, Target: s.ID, Tick: e.tick.Load()})
	}
}
