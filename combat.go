package main

// GunDef describes one weapon. Damage values are totals across a full
// spread; per-pellet damage is the total divided by the pellet count.
type GunDef struct {
	ID            uint8
	Name          string
	MaxDamage     float32
	MinDamage     float32
	CooldownTicks uint32
	Range         float32
	Spread        float32
	Pellets       int
}

// gunTable is indexed by the packet's weapon selector. A single entry today;
// the dispatch stays in place so new weapons are one row away.
var gunTable = []GunDef{
	{ID: 0, Name: "Pump Shotgun", MaxDamage: 84, MinDamage: 12, CooldownTicks: 16, Range: 22, Spread: 0.07, Pellets: 8},
}

// gunForSelector clamps an out-of-range selector to the default weapon
func gunForSelector(w uint8) *GunDef {
	if int(w) >= len(gunTable) {
		w = 0
	}
	return &gunTable[w]
}

// clampWeapon normalizes a packet's weapon selector to a valid table index
func clampWeapon(w uint8) uint8 {
	if int(w) >= len(gunTable) {
		return 0
	}
	return w
}

// raySphereIntersect tests a normalized ray against a sphere. Returns the
// hit distance (the nearer non-negative root) and whether it lies within
// maxDist.
func raySphereIntersect(ox, oy, oz, dx, dy, dz, cx, cy, cz, radius, maxDist float32) (float32, bool) {
	lx := cx - ox
	ly := cy - oy
	lz := cz - oz
	tca := lx*dx + ly*dy + lz*dz
	if tca < 0 {
		return 0, false
	}
	d2 := lx*lx + ly*ly + lz*lz - tca*tca
	r2 := radius * radius
	if d2 > r2 {
		return 0, false
	}
	thc := sqrtf(max32(0, r2-d2))
	t0 := tca - thc
	t1 := tca + thc
	tHit := t0
	if t0 < 0 {
		tHit = t1
	}
	return tHit, tHit >= 0 && tHit <= maxDist
}

// pelletDir builds a normalized aim direction from yaw/pitch plus jitter
func pelletDir(yaw, pitch float32) (float32, float32, float32) {
	return -sinf(yaw) * cosf(pitch), sinf(pitch), -cosf(yaw) * cosf(pitch)
}

// fireWeapon resolves one fire request. The cooldown gate updates the
// shooter's last-fire tick whether or not any pellet lands. Every pellet
// samples independent angular jitter and is tested against each living
// target; per-target pellet damage is summed, rounded and applied once.
func (e *Engine) fireWeapon(shooter *PlayerState) {
	tick := e.tick.Load()
	gun := gunForSelector(shooter.Weapon)
	if tick-shooter.LastFireTick < gun.CooldownTicks {
		return
	}
	shooter.LastFireTick = tick

	pelletMax := gun.MaxDamage / float32(gun.Pellets)
	pelletMin := gun.MinDamage / float32(gun.Pellets)

	for i := range e.players {
		target := &e.players[i]
		if !target.Active || target.ID == shooter.ID || target.Health <= 0 {
			continue
		}
		var total float32
		for pellet := 0; pellet < gun.Pellets; pellet++ {
			yaw := shooter.Yaw + e.jitter(gun.Spread)
			pitch := shooter.Pitch + e.jitter(gun.Spread)*0.6
			dx, dy, dz := pelletDir(yaw, pitch)
			dist, hit := raySphereIntersect(shooter.X, shooter.Y, shooter.Z, dx, dy, dz,
				target.X, target.Y, target.Z, targetRadius, gun.Range)
			if hit {
				t := Clampf(1-dist/gun.Range, 0, 1)
				total += pelletMin + t*(pelletMax-pelletMin)
			}
		}
		if total > 0 {
			e.damagePlayer(target, int32(roundf(total)), shooter.ID)
		}
	}

	for i := range e.spiders {
		s := &e.spiders[i]
		if !s.Active || s.Health <= 0 {
			continue
		}
		var total float32
		for pellet := 0; pellet < gun.Pellets; pellet++ {
			yaw := shooter.Yaw + e.jitter(gun.Spread)
			pitch := shooter.Pitch + e.jitter(gun.Spread)*0.6
			dx, dy, dz := pelletDir(yaw, pitch)
			dist, hit := raySphereIntersect(shooter.X, shooter.Y, shooter.Z, dx, dy, dz,
				s.X, s.Y, s.Z, spiderHitRadius, gun.Range)
			if hit {
				t := Clampf(1-dist/gun.Range, 0, 1)
				total += pelletMin + t*(pelletMax-pelletMin)
			}
		}
		if total > 0 {
			e.damageSpider(s, int32(roundf(total)), shooter.ID)
		}
	}
}

// jitter samples a uniform angular offset in [-spread, spread]
func (e *Engine) jitter(spread float32) float32 {
	return (e.rng.Float32()*2 - 1) * spread
}

// damagePlayer mutates health with a floor of zero; a kill deactivates the
// target and schedules its respawn window.
func (e *Engine) damagePlayer(target *PlayerState, dmg int32, attackerID uint32) {
	if target.Health <= 0 {
		return
	}
	target.Health -= dmg
	if target.Health < 0 {
		target.Health = 0
	}
	if target.Health == 0 {
		target.Active = false
		target.RespawnTick = e.tick.Load() + respawnDelayTicks
		e.emit(GameEvent{Type: EventKill, Actor: attackerID, Target: target.ID, Tick: e.tick.Load()})
	}
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
