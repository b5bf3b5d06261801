package main

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"
)

const (
	TickRate     = 60 // simulation ticks per second
	TickDuration = time.Second / TickRate

	defaultMaxPlayers      = 64
	defaultWorldHalfExtent = 24.0
)

// GameConfig is supplied once at Start and immutable during a run
type GameConfig struct {
	MaxPlayers      uint32
	WorldHalfExtent float32
	BotCount        uint32

	// Hostile entity knobs. Publication and respawn both default to off,
	// matching a one-shot encounter: dead hostiles stay dead and never
	// appear in the snapshot.
	SpiderCount        uint32
	PublishSpiders     bool
	SpiderRespawnTicks uint32

	// Seed pins the simulation's random source; 0 seeds from the clock.
	Seed int64
}

// EventType tags simulation events forwarded to the analytics pipeline
type EventType uint8

const (
	EventSpawn EventType = iota
	EventKill
)

// GameEvent is emitted by the simulation goroutine; delivery is best-effort
// and never blocks a tick.
type GameEvent struct {
	Type   EventType
	Actor  uint32
	Target uint32
	Tick   uint32
}

// Engine is the authoritative fixed-tick simulation. All entity, geometry
// and tick state is owned by the simulation goroutine; the input ring and
// the published snapshot are the only state crossing that boundary.
type Engine struct {
	running atomic.Bool
	tick    atomic.Uint32
	ring    InputRing

	cfg       GameConfig
	players   []PlayerState
	spiders   []SpiderEntity
	walls     []Wall
	platforms []Platform
	grid      *RectGrid
	rng       *rand.Rand

	nextSpiderID uint32
	touched      map[uint32]bool
	scratch      []RectRef

	snapMu   sync.Mutex
	snapshot []byte

	events chan GameEvent
	quit   chan struct{}
	done   chan struct{}
}

// NewEngine creates a stopped engine
func NewEngine() *Engine {
	return &Engine{
		touched: make(map[uint32]bool),
		events:  make(chan GameEvent, 256),
	}
}

// Events exposes the best-effort simulation event stream
func (e *Engine) Events() <-chan GameEvent {
	return e.events
}

// Start rebuilds geometry, resets all entity and tick state and launches
// the simulation goroutine. No-op when already running.
func (e *Engine) Start(cfg GameConfig) {
	if !e.running.CompareAndSwap(false, true) {
		return
	}
	if cfg.MaxPlayers == 0 {
		cfg.MaxPlayers = defaultMaxPlayers
	}
	if cfg.WorldHalfExtent <= 0 {
		cfg.WorldHalfExtent = defaultWorldHalfExtent
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	e.cfg = cfg
	e.rng = rand.New(rand.NewSource(seed))
	e.tick.Store(0)
	e.players = e.players[:0]
	clear(e.touched)
	e.setupMap()

	e.snapMu.Lock()
	e.snapshot = nil
	e.snapMu.Unlock()

	e.quit = make(chan struct{})
	e.done = make(chan struct{})
	go e.tickLoop()
}

// Stop halts the simulation goroutine and waits for it to finish its
// current tick. No-op when not running.
func (e *Engine) Stop() {
	if !e.running.CompareAndSwap(true, false) {
		return
	}
	close(e.quit)
	<-e.done
}

// Running reports whether the simulation goroutine is live
func (e *Engine) Running() bool {
	return e.running.Load()
}

// PushInput enqueues one control sample. Returns false only when the ring
// is full; the sample is then lost for this tick.
func (e *Engine) PushInput(pkt InputPacket) bool {
	return e.ring.Push(pkt)
}

// Snapshot returns a copy of the most recently published binary snapshot,
// or nil if none has been published yet.
func (e *Engine) Snapshot() []byte {
	e.snapMu.Lock()
	defer e.snapMu.Unlock()
	if len(e.snapshot) == 0 {
		return nil
	}
	out := make([]byte, len(e.snapshot))
	copy(out, e.snapshot)
	return out
}

// Tick returns the current tick counter
func (e *Engine) Tick() uint32 {
	return e.tick.Load()
}

// PlayerCount returns the number of stored players. Safe only for
// observability; the count never shrinks while running.
func (e *Engine) PlayerCount() int {
	return len(e.players)
}

// tickLoop drives one fixed step per iteration at TickRate, sleeping to an
// absolute deadline so scheduling jitter does not accumulate. An overrun
// tick simply skips the sleep; the loop never bursts to catch up.
func (e *Engine) tickLoop() {
	defer close(e.done)
	const dt = float32(1.0 / TickRate)
	next := time.Now()
	for {
		select {
		case <-e.quit:
			return
		default:
		}
		next = next.Add(TickDuration)
		e.step(dt)
		if d := time.Until(next); d > 0 {
			time.Sleep(d)
		}
	}
}

// step advances the world by one fixed timestep: drain the ring, run bot
// and hostile controllers, idle-integrate untouched players, advance the
// tick counter and publish the snapshot.
func (e *Engine) step(dt float32) {
	clear(e.touched)
	for {
		pkt, ok := e.ring.Pop()
		if !ok {
			break
		}
		e.processInput(pkt, dt)
	}

	e.updateBots(dt)
	e.updateSpiders(dt)

	tick := e.tick.Load()
	for i := range e.players {
		p := &e.players[i]
		if !p.Active {
			continue
		}
		if !e.touched[p.ID] {
			idle := InputPacket{Yaw: p.Yaw, Pitch: p.Pitch, Weapon: p.Weapon}
			e.integrate(p, idle, dt)
		}
		if !p.IsBot && tick-p.LastInputTick > idleTimeoutTicks {
			p.Active = false
		}
	}

	e.tick.Add(1)
	e.publishSnapshot()
}

// processInput applies one packet: find-or-create the player, respawn it if
// its window has passed, integrate movement and evaluate weapon discharge.
// Inactive players only update bookkeeping. Creation past the player cap
// silently drops the packet.
func (e *Engine) processInput(pkt InputPacket, dt float32) {
	p := e.findPlayer(pkt.PlayerID)
	if p == nil {
		if uint32(len(e.players)) >= e.cfg.MaxPlayers {
			return
		}
		e.players = append(e.players, PlayerState{
			ID:            pkt.PlayerID,
			Health:        playerMaxHealth,
			Yaw:           pkt.Yaw,
			Pitch:         pkt.Pitch,
			Active:        true,
			LastSeq:       pkt.Seq,
			LastInputTick: e.tick.Load(),
		})
		p = &e.players[len(e.players)-1]
		e.respawn(p)
	}

	if !p.Active && e.tick.Load() >= p.RespawnTick {
		e.respawn(p)
	}
	if !p.Active {
		p.LastSeq = pkt.Seq
		p.LastInputTick = e.tick.Load()
		return
	}

	p.Weapon = clampWeapon(pkt.Weapon)
	e.integrate(p, pkt, dt)
	p.LastSeq = pkt.Seq
	p.LastInputTick = e.tick.Load()
	e.touched[p.ID] = true

	if pkt.Fire {
		e.fireWeapon(p)
	}
}

// findPlayer scans the store by id. Linear scan is fine at arena scale;
// ids are never removed so a hit stays valid until the next append.
func (e *Engine) findPlayer(id uint32) *PlayerState {
	for i := range e.players {
		if e.players[i].ID == id {
			return &e.players[i]
		}
	}
	return nil
}

// emit forwards a simulation event without ever blocking the tick
func (e *Engine) emit(ev GameEvent) {
	select {
	case e.events <- ev:
	default:
	}
}
