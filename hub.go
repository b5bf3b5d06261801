package main

import (
	"log"
	"sync"
	"sync/atomic"
	"time"
)

const (
	maxConnsPerIP = 5
	maxTotalConns = 1000

	// Snapshots fan out at a third of the tick rate
	broadcastInterval = 50 * time.Millisecond

	inputFunnelSize = 1024
)

// Hub manages all connected clients and owns the single producer side of
// the engine's input ring: every connection funnels packets through one
// buffered channel drained by one forwarder goroutine.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client

	engine    *Engine
	auth      *Auth
	analytics *Analytics

	inputs      chan InputPacket
	nextGuestID atomic.Uint32

	// Connection limiting, accessed from HTTP handlers
	connMu     sync.Mutex
	ipConns    map[string]int
	totalConns int
}

// NewHub creates a new Hub bound to an engine
func NewHub(engine *Engine, auth *Auth, analytics *Analytics) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		engine:     engine,
		auth:       auth,
		analytics:  analytics,
		inputs:     make(chan InputPacket, inputFunnelSize),
		ipConns:    make(map[string]int),
	}
}

// Run processes register/unregister events and starts the forwarder,
// event consumer and snapshot broadcaster.
func (h *Hub) Run() {
	go h.forwardInputs()
	go h.consumeEvents()
	go h.broadcastSnapshots()

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			if client.playerID != 0 && h.analytics != nil {
				h.analytics.Track(EvtSessionEnd, client.playerID, 0, h.engine.Tick())
			}
		}
	}
}

// QueueInput hands a decoded packet to the forwarder. A full funnel drops
// the sample, mirroring the ring's own back-pressure policy.
func (h *Hub) QueueInput(pkt InputPacket) bool {
	select {
	case h.inputs <- pkt:
		return true
	default:
		return false
	}
}

// forwardInputs is the only goroutine calling the engine's PushInput,
// preserving the ring's single-producer contract.
func (h *Hub) forwardInputs() {
	var dropped uint64
	for pkt := range h.inputs {
		if !h.engine.PushInput(pkt) {
			dropped++
			if dropped%1000 == 1 {
				log.Printf("input ring full, %d samples dropped", dropped)
			}
		}
	}
}

// consumeEvents forwards simulation events into the analytics pipeline
func (h *Hub) consumeEvents() {
	for ev := range h.engine.Events() {
		if h.analytics == nil {
			continue
		}
		switch ev.Type {
		case EventSpawn:
			h.analytics.Track(EvtSpawn, ev.Actor, 0, ev.Tick)
		case EventKill:
			h.analytics.Track(EvtKill, ev.Actor, ev.Target, ev.Tick)
		}
	}
}

// broadcastSnapshots fans the latest published snapshot out to every
// connected client on a fixed cadence.
func (h *Hub) broadcastSnapshots() {
	ticker := time.NewTicker(broadcastInterval)
	defer ticker.Stop()
	for range ticker.C {
		snap := h.engine.Snapshot()
		if snap == nil {
			continue
		}
		h.mu.RLock()
		for client := range h.clients {
			if client.playerID != 0 {
				client.SendBinary(snap)
			}
		}
		h.mu.RUnlock()
	}
}

// NextGuestID allocates an unused human player id. Guest ids stay well
// below the bot id base so they never collide.
func (h *Hub) NextGuestID() uint32 {
	id := h.nextGuestID.Add(1)
	if id >= botIDBase {
		// Arena servers never see this many guests in one process run.
		log.Printf("guest id space exhausted, wrapping")
		h.nextGuestID.Store(0)
		id = h.nextGuestID.Add(1)
	}
	return id
}

// CanAccept enforces per-IP and total connection caps
func (h *Hub) CanAccept(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.totalConns >= maxTotalConns {
		return false
	}
	if h.ipConns[ip] >= maxConnsPerIP {
		return false
	}
	return true
}

// TrackConnect records an accepted connection
func (h *Hub) TrackConnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]++
	h.totalConns++
}

// TrackDisconnect records a closed connection
func (h *Hub) TrackDisconnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]--
	if h.ipConns[ip] <= 0 {
		delete(h.ipConns, ip)
	}
	h.totalConns--
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
