package main

import "sync/atomic"

const (
	ringSize = 4096 // power of two, one slot kept empty
	ringMask = ringSize - 1

	// RingCapacity is the number of packets the ring holds before Push
	// starts dropping.
	RingCapacity = ringSize - 1
)

// InputRing is a bounded single-producer single-consumer queue carrying
// control packets from the network boundary into the simulation goroutine.
// Exactly one goroutine may call Push and exactly one may call Pop; the hub
// funnels every connection through a single forwarder to honor that.
type InputRing struct {
	buf  [ringSize]InputPacket
	head atomic.Uint32 // next write index, owned by the producer
	tail atomic.Uint32 // next read index, owned by the consumer
}

// Push enqueues a packet. Returns false when the ring is full; the packet is
// dropped with no trace.
func (r *InputRing) Push(pkt InputPacket) bool {
	head := r.head.Load()
	next := (head + 1) & ringMask
	if next == r.tail.Load() {
		return false
	}
	r.buf[head] = pkt
	r.head.Store(next)
	return true
}

// Pop dequeues the oldest packet. Returns false when the ring is empty.
func (r *InputRing) Pop() (InputPacket, bool) {
	tail := r.tail.Load()
	if tail == r.head.Load() {
		return InputPacket{}, false
	}
	pkt := r.buf[tail]
	r.tail.Store((tail + 1) & ringMask)
	return pkt, true
}
